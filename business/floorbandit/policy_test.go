//go:build !integration

package floorbandit

import (
	"context"
	"testing"
)

func testExperiment(prices []float64) *Experiment {
	return newExperiment("applovin", "US", "banner", "USD", prices, 1, 1)
}

func policyService(t *testing.T, src RandomSource) *FloorService {
	t.Helper()
	return NewFloorService(
		newFakeSnapshotRepo(),
		newFakeEventRepo(),
		nil, nil, nil,
		src,
		DefaultConfig(),
	)
}

func TestSelectPriceWarmUpAlwaysExplores(t *testing.T) {
	// r = 0.99 would normally exploit, but the fresh experiment is far
	// below the warm-up threshold; the next draw picks index 4
	src := &sequenceSource{vals: []float64{0.99, 0.5}}
	svc := policyService(t, src)

	exp := testExperiment(DefaultConfig().CandidatePrices)
	price, mode := svc.selectPrice(exp, svc.defaultCfg)

	if mode != DecisionModeExplore {
		t.Fatalf("expected explore during warm-up, got %s", mode)
	}
	if price != 2.00 {
		t.Fatalf("expected uniform pick 2.00, got %v", price)
	}
}

func TestSelectPriceEpsilonExploresPastWarmUp(t *testing.T) {
	src := &sequenceSource{vals: []float64{0.05, 0.0}}
	svc := policyService(t, src)

	exp := testExperiment(DefaultConfig().CandidatePrices)
	exp.Candidates[0].Successes = 200 // past the warm-up threshold

	price, mode := svc.selectPrice(exp, svc.defaultCfg)
	if mode != DecisionModeExplore {
		t.Fatalf("expected epsilon exploration, got %s", mode)
	}
	if price != exp.Candidates[0].Price {
		t.Fatalf("expected uniform pick of index 0, got %v", price)
	}
}

func TestSelectPriceExploitsPastWarmUp(t *testing.T) {
	src := &sequenceSource{vals: []float64{0.99}}
	svc := policyService(t, src)

	exp := testExperiment(DefaultConfig().CandidatePrices)
	exp.Candidates[0].Successes = 200

	_, mode := svc.selectPrice(exp, svc.defaultCfg)
	if mode != DecisionModeExploit {
		t.Fatalf("expected exploit past warm-up, got %s", mode)
	}
}

func TestExploitTieBreakKeepsFirstCandidate(t *testing.T) {
	// a constant source makes every posterior draw identical when all
	// candidates carry identical counts, so the tie-break decides
	src := &sequenceSource{vals: []float64{0.5}}
	svc := policyService(t, src)

	exp := testExperiment(DefaultConfig().CandidatePrices)
	for i := range exp.Candidates {
		exp.Candidates[i].Successes = 51
		exp.Candidates[i].Failures = 51
	}

	price, mode := svc.selectPrice(exp, svc.defaultCfg)
	if mode != DecisionModeExploit {
		t.Fatalf("expected exploit, got %s", mode)
	}
	if price != exp.Candidates[0].Price {
		t.Fatalf("tie must keep the first candidate, got %v", price)
	}
}

func TestSeededDecisionsAreReproducible(t *testing.T) {
	run := func() []float64 {
		svc := policyService(t, NewSeededSource(777))
		ctx := context.Background()

		out := make([]float64, 0, 200)
		for i := 0; i < 200; i++ {
			dec, err := svc.GetOptimalBidFloor(ctx, "moloco", "DE", "rewarded", "EUR")
			if err != nil {
				t.Fatalf("decision %d failed: %v", i, err)
			}
			out = append(out, dec.FloorPrice)

			won := i%3 == 0
			err = svc.UpdateBidFloor(ctx, outcomeFor("moloco", "DE", "rewarded", dec.FloorPrice, won))
			if err != nil {
				t.Fatalf("update %d failed: %v", i, err)
			}
		}
		return out
	}

	first := run()
	second := run()

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("decision %d differs between seeded runs: %v vs %v", i, first[i], second[i])
		}
	}
}
