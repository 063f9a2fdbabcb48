//go:build !integration

package floorbandit

import (
	"context"
	"sync"
	"testing"
)

// scenario params
const (
	convergeTrialsPerArm = 50
	convergeDecisions    = 100
	convergeWinner       = 1.00

	growthWorkers          = 8
	growthUpdatesPerWorker = 50
)

func TestConvergence_FavorsWinningFloor(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()
	cfg := DefaultConfig()

	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("decision failed: %v", err)
	}

	// 1) history: the 1.00 rung wins 90% of its auctions, every other rung 10%
	for _, price := range cfg.CandidatePrices {
		for i := 0; i < convergeTrialsPerArm; i++ {
			won := i%10 == 0
			if price == convergeWinner {
				won = i%10 != 0
			}
			if err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", price, won)); err != nil {
				t.Fatalf("outcome for %v failed: %v", price, err)
			}
		}
	}

	// 2) serve and count; warm-up is long past, so picks are posterior-driven
	picks := make(map[float64]int, len(cfg.CandidatePrices))
	for i := 0; i < convergeDecisions; i++ {
		dec, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD")
		if err != nil {
			t.Fatalf("decision %d failed: %v", i, err)
		}
		picks[dec.FloorPrice]++
	}

	t.Logf("[CONVERGENCE] picks=%v", picks)

	for _, price := range cfg.CandidatePrices {
		if price == convergeWinner {
			continue
		}
		if picks[convergeWinner] <= picks[price] {
			t.Fatalf("winning floor %.2f picked %d times, rung %.2f picked %d",
				convergeWinner, picks[convergeWinner], price, picks[price])
		}
	}
}

func TestStoreGrowth_OneExperimentPerSegment(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()

	adapters := []string{"applovin", "unity", "ironsource", "moloco"}
	geos := []string{"US", "ID", "DE"}
	formats := []string{"banner", "interstitial", "rewarded"}

	for _, a := range adapters {
		for _, g := range geos {
			for _, f := range formats {
				for i := 0; i < 5; i++ {
					dec, err := svc.GetOptimalBidFloor(ctx, a, g, f, "USD")
					if err != nil {
						t.Fatalf("decision failed for %s/%s/%s: %v", a, g, f, err)
					}
					if err := svc.UpdateBidFloor(ctx, outcomeFor(a, g, f, dec.FloorPrice, i%2 == 0)); err != nil {
						t.Fatalf("outcome failed for %s/%s/%s: %v", a, g, f, err)
					}
				}
			}
		}
	}

	want := len(adapters) * len(geos) * len(formats)
	if svc.store.size() != want {
		t.Fatalf("expected %d experiments, store holds %d", want, svc.store.size())
	}
	t.Logf("[GROWTH] segments=%d experiments=%d", want, svc.store.size())
}

func TestConcurrentOutcomesConserveCounts(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()
	cfg := DefaultConfig()

	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("decision failed: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < growthWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < growthUpdatesPerWorker; i++ {
				price := cfg.CandidatePrices[(worker+i)%len(cfg.CandidatePrices)]
				if err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", price, i%2 == 0)); err != nil {
					t.Errorf("worker %d update %d failed: %v", worker, i, err)
				}
			}
		}(w)
	}
	wg.Wait()

	successes, failures := experimentCounts(t, svc, "applovin", "US", "banner")
	prior := uint64(len(cfg.CandidatePrices)) * (cfg.PriorSuccesses + cfg.PriorFailures)
	want := prior + growthWorkers*growthUpdatesPerWorker
	if got := successes + failures; got != want {
		t.Fatalf("lost updates under contention: got %d trials, want %d", got, want)
	}
}
