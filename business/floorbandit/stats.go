package floorbandit

import (
	"context"
	"fmt"
	"math"

	"floorPilot/domain"

	"gonum.org/v1/gonum/stat/distuv"
)

// ExperimentStats aggregates every experiment in the store. Read-only.
func (s *FloorService) ExperimentStats(ctx context.Context) ([]domain.FloorExperimentStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	entries := s.store.list()
	out := make([]domain.FloorExperimentStats, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		out = append(out, computeStats(entry.exp))
		entry.mu.Unlock()
	}

	return out, nil
}

// ExperimentDetail returns the per-candidate drill-down for one experiment:
// raw counts, empirical rate, posterior mean, and a 95% credible interval.
func (s *FloorService) ExperimentDetail(
	ctx context.Context,
	adapterID, geo, adFormat string,
) (domain.FloorExperimentDetail, error) {
	if err := ctx.Err(); err != nil {
		return domain.FloorExperimentDetail{}, fmt.Errorf("context error: %w", err)
	}

	entry, ok := s.store.get(experimentKey(adapterID, geo, adFormat))
	if !ok {
		return domain.FloorExperimentDetail{}, ErrExperimentNotFound
	}

	entry.mu.Lock()
	exp := entry.exp.clone()
	entry.mu.Unlock()

	stats := computeStats(exp)
	detail := domain.FloorExperimentDetail{
		AdapterID:   stats.AdapterID,
		Geo:         stats.Geo,
		AdFormat:    stats.AdFormat,
		Currency:    stats.Currency,
		TotalTrials: stats.TotalTrials,
		BestFloor:   stats.BestFloor,
		SuccessRate: stats.SuccessRate,
		Confidence:  stats.Confidence,
		LastUpdated: stats.LastUpdated,
		Candidates:  make([]domain.FloorCandidateStats, 0, len(exp.Candidates)),
	}

	for i := range exp.Candidates {
		c := exp.Candidates[i]
		trials := c.Successes + c.Failures

		cs := domain.FloorCandidateStats{
			Price:     c.Price,
			Successes: c.Successes,
			Failures:  c.Failures,
			Trials:    trials,
		}
		if trials > 0 {
			cs.EmpiricalRate = float64(c.Successes) / float64(trials)
		}
		cs.PosteriorMean, cs.CredibleLow, cs.CredibleHigh = betaPosterior(c.Successes, c.Failures)

		detail.Candidates = append(detail.Candidates, cs)
	}

	return detail, nil
}

// computeStats derives the aggregate view of one experiment from raw stored
// counts. The caller must hold the entry lock (or own a detached copy).
func computeStats(exp *Experiment) domain.FloorExperimentStats {
	var totalTrials uint64
	bestIdx := -1
	bestRate := 0.0
	varianceSum := 0.0
	activeArms := 0

	for i := range exp.Candidates {
		c := exp.Candidates[i]
		trials := c.Successes + c.Failures
		totalTrials += trials
		if trials == 0 {
			continue
		}

		rate := float64(c.Successes) / float64(trials)
		// ties keep the first candidate in ladder order
		if bestIdx < 0 || rate > bestRate {
			bestIdx = i
			bestRate = rate
		}

		varianceSum += rate * (1 - rate) / float64(trials)
		activeArms++
	}

	bestFloor := 0.0
	successRate := 0.0
	if len(exp.Candidates) > 0 {
		bestFloor = exp.Candidates[0].Price
	}
	if bestIdx >= 0 {
		bestFloor = exp.Candidates[bestIdx].Price
		successRate = bestRate
	}

	confidence := 0.0
	if activeArms > 0 {
		meanVariance := varianceSum / float64(activeArms)
		confidence = 1 - math.Sqrt(meanVariance)
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	return domain.FloorExperimentStats{
		AdapterID:   exp.AdapterID,
		Geo:         exp.Geo,
		AdFormat:    exp.AdFormat,
		Currency:    exp.Currency,
		TotalTrials: totalTrials,
		BestFloor:   bestFloor,
		SuccessRate: successRate,
		Confidence:  confidence,
		LastUpdated: exp.LastUpdated,
	}
}

// betaPosterior returns the posterior mean and the central 95% credible
// interval of Beta(successes, failures). Zero shape parameters fall back to
// the uninformative [0,1] interval.
func betaPosterior(successes, failures uint64) (mean, lo, hi float64) {
	if successes == 0 && failures == 0 {
		return 0.5, 0, 1
	}

	a := float64(successes)
	b := float64(failures)
	mean = a / (a + b)

	if successes == 0 || failures == 0 {
		return mean, 0, 1
	}

	dist := distuv.Beta{Alpha: a, Beta: b}

	return mean, dist.Quantile(0.025), dist.Quantile(0.975)
}
