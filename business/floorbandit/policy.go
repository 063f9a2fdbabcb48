package floorbandit

// Decision modes, used for logging and metrics labels.
const (
	DecisionModeExplore  = "explore"
	DecisionModeExploit  = "exploit"
	DecisionModeOverride = "override"
)

// selectPrice picks a candidate price for one experiment. The caller must
// hold the entry lock.
//
// Warm-up and epsilon exploration are layered on top of Thompson Sampling
// on purpose: until WarmUpTrials trials accumulate, and with probability
// ExplorationRate afterwards, the pick is uniform over the ladder. Otherwise
// every candidate's posterior is sampled and the highest draw wins.
func (s *FloorService) selectPrice(exp *Experiment, cfg Config) (float64, string) {
	trials := exp.totalTrials()
	r := s.sampler.Uniform()

	if trials < uint64(cfg.WarmUpTrials) || r < cfg.ExplorationRate {
		idx := int(s.sampler.Uniform() * float64(len(exp.Candidates)))
		if idx >= len(exp.Candidates) {
			idx = len(exp.Candidates) - 1
		}

		return exp.Candidates[idx].Price, DecisionModeExplore
	}

	// ties keep the first candidate in ladder order
	bestIdx := 0
	bestSample := -1.0
	for i := range exp.Candidates {
		sample := s.sampler.Beta(
			float64(exp.Candidates[i].Successes),
			float64(exp.Candidates[i].Failures),
		)
		if sample > bestSample {
			bestSample = sample
			bestIdx = i
		}
	}

	return exp.Candidates[bestIdx].Price, DecisionModeExploit
}
