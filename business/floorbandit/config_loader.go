package floorbandit

import "context"

// loadConfig reads the per-adapter config from the repo, falling back to the
// service default when no row exists or the repo errors.
func (s *FloorService) loadConfig(ctx context.Context, adapterID string) Config {
	if s.cfgRepo == nil {
		return s.defaultCfg
	}

	dbCfg, ok, err := s.cfgRepo.GetConfig(ctx, adapterID)
	if err != nil || !ok {
		return s.defaultCfg
	}

	// start from defaults to keep sane fallbacks for any missing fields
	cfg := s.defaultCfg

	if len(dbCfg.CandidatePrices) > 0 {
		cfg.CandidatePrices = dbCfg.CandidatePrices
	}
	if dbCfg.WarmUpTrials > 0 {
		cfg.WarmUpTrials = dbCfg.WarmUpTrials
	}
	if dbCfg.ExplorationRate >= 0 && dbCfg.ExplorationRate <= 1 {
		cfg.ExplorationRate = dbCfg.ExplorationRate
	}

	return cfg
}
