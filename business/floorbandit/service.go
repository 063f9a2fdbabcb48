package floorbandit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"floorPilot/domain"
	"floorPilot/pkg/logger"

	"github.com/google/uuid"
)

// Reportable conditions on the outcome path. Neither one mutates state.
var (
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrNoCandidateMatch   = errors.New("no candidate within tolerance of reported floor")
	ErrAdapterNotAllowed  = errors.New("adapter is not enabled for floor decisions")
)

// ---- Repository interfaces ----

// SnapshotRepository is the durable write-behind target for experiment
// state. Once loaded, in-memory state is authoritative for the live
// process; saves and deletes are best-effort.
type SnapshotRepository interface {
	LoadAll(ctx context.Context) ([]*Experiment, error)
	Save(ctx context.Context, exp *Experiment) error
	Delete(ctx context.Context, adapterID, geo, adFormat string) error
}

type OutcomeEventRepository interface {
	SaveEvent(ctx context.Context, event domain.FloorOutcomeEvent) error
}

// ---- Usecase / Service ----

type FloorService struct {
	store        *experimentStore
	sampler      *Sampler
	snapshotRepo SnapshotRepository
	eventRepo    OutcomeEventRepository
	cfgRepo      ConfigRepository
	overrideRepo OverrideRepository
	adapterGate  AdapterGate
	defaultCfg   Config
}

func NewFloorService(
	snapshotRepo SnapshotRepository,
	eventRepo OutcomeEventRepository,
	cfgRepo ConfigRepository,
	overrideRepo OverrideRepository,
	adapterGate AdapterGate,
	src RandomSource,
	defaultCfg Config,
) *FloorService {
	if len(defaultCfg.CandidatePrices) == 0 {
		defaultCfg.CandidatePrices = defaultCandidatePrices()
	}
	if defaultCfg.PersistTimeout <= 0 {
		defaultCfg.PersistTimeout = defaultPersistTimeout
	}
	if adapterGate == nil {
		adapterGate = NoopAdapterGate{}
	}

	return &FloorService{
		store:        newExperimentStore(),
		sampler:      NewSampler(src),
		snapshotRepo: snapshotRepo,
		eventRepo:    eventRepo,
		cfgRepo:      cfgRepo,
		overrideRepo: overrideRepo,
		adapterGate:  adapterGate,
		defaultCfg:   defaultCfg,
	}
}

// WarmStart loads every persisted experiment into memory and returns the
// loaded count. A failed load leaves the store empty and the service
// running; fresh experiments are rebuilt on demand from defaults.
func (s *FloorService) WarmStart(ctx context.Context) int {
	exps, err := s.snapshotRepo.LoadAll(ctx)
	if err != nil {
		logger.Error("failed to load experiment snapshots, starting empty", "error", err)
		FloorPersistFailuresTotal.WithLabelValues("load").Inc()
		return 0
	}

	for _, exp := range exps {
		if exp == nil || len(exp.Candidates) == 0 {
			continue
		}
		s.store.put(exp)
	}

	loaded := s.store.size()
	logger.Info("experiment snapshots loaded", "count", loaded)

	return loaded
}

// ---- Serving ----

// GetOptimalBidFloor returns a floor price for one segment, creating the
// experiment lazily on first access.
func (s *FloorService) GetOptimalBidFloor(
	ctx context.Context,
	adapterID, geo, adFormat, currency string,
) (domain.FloorDecision, error) {
	if err := ctx.Err(); err != nil {
		return domain.FloorDecision{}, fmt.Errorf("context error: %w", err)
	}
	if adapterID == "" || geo == "" || adFormat == "" {
		return domain.FloorDecision{}, fmt.Errorf("adapter_id, geo and ad_format are required")
	}

	// 1) adapter gate; gate errors fail open
	ok, err := s.adapterGate.Allow(ctx, adapterID)
	if err != nil {
		logger.Warn("adapter gate check failed", "adapter_id", adapterID, "error", err)
	} else if !ok {
		return domain.FloorDecision{}, ErrAdapterNotAllowed
	}

	decisionID := DecisionIDFromContext(ctx)
	if decisionID == "" {
		decisionID = uuid.NewString()
	}

	// 2) an admin-pinned floor beats the bandit
	if s.overrideRepo != nil {
		if ov, ok, err := s.overrideRepo.GetOverride(ctx, adapterID, geo, adFormat); err == nil && ok {
			FloorDecisionsTotal.WithLabelValues(adapterID, adFormat, DecisionModeOverride).Inc()
			logger.Debug("floor_decision",
				"decision_id", decisionID,
				"adapter_id", adapterID,
				"geo", geo,
				"ad_format", adFormat,
				"floor_price", ov.FloorPrice,
				"mode", DecisionModeOverride,
			)

			return domain.FloorDecision{
				DecisionID: decisionID,
				AdapterID:  adapterID,
				Geo:        geo,
				AdFormat:   adFormat,
				Currency:   currency,
				FloorPrice: ov.FloorPrice,
				Mode:       DecisionModeOverride,
			}, nil
		}
	}

	// 3) per-adapter config, then the experiment itself. Currency is only
	// used at creation; lookups ignore it.
	cfg := s.loadConfig(ctx, adapterID)

	key := experimentKey(adapterID, geo, adFormat)
	entry, created := s.store.getOrCreate(key, func() *Experiment {
		return newExperiment(adapterID, geo, adFormat, currency,
			cfg.CandidatePrices, cfg.PriorSuccesses, cfg.PriorFailures)
	})

	// 4) pick under the entry lock; new experiments get their first snapshot
	entry.mu.Lock()
	price, mode := s.selectPrice(entry.exp, cfg)
	expCurrency := entry.exp.Currency
	var snap *Experiment
	if created {
		snap = entry.exp.clone()
	}
	entry.mu.Unlock()

	if snap != nil {
		s.persistSnapshot(snap)
	}

	FloorDecisionsTotal.WithLabelValues(adapterID, adFormat, mode).Inc()
	logger.Debug("floor_decision",
		"decision_id", decisionID,
		"adapter_id", adapterID,
		"geo", geo,
		"ad_format", adFormat,
		"floor_price", price,
		"mode", mode,
		"created", created,
	)

	return domain.FloorDecision{
		DecisionID: decisionID,
		AdapterID:  adapterID,
		Geo:        geo,
		AdFormat:   adFormat,
		Currency:   expCurrency,
		FloorPrice: price,
		Mode:       mode,
	}, nil
}

// ---- Learning ----

// UpdateBidFloor applies one observed auction outcome to the matching
// candidate and schedules a full snapshot write plus an event-log append.
func (s *FloorService) UpdateBidFloor(ctx context.Context, event domain.FloorOutcomeEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if event.AdapterID == "" || event.Geo == "" || event.AdFormat == "" {
		return fmt.Errorf("adapter_id, geo and ad_format are required")
	}

	// 1) lookup only; an unknown key never creates an experiment here
	key := experimentKey(event.AdapterID, event.Geo, event.AdFormat)
	entry, ok := s.store.get(key)
	if !ok {
		return ErrExperimentNotFound
	}

	// 2) match within tolerance, then apply the binary outcome
	entry.mu.Lock()
	idx := entry.exp.findCandidate(event.FloorPrice)
	if idx < 0 {
		entry.mu.Unlock()
		return ErrNoCandidateMatch
	}

	if event.Won {
		entry.exp.Candidates[idx].Successes++
	} else {
		entry.exp.Candidates[idx].Failures++
	}
	entry.exp.LastUpdated = time.Now()
	snap := entry.exp.clone()
	entry.mu.Unlock()

	// 3) write-behind: full snapshot + event log, neither blocks the caller
	s.persistSnapshot(snap)
	s.saveEvent(event)

	result := "lost"
	if event.Won {
		result = "won"
	}
	FloorOutcomesTotal.WithLabelValues(event.AdapterID, event.AdFormat, result).Inc()
	logger.Debug("floor_outcome",
		"adapter_id", event.AdapterID,
		"geo", event.Geo,
		"ad_format", event.AdFormat,
		"floor_price", event.FloorPrice,
		"won", event.Won,
		"decision_id", event.DecisionID,
	)

	return nil
}

// ---- Reset ----

// ResetExperiment drops the in-memory experiment and the durable row. The
// in-memory removal is visible to subsequent calls immediately; the row
// delete is awaited but a failure there is logged and swallowed.
func (s *FloorService) ResetExperiment(ctx context.Context, adapterID, geo, adFormat string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if adapterID == "" || geo == "" || adFormat == "" {
		return fmt.Errorf("adapter_id, geo and ad_format are required")
	}

	key := experimentKey(adapterID, geo, adFormat)
	removed := s.store.remove(key)

	if err := s.snapshotRepo.Delete(ctx, adapterID, geo, adFormat); err != nil {
		logger.Error("failed to delete experiment snapshot", "key", key, "error", err)
		FloorPersistFailuresTotal.WithLabelValues("delete").Inc()
	}

	FloorExperimentResetsTotal.Inc()
	logger.Info("experiment reset",
		"adapter_id", adapterID,
		"geo", geo,
		"ad_format", adFormat,
		"was_loaded", removed,
	)

	return nil
}

// ---- write-behind persistence ----

// persistSnapshot writes one full experiment snapshot in the background.
// Failures are logged, counted, and swallowed.
func (s *FloorService) persistSnapshot(snap *Experiment) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.defaultCfg.PersistTimeout)
		defer cancel()

		if err := s.snapshotRepo.Save(ctx, snap); err != nil {
			logger.Error("failed to save experiment snapshot", "key", snap.key(), "error", err)
			FloorPersistFailuresTotal.WithLabelValues("save").Inc()
		}
	}()
}

func (s *FloorService) saveEvent(event domain.FloorOutcomeEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.defaultCfg.PersistTimeout)
		defer cancel()

		if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
			logger.Error("failed to save outcome event", "adapter_id", event.AdapterID, "error", err)
			FloorPersistFailuresTotal.WithLabelValues("event").Inc()
		}
	}()
}
