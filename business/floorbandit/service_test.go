//go:build !integration

package floorbandit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"floorPilot/domain"
)

// ---- fakes ----

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	rows    map[string]*Experiment
	saves   int
	deletes int
	loadErr error
	saveErr error
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{rows: make(map[string]*Experiment)}
}

func (f *fakeSnapshotRepo) LoadAll(ctx context.Context) ([]*Experiment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]*Experiment, 0, len(f.rows))
	for _, exp := range f.rows {
		out = append(out, exp.clone())
	}
	return out, nil
}

func (f *fakeSnapshotRepo) Save(ctx context.Context, exp *Experiment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows[exp.key()] = exp.clone()
	return nil
}

func (f *fakeSnapshotRepo) Delete(ctx context.Context, adapterID, geo, adFormat string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes++
	delete(f.rows, experimentKey(adapterID, geo, adFormat))
	return nil
}

func (f *fakeSnapshotRepo) deleteCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.FloorOutcomeEvent
	err    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{}
}

func (f *fakeEventRepo) SaveEvent(ctx context.Context, event domain.FloorOutcomeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeOverrideRepo struct {
	overrides map[string]domain.FloorOverride
}

func (f *fakeOverrideRepo) GetOverride(ctx context.Context, adapterID, geo, adFormat string) (domain.FloorOverride, bool, error) {
	ov, ok := f.overrides[experimentKey(adapterID, geo, adFormat)]
	return ov, ok, nil
}

func (f *fakeOverrideRepo) UpsertOverride(ctx context.Context, override domain.FloorOverride) error {
	f.overrides[experimentKey(override.AdapterID, override.Geo, override.AdFormat)] = override
	return nil
}

func (f *fakeOverrideRepo) DeleteOverride(ctx context.Context, adapterID, geo, adFormat string) error {
	delete(f.overrides, experimentKey(adapterID, geo, adFormat))
	return nil
}

type fakeGate struct {
	allowed map[string]bool
	err     error
}

func (g *fakeGate) Allow(ctx context.Context, adapterID string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	return g.allowed[adapterID], nil
}

func outcomeFor(adapterID, geo, adFormat string, price float64, won bool) domain.FloorOutcomeEvent {
	return domain.FloorOutcomeEvent{
		AdapterID:  adapterID,
		Geo:        geo,
		AdFormat:   adFormat,
		FloorPrice: price,
		Won:        won,
	}
}

func newTestService(t *testing.T, snap *fakeSnapshotRepo, events *fakeEventRepo) *FloorService {
	t.Helper()
	return NewFloorService(snap, events, nil, nil, nil, NewSeededSource(7), DefaultConfig())
}

func experimentCounts(t *testing.T, svc *FloorService, adapterID, geo, adFormat string) (uint64, uint64) {
	t.Helper()

	entry, ok := svc.store.get(experimentKey(adapterID, geo, adFormat))
	if !ok {
		t.Fatalf("experiment %s|%s|%s not found in store", adapterID, geo, adFormat)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var successes, failures uint64
	for _, c := range entry.exp.Candidates {
		successes += c.Successes
		failures += c.Failures
	}
	return successes, failures
}

// ---- decision path ----

func TestDecisionRequiresSegmentFields(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())

	if _, err := svc.GetOptimalBidFloor(context.Background(), "", "US", "banner", "USD"); err == nil {
		t.Fatal("expected an error for a missing adapter id")
	}
	if svc.store.size() != 0 {
		t.Fatalf("rejected request must not create experiments, store holds %d", svc.store.size())
	}
}

func TestDecisionCreatesExperimentOnce(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		dec, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD")
		if err != nil {
			t.Fatalf("decision %d failed: %v", i, err)
		}
		if dec.FloorPrice <= 0 {
			t.Fatalf("decision %d returned non-positive floor %v", i, dec.FloorPrice)
		}
		if dec.DecisionID == "" {
			t.Fatalf("decision %d is missing a decision id", i)
		}
	}

	if svc.store.size() != 1 {
		t.Fatalf("expected one experiment, store holds %d", svc.store.size())
	}
}

func TestDecisionReturnsLadderPrice(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()

	ladder := make(map[float64]bool, len(DefaultConfig().CandidatePrices))
	for _, p := range DefaultConfig().CandidatePrices {
		ladder[p] = true
	}

	for i := 0; i < 500; i++ {
		dec, err := svc.GetOptimalBidFloor(ctx, "unity", "ID", "interstitial", "USD")
		if err != nil {
			t.Fatalf("decision %d failed: %v", i, err)
		}
		if !ladder[dec.FloorPrice] {
			t.Fatalf("decision %d returned %v, not a ladder price", i, dec.FloorPrice)
		}
	}
}

func TestCurrencyDoesNotSplitExperiments(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()

	first, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD")
	if err != nil {
		t.Fatalf("first decision failed: %v", err)
	}
	second, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "EUR")
	if err != nil {
		t.Fatalf("second decision failed: %v", err)
	}

	if svc.store.size() != 1 {
		t.Fatalf("currency must not be part of the key, store holds %d", svc.store.size())
	}
	if first.Currency != "USD" || second.Currency != "USD" {
		t.Fatalf("experiment currency must stick to the creating request, got %q then %q",
			first.Currency, second.Currency)
	}
}

func TestOverrideBeatsBandit(t *testing.T) {
	ovr := &fakeOverrideRepo{overrides: map[string]domain.FloorOverride{}}
	if err := ovr.UpsertOverride(context.Background(), domain.FloorOverride{
		AdapterID:  "pubmatic",
		Geo:        "US",
		AdFormat:   "banner",
		FloorPrice: 3.50,
	}); err != nil {
		t.Fatalf("seeding override failed: %v", err)
	}

	svc := NewFloorService(newFakeSnapshotRepo(), newFakeEventRepo(), nil, ovr, nil,
		NewSeededSource(7), DefaultConfig())

	dec, err := svc.GetOptimalBidFloor(context.Background(), "pubmatic", "US", "banner", "USD")
	if err != nil {
		t.Fatalf("decision failed: %v", err)
	}
	if dec.Mode != DecisionModeOverride {
		t.Fatalf("expected override mode, got %s", dec.Mode)
	}
	if dec.FloorPrice != 3.50 {
		t.Fatalf("expected pinned floor 3.50, got %v", dec.FloorPrice)
	}
	if svc.store.size() != 0 {
		t.Fatalf("override path must not create an experiment, store holds %d", svc.store.size())
	}
}

func TestGateBlocksDisabledAdapter(t *testing.T) {
	gate := &fakeGate{allowed: map[string]bool{"applovin": true}}
	svc := NewFloorService(newFakeSnapshotRepo(), newFakeEventRepo(), nil, nil, gate,
		NewSeededSource(7), DefaultConfig())
	ctx := context.Background()

	if _, err := svc.GetOptimalBidFloor(ctx, "unity", "US", "banner", "USD"); !errors.Is(err, ErrAdapterNotAllowed) {
		t.Fatalf("expected ErrAdapterNotAllowed, got %v", err)
	}
	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("allowed adapter must pass, got %v", err)
	}
}

func TestNilGateDefaultsToAllowAll(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())

	if _, ok := svc.adapterGate.(NoopAdapterGate); !ok {
		t.Fatalf("nil gate must default to NoopAdapterGate, got %T", svc.adapterGate)
	}
	if _, err := svc.GetOptimalBidFloor(context.Background(), "never-registered", "US", "banner", "USD"); err != nil {
		t.Fatalf("default gate must allow every adapter, got %v", err)
	}
}

func TestGateErrorFailsOpen(t *testing.T) {
	gate := &fakeGate{err: errors.New("registry down")}
	svc := NewFloorService(newFakeSnapshotRepo(), newFakeEventRepo(), nil, nil, gate,
		NewSeededSource(7), DefaultConfig())

	if _, err := svc.GetOptimalBidFloor(context.Background(), "unity", "US", "banner", "USD"); err != nil {
		t.Fatalf("gate errors must fail open, got %v", err)
	}
}

// ---- outcome path ----

func TestUpdateUnknownExperimentFails(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())

	err := svc.UpdateBidFloor(context.Background(), outcomeFor("ironsource", "US", "banner", 1.00, true))
	if !errors.Is(err, ErrExperimentNotFound) {
		t.Fatalf("expected ErrExperimentNotFound, got %v", err)
	}
	if svc.store.size() != 0 {
		t.Fatalf("failed update must not create experiments, store holds %d", svc.store.size())
	}
}

func TestUpdateRejectsUnknownFloorPrice(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()

	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("decision failed: %v", err)
	}
	s0, f0 := experimentCounts(t, svc, "applovin", "US", "banner")

	err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", 99.99, true))
	if !errors.Is(err, ErrNoCandidateMatch) {
		t.Fatalf("expected ErrNoCandidateMatch, got %v", err)
	}

	s1, f1 := experimentCounts(t, svc, "applovin", "US", "banner")
	if s0 != s1 || f0 != f1 {
		t.Fatalf("rejected outcome must not touch counts: (%d,%d) -> (%d,%d)", s0, f0, s1, f1)
	}
}

func TestPriceToleranceMatching(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()

	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("decision failed: %v", err)
	}

	// 1.004 sits within tolerance of the 1.00 rung, 1.02 does not
	if err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", 1.004, true)); err != nil {
		t.Fatalf("1.004 must match the 1.00 candidate, got %v", err)
	}
	err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", 1.02, true))
	if !errors.Is(err, ErrNoCandidateMatch) {
		t.Fatalf("1.02 must not match any candidate, got %v", err)
	}
}

func TestCountConservation(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	ctx := context.Background()
	cfg := DefaultConfig()

	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("decision failed: %v", err)
	}

	const n = 60
	for i := 0; i < n; i++ {
		price := cfg.CandidatePrices[i%len(cfg.CandidatePrices)]
		if err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", price, i%2 == 0)); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	successes, failures := experimentCounts(t, svc, "applovin", "US", "banner")
	prior := uint64(len(cfg.CandidatePrices)) * (cfg.PriorSuccesses + cfg.PriorFailures)
	if got, want := successes+failures, prior+n; got != want {
		t.Fatalf("count conservation broken: got %d trials, want %d", got, want)
	}
}

func TestSaveFailureDoesNotBlockServing(t *testing.T) {
	snap := newFakeSnapshotRepo()
	snap.saveErr = errors.New("db down")
	svc := newTestService(t, snap, newFakeEventRepo())
	ctx := context.Background()

	dec, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD")
	if err != nil {
		t.Fatalf("decision failed: %v", err)
	}
	if err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", dec.FloorPrice, true)); err != nil {
		t.Fatalf("update must swallow snapshot failures, got %v", err)
	}
}

// ---- reset and warm start ----

func TestResetRestoresPriorState(t *testing.T) {
	snap := newFakeSnapshotRepo()
	svc := newTestService(t, snap, newFakeEventRepo())
	ctx := context.Background()
	cfg := DefaultConfig()

	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("decision failed: %v", err)
	}
	for i := 0; i < 30; i++ {
		price := cfg.CandidatePrices[i%len(cfg.CandidatePrices)]
		if err := svc.UpdateBidFloor(ctx, outcomeFor("applovin", "US", "banner", price, true)); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	deletesBefore := snap.deleteCalls()
	if err := svc.ResetExperiment(ctx, "applovin", "US", "banner"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if svc.store.size() != 0 {
		t.Fatalf("reset must drop the experiment, store holds %d", svc.store.size())
	}
	if snap.deleteCalls() != deletesBefore+1 {
		t.Fatal("reset must delete the durable row synchronously")
	}

	// the next decision rebuilds the experiment at prior counts
	if _, err := svc.GetOptimalBidFloor(ctx, "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("post-reset decision failed: %v", err)
	}
	successes, failures := experimentCounts(t, svc, "applovin", "US", "banner")
	arms := uint64(len(cfg.CandidatePrices))
	if successes != arms*cfg.PriorSuccesses || failures != arms*cfg.PriorFailures {
		t.Fatalf("post-reset counts not at prior: successes=%d failures=%d", successes, failures)
	}
}

func TestResetUnknownExperimentSucceeds(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())

	if err := svc.ResetExperiment(context.Background(), "never", "seen", "before"); err != nil {
		t.Fatalf("reset of an unknown segment must succeed, got %v", err)
	}
}

func TestWarmStartLoadsSnapshots(t *testing.T) {
	snap := newFakeSnapshotRepo()
	cfg := DefaultConfig()

	exp := newExperiment("applovin", "US", "banner", "USD",
		cfg.CandidatePrices, cfg.PriorSuccesses, cfg.PriorFailures)
	exp.Candidates[3].Successes = 120
	exp.Candidates[3].Failures = 40
	snap.rows[exp.key()] = exp

	other := newExperiment("unity", "ID", "rewarded", "IDR",
		cfg.CandidatePrices, cfg.PriorSuccesses, cfg.PriorFailures)
	snap.rows[other.key()] = other

	svc := newTestService(t, snap, newFakeEventRepo())
	if got := svc.WarmStart(context.Background()); got != 2 {
		t.Fatalf("expected 2 loaded experiments, got %d", got)
	}

	detail, err := svc.ExperimentDetail(context.Background(), "applovin", "US", "banner")
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	if detail.TotalTrials != exp.totalTrials() {
		t.Fatalf("loaded trials %d, want %d", detail.TotalTrials, exp.totalTrials())
	}
}

func TestWarmStartFailsOpen(t *testing.T) {
	snap := newFakeSnapshotRepo()
	snap.loadErr = errors.New("db down")

	svc := newTestService(t, snap, newFakeEventRepo())
	if got := svc.WarmStart(context.Background()); got != 0 {
		t.Fatalf("failed load must start empty, got %d", got)
	}
	if _, err := svc.GetOptimalBidFloor(context.Background(), "applovin", "US", "banner", "USD"); err != nil {
		t.Fatalf("service must keep serving after a failed load, got %v", err)
	}
}

// ---- stats ----

func TestStatsPicksHighestEmpiricalRate(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	cfg := DefaultConfig()

	exp := newExperiment("applovin", "US", "banner", "USD",
		cfg.CandidatePrices, cfg.PriorSuccesses, cfg.PriorFailures)
	exp.Candidates[3].Successes = 80 // price 1.00, rate 0.8
	exp.Candidates[3].Failures = 20
	exp.Candidates[4].Successes = 10 // price 2.00, rate 0.1
	exp.Candidates[4].Failures = 90
	svc.store.put(exp)

	stats, err := svc.ExperimentStats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected one row, got %d", len(stats))
	}

	row := stats[0]
	if row.BestFloor != 1.00 {
		t.Fatalf("best floor must follow the empirical rate, got %v", row.BestFloor)
	}
	if row.SuccessRate < 0 || row.SuccessRate > 1 {
		t.Fatalf("success rate out of range: %v", row.SuccessRate)
	}
	if row.Confidence < 0 || row.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", row.Confidence)
	}
	if row.TotalTrials != exp.totalTrials() {
		t.Fatalf("trials %d, want %d", row.TotalTrials, exp.totalTrials())
	}
}

func TestExperimentDetailUnknownSegment(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())

	_, err := svc.ExperimentDetail(context.Background(), "never", "seen", "before")
	if !errors.Is(err, ErrExperimentNotFound) {
		t.Fatalf("expected ErrExperimentNotFound, got %v", err)
	}
}

func TestExperimentDetailCredibleBounds(t *testing.T) {
	svc := newTestService(t, newFakeSnapshotRepo(), newFakeEventRepo())
	cfg := DefaultConfig()

	exp := newExperiment("applovin", "US", "banner", "USD",
		cfg.CandidatePrices, cfg.PriorSuccesses, cfg.PriorFailures)
	exp.Candidates[2].Successes = 61
	exp.Candidates[2].Failures = 41
	svc.store.put(exp)

	detail, err := svc.ExperimentDetail(context.Background(), "applovin", "US", "banner")
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	for _, c := range detail.Candidates {
		if c.CredibleLow < 0 || c.CredibleHigh > 1 || c.CredibleLow > c.CredibleHigh {
			t.Fatalf("credible interval broken for price %v: [%v, %v]", c.Price, c.CredibleLow, c.CredibleHigh)
		}
		if c.PosteriorMean < c.CredibleLow || c.PosteriorMean > c.CredibleHigh {
			t.Fatalf("posterior mean %v outside [%v, %v] for price %v",
				c.PosteriorMean, c.CredibleLow, c.CredibleHigh, c.Price)
		}
	}
}
