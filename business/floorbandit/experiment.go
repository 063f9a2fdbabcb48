package floorbandit

import (
	"fmt"
	"math"
	"time"
)

// priceTolerance absorbs floating-point drift between the floor a caller
// reports and the candidate price that produced it.
const priceTolerance = 0.01

// Candidate is one arm of the bandit: a fixed floor price with
// Beta-distribution counts. Counts start at the prior values and only
// increase (reset rebuilds the whole experiment).
type Candidate struct {
	Price     float64 `json:"price"`
	Successes uint64  `json:"successes"`
	Failures  uint64  `json:"failures"`
}

// Experiment holds the bandit state for one (adapter, geo, format) segment.
// Currency is carried along for reporting but is not part of the identity
// key and is never revalidated on lookup.
type Experiment struct {
	AdapterID   string      `json:"adapter_id"`
	Geo         string      `json:"geo"`
	AdFormat    string      `json:"ad_format"`
	Currency    string      `json:"currency"`
	Candidates  []Candidate `json:"candidates"`
	LastUpdated time.Time   `json:"last_updated"`
}

// experimentKey builds the registry key for a segment.
func experimentKey(adapterID, geo, adFormat string) string {
	return fmt.Sprintf("%s|%s|%s", adapterID, geo, adFormat)
}

func (e *Experiment) key() string {
	return experimentKey(e.AdapterID, e.Geo, e.AdFormat)
}

func newExperiment(adapterID, geo, adFormat, currency string, prices []float64, priorSuccesses, priorFailures uint64) *Experiment {
	candidates := make([]Candidate, 0, len(prices))
	for _, price := range prices {
		candidates = append(candidates, Candidate{
			Price:     price,
			Successes: priorSuccesses,
			Failures:  priorFailures,
		})
	}

	return &Experiment{
		AdapterID:   adapterID,
		Geo:         geo,
		AdFormat:    adFormat,
		Currency:    currency,
		Candidates:  candidates,
		LastUpdated: time.Now(),
	}
}

// totalTrials sums successes+failures over all candidates (stored counts,
// prior included).
func (e *Experiment) totalTrials() uint64 {
	var total uint64
	for i := range e.Candidates {
		total += e.Candidates[i].Successes + e.Candidates[i].Failures
	}

	return total
}

// findCandidate returns the index of the candidate within priceTolerance of
// the given floor, or -1 when none matches.
func (e *Experiment) findCandidate(floorPrice float64) int {
	for i := range e.Candidates {
		if math.Abs(e.Candidates[i].Price-floorPrice) < priceTolerance {
			return i
		}
	}

	return -1
}

// clone returns a detached copy safe to hand to the persistence goroutine
// while the live experiment keeps mutating.
func (e *Experiment) clone() *Experiment {
	cp := *e
	cp.Candidates = make([]Candidate, len(e.Candidates))
	copy(cp.Candidates, e.Candidates)

	return &cp
}
