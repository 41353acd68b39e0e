package search

import "sort"

// Outcome is the result of one per-index search attempt: a hit list on
// success, a tagged reason on failure. Failed indexes stay visible in the
// aggregated result so the caller can see what was skipped and why.
// Hits serializes unconditionally: a success with zero hits must come out
// as "hits": [], distinguishable from a failure (hits null, failed true).
type Outcome struct {
	IndexUID           string           `json:"indexUid"`
	Hits               []map[string]any `json:"hits"`
	EstimatedTotalHits int              `json:"estimatedTotalHits"`
	Failed             bool             `json:"failed,omitempty"`
	ErrorKind          string           `json:"errorKind,omitempty"`
	Error              string           `json:"error,omitempty"`
}

// Aggregated is the merged response for one dispatch. Results are ordered
// by index uid ascending: the engine defines no cross-index score scale,
// so hits keep their native per-index ranking and no global re-ranking is
// attempted.
type Aggregated struct {
	Results           []Outcome `json:"results"`
	QueriedIndexCount int       `json:"queriedIndexCount"`
	FailedIndexCount  int       `json:"failedIndexCount"`
}

// aggregate orders outcomes deterministically and computes the counts.
func aggregate(outcomes []Outcome) *Aggregated {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].IndexUID < outcomes[j].IndexUID
	})

	failed := 0
	for _, o := range outcomes {
		if o.Failed {
			failed++
		}
	}

	return &Aggregated{
		Results:           outcomes,
		QueriedIndexCount: len(outcomes),
		FailedIndexCount:  failed,
	}
}
