// Package merge implements the Enrichment Merger (spec §4.6): a
// deterministic, confidence-aware combination of each Look-Up's changed
// fields into a single enrichment payload.
package merge

// Result is one successful Look-Up Executor result, as the Orchestrator
// hands it to Merge after priority-sorting and applying the changed-fields
// filter.
type Result struct {
	ProjectID       string
	ProjectName     string
	Data            map[string]any
	Confidence      *float64
	ExecutionTimeMS int64
	Cached          bool
}

// FieldSource records which Look-Up contributed a field's current value.
type FieldSource struct {
	ProjectID  string
	Confidence *float64
}

// EnrichmentDetail records which fields a single Look-Up contributed,
// before later conflict resolution may have overwritten some of them.
type EnrichmentDetail struct {
	ProjectID string
	Fields    []string
}

// Merged is the Merge algorithm's output, per spec §4.6.
type Merged struct {
	Data              map[string]any
	ConflictsResolved int
	EnrichmentDetails []EnrichmentDetail
}

// Merge walks results in order (the orchestrator has already sorted them by
// priority) and applies the confidence-then-first-complete-wins conflict
// resolution rule. conflicts_resolved increments only when an overwrite
// changes which project_id currently wins a field — not on every overwrite.
func Merge(results []Result) Merged {
	data := make(map[string]any)
	sources := make(map[string]FieldSource)
	details := make([]EnrichmentDetail, 0, len(results))
	conflicts := 0

	for _, r := range results {
		detail := EnrichmentDetail{ProjectID: r.ProjectID}
		for k, v := range r.Data {
			existing, assigned := sources[k]
			if !assigned {
				data[k] = v
				sources[k] = FieldSource{ProjectID: r.ProjectID, Confidence: r.Confidence}
				detail.Fields = append(detail.Fields, k)
				continue
			}

			if winnerChanges(existing.Confidence, r.Confidence) {
				if existing.ProjectID != r.ProjectID {
					conflicts++
				}
				data[k] = v
				sources[k] = FieldSource{ProjectID: r.ProjectID, Confidence: r.Confidence}
				detail.Fields = append(detail.Fields, k)
			}
		}
		details = append(details, detail)
	}

	return Merged{Data: data, ConflictsResolved: conflicts, EnrichmentDetails: details}
}

// winnerChanges implements spec §4.6's conflict-resolution order:
// (a) both have confidence and the new one is strictly greater → new wins;
// (b) only one has confidence → that one wins;
// (c) otherwise, first-complete wins (the existing value stays).
func winnerChanges(existing, incoming *float64) bool {
	switch {
	case existing != nil && incoming != nil:
		return *incoming > *existing
	case existing == nil && incoming != nil:
		return true
	default:
		return false
	}
}
