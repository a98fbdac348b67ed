package merge

// FilterChangedFields drops every (k, v) in data where k is present in
// inputData and v equals inputData[k] — the orchestrator-imposed rule from
// spec §4.6 that a Look-Up must not "overwrite" a field it did not modify.
// A Look-Up's confirming answer becomes invisible in the diff as a result;
// see DESIGN.md's Open Questions for why that is kept as-is.
func FilterChangedFields(data, inputData map[string]any) map[string]any {
	filtered := make(map[string]any, len(data))
	for k, v := range data {
		if existing, ok := inputData[k]; ok && equalValue(existing, v) {
			continue
		}
		filtered[k] = v
	}
	return filtered
}

// equalValue compares two decoded-JSON values for equality using Go's
// native == where possible; slices/maps fall back to false (an enrichment
// can't confirm a composite field unchanged without a deep-equal, and
// treating it as changed is the safe default).
func equalValue(a, b any) bool {
	switch a := a.(type) {
	case string, float64, bool, int, int64, nil:
		return a == b
	default:
		return false
	}
}
