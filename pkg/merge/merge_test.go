package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func conf(f float64) *float64 { return &f }

func TestMerge_NoConflictAssignsEachField(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}},
		{ProjectID: "p2", Data: map[string]any{"sku": "123"}},
	}
	m := Merge(results)
	assert.Equal(t, "Acme", m.Data["vendor"])
	assert.Equal(t, "123", m.Data["sku"])
	assert.Equal(t, 0, m.ConflictsResolved)
}

func TestMerge_HigherConfidenceWins(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}, Confidence: conf(0.5)},
		{ProjectID: "p2", Data: map[string]any{"vendor": "Acme Corp"}, Confidence: conf(0.9)},
	}
	m := Merge(results)
	assert.Equal(t, "Acme Corp", m.Data["vendor"])
	assert.Equal(t, 1, m.ConflictsResolved)
}

func TestMerge_LowerConfidenceDoesNotOverwrite(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}, Confidence: conf(0.9)},
		{ProjectID: "p2", Data: map[string]any{"vendor": "Other"}, Confidence: conf(0.3)},
	}
	m := Merge(results)
	assert.Equal(t, "Acme", m.Data["vendor"])
	assert.Equal(t, 0, m.ConflictsResolved)
}

func TestMerge_ConfidentValueBeatsUnconfident(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}},
		{ProjectID: "p2", Data: map[string]any{"vendor": "Acme Corp"}, Confidence: conf(0.7)},
	}
	m := Merge(results)
	assert.Equal(t, "Acme Corp", m.Data["vendor"])
	assert.Equal(t, 1, m.ConflictsResolved)
}

func TestMerge_FirstCompleteWinsWhenNeitherHasConfidence(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}},
		{ProjectID: "p2", Data: map[string]any{"vendor": "Other"}},
	}
	m := Merge(results)
	assert.Equal(t, "Acme", m.Data["vendor"])
	assert.Equal(t, 0, m.ConflictsResolved)
}

func TestMerge_ConflictsResolvedOnlyIncrementsOnWinnerProjectChange(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}, Confidence: conf(0.5)},
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme Inc"}, Confidence: conf(0.9)},
	}
	m := Merge(results)
	assert.Equal(t, "Acme Inc", m.Data["vendor"])
	assert.Equal(t, 0, m.ConflictsResolved, "same project re-winning must not count as a conflict")
}

func TestMerge_EnrichmentDetailsRecordContributedFields(t *testing.T) {
	results := []Result{
		{ProjectID: "p1", Data: map[string]any{"vendor": "Acme"}},
		{ProjectID: "p2", Data: map[string]any{"sku": "123"}},
	}
	m := Merge(results)
	assert.Len(t, m.EnrichmentDetails, 2)
	assert.Equal(t, "p1", m.EnrichmentDetails[0].ProjectID)
	assert.Equal(t, []string{"vendor"}, m.EnrichmentDetails[0].Fields)
}

func TestMerge_EmptyInputProducesEmptyResult(t *testing.T) {
	m := Merge(nil)
	assert.Empty(t, m.Data)
	assert.Equal(t, 0, m.ConflictsResolved)
	assert.Empty(t, m.EnrichmentDetails)
}
