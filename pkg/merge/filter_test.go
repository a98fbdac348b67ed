package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterChangedFields_DropsUnchangedScalar(t *testing.T) {
	data := map[string]any{"vendor": "Acme", "sku": "123"}
	input := map[string]any{"vendor": "Acme"}
	filtered := FilterChangedFields(data, input)
	assert.NotContains(t, filtered, "vendor")
	assert.Equal(t, "123", filtered["sku"])
}

func TestFilterChangedFields_KeepsChangedScalar(t *testing.T) {
	data := map[string]any{"vendor": "Acme Corp"}
	input := map[string]any{"vendor": "Acme"}
	filtered := FilterChangedFields(data, input)
	assert.Equal(t, "Acme Corp", filtered["vendor"])
}

func TestFilterChangedFields_KeepsNewFieldNotInInput(t *testing.T) {
	data := map[string]any{"new_field": "value"}
	filtered := FilterChangedFields(data, map[string]any{})
	assert.Equal(t, "value", filtered["new_field"])
}

func TestFilterChangedFields_CompositeValuesAlwaysTreatedAsChanged(t *testing.T) {
	data := map[string]any{"tags": []any{"a", "b"}}
	input := map[string]any{"tags": []any{"a", "b"}}
	filtered := FilterChangedFields(data, input)
	assert.Contains(t, filtered, "tags")
}
