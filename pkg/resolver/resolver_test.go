package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ScalarPath(t *testing.T) {
	input := map[string]any{"vendor": "Acme Corp"}
	out, err := Resolve("Vendor: {{input_data.vendor}}", input, "")
	require.NoError(t, err)
	assert.Equal(t, "Vendor: Acme Corp", out)
}

func TestResolve_ListIndexPath(t *testing.T) {
	input := map[string]any{
		"items": []any{
			map[string]any{"name": "widget"},
			map[string]any{"name": "gadget"},
		},
	}
	out, err := Resolve("Second item: {{ input_data.items.1.name }}", input, "")
	require.NoError(t, err)
	assert.Equal(t, "Second item: gadget", out)
}

func TestResolve_ReferenceDataRoot(t *testing.T) {
	out, err := Resolve("Context: {{reference_data}}", map[string]any{}, "some corpus text")
	require.NoError(t, err)
	assert.Equal(t, "Context: some corpus text", out)
}

func TestResolve_OutOfRangeIndexIsEmpty(t *testing.T) {
	input := map[string]any{"items": []any{"a"}}
	out, err := Resolve("{{input_data.items.5}}", input, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestResolve_MissingPathIsEmpty(t *testing.T) {
	out, err := Resolve("{{input_data.does.not.exist}}", map[string]any{"a": 1}, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestResolve_NullResolvesToEmpty(t *testing.T) {
	input := map[string]any{"vendor": nil}
	out, err := Resolve("{{input_data.vendor}}", input, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestResolve_NonScalarIsPrettyPrintedJSON(t *testing.T) {
	input := map[string]any{"vendor": map[string]any{"name": "Acme", "id": 1}}
	out, err := Resolve("{{input_data.vendor}}", input, "")
	require.NoError(t, err)
	assert.Contains(t, out, "\"name\": \"Acme\"")
}

func TestResolve_NotReScannedAfterSubstitution(t *testing.T) {
	input := map[string]any{"template": "{{input_data.other}}", "other": "leaf"}
	out, err := Resolve("{{input_data.template}}", input, "")
	require.NoError(t, err)
	assert.Equal(t, "{{input_data.other}}", out)
}

func TestResolve_RepeatedPlaceholderSubstitutesEachOccurrence(t *testing.T) {
	input := map[string]any{"vendor": "Acme"}
	out, err := Resolve("{{input_data.vendor}} and {{input_data.vendor}}", input, "")
	require.NoError(t, err)
	assert.Equal(t, "Acme and Acme", out)
}

func TestDetectVariables_DeduplicatesAndSorts(t *testing.T) {
	paths := DetectVariables("{{b}} {{a}} {{b}}")
	assert.Equal(t, []string{"a", "b"}, paths)
}

func TestValidateSyntax_RejectsUnbalancedBraces(t *testing.T) {
	err := ValidateSyntax("{{input_data.vendor}")
	require.Error(t, err)
}

func TestValidateReservedKeywords_RejectsUnderscorePrefix(t *testing.T) {
	err := ValidateReservedKeywords("{{_internal.field}}")
	require.Error(t, err)
}

func TestValidateReservedKeywords_RejectsMetadataSuffix(t *testing.T) {
	err := ValidateReservedKeywords("{{input_data.foo_metadata}}")
	require.Error(t, err)
}

func TestValidateReservedKeywords_AllowsOrdinaryPaths(t *testing.T) {
	err := ValidateReservedKeywords("{{input_data.vendor.name}}")
	assert.NoError(t, err)
}
