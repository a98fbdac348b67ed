// Package resolver implements the Look-Up variable resolver: it walks a
// template's {{path}} placeholders against a two-root JSON context
// (input_data, reference_data) and substitutes them in a single left-to-right
// pass. Grounded on original_source/backend/lookup/resolver.py.
package resolver

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/lookupengine/lookupengine/pkg/models"
)

// placeholderPattern matches "{{" whitespace* PATH whitespace* "}}" per
// spec §4.1's placeholder grammar.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// placeholder is one {{ path }} match: its full literal text (for the
// replace pass) and the trimmed PATH (for gjson lookup).
type placeholder struct {
	literal string
	path    string
}

// Resolve substitutes every {{path}} placeholder in text against a context
// built from inputData (arbitrary nested structure) and referenceData
// (string), per spec §4.1's resolution rules. It does not validate text;
// call ValidateSyntax and ValidateReservedKeywords first.
func Resolve(text string, inputData any, referenceData string) (string, error) {
	context, err := buildContext(inputData, referenceData)
	if err != nil {
		return "", err
	}

	placeholders := findPlaceholders(text)
	out := text
	pos := 0
	for _, ph := range placeholders {
		i := pos + strings.Index(out[pos:], ph.literal)
		value := resolveOne(context, ph.path)
		out = out[:i] + value + out[i+len(ph.literal):]
		pos = i + len(value)
	}
	return out, nil
}

// buildContext assembles the two fixed roots into a single JSON document that
// gjson can walk with its native dot-and-index path syntax.
func buildContext(inputData any, referenceData string) (string, error) {
	doc := map[string]any{
		"input_data":     inputData,
		"reference_data": referenceData,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// findPlaceholders returns one entry per placeholder occurrence (not
// deduplicated — replacement is literal, occurrence-by-occurrence).
func findPlaceholders(text string) []placeholder {
	matches := placeholderPattern.FindAllStringSubmatch(text, -1)
	out := make([]placeholder, 0, len(matches))
	for _, m := range matches {
		path := strings.TrimSpace(m[1])
		if path == "" {
			continue
		}
		out = append(out, placeholder{literal: m[0], path: path})
	}
	return out
}

// resolveOne walks a single PATH against the context document. Out-of-range
// or wrong-type segments, and missing paths, resolve to the empty string; a
// resolved non-scalar is pretty-printed JSON, null resolves to empty, and
// scalars are stringified.
func resolveOne(context, path string) string {
	result := gjson.Get(context, path)
	if !result.Exists() || result.Type == gjson.Null {
		return ""
	}
	switch result.Type {
	case gjson.JSON:
		return string(pretty.Pretty([]byte(result.Raw)))
	default:
		return result.String()
	}
}

// ValidateSyntax re-exports the template model's balanced-brace check so
// callers only need to import this package.
func ValidateSyntax(text string) error {
	return models.ValidateSyntax(text)
}

// ValidateReservedKeywords re-exports the template model's reserved-keyword
// check so callers only need to import this package.
func ValidateReservedKeywords(text string) error {
	return models.ValidateReservedKeywords(text)
}

// DetectVariables re-exports the template model's placeholder-path detector.
func DetectVariables(text string) []string {
	return models.DetectVariables(text)
}
