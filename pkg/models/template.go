package models

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// variablePattern matches {{path.to.field}} placeholders; grounded on
// LookupPromptTemplate.VARIABLE_PATTERN in the original source.
var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// nestedBraceOpen catches a second "{{" opening before the matching "}}" closes.
var nestedBraceOpen = regexp.MustCompile(`\{\{[^}]*\{\{`)

// reservedPrefixes mirrors RESERVED_PREFIXES in the original source.
var reservedPrefixes = []string{"_", "_lookup_"}

// Template is a project's prompt template plus its LLM configuration.
type Template struct {
	ID           string    `db:"id" json:"id"`
	ProjectID    string    `db:"project_id" json:"project_id"`
	TemplateText string    `db:"template_text" json:"template_text"`
	LLMConfig    LLMConfig `db:"llm_config" json:"llm_config"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DetectVariables returns the deduplicated, sorted set of placeholder paths
// found in the template text.
func (t *Template) DetectVariables() []string {
	return DetectVariables(t.TemplateText)
}

// DetectVariables extracts the deduplicated, sorted set of {{path}} tokens
// from an arbitrary template string.
func DetectVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		path := strings.TrimSpace(m[1])
		if path == "" {
			continue
		}
		seen[path] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ValidateSyntax checks for balanced "{{"/"}}" counts and rejects a second
// "{{" opening before the first one closes.
func ValidateSyntax(text string) error {
	opens := strings.Count(text, "{{")
	closes := strings.Count(text, "}}")
	if opens != closes {
		return &SyntaxError{Reason: "unbalanced {{ }} braces"}
	}
	if nestedBraceOpen.MatchString(text) {
		return &SyntaxError{Reason: "nested {{ inside a placeholder"}
	}
	return nil
}

// ValidateReservedKeywords rejects any detected path that starts with a
// reserved prefix, contains "=", or ends in "_metadata".
func ValidateReservedKeywords(text string) error {
	for _, path := range DetectVariables(text) {
		for _, prefix := range reservedPrefixes {
			if strings.HasPrefix(path, prefix) {
				return &SyntaxError{Reason: "variable path '" + path + "' uses reserved prefix '" + prefix + "'"}
			}
		}
		if strings.Contains(path, "=") {
			return &SyntaxError{Reason: "variable path '" + path + "' contains '='"}
		}
		if strings.HasSuffix(path, "_metadata") {
			return &SyntaxError{Reason: "variable path '" + path + "' ends in '_metadata'"}
		}
	}
	return nil
}

// SyntaxError is a single typed error kind covering both template validation
// operations, per spec §4.1.
type SyntaxError struct {
	Reason string
}

func (e *SyntaxError) Error() string {
	return "invalid template: " + e.Reason
}

// LLMConfig is the recognized shape of Template.LLMConfig per spec §9.
type LLMConfig struct {
	Provider    string         `json:"provider,omitempty"`
	Model       string         `json:"model,omitempty"`
	AdapterID   string         `json:"adapter_id,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   *uint32        `json:"max_tokens,omitempty"`
	Passthrough map[string]any `json:"-"`
}

// Validate requires either AdapterID or both Provider and Model.
func (c LLMConfig) Validate() error {
	if c.AdapterID != "" {
		return nil
	}
	if c.Provider != "" && c.Model != "" {
		return nil
	}
	return &SyntaxError{Reason: "llm_config requires adapter_id or both provider and model"}
}
