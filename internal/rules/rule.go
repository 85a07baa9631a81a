// Package rules holds the declarative rule model, rule-set loading and the matcher that
// selects the fields a rule applies to.
package rules

import (
	"fmt"
	"strings"
)

// FillMode is the text composition strategy applied when writing a value.
type FillMode int

const (
	Replace FillMode = iota
	Append
	Prepend
	Surround
	Increment
	Decrement
)

var fillModeNames = [...]string{
	Replace:   "replace",
	Append:    "append",
	Prepend:   "prepend",
	Surround:  "surround",
	Increment: "increment",
	Decrement: "decrement",
}

func (m FillMode) String() string {
	if m < 0 || int(m) >= len(fillModeNames) {
		return fmt.Sprintf("FillMode(%d)", int(m))
	}
	return fillModeNames[m]
}

// ParseFillMode resolves a mode name case-insensitively. An empty name is Replace.
func ParseFillMode(s string) (FillMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Replace, nil
	}
	for i, name := range fillModeNames {
		if name == s {
			return FillMode(i), nil
		}
	}
	return Replace, fmt.Errorf("unknown fill mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m FillMode) MarshalText() ([]byte, error) {
	if m < 0 || int(m) >= len(fillModeNames) {
		return nil, fmt.Errorf("invalid fill mode %d", int(m))
	}
	return []byte(fillModeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FillMode) UnmarshalText(b []byte) error {
	mode, err := ParseFillMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Scope restricts where a rule applies. Both filters are interpreted by the caller of
// the engine, not by the matcher.
type Scope struct {
	// Site is a glob matched against the page URL; empty matches every page.
	Site     string `json:"site,omitempty" yaml:"site,omitempty"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// Rule maps a field pattern to a value template and a fill mode.
type Rule struct {
	ID        string   `json:"id"`
	Pattern   string   `json:"pattern"`
	Value     string   `json:"value"`
	Mode      FillMode `json:"mode"`
	Overwrite bool     `json:"overwrite"`
	Enabled   bool     `json:"enabled"`
	Scope     Scope    `json:"scope"`
}

// InCategory reports whether the rule passes a category filter. An empty filter
// admits every rule.
func (r Rule) InCategory(category string) bool {
	return category == "" || strings.EqualFold(r.Scope.Category, category)
}
