package rules

import (
	"github.com/xkilldash9x/autofill/internal/fields"
	"github.com/xkilldash9x/autofill/internal/pattern"
)

// Matcher pairs a rule with its compiled pattern so the pattern is compiled once per
// rule rather than once per field.
type Matcher struct {
	rule    Rule
	pattern pattern.Matcher
}

// NewMatcher compiles the rule's pattern.
func NewMatcher(rule Rule, opts ...pattern.Option) *Matcher {
	return &Matcher{rule: rule, pattern: pattern.Compile(rule.Pattern, opts...)}
}

// Rule returns the matched rule.
func (m *Matcher) Rule() Rule { return m.rule }

// Matches reports whether any of the field's candidate strings satisfies the pattern.
func (m *Matcher) Matches(f fields.Field) bool {
	for _, s := range candidateStrings(f) {
		if m.pattern.Test(s) {
			return true
		}
	}
	return false
}

// Match returns the fields the rule applies to, in input order.
func (m *Matcher) Match(fs []fields.Field) []fields.Field {
	var out []fields.Field
	for _, f := range fs {
		if m.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// Match is a convenience for a single use of NewMatcher(rule).Match(fs).
func Match(rule Rule, fs []fields.Field, opts ...pattern.Option) []fields.Field {
	return NewMatcher(rule, opts...).Match(fs)
}

func candidateStrings(f fields.Field) []string {
	all := [...]string{
		f.Identifier,
		f.Label,
		f.Attr("name"),
		f.Attr("id"),
		f.Attr("placeholder"),
	}
	out := make([]string, 0, len(all))
	for _, s := range all {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
