package schemas

import (
	"time"
)

// -- Identification Schemas --

// FieldReport is the serialisable view of one identified field.
type FieldReport struct {
	Identifier string            `json:"identifier"`
	Type       string            `json:"type"`
	Value      string            `json:"value"`
	Label      string            `json:"label,omitempty"`
	Selector   string            `json:"selector"`
	Custom     bool              `json:"custom,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// IdentifyReport is emitted by a standalone identification pass.
type IdentifyReport struct {
	URL      string        `json:"url"`
	Platform string        `json:"platform"`
	Fields   []FieldReport `json:"fields"`
}

// -- Fill Schemas --

// FillError records one failed fill of one field by one rule.
type FillError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// FillResult summarises an autofill pass.
type FillResult struct {
	RunID       string      `json:"runId,omitempty"`
	URL         string      `json:"url,omitempty"`
	StartedAt   time.Time   `json:"startedAt"`
	Duration    string      `json:"duration,omitempty"`
	FilledCount int         `json:"filledCount"`
	Errors      []FillError `json:"errors"`
	// Skipped lists rules excluded by scope before matching, keyed by rule id.
	Skipped map[string]string `json:"skipped,omitempty"`
}

// AddError appends a per-field error record.
func (r *FillResult) AddError(field, rule string, err error) {
	r.Errors = append(r.Errors, FillError{Field: field, Rule: rule, Message: err.Error()})
}

// Skip records why a rule was excluded.
func (r *FillResult) Skip(rule, reason string) {
	if r.Skipped == nil {
		r.Skipped = make(map[string]string)
	}
	r.Skipped[rule] = reason
}
