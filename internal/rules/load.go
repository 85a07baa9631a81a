package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// ParseError reports a rule set that cannot be loaded.
type ParseError struct {
	// RuleID is empty when the problem concerns the document as a whole.
	RuleID string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Reason
	if e.RuleID != "" {
		msg = fmt.Sprintf("rule %q: %s", e.RuleID, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ruleDoc is the serialized shape shared by the JSON and YAML formats.
type ruleDoc struct {
	Pattern       string  `yaml:"pattern"`
	Value         *string `yaml:"value"`
	ValueTemplate string  `yaml:"valueTemplate"`
	Mode          string  `yaml:"mode"`
	FillMode      string  `yaml:"fillMode"`
	Overwrite     bool    `yaml:"overwrite"`
	Enabled       *bool   `yaml:"enabled"`
	Site          string  `yaml:"site"`
	Category      string  `yaml:"category"`
}

func (d ruleDoc) toRule(id string) (Rule, error) {
	if strings.TrimSpace(d.Pattern) == "" {
		return Rule{}, &ParseError{RuleID: id, Reason: "missing pattern"}
	}
	modeName := d.Mode
	if modeName == "" {
		modeName = d.FillMode
	}
	mode, err := ParseFillMode(modeName)
	if err != nil {
		return Rule{}, &ParseError{RuleID: id, Reason: "invalid mode", Err: err}
	}
	r := Rule{
		ID:        id,
		Pattern:   d.Pattern,
		Value:     d.ValueTemplate,
		Mode:      mode,
		Overwrite: d.Overwrite,
		Enabled:   true,
		Scope:     Scope{Site: d.Site, Category: d.Category},
	}
	if d.Value != nil {
		r.Value = *d.Value
	}
	if d.Enabled != nil {
		r.Enabled = *d.Enabled
	}
	return r, nil
}

// ParseJSON reads a JSON object mapping rule ids to rule objects. Rules are returned
// in the order they appear in the document.
func ParseJSON(data []byte) ([]Rule, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Reason: "invalid JSON"}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Reason: "rule set must be an object keyed by rule id"}
	}

	var (
		out      []Rule
		firstErr error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		if !value.IsObject() {
			firstErr = &ParseError{RuleID: id, Reason: "rule must be an object"}
			return false
		}
		doc := ruleDoc{
			Pattern:       value.Get("pattern").String(),
			ValueTemplate: value.Get("valueTemplate").String(),
			Mode:          value.Get("mode").String(),
			FillMode:      value.Get("fillMode").String(),
			Overwrite:     value.Get("overwrite").Bool(),
			Site:          value.Get("site").String(),
			Category:      value.Get("category").String(),
		}
		if v := value.Get("value"); v.Exists() {
			s := v.String()
			doc.Value = &s
		}
		if v := value.Get("enabled"); v.Exists() {
			b := v.Bool()
			doc.Enabled = &b
		}
		r, err := doc.toRule(id)
		if err != nil {
			firstErr = err
			return false
		}
		out = append(out, r)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ParseYAML reads the YAML equivalent of ParseJSON, preserving mapping order.
func ParseYAML(data []byte) ([]Rule, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Reason: "invalid YAML", Err: err}
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	m := root.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, &ParseError{Reason: "rule set must be a mapping keyed by rule id"}
	}

	out := make([]Rule, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		id := m.Content[i].Value
		var doc ruleDoc
		if err := m.Content[i+1].Decode(&doc); err != nil {
			return nil, &ParseError{RuleID: id, Reason: "malformed rule", Err: err}
		}
		r, err := doc.toRule(id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadFile reads a rule set, choosing the format by file extension.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule set: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json", "":
		return ParseJSON(data)
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported rule set extension %q", filepath.Ext(path))}
	}
}
