// Package fields discovers fillable widgets in a document and describes each one with a
// stable, human-readable identifier.
package fields

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

// Type is the closed set of widget classes the fill pipeline distinguishes.
type Type int

const (
	TextLike Type = iota
	Password
	SelectDropdown
	CheckboxOrRadio
)

func (t Type) String() string {
	switch t {
	case Password:
		return "password"
	case SelectDropdown:
		return "select"
	case CheckboxOrRadio:
		return "checkbox"
	default:
		return "text"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "text":
		*t = TextLike
	case "password":
		*t = Password
	case "select":
		*t = SelectDropdown
	case "checkbox":
		*t = CheckboxOrRadio
	default:
		return fmt.Errorf("unknown field type %q", string(b))
	}
	return nil
}

// Field describes one fillable widget at identification time.
type Field struct {
	// Element is a back-reference into the live document, used for later mutation.
	Element    *dom.Element
	Identifier string
	Type       Type
	// Value is a snapshot taken during identification; it is not kept up to date.
	Value      string
	Label      string
	Attributes map[string]string
	// Custom marks third-party platform widgets built from ARIA roles rather than
	// native form controls.
	Custom bool
}

// Attr returns a snapshotted attribute value or "".
func (f Field) Attr(name string) string { return f.Attributes[name] }

var snapshotAttrs = map[string]bool{
	"name":         true,
	"id":           true,
	"type":         true,
	"placeholder":  true,
	"title":        true,
	"class":        true,
	"data-bind":    true,
	"ng-model":     true,
	"autocomplete": true,
	"role":         true,
}

// snapshotAttributes copies the allow-listed attributes of el.
func snapshotAttributes(el *dom.Element) map[string]string {
	out := make(map[string]string)
	for _, attr := range el.Attributes() {
		if attr.Namespace != "" {
			continue
		}
		if snapshotAttrs[attr.Key] || strings.HasPrefix(attr.Key, "aria-") {
			out[attr.Key] = attr.Val
		}
	}
	return out
}

// Classify maps a widget onto its Type. Native controls are classified by tag and input
// type; anything else is TextLike unless it is a custom widget exposing a list or
// checked-state ARIA contract.
func Classify(el *dom.Element) Type {
	switch el.Tag() {
	case "input":
		switch el.InputType() {
		case "password":
			return Password
		case "checkbox", "radio":
			return CheckboxOrRadio
		}
		return TextLike
	case "select":
		return SelectDropdown
	case "textarea":
		return TextLike
	}
	if el.IsContentEditable() || el.IsFrame() {
		return TextLike
	}
	switch strings.ToLower(strings.TrimSpace(el.GetAttr("role"))) {
	case "listbox", "combobox":
		return SelectDropdown
	case "checkbox", "radio", "switch", "menuitemcheckbox", "menuitemradio":
		return CheckboxOrRadio
	}
	if el.HasAttr("aria-checked") {
		return CheckboxOrRadio
	}
	return TextLike
}

// IsCustomWidget reports whether el is neither a native form control, a
// content-editable region nor a frame.
func IsCustomWidget(el *dom.Element) bool {
	switch el.Tag() {
	case "input", "select", "textarea":
		return false
	}
	return !el.IsContentEditable() && !el.IsFrame()
}
