package fields

import (
	"strings"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

// identifierAttrs are consulted in order when no label-like text exists.
var identifierAttrs = []string{
	"name",
	"id",
	"placeholder",
	"title",
	"aria-label",
	"data-bind",
	"ng-model",
	"aria-describedby",
}

// identifierFor picks the first non-empty identifier strategy, falling back to a
// selector that resolves back to el.
func (id *Identifier) identifierFor(doc *dom.Document, el *dom.Element, platform Platform) string {
	if s := labelledByText(doc, el); s != "" {
		return s
	}
	if s := forLabelText(doc, el); s != "" {
		return s
	}
	if s := platform.Label(el); s != "" {
		return s
	}
	for _, attr := range identifierAttrs {
		if s := strings.TrimSpace(el.GetAttr(attr)); s != "" {
			return s
		}
	}
	if Classify(el) == CheckboxOrRadio {
		if s := strings.TrimSpace(el.GetAttr("value")); s != "" {
			return s
		}
	}
	return id.UniqueSelector(doc, el)
}

// Label extracts the human-facing label of el: an explicit for-association, the
// aria-label, the aria-labelledby text, the nearest enclosing label and finally the
// placeholder.
func Label(doc *dom.Document, el *dom.Element) string {
	if s := forLabelText(doc, el); s != "" {
		return s
	}
	if s := strings.TrimSpace(el.GetAttr("aria-label")); s != "" {
		return s
	}
	if s := labelledByText(doc, el); s != "" {
		return s
	}
	if lbl := el.Closest(func(e *dom.Element) bool { return e.Tag() == "label" }); lbl != nil && !lbl.Is(el) {
		if s := dom.TextExcluding(lbl.Node(), el.Node()); s != "" {
			return s
		}
	}
	return strings.TrimSpace(el.GetAttr("placeholder"))
}

// labelledByText concatenates the text of every element referenced by aria-labelledby.
func labelledByText(doc *dom.Document, el *dom.Element) string {
	ref := el.GetAttr("aria-labelledby")
	if ref == "" {
		return ""
	}
	var parts []string
	for _, ref := range strings.Fields(ref) {
		if target := doc.ElementByID(ref); target != nil {
			if s := target.Text(); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}

// forLabelText returns the text of the first label whose for attribute names el.
func forLabelText(doc *dom.Document, el *dom.Element) string {
	elID := el.GetAttr("id")
	if elID == "" {
		return ""
	}
	labels, err := doc.QueryAll("label[for=" + dom.CSSString(elID) + "]")
	if err != nil {
		return ""
	}
	for _, lbl := range labels {
		if s := dom.TextExcluding(lbl.Node(), el.Node()); s != "" {
			return s
		}
	}
	return ""
}
