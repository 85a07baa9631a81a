package fields

import (
	"strings"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

// selectorAttrs are tried, in order, before the open-ended aria-* and data-* families.
var selectorAttrs = []string{
	"autocomplete",
	"name",
	"placeholder",
	"role",
	"type",
}

// UniqueSelector builds a selector that resolves to exactly el within doc. It tries
// the element id, then single-attribute selectors, and falls back to a positional
// path from the document root.
func (id *Identifier) UniqueSelector(doc *dom.Document, el *dom.Element) string {
	if elID := el.GetAttr("id"); elID != "" && !id.dynamicIDHost(doc.Host()) {
		sel := idSelector(elID)
		if resolvesTo(doc, sel, el) {
			return sel
		}
	}

	for _, attr := range candidateSelectorAttrs(el) {
		val := el.GetAttr(attr)
		if val == "" {
			continue
		}
		sel := "[" + attr + "=" + dom.CSSString(val) + "]"
		if resolvesTo(doc, sel, el) {
			return sel
		}
	}
	return dom.PositionalPath(el.Node())
}

func idSelector(elID string) string {
	if ident, ok := dom.CSSIdent(elID); ok {
		return "#" + ident
	}
	return "[id=" + dom.CSSString(elID) + "]"
}

// candidateSelectorAttrs lists the fixed attributes followed by the element's own
// aria-* and data-* attributes in source order.
func candidateSelectorAttrs(el *dom.Element) []string {
	attrs := append([]string(nil), selectorAttrs...)
	for _, a := range el.Attributes() {
		if a.Namespace != "" {
			continue
		}
		if strings.HasPrefix(a.Key, "aria-") || strings.HasPrefix(a.Key, "data-") {
			attrs = append(attrs, a.Key)
		}
	}
	return attrs
}

func resolvesTo(doc *dom.Document, sel string, el *dom.Element) bool {
	els, err := doc.QueryAll(sel)
	if err != nil {
		return false
	}
	return len(els) == 1 && els[0].Is(el)
}

func (id *Identifier) dynamicIDHost(host string) bool {
	for _, h := range id.opts.DynamicIDHosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
