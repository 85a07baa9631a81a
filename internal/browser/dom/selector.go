// internal/browser/dom/selector.go
package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// SelectorError reports a selector that could not be compiled or evaluated.
type SelectorError struct {
	Selector string
	Reason   string
	Err      error
}

func (e *SelectorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid selector '%s': %s: %v", e.Selector, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid selector '%s': %s", e.Selector, e.Reason)
}

func (e *SelectorError) Unwrap() error { return e.Err }

// QueryAll evaluates selector against the whole document. XPath expressions (starting
// with "/", "./" or "(") go to htmlquery; anything else is compiled as a CSS selector
// group with cascadia.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	return d.queryFrom(d.root, selector)
}

// Count returns the number of elements matching selector.
func (d *Document) Count(selector string) (int, error) {
	els, err := d.QueryAll(selector)
	return len(els), err
}

// queryFrom returns the matches below top in document order. CSS matches are
// descendants of top; combinators may still reach ancestors outside it, as with
// querySelectorAll.
func (d *Document) queryFrom(top *html.Node, selector string) ([]*Element, error) {
	sel := strings.TrimSpace(selector)
	if sel == "" {
		return nil, &SelectorError{Selector: selector, Reason: "empty selector"}
	}

	var nodes []*html.Node
	if isXPath(sel) {
		found, err := htmlquery.QueryAll(top, sel)
		if err != nil {
			return nil, &SelectorError{Selector: selector, Reason: "xpath evaluation failed", Err: err}
		}
		nodes = found
	} else {
		m, err := cascadia.Compile(sel)
		if err != nil {
			return nil, &SelectorError{Selector: selector, Reason: "css parse failed", Err: err}
		}
		nodes = cascadia.QueryAll(top, m)
	}

	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if el := d.Wrap(n); el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

func isXPath(sel string) bool {
	return strings.HasPrefix(sel, "/") || strings.HasPrefix(sel, "./") || strings.HasPrefix(sel, "(")
}

// XPathLiteral quotes s as an XPath 1.0 string literal, using concat() when s holds
// both quote characters.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	var sb strings.Builder
	sb.WriteString("concat(")
	for i, part := range parts {
		if i > 0 {
			sb.WriteString(`, "'", `)
		}
		sb.WriteString("'" + part + "'")
	}
	sb.WriteString(")")
	return sb.String()
}

// CSSString quotes s as a double-quoted CSS string.
func CSSString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// CSSIdent escapes s for use as a CSS identifier (for #id selectors). The second result
// is false when s cannot be written as a plain identifier.
func CSSIdent(s string) (string, bool) {
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		return "", false
	}
	if s[0] == '-' && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		return "", false
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '-' || c == '_' || c >= 0x80,
			c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			return "", false
		default:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		}
	}
	return sb.String(), true
}
