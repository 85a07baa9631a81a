// internal/browser/dom/element.go
package dom

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Element is a handle to one element of a Document. It does not own the node;
// it is a back-reference used to read and mutate it in place.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying node.
func (e *Element) Node() *html.Node { return e.node }

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Is reports whether e and other refer to the same node.
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Tag returns the lowercased tag name.
func (e *Element) Tag() string { return strings.ToLower(e.node.Data) }

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(key string) (string, bool) { return lookupAttr(e.node, key) }

// GetAttr returns the attribute value or "".
func (e *Element) GetAttr(key string) string { return getAttr(e.node, key) }

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := lookupAttr(e.node, key)
	return ok
}

// Attributes returns a copy of the element's attributes in source order.
func (e *Element) Attributes() []html.Attribute {
	out := make([]html.Attribute, len(e.node.Attr))
	copy(out, e.node.Attr)
	return out
}

// SetAttr writes an attribute and journals the change.
func (e *Element) SetAttr(key, val string) {
	setAttr(e.node, key, val)
	e.doc.record(e.node, MutationSetAttr, key, val)
}

// RemoveAttr deletes an attribute and journals the change if it was present.
func (e *Element) RemoveAttr(key string) {
	if removeAttr(e.node, key) {
		e.doc.record(e.node, MutationRemoveAttr, key, "")
	}
}

// Parent returns the parent element, or nil at the top of the tree.
func (e *Element) Parent() *Element {
	return e.doc.Wrap(e.node.Parent)
}

// Closest returns the nearest ancestor (excluding e) that satisfies match.
func (e *Element) Closest(match func(*Element) bool) *Element {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if match(p) {
			return p
		}
	}
	return nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	if other == nil {
		return false
	}
	for n := other.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Text returns the whitespace-collapsed text content, skipping script and style.
func (e *Element) Text() string {
	return TextExcluding(e.node, nil)
}

// TextExcluding collects text beneath n, skipping the subtree rooted at skip as well as
// script, style and option content.
func TextExcluding(n, skip *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c == skip && skip != nil {
			return
		}
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			switch strings.ToLower(c.Data) {
			case "script", "style", "noscript", "template":
				return
			case "select", "option", "textarea":
				if c != n {
					return
				}
			}
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// RawText returns the concatenated text node data beneath e, unmodified.
func (e *Element) RawText() string {
	return htmlquery.InnerText(e.node)
}

// InnerHTML renders the children of e.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// InputType returns the lowercased type of an input element ("text" when absent).
func (e *Element) InputType() string {
	if e.Tag() != "input" {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(e.GetAttr("type")))
	if t == "" {
		return "text"
	}
	return t
}

// IsContentEditable reports whether the element itself declares contenteditable.
func (e *Element) IsContentEditable() bool {
	v, ok := e.Attr("contenteditable")
	if !ok {
		return false
	}
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "true" || v == "plaintext-only"
}

// IsFrame reports whether the element is an iframe or frame.
func (e *Element) IsFrame() bool {
	t := e.Tag()
	return t == "iframe" || t == "frame"
}

// Frame returns the content document of a frame element.
func (e *Element) Frame() (*Document, bool) {
	fd, ok := e.doc.frames[e.node]
	return fd, ok
}

// Value returns the native value of input, textarea and select elements.
// The second result is false for elements that carry no native value.
func (e *Element) Value() (string, bool) {
	switch e.Tag() {
	case "input":
		v, ok := e.Attr("value")
		if !ok && (e.InputType() == "checkbox" || e.InputType() == "radio") {
			return "on", true
		}
		return v, true
	case "textarea":
		return e.RawText(), true
	case "select":
		opts := e.Options()
		idx := e.SelectedIndex()
		if idx < 0 || idx >= len(opts) {
			return "", true
		}
		return OptionValue(opts[idx]), true
	}
	return "", false
}

// SetValue writes v as the element's value. Inputs receive the value attribute,
// textareas and content-editable regions have their children replaced, and frames
// write into their content document's body.
func (e *Element) SetValue(v string) error {
	switch {
	case e.Tag() == "input":
		setAttr(e.node, "value", v)
		e.doc.record(e.node, MutationSetValue, "value", v)
		return nil
	case e.Tag() == "textarea":
		replaceChildrenWithText(e.node, v)
		e.doc.record(e.node, MutationSetValue, "value", v)
		return nil
	case e.Tag() == "select":
		for i, opt := range e.Options() {
			if OptionValue(opt) == v {
				return e.SelectIndex(i)
			}
		}
		return fmt.Errorf("no option with value %q", v)
	case e.IsFrame():
		fd, ok := e.Frame()
		if !ok {
			return ErrFrameInaccessible
		}
		body := fd.Body()
		if body == nil {
			return fmt.Errorf("frame document has no body: %w", ErrFrameInaccessible)
		}
		replaceChildrenWithText(body.node, v)
		fd.record(body.node, MutationSetText, "", v)
		return nil
	default:
		replaceChildrenWithText(e.node, v)
		e.doc.record(e.node, MutationSetText, "", v)
		return nil
	}
}

// Checked reports the checked attribute.
func (e *Element) Checked() bool { return e.HasAttr("checked") }

// SetChecked sets or clears the checked state. Checking a radio button clears the
// other radios of the same group (same name within the same form, or the document).
func (e *Element) SetChecked(checked bool) {
	if checked {
		setAttr(e.node, "checked", "checked")
		if e.InputType() == "radio" {
			e.uncheckRadioGroup()
		}
	} else {
		removeAttr(e.node, "checked")
	}
	e.doc.record(e.node, MutationSetChecked, "checked", strconv.FormatBool(checked))
}

func (e *Element) uncheckRadioGroup() {
	name := e.GetAttr("name")
	if name == "" {
		return
	}
	scope := e.Closest(func(p *Element) bool { return p.Tag() == "form" })
	top := e.doc.root
	if scope != nil {
		top = scope.node
	}
	walkElements(top, func(n *html.Node) bool {
		if n != e.node && strings.EqualFold(n.Data, "input") &&
			strings.EqualFold(getAttr(n, "type"), "radio") && getAttr(n, "name") == name {
			removeAttr(n, "checked")
		}
		return true
	})
}

// Options returns the option elements of a select, including those in optgroups.
func (e *Element) Options() []*Element {
	nodes, err := htmlquery.QueryAll(e.node, ".//option")
	if err != nil {
		return nil
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, e.doc.Wrap(n))
	}
	return out
}

// OptionValue returns an option's value attribute, falling back to its text.
func OptionValue(opt *Element) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.RawText())
}

// SelectedIndex returns the index of the first selected option. A single-choice select
// with no explicit selection reports the first option, as browsers do; -1 means no options.
func (e *Element) SelectedIndex() int {
	opts := e.Options()
	for i, opt := range opts {
		if opt.HasAttr("selected") {
			return i
		}
	}
	if len(opts) > 0 && !e.HasAttr("multiple") {
		return 0
	}
	return -1
}

// SelectIndex marks the option at idx as the only selected option.
func (e *Element) SelectIndex(idx int) error {
	opts := e.Options()
	if idx < 0 || idx >= len(opts) {
		return fmt.Errorf("option index %d out of range [0,%d)", idx, len(opts))
	}
	for i, opt := range opts {
		if i == idx {
			setAttr(opt.node, "selected", "selected")
		} else {
			removeAttr(opt.node, "selected")
		}
	}
	e.doc.record(e.node, MutationSelectIndex, "selectedIndex", strconv.Itoa(idx))
	return nil
}

// QueryAll evaluates selector relative to e.
func (e *Element) QueryAll(selector string) ([]*Element, error) {
	return e.doc.queryFrom(e.node, selector)
}
