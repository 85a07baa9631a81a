package fields

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

// markupPolicy strips every tag and drops the content of script and style elements.
// bluemonday policies are safe for concurrent use once built.
var markupPolicy = bluemonday.StrictPolicy()

// ReadValue returns the current value of a widget:
//   - native controls report their value;
//   - frames report the plain text of their body, "" when inaccessible;
//   - content-editable regions report their plain text;
//   - custom widgets report their selected or labelled state.
func ReadValue(el *dom.Element) string {
	if v, ok := el.Value(); ok {
		return v
	}
	if el.IsFrame() {
		fd, ok := el.Frame()
		if !ok {
			return ""
		}
		body := fd.Body()
		if body == nil {
			return ""
		}
		return StripMarkup(body.InnerHTML())
	}
	if el.IsContentEditable() {
		return StripMarkup(el.InnerHTML())
	}
	return customValue(el)
}

// StripMarkup removes every tag along with script and style bodies, and decodes
// entities.
func StripMarkup(markup string) string {
	return strings.TrimSpace(html.UnescapeString(markupPolicy.Sanitize(markup)))
}

func customValue(el *dom.Element) string {
	switch Classify(el) {
	case SelectDropdown:
		if opt := SelectedCustomOption(el); opt != nil {
			return CustomOptionValue(opt)
		}
		return ""
	case CheckboxOrRadio:
		return CustomOptionValue(el)
	}
	if v := el.GetAttr("aria-valuetext"); v != "" {
		return v
	}
	return el.Text()
}

// CustomOptions returns the role=option descendants of a custom list widget. When the
// widget references a popup via aria-owns or aria-controls, that element is searched
// as well.
func CustomOptions(el *dom.Element) []*dom.Element {
	opts, _ := el.QueryAll(`[role="option"]`)
	doc := el.Document()
	for _, attr := range []string{"aria-owns", "aria-controls"} {
		for _, ref := range strings.Fields(el.GetAttr(attr)) {
			popup := doc.ElementByID(ref)
			if popup == nil || el.Contains(popup) {
				continue
			}
			more, _ := popup.QueryAll(`[role="option"]`)
			opts = append(opts, more...)
		}
	}
	return opts
}

// SelectedCustomOption returns the option marked aria-selected="true", or nil.
func SelectedCustomOption(el *dom.Element) *dom.Element {
	for _, opt := range CustomOptions(el) {
		if strings.EqualFold(opt.GetAttr("aria-selected"), "true") {
			return opt
		}
	}
	return nil
}

// CustomOptionValue prefers an explicit data-value, then the accessible name, then the
// visible text.
func CustomOptionValue(el *dom.Element) string {
	if v := el.GetAttr("data-value"); v != "" {
		return v
	}
	if v := strings.TrimSpace(el.GetAttr("aria-label")); v != "" {
		return v
	}
	return el.Text()
}
