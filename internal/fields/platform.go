package fields

import (
	"strings"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

// Platform identifies third-party form hosting services that render questions with
// custom widgets and need bespoke label extraction.
type Platform int

const (
	PlatformNone Platform = iota
	PlatformGoogleForms
	PlatformMicrosoftForms
)

func (p Platform) String() string {
	switch p {
	case PlatformGoogleForms:
		return "google-forms"
	case PlatformMicrosoftForms:
		return "microsoft-forms"
	default:
		return "none"
	}
}

const (
	googleFormsMarker    = `form[action*="formResponse"]`
	microsoftFormsMarker = `[data-automation-id="questionItem"]`
)

// DetectPlatform recognises a platform by URL first and by content markers second.
func DetectPlatform(doc *dom.Document) Platform {
	host, path := doc.Host(), doc.Path()
	switch {
	case host == "docs.google.com" && strings.HasPrefix(path, "/forms/"):
		return PlatformGoogleForms
	case host == "forms.office.com" || host == "forms.microsoft.com" || strings.HasSuffix(host, ".forms.office.com"):
		return PlatformMicrosoftForms
	}
	if n, err := doc.Count(googleFormsMarker); err == nil && n > 0 {
		return PlatformGoogleForms
	}
	if n, err := doc.Count(microsoftFormsMarker); err == nil && n > 0 {
		return PlatformMicrosoftForms
	}
	return PlatformNone
}

// Queries returns the extra candidate queries for the platform's custom widgets.
func (p Platform) Queries() []string {
	switch p {
	case PlatformGoogleForms:
		return []string{`[role="listbox"], [role="radio"], [role="checkbox"]`}
	case PlatformMicrosoftForms:
		return []string{`[data-automation-id="questionItem"] [role="combobox"], [data-automation-id="questionItem"] [role="listbox"], [data-automation-id="questionItem"] [role="checkbox"]`}
	}
	return nil
}

// Label extracts the question text the platform associates with el.
func (p Platform) Label(el *dom.Element) string {
	switch p {
	case PlatformGoogleForms:
		item := el.Closest(func(e *dom.Element) bool { return e.GetAttr("role") == "listitem" })
		if item == nil {
			return ""
		}
		return firstText(item, `[role="heading"]`)
	case PlatformMicrosoftForms:
		item := el.Closest(func(e *dom.Element) bool { return e.GetAttr("data-automation-id") == "questionItem" })
		if item == nil {
			return ""
		}
		return cleanQuestionTitle(firstText(item, `[data-automation-id="questionTitle"]`))
	}
	return ""
}

func firstText(scope *dom.Element, selector string) string {
	els, err := scope.QueryAll(selector)
	if err != nil {
		return ""
	}
	for _, el := range els {
		if text := el.Text(); text != "" {
			return text
		}
	}
	return ""
}

// cleanQuestionTitle drops the "3." numbering prefix and the trailing required marker.
func cleanQuestionTitle(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "*"))
	if i := strings.IndexByte(s, '.'); i > 0 && i <= 3 {
		digits := true
		for _, c := range s[:i] {
			if c < '0' || c > '9' {
				digits = false
				break
			}
		}
		if digits {
			s = strings.TrimSpace(s[i+1:])
		}
	}
	return s
}
