package fields

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

// DefaultReservedIDPrefix marks widgets that belong to the extension's own UI.
const DefaultReservedIDPrefix = "autofill-"

// candidateQueries enumerates every widget class that can hold a value.
var candidateQueries = []string{
	"input",
	"textarea",
	"select",
	"[contenteditable]",
	"iframe",
	"frame",
}

// Options configures an Identifier.
type Options struct {
	// ReservedIDPrefix excludes widgets whose id starts with it.
	ReservedIDPrefix string
	// DynamicIDHosts lists hosts whose element ids are regenerated per page load and so
	// are never used as selectors.
	DynamicIDHosts []string
	// DetectPlatforms enables the third-party form platform extensions.
	DetectPlatforms bool
}

// DefaultOptions returns the options used when no configuration is supplied.
func DefaultOptions() Options {
	return Options{
		ReservedIDPrefix: DefaultReservedIDPrefix,
		DynamicIDHosts:   []string{"docs.google.com", "forms.office.com"},
		DetectPlatforms:  true,
	}
}

// Identifier enumerates fillable widgets and synthesises their identifiers.
type Identifier struct {
	opts   Options
	logger *zap.Logger
}

// NewIdentifier creates an Identifier. A nil logger is replaced with a no-op logger.
func NewIdentifier(opts Options, logger *zap.Logger) *Identifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Identifier{opts: opts, logger: logger.Named("fields")}
}

// Identify returns the fillable widgets of doc in document order. When previous is
// non-nil those elements are described instead of enumerating doc afresh. A candidate
// whose description fails is skipped; it never aborts the rest.
func (id *Identifier) Identify(doc *dom.Document, previous []*dom.Element) []Field {
	platform := PlatformNone
	if id.opts.DetectPlatforms {
		platform = DetectPlatform(doc)
	}

	var candidates []*dom.Element
	if previous != nil {
		candidates = dedupe(previous)
	} else {
		candidates = id.enumerate(doc, platform)
	}

	out := make([]Field, 0, len(candidates))
	for i, el := range candidates {
		f, reason, err := id.inspect(doc, el, platform)
		switch {
		case err != nil:
			id.logger.Warn("Failed to describe candidate.", zap.Int("index", i), zap.Error(err))
		case reason != "":
			id.logger.Debug("Skipping candidate.",
				zap.String("tag", el.Tag()),
				zap.String("reason", reason))
		default:
			out = append(out, f)
		}
	}
	id.logger.Debug("Identified fields.",
		zap.Int("candidates", len(candidates)),
		zap.Int("fields", len(out)),
		zap.Stringer("platform", platform))
	return out
}

// enumerate runs every candidate query, merges the results without duplicates and
// restores document order.
func (id *Identifier) enumerate(doc *dom.Document, platform Platform) []*dom.Element {
	queries := append(append([]string(nil), candidateQueries...), platform.Queries()...)
	seen := make(map[*html.Node]bool)
	var found []*dom.Element
	for _, q := range queries {
		els, err := doc.QueryAll(q)
		if err != nil {
			id.logger.Debug("Candidate query failed.", zap.String("query", q), zap.Error(err))
			continue
		}
		for _, el := range els {
			if seen[el.Node()] {
				continue
			}
			seen[el.Node()] = true
			found = append(found, el)
		}
	}

	order := doc.DocumentOrder()
	sort.SliceStable(found, func(i, j int) bool {
		return order[found[i].Node()] < order[found[j].Node()]
	})
	return found
}

func dedupe(els []*dom.Element) []*dom.Element {
	seen := make(map[*html.Node]bool, len(els))
	out := make([]*dom.Element, 0, len(els))
	for _, el := range els {
		if el == nil || seen[el.Node()] {
			continue
		}
		seen[el.Node()] = true
		out = append(out, el)
	}
	return out
}

// inspect filters and describes one candidate. A non-empty reason means the candidate
// is not fillable. A panic in any of the extraction helpers is returned as an error.
func (id *Identifier) inspect(doc *dom.Document, el *dom.Element, platform Platform) (f Field, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while describing candidate: %v", r)
		}
	}()

	if reason = id.rejectReason(el); reason != "" {
		return Field{}, reason, nil
	}
	ident := id.identifierFor(doc, el, platform)
	if ident == "" {
		return Field{}, "no identifier", nil
	}
	return Field{
		Element:    el,
		Identifier: ident,
		Type:       Classify(el),
		Value:      ReadValue(el),
		Label:      Label(doc, el),
		Attributes: snapshotAttributes(el),
		Custom:     IsCustomWidget(el),
	}, "", nil
}

// rejectReason returns why el cannot be filled, or "" when it can.
func (id *Identifier) rejectReason(el *dom.Element) string {
	if id.opts.ReservedIDPrefix != "" && strings.HasPrefix(el.GetAttr("id"), id.opts.ReservedIDPrefix) {
		return "reserved id"
	}

	switch el.Tag() {
	case "input":
		switch el.InputType() {
		case "hidden":
			return "hidden input"
		case "submit", "button", "reset", "image", "file":
			return "button-like input"
		}
	case "html", "body":
		if !el.IsContentEditable() {
			return "structural element"
		}
	}

	if el.HasAttr("contenteditable") && !el.IsContentEditable() && !isNative(el) && !el.IsFrame() {
		return "not editable"
	}
	if el.IsContentEditable() {
		if p := el.Parent(); p != nil && p.Closest(func(e *dom.Element) bool { return e.IsContentEditable() }) != nil {
			return "nested in an editable region"
		}
	}

	if isNative(el) && el.HasAttr("disabled") {
		return "disabled"
	}
	if strings.EqualFold(el.GetAttr("aria-disabled"), "true") {
		return "disabled"
	}
	if isNative(el) && el.Tag() != "select" && el.HasAttr("readonly") {
		return "read-only"
	}
	if strings.EqualFold(el.GetAttr("aria-readonly"), "true") {
		return "read-only"
	}

	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.HasAttr("hidden") {
			return "hidden"
		}
		if strings.EqualFold(cur.GetAttr("aria-hidden"), "true") {
			return "hidden"
		}
		if styleHides(cur.GetAttr("style")) {
			return "hidden"
		}
		if !cur.Is(el) && cur.Tag() == "fieldset" && cur.HasAttr("disabled") && isNative(el) {
			return "disabled"
		}
	}
	return ""
}

func isNative(el *dom.Element) bool {
	switch el.Tag() {
	case "input", "select", "textarea":
		return true
	}
	return false
}

// styleHides inspects an inline style declaration for display:none or
// visibility:hidden.
func styleHides(style string) bool {
	if style == "" {
		return false
	}
	for _, decl := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		switch {
		case prop == "display" && val == "none":
			return true
		case prop == "visibility" && (val == "hidden" || val == "collapse"):
			return true
		}
	}
	return false
}
