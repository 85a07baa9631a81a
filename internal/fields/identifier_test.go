package fields

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
)

func parse(t *testing.T, markup, pageURL string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(markup, pageURL, dom.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return doc
}

func newTestIdentifier(t *testing.T) *Identifier {
	return NewIdentifier(DefaultOptions(), zaptest.NewLogger(t))
}

func identifiers(fs []Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Identifier
	}
	return out
}

func TestIdentify_EnumeratesFillableWidgetsInDocumentOrder(t *testing.T) {
	doc := parse(t, `<html><body>
<form>
  <textarea name="bio"></textarea>
  <input name="email" type="email" value="a@b.c">
  <input name="token" type="hidden" value="x">
  <input type="submit" value="Go">
  <input name="locked" disabled>
  <input name="fixed" readonly>
  <input name="gone" style="display: none">
  <div hidden><input name="buried"></div>
  <fieldset disabled><input name="fenced"></fieldset>
  <input id="autofill-panel-search">
  <input name="aria-off" aria-disabled="true">
  <select name="country"><option value="fr">France</option></select>
  <input type="password" name="pw">
  <input type="checkbox" name="tos">
  <div contenteditable="true" id="notes">Hi</div>
  <div contenteditable="false" id="static">No</div>
</form>
</body></html>`, "https://example.com/")

	got := newTestIdentifier(t).Identify(doc, nil)

	want := []string{"bio", "email", "country", "pw", "tos", "notes"}
	if diff := cmp.Diff(want, identifiers(got)); diff != "" {
		t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
	}

	types := make([]Type, len(got))
	for i, f := range got {
		types[i] = f.Type
	}
	assert.Equal(t, []Type{TextLike, TextLike, SelectDropdown, Password, CheckboxOrRadio, TextLike}, types)

	assert.Equal(t, "a@b.c", got[1].Value)
	assert.Equal(t, "fr", got[2].Value)
	assert.Equal(t, "on", got[4].Value)
	assert.Equal(t, "Hi", got[5].Value)
	assert.Equal(t, map[string]string{"name": "email", "type": "email"}, got[1].Attributes)
}

func TestIdentify_IdentifierStrategies(t *testing.T) {
	doc := parse(t, `<html><body>
<span id="l1">Work</span><span id="l2">phone</span>
<input id="phone" name="tel" aria-labelledby="l1 l2">
<label for="fname">First name</label>
<input id="fname" name="first">
<input placeholder="Search terms">
<input type="radio" name="" value="yearly">
<input type="text">
<input type="text">
</body></html>`, "https://example.com/")

	got := newTestIdentifier(t).Identify(doc, nil)
	require.Len(t, got, 6)

	assert.Equal(t, "Work phone", got[0].Identifier, "aria-labelledby text wins")
	assert.Equal(t, "First name", got[1].Identifier, "for-label beats attributes")
	assert.Equal(t, "Search terms", got[2].Identifier)
	assert.Equal(t, "yearly", got[3].Identifier, "checkbox values identify otherwise anonymous widgets")
	assert.Equal(t, "/html/body/input[5]", got[4].Identifier)
	assert.Equal(t, "/html/body/input[6]", got[5].Identifier)
}

func TestIdentify_PreviousCandidatesReplaceEnumeration(t *testing.T) {
	doc := parse(t, `<html><body><input name="a"><input name="b"><input name="c"></body></html>`, "https://example.com/")
	all, err := doc.QueryAll("input")
	require.NoError(t, err)

	got := newTestIdentifier(t).Identify(doc, []*dom.Element{all[2], nil, all[0], all[2]})
	assert.Equal(t, []string{"c", "a"}, identifiers(got))
}

func TestIdentify_FailingCandidateDoesNotAbort(t *testing.T) {
	doc := parse(t, `<html><body><input name="ok"></body></html>`, "https://example.com/")
	good, err := doc.QueryAll("input")
	require.NoError(t, err)

	// A zero Element has no backing node; describing it panics inside the helpers.
	got := newTestIdentifier(t).Identify(doc, []*dom.Element{{}, good[0]})
	assert.Equal(t, []string{"ok"}, identifiers(got))
}

func TestIdentify_FailingQueryDoesNotAbortEnumeration(t *testing.T) {
	saved := candidateQueries
	candidateQueries = append([]string{"[[bad"}, saved...)
	t.Cleanup(func() { candidateQueries = saved })

	doc := parse(t, `<html><body><input name="a"><textarea name="b"></textarea></body></html>`, "https://example.com/")
	core, logs := observer.New(zap.DebugLevel)
	got := NewIdentifier(DefaultOptions(), zap.New(core)).Identify(doc, nil)

	assert.Equal(t, []string{"a", "b"}, identifiers(got))
	failed := logs.FilterMessage("Candidate query failed.").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "[[bad", failed[0].ContextMap()["query"])
}

func TestIdentify_ContentEditableRegions(t *testing.T) {
	doc := parse(t, `<html><body>
<div contenteditable id="outer"><p>Rich <b>text</b> &amp; more</p><div contenteditable="true">inner</div><script>alert(1)</script></div>
</body></html>`, "https://example.com/")

	got := newTestIdentifier(t).Identify(doc, nil)
	require.Len(t, got, 1, "a nested editable is part of its outer region")
	assert.Equal(t, "outer", got[0].Identifier)
	assert.Equal(t, TextLike, got[0].Type)
	assert.NotContains(t, got[0].Value, "alert")
	assert.Contains(t, got[0].Value, "Rich text & more")
}

func TestIdentify_Frames(t *testing.T) {
	doc := parse(t, `<html><body><iframe id="composer"></iframe><iframe id="ads"></iframe></body></html>`, "https://example.com/")
	frameDoc := parse(t, `<html><body><p>Dear <i>team</i></p></body></html>`, "https://example.com/frame")
	doc.AttachFrame(doc.ElementByID("composer"), frameDoc)

	got := newTestIdentifier(t).Identify(doc, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "Dear team", got[0].Value)
	assert.Equal(t, "", got[1].Value, "an inaccessible frame reports no value")
}

func TestRejectReason(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"Plain input", `<input id="x">`, ""},
		{"Visibility hidden ancestor", `<div style="visibility:hidden"><input id="x"></div>`, "hidden"},
		{"Important display none", `<input id="x" style="DISPLAY:none !important">`, "hidden"},
		{"Aria hidden", `<div aria-hidden="true"><input id="x"></div>`, "hidden"},
		{"Aria readonly", `<div role="combobox" aria-readonly="true" id="x"></div>`, "read-only"},
		{"Readonly select is still fillable", `<select id="x" readonly></select>`, ""},
		{"Image input", `<input type="image" id="x">`, "button-like input"},
	}
	id := newTestIdentifier(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "<html><body>"+tt.markup+"</body></html>", "https://example.com/")
			el := doc.ElementByID("x")
			require.NotNil(t, el)
			assert.Equal(t, tt.want, id.rejectReason(el))
		})
	}

	doc := parse(t, `<html><body><input id="autofill-x"></body></html>`, "https://example.com/")
	assert.Equal(t, "reserved id", id.rejectReason(doc.ElementByID("autofill-x")))
}
