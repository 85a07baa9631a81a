package dom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const selectorFixture = `<html><body>
<form id="main">
  <input id="a" name="email" class="wide field" aria-label="Start here">
  <input id="b" name="phone" lang="en-GB" data-q='a"b\c'>
  <textarea id="c" data-q="it's ]"></textarea>
  <div role="listitem"><span role="heading" id="d">Q</span></div>
  <a id="e" href="/doc.pdf" contenteditable>x</a>
</form>
<input id="f" class="col-6">
</body></html>`

func ids(els []*Element) []string {
	out := make([]string, 0, len(els))
	for _, el := range els {
		out = append(out, el.GetAttr("id"))
	}
	return out
}

func TestQueryAll_CSS(t *testing.T) {
	doc, err := ParseString(selectorFixture, "https://example.com/")
	require.NoError(t, err)

	tests := []struct {
		selector string
		expected []string
	}{
		{"input", []string{"a", "b", "f"}},
		{"INPUT", []string{"a", "b", "f"}},
		{"#main > input", []string{"a", "b"}},
		{"form input", []string{"a", "b"}},
		{"input.wide", []string{"a"}},
		{`[name="email"]`, []string{"a"}},
		{`[aria-label^=Sta]`, []string{"a"}},
		{`[href$=".pdf"]`, []string{"e"}},
		{`[class*=col]`, []string{"f"}},
		{`[class~=field]`, []string{"a"}},
		{`[lang|=en]`, []string{"b"}},
		{"[contenteditable]", []string{"e"}},
		{`[data-q="a\"b\\c"]`, []string{"b"}},
		{`[data-q="it's ]"]`, []string{"c"}},
		{`[role="listitem"] [role="heading"]`, []string{"d"}},
		{"textarea, input", []string{"a", "b", "c", "f"}},
		{"select", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			els, err := doc.QueryAll(tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(els), "group matches come back in document order")
		})
	}
}

func TestQueryAll_XPathPassthrough(t *testing.T) {
	doc, err := ParseString(selectorFixture, "https://example.com/")
	require.NoError(t, err)

	els, err := doc.QueryAll("//input[@name='phone']")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(els))

	els, err = doc.QueryAll("/html/body/input[1]")
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, ids(els))

	n, err := doc.Count("(//input)[2]")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestElementQueryAll_Relative(t *testing.T) {
	doc, err := ParseString(selectorFixture, "https://example.com/")
	require.NoError(t, err)

	forms, err := doc.QueryAll("#main")
	require.NoError(t, err)
	require.Len(t, forms, 1)

	els, err := forms[0].QueryAll("input")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(els), "only descendants of the element")

	els, err = forms[0].QueryAll("./textarea")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(els))
}

func TestQueryAll_Malformed(t *testing.T) {
	doc, err := ParseString(selectorFixture, "https://example.com/")
	require.NoError(t, err)

	for _, sel := range []string{"", "   ", "[[bad", "[name=", "input[", "a >", ",", `[a="open]`, "a,,b", "//input[", "input)"} {
		t.Run(sel, func(t *testing.T) {
			_, err := doc.QueryAll(sel)
			require.Error(t, err)
			var selErr *SelectorError
			require.True(t, errors.As(err, &selErr), "expected a SelectorError")
			assert.Equal(t, sel, selErr.Selector)
		})
	}

	_, err = doc.QueryAll("[[bad")
	var selErr *SelectorError
	require.True(t, errors.As(err, &selErr))
	assert.NotNil(t, errors.Unwrap(err), "the css parse error stays wrapped")
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, "'plain'", XPathLiteral("plain"))
	assert.Equal(t, `"it's"`, XPathLiteral("it's"))
	assert.Equal(t, `concat('a', "'", 'b"c')`, XPathLiteral(`a'b"c`))
}

func TestCSSIdent(t *testing.T) {
	id, ok := CSSIdent("primary-email")
	assert.True(t, ok)
	assert.Equal(t, "primary-email", id)

	id, ok = CSSIdent("user:name")
	assert.True(t, ok)
	assert.Equal(t, `user\:name`, id)

	_, ok = CSSIdent("9lives")
	assert.False(t, ok)
	_, ok = CSSIdent("has space")
	assert.False(t, ok)
}

func TestQueryAll_EscapedRoundTrip(t *testing.T) {
	doc, err := ParseString(`<body><input id="user:name" title='say "hi" \o/'><input id="user"></body>`, "https://example.com/")
	require.NoError(t, err)

	ident, ok := CSSIdent("user:name")
	require.True(t, ok)
	els, err := doc.QueryAll("#" + ident)
	require.NoError(t, err)
	require.Len(t, els, 1)
	assert.Equal(t, "user:name", els[0].GetAttr("id"))

	els, err = doc.QueryAll(`[id=` + CSSString(`user`) + `]`)
	require.NoError(t, err)
	assert.Len(t, els, 1)

	els, err = doc.QueryAll(`[title=` + CSSString(`say "hi" \o/`) + `]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"user:name"}, ids(els))
}
