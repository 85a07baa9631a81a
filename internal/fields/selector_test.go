package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUniqueSelector(t *testing.T) {
	tests := []struct {
		name    string
		markup  string
		pageURL string
		target  int
		want    string
	}{
		{
			name:   "Duplicate names fall back to a positional path",
			markup: `<input name="email"><input name="email" id="primary-email">`,
			target: 0,
			want:   "/html/body/input[1]",
		},
		{
			name:   "Unique id is preferred",
			markup: `<input name="email"><input name="email" id="primary-email">`,
			target: 1,
			want:   "#primary-email",
		},
		{
			name:   "Id that is not a valid identifier is quoted",
			markup: `<input id="1st">`,
			target: 0,
			want:   `[id="1st"]`,
		},
		{
			name:   "Unique attribute",
			markup: `<input name="email"><input name="phone">`,
			target: 1,
			want:   `[name="phone"]`,
		},
		{
			name:   "Data attributes are considered after the fixed list",
			markup: `<input type="text" data-qa="zip"><input type="text">`,
			target: 0,
			want:   `[data-qa="zip"]`,
		},
		{
			name:    "Dynamic-id hosts never use the id",
			markup:  `<input id="i5" name="q"><input id="i6" name="q">`,
			pageURL: "https://docs.google.com/forms/d/abc/viewform",
			target:  1,
			want:    "/html/body/input[2]",
		},
		{
			name:   "Sole child has no index",
			markup: `<form><textarea></textarea></form>`,
			target: 0,
			want:   "/html/body/form/textarea",
		},
	}

	id := NewIdentifier(DefaultOptions(), zaptest.NewLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pageURL := tt.pageURL
			if pageURL == "" {
				pageURL = "https://example.com/"
			}
			doc := parse(t, "<html><body>"+tt.markup+"</body></html>", pageURL)
			els, err := doc.QueryAll("input, textarea")
			require.NoError(t, err)
			require.Greater(t, len(els), tt.target)
			target := els[tt.target]

			sel := id.UniqueSelector(doc, target)
			assert.Equal(t, tt.want, sel)

			resolved, err := doc.QueryAll(sel)
			require.NoError(t, err)
			require.Len(t, resolved, 1, "selector must resolve to exactly one element")
			assert.True(t, resolved[0].Is(target))
		})
	}
}

func TestUniqueSelector_DistinctForSiblings(t *testing.T) {
	doc := parse(t, `<html><body><input name="email"><input name="email" id="primary-email"></body></html>`, "https://example.com/")
	els, err := doc.QueryAll("input")
	require.NoError(t, err)

	id := NewIdentifier(DefaultOptions(), zaptest.NewLogger(t))
	a, b := id.UniqueSelector(doc, els[0]), id.UniqueSelector(doc, els[1])
	assert.NotEqual(t, a, b)
}
