package autofill_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/autofill/internal/autofill"
	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/fields"
	"github.com/xkilldash9x/autofill/internal/fill"
	"github.com/xkilldash9x/autofill/internal/rules"
	"github.com/xkilldash9x/autofill/internal/templater"
)

func TestFilterBySite(t *testing.T) {
	rs := []rules.Rule{
		{ID: "any"},
		{ID: "host", Scope: rules.Scope{Site: "*.example.com"}},
		{ID: "path", Scope: rules.Scope{Site: "https://shop.example.com/checkout*"}},
		{ID: "other", Scope: rules.Scope{Site: "example.org"}},
		{ID: "broken", Scope: rules.Scope{Site: "[unclosed"}},
	}

	kept, skipped := autofill.FilterBySite(rs, "https://Shop.Example.com/checkout/step-1", zaptest.NewLogger(t))

	var ids []string
	for _, r := range kept {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"any", "host", "path"}, ids)
	assert.Equal(t, map[string]string{"other": "site", "broken": "invalid site scope"}, skipped)
}

func TestService_Autofill(t *testing.T) {
	logger := zaptest.NewLogger(t)
	doc, err := dom.ParseString(`<html><body>
<form>
  <label for="e">Email</label><input id="e" name="email">
  <input name="company">
  <select name="size"><option>S</option><option>M</option><option>L</option></select>
</form>
</body></html>`, "https://shop.example.com/checkout", dom.WithLogger(logger))
	require.NoError(t, err)

	rs, err := rules.ParseYAML([]byte(`
email:
  pattern: /^e-?mail$/i
  value: "{user}@example.com"
company:
  pattern: company
  value: Acme
  site: "*.example.org"
size:
  pattern: size
  value: m
`))
	require.NoError(t, err)

	filler := fill.New(
		fill.WithDelay(fill.NoDelay),
		fill.WithVariables(templater.Vars{"user": "ada"}),
		fill.WithLogger(logger),
	)
	svc := autofill.NewService(
		fields.NewIdentifier(fields.DefaultOptions(), logger),
		autofill.NewEngine(filler, logger),
		logger,
	)

	result := svc.Autofill(context.Background(), doc, rs, autofill.RunOptions{})

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err, "every pass carries a run id")
	assert.Equal(t, "https://shop.example.com/checkout", result.URL)
	assert.Equal(t, 2, result.FilledCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t, map[string]string{"company": "site"}, result.Skipped)

	email, _ := doc.ElementByID("e").Value()
	assert.Equal(t, "ada@example.com", email)

	sizes, err := doc.QueryAll(`select[name="size"]`)
	require.NoError(t, err)
	size, _ := sizes[0].Value()
	assert.Equal(t, "M", size)

	assert.Len(t, svc.Identify(doc), 3)
}

func TestService_Report(t *testing.T) {
	logger := zaptest.NewLogger(t)
	doc, err := dom.ParseString(`<html><body>
<label for="n">Name</label><input id="n" name="full" value="Ada">
<input type="checkbox" name="agree">
</body></html>`, "https://example.com/join", dom.WithLogger(logger))
	require.NoError(t, err)

	svc := autofill.NewService(fields.NewIdentifier(fields.DefaultOptions(), logger),
		autofill.NewEngine(fill.New(fill.WithDelay(fill.NoDelay)), logger), logger)
	report := svc.Report(doc)

	assert.Equal(t, "https://example.com/join", report.URL)
	assert.Equal(t, "none", report.Platform)
	require.Len(t, report.Fields, 2)

	name := report.Fields[0]
	assert.Equal(t, "Name", name.Identifier)
	assert.Equal(t, "text", name.Type)
	assert.Equal(t, "Ada", name.Value)
	assert.Equal(t, "#n", name.Selector)

	agree := report.Fields[1]
	assert.Equal(t, "agree", agree.Identifier)
	assert.Equal(t, "checkbox", agree.Type)
	assert.Equal(t, `[name="agree"]`, agree.Selector)
}
