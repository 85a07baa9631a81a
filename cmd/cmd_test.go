// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const signupPage = `<html><body>
<form>
  <label for="e">Email</label><input id="e" name="email">
  <input name="nickname" value="ace">
  <select name="size"><option>S</option><option>M</option></select>
</form>
</body></html>`

const signupRules = `
email:
  pattern: /^email$/i
  value: "{user}@example.com"
nickname:
  pattern: nickname
  value: zed
size:
  pattern: size
  value: m
  category: shop
`

// runCmd executes a fresh command tree and returns what it wrote to stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUTOFILL_ENGINE_EVENT_DELAY", "0s")
	t.Setenv("AUTOFILL_LOGGER_LEVEL", "fatal")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(bytes.NewBufferString(stdin))
	root.SetArgs(append([]string{"--config", writeFile(t, "autofill.yaml", "logger:\n  format: json\n")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd_Version(t *testing.T) {
	out, err := runCmd(t, "", "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestIdentifyCmd(t *testing.T) {
	html := writeFile(t, "page.html", signupPage)
	out, err := runCmd(t, "", "identify", "--html", html, "--url", "https://shop.example.com/join")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out), out)

	report := gjson.Parse(out)
	assert.Equal(t, "https://shop.example.com/join", report.Get("url").String())
	assert.Equal(t, "none", report.Get("platform").String())
	assert.Equal(t, []interface{}{"Email", "nickname", "size"}, report.Get("fields.#.identifier").Value())
	assert.Equal(t, "#e", report.Get("fields.0.selector").String())
	assert.Equal(t, "ace", report.Get("fields.1.value").String())
}

func TestIdentifyCmd_Stdin(t *testing.T) {
	out, err := runCmd(t, `<input name="q">`, "identify", "--html", "-")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.Get(out, "fields.#").Int())
}

func TestFillCmd(t *testing.T) {
	html := writeFile(t, "page.html", signupPage)
	rules := writeFile(t, "rules.yaml", signupRules)
	filled := filepath.Join(t.TempDir(), "filled.html")

	out, err := runCmd(t, "", "fill",
		"--html", html, "--rules", rules, "--url", "https://shop.example.com/join",
		"--var", "user=ada", "--html-out", filled)
	require.NoError(t, err)

	result := gjson.Parse(out)
	// The nickname already holds a value but replace mode always writes.
	assert.Equal(t, int64(3), result.Get("filledCount").Int())
	assert.Equal(t, int64(0), result.Get("errors.#").Int())
	assert.NotEmpty(t, result.Get("runId").String())

	doc, err := os.ReadFile(filled)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `value="ada@example.com"`)
	assert.Contains(t, string(doc), `value="zed"`)
}

func TestFillCmd_CategoryFlag(t *testing.T) {
	html := writeFile(t, "page.html", signupPage)
	rules := writeFile(t, "rules.yaml", signupRules)

	out, err := runCmd(t, "", "fill", "--html", html, "--rules", rules, "--category", "shop")
	require.NoError(t, err)

	result := gjson.Parse(out)
	assert.Equal(t, int64(1), result.Get("filledCount").Int())
	assert.Equal(t, "category", result.Get("skipped.email").String())
	assert.Equal(t, "category", result.Get("skipped.nickname").String())
}

func TestFillCmd_OutFile(t *testing.T) {
	html := writeFile(t, "page.html", signupPage)
	rules := writeFile(t, "rules.json", `{"nick": {"pattern": "nickname", "value": "zed"}}`)
	outPath := filepath.Join(t.TempDir(), "result.json")

	stdout, err := runCmd(t, "", "fill", "--html", html, "--rules", rules, "-o", outPath)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.GetBytes(data, "filledCount").Int())
}

func TestFillCmd_Errors(t *testing.T) {
	html := writeFile(t, "page.html", signupPage)
	rules := writeFile(t, "rules.yaml", signupRules)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing rules", []string{"fill", "--html", html}, "rules file is required"},
		{"missing html", []string{"fill", "--rules", rules}, "HTML document is required"},
		{"bad variable", []string{"fill", "--html", html, "--rules", rules, "--var", "nope"}, "expected name=value"},
		{"unreadable rules", []string{"fill", "--html", html, "--rules", filepath.Join(t.TempDir(), "absent.yaml")}, "absent.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	t.Setenv("AUTOFILL_ENGINE_REGEX_TIMEOUT", "0s")
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"identify", "--html", "-"})
	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.regex_timeout")
}

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"user=ada", "empty=", "eq=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user": "ada", "empty": "", "eq": "a=b"}, vars)

	_, err = parseVars([]string{"=x"})
	assert.Error(t, err)
}

func TestConfigFrom_Uninitialized(t *testing.T) {
	c := &cobra.Command{}
	c.SetContext(context.Background())
	_, err := configFrom(c)
	assert.Error(t, err)
}
