// File: cmd/wiring.go
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/internal/autofill"
	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/config"
	"github.com/xkilldash9x/autofill/internal/fields"
	"github.com/xkilldash9x/autofill/internal/fill"
	"github.com/xkilldash9x/autofill/internal/pattern"
	"github.com/xkilldash9x/autofill/internal/rules"
	"github.com/xkilldash9x/autofill/internal/templater"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// newService assembles identifier, filler and engine from configuration. extraVars
// take precedence over configured variables.
func newService(cfg config.Interface, extraVars map[string]string, delay fill.DelayFunc, logger *zap.Logger) *autofill.Service {
	ec := cfg.Engine()
	identifier := fields.NewIdentifier(fields.Options{
		ReservedIDPrefix: ec.ReservedIDPrefix,
		DynamicIDHosts:   ec.DynamicIDHosts,
		DetectPlatforms:  ec.DetectPlatforms,
	}, logger)

	filler := fill.New(
		fill.WithDelay(delay),
		fill.WithEventGap(ec.EventDelay),
		fill.WithVariables(templater.Fold(cfg.Autofill().Variables, extraVars)),
		fill.WithLogger(logger),
	)
	engine := autofill.NewEngine(filler, logger, pattern.WithMatchTimeout(ec.RegexTimeout))
	return autofill.NewService(identifier, engine, logger)
}

// parseVars turns repeated name=value flags into a map.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q, expected name=value", p)
		}
		vars[name] = value
	}
	return vars, nil
}

// readDocument parses an HTML file, or stdin when path is "-".
func readDocument(in io.Reader, path, pageURL string, logger *zap.Logger) (*dom.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("an HTML document is required (--html)")
	}
	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		r = f
	}
	doc, err := dom.Parse(r, pageURL, dom.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %s: %w", path, err)
	}
	return doc, nil
}

// loadRules reads the rule file named by the flag, falling back to configuration.
func loadRules(flagPath string, cfg config.Interface) ([]rules.Rule, error) {
	path := flagPath
	if path == "" {
		path = cfg.Autofill().RulesFile
	}
	if path == "" {
		return nil, fmt.Errorf("a rules file is required (--rules or autofill.rules_file)")
	}
	return rules.LoadFile(path)
}

// writeJSON writes v as indented JSON to path, or to out when path is empty.
func writeJSON(out io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
