package autofill

import (
	"context"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/api/schemas"
	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/fields"
	"github.com/xkilldash9x/autofill/internal/rules"
)

// Service is the caller-side entry point: it identifies the fields of a document,
// filters rules by site, and runs the engine.
type Service struct {
	identifier *fields.Identifier
	engine     *Engine
	logger     *zap.Logger
}

// NewService wires an identifier and an engine together.
func NewService(identifier *fields.Identifier, engine *Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{identifier: identifier, engine: engine, logger: logger.Named("autofill")}
}

// Identify exposes the identification pass on its own.
func (s *Service) Identify(doc *dom.Document) []fields.Field {
	return s.identifier.Identify(doc, nil)
}

// Report runs identification and renders it for output, with a unique selector per field.
func (s *Service) Report(doc *dom.Document) schemas.IdentifyReport {
	fs := s.identifier.Identify(doc, nil)
	report := schemas.IdentifyReport{
		URL:      doc.URL(),
		Platform: fields.DetectPlatform(doc).String(),
		Fields:   make([]schemas.FieldReport, 0, len(fs)),
	}
	for _, f := range fs {
		report.Fields = append(report.Fields, schemas.FieldReport{
			Identifier: f.Identifier,
			Type:       f.Type.String(),
			Value:      f.Value,
			Label:      f.Label,
			Selector:   s.identifier.UniqueSelector(f.Element.Document(), f.Element),
			Custom:     f.Custom,
			Attributes: f.Attributes,
		})
	}
	return report
}

// Autofill runs rs against doc. Rules whose site scope does not match the page are
// skipped before matching.
func (s *Service) Autofill(ctx context.Context, doc *dom.Document, rs []rules.Rule, opts RunOptions) schemas.FillResult {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("url", doc.URL()))

	scoped, skipped := FilterBySite(rs, doc.URL(), logger)
	fs := s.identifier.Identify(doc, nil)
	logger.Debug("Starting autofill pass.",
		zap.Int("fields", len(fs)),
		zap.Int("rules", len(scoped)),
		zap.Int("out_of_scope", len(skipped)))

	result := s.engine.Run(ctx, scoped, fs, opts)
	result.RunID = runID
	result.URL = doc.URL()
	for id, reason := range skipped {
		result.Skip(id, reason)
	}

	logger.Info("Autofill pass complete.",
		zap.Int("filled", result.FilledCount),
		zap.Int("errors", len(result.Errors)),
		zap.String("duration", result.Duration))
	return result
}

// FilterBySite keeps the rules whose site glob matches the page URL or its host. An
// empty site matches every page. A rule with an invalid glob is excluded.
func FilterBySite(rs []rules.Rule, pageURL string, logger *zap.Logger) ([]rules.Rule, map[string]string) {
	if logger == nil {
		logger = zap.NewNop()
	}
	host := hostOf(pageURL)
	compiled := make(map[string]glob.Glob)
	skipped := make(map[string]string)

	out := make([]rules.Rule, 0, len(rs))
	for _, r := range rs {
		site := strings.TrimSpace(r.Scope.Site)
		if site == "" {
			out = append(out, r)
			continue
		}
		g, ok := compiled[site]
		if !ok {
			var err error
			g, err = glob.Compile(strings.ToLower(site))
			if err != nil {
				logger.Warn("Invalid site scope, rule excluded.",
					zap.String("rule", r.ID),
					zap.String("site", site),
					zap.Error(err))
				skipped[r.ID] = "invalid site scope"
				continue
			}
			compiled[site] = g
		}
		if g.Match(strings.ToLower(pageURL)) || (host != "" && g.Match(host)) {
			out = append(out, r)
			continue
		}
		skipped[r.ID] = "site"
	}
	return out, skipped
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
