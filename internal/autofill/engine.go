// Package autofill runs rule sets against identified fields.
package autofill

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/api/schemas"
	"github.com/xkilldash9x/autofill/internal/fields"
	"github.com/xkilldash9x/autofill/internal/pattern"
	"github.com/xkilldash9x/autofill/internal/rules"
)

// Filler applies one rule to one field.
type Filler interface {
	Fill(ctx context.Context, field fields.Field, rule rules.Rule, force bool) (bool, error)
}

// RunOptions controls a single pass.
type RunOptions struct {
	// Category skips every rule outside it. Empty admits all rules.
	Category string
	// Force fills fields that already hold a value in every mode.
	Force bool
}

// Engine matches rules against fields and fills the matches one at a time.
type Engine struct {
	filler      Filler
	patternOpts []pattern.Option
	logger      *zap.Logger
}

// NewEngine creates an Engine. Pattern options apply to every rule compiled during a
// run.
func NewEngine(filler Filler, logger *zap.Logger, patternOpts ...pattern.Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		filler:      filler,
		patternOpts: patternOpts,
		logger:      logger.Named("engine"),
	}
}

// Run applies rs to fs in the given order. A failing fill is recorded and the pass
// continues; the pass stops before the next fill once ctx is done.
func (e *Engine) Run(ctx context.Context, rs []rules.Rule, fs []fields.Field, opts RunOptions) (result schemas.FillResult) {
	start := time.Now()
	result = schemas.FillResult{StartedAt: start, Errors: []schemas.FillError{}}
	defer func() { result.Duration = time.Since(start).String() }()

	for _, rule := range rs {
		if !rule.Enabled {
			result.Skip(rule.ID, "disabled")
			continue
		}
		if !rule.InCategory(opts.Category) {
			result.Skip(rule.ID, "category")
			continue
		}

		matches := rules.NewMatcher(rule, e.patternOpts...).Match(fs)
		e.logger.Debug("Rule matched fields.",
			zap.String("rule", rule.ID),
			zap.Int("matches", len(matches)))

		for _, field := range matches {
			if err := ctx.Err(); err != nil {
				result.AddError(field.Identifier, rule.ID, fmt.Errorf("run cancelled: %w", err))
				e.logger.Warn("Autofill pass cancelled.", zap.Error(err))
				return result
			}
			filled, err := e.fillOne(ctx, field, rule, opts.Force)
			if err != nil {
				e.logger.Warn("Fill failed.",
					zap.String("field", field.Identifier),
					zap.String("rule", rule.ID),
					zap.Error(err))
				result.AddError(field.Identifier, rule.ID, err)
				continue
			}
			if filled {
				result.FilledCount++
			}
		}
	}
	return result
}

// fillOne converts a panic during a single fill into an error.
func (e *Engine) fillOne(ctx context.Context, field fields.Field, rule rules.Rule, force bool) (filled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			filled = false
			err = fmt.Errorf("panic during fill: %v", r)
		}
	}()
	return e.filler.Fill(ctx, field, rule, force)
}
