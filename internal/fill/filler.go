// Package fill applies a rule's templated value to a single field.
package fill

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/fields"
	"github.com/xkilldash9x/autofill/internal/rules"
	"github.com/xkilldash9x/autofill/internal/templater"
)

// DefaultEventGap is the nominal pause before each emitted event.
const DefaultEventGap = 5 * time.Millisecond

// TextEvents is the interaction sequence emitted after a text write.
var TextEvents = []string{"focus", "input", "keyup", "change", "blur"}

// ErrNoElement is returned for a field that carries no element reference.
var ErrNoElement = errors.New("field has no element")

// DelayFunc suspends between emitted events. It must return early with the context's
// error when ctx is done.
type DelayFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d on a real timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 || ctx.Err() != nil {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay never waits.
func NoDelay(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// Option configures a Filler.
type Option func(*Filler)

// WithDelay replaces the suspension strategy.
func WithDelay(fn DelayFunc) Option {
	return func(f *Filler) {
		if fn != nil {
			f.delay = fn
		}
	}
}

// WithEventGap sets the pause passed to the DelayFunc before each event.
func WithEventGap(d time.Duration) Option {
	return func(f *Filler) { f.gap = d }
}

// WithVariables sets the lookup used for {name} references.
func WithVariables(vars templater.Variables) Option {
	return func(f *Filler) { f.vars = vars }
}

// WithRand seeds every random choice the Filler makes, including template expansion.
func WithRand(rng *rand.Rand) Option {
	return func(f *Filler) { f.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Filler writes values into fields. It is not safe for concurrent use; fills are
// expected to run one at a time against a document.
type Filler struct {
	templater *templater.Templater
	vars      templater.Variables
	delay     DelayFunc
	gap       time.Duration
	rng       *rand.Rand
	logger    *zap.Logger
}

// New creates a Filler that pauses on a real timer by default.
func New(opts ...Option) *Filler {
	f := &Filler{
		delay:  Sleep,
		gap:    DefaultEventGap,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	f.templater = templater.New(rand.New(rand.NewSource(f.rng.Int63())))
	f.logger = f.logger.Named("fill")
	return f
}

// Fill applies rule to field and reports whether the widget was changed. force
// bypasses the existing-value guard in the same way as the rule's own overwrite flag.
func (f *Filler) Fill(ctx context.Context, field fields.Field, rule rules.Rule, force bool) (bool, error) {
	el := field.Element
	if el == nil {
		return false, ErrNoElement
	}

	current := fields.ReadValue(el)
	if !force && !rule.Overwrite && current != "" && rule.Mode != rules.Replace {
		f.logger.Debug("Preserving existing value.",
			zap.String("field", field.Identifier),
			zap.String("rule", rule.ID),
			zap.Stringer("mode", rule.Mode))
		return false, nil
	}

	value := f.templater.Expand(rule.Value, f.vars)

	var (
		filled bool
		err    error
	)
	switch field.Type {
	case fields.SelectDropdown:
		filled, err = f.fillSelect(ctx, field, value)
	case fields.CheckboxOrRadio:
		filled, err = f.fillCheckable(ctx, field, value)
	default:
		filled, err = f.fillText(ctx, el, rule.Mode, current, value)
	}
	if err != nil {
		return false, fmt.Errorf("failed to fill %q: %w", field.Identifier, err)
	}
	if filled {
		f.logger.Debug("Filled field.",
			zap.String("field", field.Identifier),
			zap.String("rule", rule.ID),
			zap.Stringer("type", field.Type))
	}
	return filled, nil
}

func (f *Filler) fillText(ctx context.Context, el *dom.Element, mode rules.FillMode, current, value string) (bool, error) {
	if err := el.SetValue(Compose(mode, current, value)); err != nil {
		return false, err
	}
	if err := f.emit(ctx, el, TextEvents...); err != nil {
		return false, err
	}
	return true, nil
}

// emit dispatches each event after a pause.
func (f *Filler) emit(ctx context.Context, el *dom.Element, events ...string) error {
	for _, ev := range events {
		if err := f.delay(ctx, f.gap); err != nil {
			return err
		}
		if err := el.Dispatch(ev); err != nil {
			return err
		}
	}
	return nil
}
