package fill

import (
	"context"
	"strconv"
	"strings"

	"github.com/xkilldash9x/autofill/internal/browser/dom"
	"github.com/xkilldash9x/autofill/internal/fields"
)

// RandomOption is the select value that picks a uniformly random option.
const RandomOption = "?"

// normalize lowercases and removes quote characters so rule values such as "'Yes'"
// compare equal to visible option text.
func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '`':
			return -1
		}
		return r
	}, s)
	return strings.ToLower(strings.TrimSpace(s))
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// pickOption resolves a select value to an option index, or -1 to leave the
// selection alone. texts and values are parallel slices describing the options.
func (f *Filler) pickOption(value string, texts, values []string) int {
	switch {
	case len(texts) == 0:
		return -1
	case value == RandomOption:
		return f.rng.Intn(len(texts))
	case isIndex(value):
		n, err := strconv.Atoi(value)
		if err != nil || n >= len(texts) {
			return -1
		}
		return n
	}
	want := normalize(value)
	for i := range texts {
		if strings.ToLower(strings.TrimSpace(texts[i])) == want || strings.ToLower(strings.TrimSpace(values[i])) == want {
			return i
		}
	}
	return -1
}

// fillSelect reports true whenever a selection was attempted, including a scan that
// found nothing.
func (f *Filler) fillSelect(ctx context.Context, field fields.Field, value string) (bool, error) {
	el := field.Element
	if field.Custom {
		return f.fillCustomSelect(ctx, el, value)
	}

	opts := el.Options()
	texts := make([]string, len(opts))
	values := make([]string, len(opts))
	for i, opt := range opts {
		texts[i] = opt.Text()
		values[i] = dom.OptionValue(opt)
	}
	if idx := f.pickOption(value, texts, values); idx >= 0 {
		if err := el.SelectIndex(idx); err != nil {
			return false, err
		}
	}
	if err := f.emit(ctx, el, "change"); err != nil {
		return false, err
	}
	return true, nil
}

func (f *Filler) fillCustomSelect(ctx context.Context, el *dom.Element, value string) (bool, error) {
	opts := fields.CustomOptions(el)
	texts := make([]string, len(opts))
	values := make([]string, len(opts))
	for i, opt := range opts {
		texts[i] = opt.Text()
		values[i] = fields.CustomOptionValue(opt)
	}
	if idx := f.pickOption(value, texts, values); idx >= 0 {
		for i, opt := range opts {
			opt.SetAttr("aria-selected", strconv.FormatBool(i == idx))
		}
		if err := f.emit(ctx, opts[idx], "click"); err != nil {
			return false, err
		}
	}
	if err := f.emit(ctx, el, "change"); err != nil {
		return false, err
	}
	return true, nil
}

// fillCheckable sets the checked state from a boolean token or by comparing the value
// with the widget's own value and label. Nothing is written and no event fires when
// the state would not change.
func (f *Filler) fillCheckable(ctx context.Context, field fields.Field, value string) (bool, error) {
	el := field.Element
	want := desiredChecked(normalize(value), ownValue(field), field.Label)

	if isChecked(field) == want {
		return false, nil
	}
	if field.Custom {
		el.SetAttr("aria-checked", strconv.FormatBool(want))
	} else {
		el.SetChecked(want)
	}
	if err := f.emit(ctx, el, "change"); err != nil {
		return false, err
	}
	return true, nil
}

func desiredChecked(norm, own, label string) bool {
	switch norm {
	case "1", "true", "on":
		return true
	case "0", "false", "off":
		return false
	}
	if own != "" && norm == strings.ToLower(strings.TrimSpace(own)) {
		return true
	}
	return label != "" && norm == strings.ToLower(strings.TrimSpace(label))
}

func ownValue(field fields.Field) string {
	if field.Custom {
		return fields.CustomOptionValue(field.Element)
	}
	v, _ := field.Element.Value()
	return v
}

func isChecked(field fields.Field) bool {
	if field.Custom {
		return strings.EqualFold(field.Element.GetAttr("aria-checked"), "true")
	}
	return field.Element.Checked()
}
