package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/autofill/internal/rules"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		mode    rules.FillMode
		current string
		value   string
		want    string
	}{
		{rules.Replace, "old", "new", "new"},
		{rules.Append, "old", "+", "old+"},
		{rules.Prepend, "old", "+", "+old"},
		{rules.Surround, "old", "*", "*old*"},
		{rules.Increment, " 41 ", "ignored", "42"},
		{rules.Increment, "1e3", "", "1001"},
		{rules.Increment, "", "", ""},
		{rules.Increment, "NaN", "", "NaN"},
		{rules.Decrement, "0.5", "", "-0.5"},
		{rules.Increment, "9223372036854775807", "", "9223372036854775808"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String()+"/"+tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, Compose(tt.mode, tt.current, tt.value))
		})
	}
}
