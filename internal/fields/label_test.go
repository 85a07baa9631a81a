package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"For association", `<label for="x">E-mail <em>address</em></label><input id="x" aria-label="ignored">`, "E-mail address"},
		{"Aria label", `<input id="x" aria-label="Postcode" placeholder="ignored">`, "Postcode"},
		{"Aria labelledby", `<p id="a">Billing</p><p id="b">city</p><input id="x" aria-labelledby="a missing b">`, "Billing city"},
		{"Enclosing label excludes the control itself", `<label>Country <select id="x"><option>France</option></select></label>`, "Country"},
		{"Placeholder", `<textarea id="x" placeholder="Tell us more"></textarea>`, "Tell us more"},
		{"Nothing", `<input id="x">`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, "<html><body>"+tt.markup+"</body></html>", "https://example.com/")
			el := doc.ElementByID("x")
			require.NotNil(t, el)
			assert.Equal(t, tt.want, Label(doc, el))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		markup string
		want   Type
		custom bool
	}{
		{`<input id="x">`, TextLike, false},
		{`<input id="x" type="EMAIL">`, TextLike, false},
		{`<input id="x" type="password">`, Password, false},
		{`<input id="x" type="radio">`, CheckboxOrRadio, false},
		{`<input id="x" type="checkbox">`, CheckboxOrRadio, false},
		{`<select id="x"></select>`, SelectDropdown, false},
		{`<textarea id="x"></textarea>`, TextLike, false},
		{`<div id="x" contenteditable role="combobox"></div>`, TextLike, false},
		{`<div id="x" role="listbox"></div>`, SelectDropdown, true},
		{`<div id="x" role="Switch"></div>`, CheckboxOrRadio, true},
		{`<span id="x" aria-checked="false"></span>`, CheckboxOrRadio, true},
		{`<iframe id="x"></iframe>`, TextLike, false},
	}
	for _, tt := range tests {
		t.Run(tt.markup, func(t *testing.T) {
			doc := parse(t, "<html><body>"+tt.markup+"</body></html>", "https://example.com/")
			el := doc.ElementByID("x")
			require.NotNil(t, el)
			assert.Equal(t, tt.want, Classify(el))
			assert.Equal(t, tt.custom, IsCustomWidget(el))
		})
	}
}

func TestType_TextRoundTrip(t *testing.T) {
	for _, typ := range []Type{TextLike, Password, SelectDropdown, CheckboxOrRadio} {
		b, err := typ.MarshalText()
		require.NoError(t, err)
		var back Type
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, typ, back)
	}
	var bad Type
	assert.Error(t, bad.UnmarshalText([]byte("radio-ish")))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Hello world", StripMarkup(`<p>Hello <script type="text/javascript">steal()</script><b>world</b></p>`))
	assert.Equal(t, "Hello world", StripMarkup(`<p>Hello <SCRIPT>if (a < b) steal()</SCRIPT><style>b{}</style><b>world</b></p>`))
	assert.Equal(t, `Tom & "Jerry"`, StripMarkup(`Tom &amp; &quot;Jerry&quot;`))
	assert.Equal(t, "", StripMarkup("   "))
}
