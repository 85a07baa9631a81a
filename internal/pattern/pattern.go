// Package pattern compiles rule match expressions. A source written as /body/flags is a
// regular expression; anything else, including a malformed regular expression, is a
// case-insensitive substring.
package pattern

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single regular expression evaluation.
const DefaultMatchTimeout = 100 * time.Millisecond

// Matcher tests candidate strings against a compiled pattern.
type Matcher interface {
	Test(candidate string) bool
	// Source returns the pattern text the matcher was compiled from.
	Source() string
}

// Option configures compilation.
type Option func(*options)

type options struct {
	timeout time.Duration
}

// WithMatchTimeout overrides DefaultMatchTimeout. Non-positive values disable the bound.
func WithMatchTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// Compile turns source into a Matcher. It never fails: a delimited source that does not
// parse as a regular expression degrades to a substring match over the whole source.
func Compile(source string, opts ...Option) Matcher {
	o := options{timeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	if body, flags, ok := splitDelimited(source); ok {
		if re, err := compileRegex(body, flags, o.timeout); err == nil {
			return &RegexMatcher{source: source, re: re}
		}
	}
	return NewSubstringMatcher(source)
}

// splitDelimited separates "/body/flags" into its parts.
func splitDelimited(source string) (string, string, bool) {
	if len(source) < 2 || source[0] != '/' {
		return "", "", false
	}
	end := strings.LastIndexByte(source, '/')
	if end <= 0 {
		return "", "", false
	}
	body, flags := source[1:end], source[end+1:]
	if body == "" {
		return "", "", false
	}
	return body, flags, true
}

func compileRegex(body, flags string, timeout time.Duration) (*regexp2.Regexp, error) {
	opts := regexp2.RegexOptions(regexp2.None)
	for _, f := range flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'g', 'u', 'y', 'd':
			// Stateless test semantics make these irrelevant.
		default:
			return nil, &FlagError{Flag: f}
		}
	}
	re, err := regexp2.Compile(body, opts)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// FlagError reports an unknown regular expression flag.
type FlagError struct {
	Flag rune
}

func (e *FlagError) Error() string { return "unknown regular expression flag '" + string(e.Flag) + "'" }

// RegexMatcher reports whether the expression matches anywhere in the candidate.
type RegexMatcher struct {
	source string
	re     *regexp2.Regexp
}

// Test implements Matcher. A match that exceeds the timeout counts as no match.
func (m *RegexMatcher) Test(candidate string) bool {
	ok, err := m.re.MatchString(candidate)
	return err == nil && ok
}

// Source implements Matcher.
func (m *RegexMatcher) Source() string { return m.source }

// SubstringMatcher performs case-insensitive containment.
type SubstringMatcher struct {
	source string
	needle string
}

// NewSubstringMatcher builds a literal matcher. A source wrapped in matching double or
// single quotes is unwrapped first.
func NewSubstringMatcher(source string) *SubstringMatcher {
	return &SubstringMatcher{source: source, needle: strings.ToLower(unquote(source))}
}

// Test implements Matcher.
func (m *SubstringMatcher) Test(candidate string) bool {
	return strings.Contains(strings.ToLower(candidate), m.needle)
}

// Source implements Matcher.
func (m *SubstringMatcher) Source() string { return m.source }

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
