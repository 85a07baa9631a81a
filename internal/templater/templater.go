// Package templater expands rule value templates.
//
// Expansion runs four full passes in a fixed order:
//
//  1. {name}     variable reference, left verbatim when unresolved
//  2. {#N}       N random decimal digits, never with a leading zero
//  3. {$N}       N random alphanumeric characters
//  4. {a|b|...}  one alternative chosen uniformly at random
package templater

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MaxDirectiveLength caps N in {#N} and {$N}; larger directives are left verbatim.
const MaxDirectiveLength = 64

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	variableRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.\-]*)\}`)
	digitsRe   = regexp.MustCompile(`\{#(\d+)\}`)
	alnumRe    = regexp.MustCompile(`\{\$(\d+)\}`)
	choiceRe   = regexp.MustCompile(`\{([^{}|]*(?:\|[^{}|]*)+)\}`)
)

// Variables resolves variable references.
type Variables interface {
	Lookup(name string) (string, bool)
}

// Vars is a map-backed Variables.
type Vars map[string]string

// Lookup implements Variables.
func (v Vars) Lookup(name string) (string, bool) {
	val, ok := v[name]
	return val, ok
}

// FoldedVars matches variable names case-insensitively. Build it with Fold.
type FoldedVars map[string]string

// Fold merges the given maps into a FoldedVars; later maps win.
func Fold(maps ...map[string]string) FoldedVars {
	out := make(FoldedVars)
	for _, m := range maps {
		for k, v := range m {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

// Lookup implements Variables.
func (v FoldedVars) Lookup(name string) (string, bool) {
	val, ok := v[strings.ToLower(name)]
	return val, ok
}

// Templater expands templates using its own random source.
type Templater struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Templater. A nil rng is replaced by a time-seeded source.
func New(rng *rand.Rand) *Templater {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Templater{rng: rng}
}

// Expand resolves tmpl against vars. vars may be nil.
func (t *Templater) Expand(tmpl string, vars Variables) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}

	out := variableRe.ReplaceAllStringFunc(tmpl, func(tok string) string {
		if vars == nil {
			return tok
		}
		if val, ok := vars.Lookup(tok[1 : len(tok)-1]); ok {
			return val
		}
		return tok
	})

	t.mu.Lock()
	defer t.mu.Unlock()

	out = digitsRe.ReplaceAllStringFunc(out, func(tok string) string {
		n, ok := directiveLength(tok)
		if !ok {
			return tok
		}
		return t.digits(n)
	})
	out = alnumRe.ReplaceAllStringFunc(out, func(tok string) string {
		n, ok := directiveLength(tok)
		if !ok {
			return tok
		}
		return t.alphanumerics(n)
	})
	out = choiceRe.ReplaceAllStringFunc(out, func(tok string) string {
		alts := strings.Split(tok[1:len(tok)-1], "|")
		return alts[t.rng.Intn(len(alts))]
	})
	return out
}

// directiveLength parses N out of "{#N}" or "{$N}".
func directiveLength(tok string) (int, bool) {
	n, err := strconv.Atoi(tok[2 : len(tok)-1])
	if err != nil || n < 1 || n > MaxDirectiveLength {
		return 0, false
	}
	return n, true
}

// digits draws uniformly from [10^(n-1), 10^n - 1]: a non-zero leading digit followed
// by n-1 unrestricted digits covers that range exactly once per value.
func (t *Templater) digits(n int) string {
	b := make([]byte, n)
	b[0] = byte('1' + t.rng.Intn(9))
	for i := 1; i < n; i++ {
		b[i] = byte('0' + t.rng.Intn(10))
	}
	return string(b)
}

func (t *Templater) alphanumerics(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[t.rng.Intn(len(alphanumeric))]
	}
	return string(b)
}
