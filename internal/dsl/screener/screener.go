// Package screener implements the security gate that runs before any script
// reaches the remote interpreter. It rejects over-length scripts and scripts
// matching blacklisted patterns, and independently reports operations that
// require explicit confirmation.
package screener

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
)

// Verdict is the outcome of a single screening pass. Safe is false only when
// a length or blacklist violation occurred; DangerousOperations is
// informational and never affects Safe on its own.
type Verdict struct {
	Safe                bool     `json:"safe"`
	Violations          []string `json:"violations,omitempty"`
	DangerousOperations []string `json:"dangerous_operations,omitempty"`
}

// dangerousOp pairs an operation name with its compiled call matcher.
type dangerousOp struct {
	name string
	call *regexp.Regexp
}

// Screener screens scripts against a fixed catalog. Safe for concurrent use;
// all state is immutable after construction.
type Screener struct {
	cat       *catalog.Catalog
	dangerous []dangerousOp
}

// New builds a screener from the given catalog. A nil catalog uses the
// built-in defaults.
func New(cat *catalog.Catalog) *Screener {
	if cat == nil {
		cat = catalog.Default()
	}

	s := &Screener{cat: cat}
	for _, name := range cat.DangerousOperations() {
		s.dangerous = append(s.dangerous, dangerousOp{
			name: name,
			call: callPattern(name),
		})
	}
	return s
}

// callPattern matches a method-call shape for the operation name,
// case-insensitively and tolerant of whitespace around the call.
func callPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\.\s*` + regexp.QuoteMeta(name) + `\s*\(`)
}

// Screen evaluates the script against the full catalog. Every blacklist
// pattern is tested; screening never short-circuits on the first match, so
// all simultaneous violations are reported together.
func (s *Screener) Screen(script string) Verdict {
	v := Verdict{Safe: true}

	// The limit counts characters, not bytes, so multibyte scripts are not
	// over-counted.
	if n := utf8.RuneCountInString(script); n > s.cat.MaxScriptLength {
		v.Violations = append(v.Violations, fmt.Sprintf(
			"script length %d exceeds the maximum of %d characters",
			n, s.cat.MaxScriptLength))
	}

	for _, p := range s.cat.Blacklist {
		if p.Regex.MatchString(script) {
			v.Violations = append(v.Violations, fmt.Sprintf(
				"script matches blacklisted pattern: %s", p.Source))
		}
	}

	// Dangerous operations are reported once per distinct name, whatever the
	// casing or repeat count in the script.
	for _, op := range s.dangerous {
		if op.call.MatchString(script) {
			v.DangerousOperations = append(v.DangerousOperations, op.name)
		}
	}

	v.Safe = len(v.Violations) == 0
	return v
}
