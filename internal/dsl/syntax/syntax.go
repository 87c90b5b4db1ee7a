// Package syntax implements the static linter for fluent query scripts. It
// runs a fixed table of shallow, pattern-based checks against the raw text;
// it is deliberately not a tokenizer or parser. Errors invalidate the script
// and always carry a 1-based line number; warnings are advisory only.
package syntax

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atlanticdynamic/glidegate/internal/dsl/catalog"
)

// Finding is a single diagnostic. Line is 1-based; 0 means the finding has
// no useful position.
type Finding struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Result is the outcome of one validation pass. Valid is true exactly when
// Errors is empty; warnings never affect validity.
type Result struct {
	Valid    bool      `json:"valid"`
	Errors   []Finding `json:"errors,omitempty"`
	Warnings []Finding `json:"warnings,omitempty"`
}

// check is one independent structural rule. Each check scans the raw script
// and reports its own findings; checks never depend on each other.
type check func(script string) (errs, warns []Finding)

// Validator runs the check table against submitted scripts. Stateless after
// construction and safe for concurrent use.
type Validator struct {
	maxLen int
	checks []check
}

// Option configures a Validator during construction.
type Option func(*Validator)

// WithMaxScriptLength overrides the script length limit.
func WithMaxScriptLength(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxLen = n
		}
	}
}

// New builds a validator with the full check table. New rules are added to
// the table here, never to Validate's control flow.
func New(opts ...Option) *Validator {
	v := &Validator{maxLen: catalog.DefaultMaxScriptLength}
	for _, opt := range opts {
		opt(v)
	}
	v.checks = []check{
		checkUndefinedMethods,
		checkTerminalChaining,
		checkOperators,
		checkFieldModifiers,
		checkMissingParens,
		checkUnguardedSelectOne,
		checkLegacyAPI,
	}
	return v
}

// Validate runs every check against the script and aggregates the findings.
// Empty and over-length scripts fail fast without running the check table.
func (v *Validator) Validate(script string) Result {
	if strings.TrimSpace(script) == "" {
		return Result{
			Errors: []Finding{{Message: "Script is empty", Line: 1}},
		}
	}

	if n := utf8.RuneCountInString(script); n > v.maxLen {
		return Result{
			Errors: []Finding{{
				Message: fmt.Sprintf("Script length %d exceeds the maximum of %d characters",
					n, v.maxLen),
				Line: 1,
			}},
		}
	}

	var result Result
	for _, c := range v.checks {
		errs, warns := c(script)
		result.Errors = append(result.Errors, errs...)
		result.Warnings = append(result.Warnings, warns...)
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// lineOf returns the 1-based line of a character offset, computed by counting
// line breaks in the preceding text.
func lineOf(script string, offset int) int {
	return strings.Count(script[:offset], "\n") + 1
}
