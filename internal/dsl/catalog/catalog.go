// Package catalog holds the static security configuration shared by the
// script screener and the execution orchestrator: blacklisted patterns,
// the operation table, and the script length limit.
package catalog

import (
	"fmt"
	"regexp"
)

// DefaultMaxScriptLength is the maximum accepted script size in characters.
const DefaultMaxScriptLength = 10000

// Pattern is a compiled blacklist entry. Source is the original expression
// text, used verbatim in violation messages.
type Pattern struct {
	Source string
	Regex  *regexp.Regexp
}

// Operation is one entry in the unified operation table. The screener reports
// Dangerous operations for confirmation workflows; the executor uses the
// Write flag to warn about persisting changes in test mode.
type Operation struct {
	Name      string
	Dangerous bool
	Write     bool
}

// Catalog is immutable after construction. Replace the whole catalog to
// change policy; instances never mutate a catalog they were given.
type Catalog struct {
	Blacklist       []Pattern
	Operations      []Operation
	MaxScriptLength int
}

// Option configures a Catalog during construction.
type Option func(*Catalog)

// WithMaxScriptLength overrides the script length limit.
func WithMaxScriptLength(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.MaxScriptLength = n
		}
	}
}

// WithBlacklist replaces the blacklist wholesale.
func WithBlacklist(patterns []Pattern) Option {
	return func(c *Catalog) {
		c.Blacklist = patterns
	}
}

// WithExtraBlacklist appends additional patterns to the default blacklist.
func WithExtraBlacklist(patterns []Pattern) Option {
	return func(c *Catalog) {
		c.Blacklist = append(c.Blacklist, patterns...)
	}
}

// WithOperations replaces the operation table wholesale.
func WithOperations(ops []Operation) Option {
	return func(c *Catalog) {
		c.Operations = ops
	}
}

// WithExtraDangerousOperations appends operation names that require
// confirmation. Names already present in the table are marked dangerous
// instead of duplicated.
func WithExtraDangerousOperations(names []string) Option {
	return func(c *Catalog) {
	next:
		for _, name := range names {
			for i := range c.Operations {
				if c.Operations[i].Name == name {
					c.Operations[i].Dangerous = true
					continue next
				}
			}
			c.Operations = append(c.Operations, Operation{Name: name, Dangerous: true})
		}
	}
}

// New builds a catalog starting from the defaults and applying options.
func New(opts ...Option) *Catalog {
	c := Default()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Blacklist:       defaultBlacklist(),
		Operations:      defaultOperations(),
		MaxScriptLength: DefaultMaxScriptLength,
	}
}

// DangerousOperations returns the names of operations requiring explicit
// confirmation before execution.
func (c *Catalog) DangerousOperations() []string {
	var names []string
	for _, op := range c.Operations {
		if op.Dangerous {
			names = append(names, op.Name)
		}
	}
	return names
}

// WriteOperations returns the names of operations that persist changes.
func (c *Catalog) WriteOperations() []string {
	var names []string
	for _, op := range c.Operations {
		if op.Write {
			names = append(names, op.Name)
		}
	}
	return names
}

// CompilePatterns compiles raw expressions into case-insensitive blacklist
// patterns. Used by the config layer for user-supplied additions.
func CompilePatterns(exprs []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(exprs))
	for _, expr := range exprs {
		p, err := CompilePattern(expr)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// CompilePattern compiles a single blacklist expression case-insensitively.
func CompilePattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, expr, err)
	}
	return Pattern{Source: expr, Regex: re}, nil
}

// mustPattern is for the built-in blacklist, which is known to compile.
func mustPattern(expr string) Pattern {
	p, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func defaultBlacklist() []Pattern {
	return []Pattern{
		mustPattern(`eval\s*\(`),
		mustPattern(`new\s+Function`),
		mustPattern(`gs\.sql\s*\(`),
		mustPattern(`gs\.setProperty\s*\(`),
		mustPattern(`gs\.executeNow\s*\(`),
		mustPattern(`GlideDBFunctionBuilder`),
		mustPattern(`GlideScriptedExtensionPoint`),
		mustPattern(`drop\s+table`),
		mustPattern(`truncate\s+table`),
	}
}

func defaultOperations() []Operation {
	return []Operation{
		{Name: "deleteMultiple", Dangerous: true, Write: true},
		{Name: "updateMultiple", Dangerous: true, Write: true},
		{Name: "disableWorkflow", Dangerous: true},
		{Name: "disableAutoSysFields", Dangerous: true},
		{Name: "forceUpdate", Dangerous: true},
		{Name: "insert", Write: true},
		{Name: "update", Write: true},
		{Name: "insertOrUpdate", Write: true},
		{Name: "del", Write: true},
	}
}
