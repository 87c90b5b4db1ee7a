// Package nlgen translates simple English requests into fluent query
// scripts. Translation is pattern-based: a fixed table of request shapes is
// tried in order and the first match wins. Nothing here executes anything.
package nlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/atlanticdynamic/glidegate/internal/servicenow/records"
)

// Generator is stateless and safe for concurrent use.
type Generator struct {
	patterns []pattern
}

type pattern struct {
	// Shape documents the request form for error messages.
	Shape string
	re    *regexp.Regexp
	build func(m []string) (string, error)
}

// New builds a generator with the built-in pattern table.
func New() *Generator {
	g := &Generator{}
	g.patterns = []pattern{
		{
			Shape: "count <table> [where <condition>]",
			re:    regexp.MustCompile(`(?i)^(?:count|how many)\s+(?:the\s+)?([\w ]+?)(?:\s+are there)?(?:\s+where\s+(.+))?$`),
			build: func(m []string) (string, error) {
				return g.buildRead(m[1], m[2], ".count()")
			},
		},
		{
			Shape: "show|find|list <table> [where <condition>]",
			re:    regexp.MustCompile(`(?i)^(?:show|find|list|get)\s+(?:me\s+)?(?:all\s+)?(?:the\s+)?([\w ]+?)(?:\s+records)?(?:\s+where\s+(.+))?$`),
			build: func(m []string) (string, error) {
				return g.buildRead(m[1], m[2], ".select()")
			},
		},
		{
			Shape: "create [a|an] <table> with <field> = <value>[, ...]",
			re:    regexp.MustCompile(`(?i)^create\s+(?:a\s+|an\s+)?([\w ]+?)\s+with\s+(.+)$`),
			build: g.buildCreate,
		},
		{
			Shape: "update <table> where <condition> set <field> = <value>[, ...]",
			re:    regexp.MustCompile(`(?i)^update\s+(?:all\s+)?(?:the\s+)?([\w ]+?)\s+where\s+(.+?)\s+set\s+(.+)$`),
			build: g.buildUpdate,
		},
		{
			Shape: "delete <table> where <condition>",
			re:    regexp.MustCompile(`(?i)^(?:delete|remove)\s+(?:all\s+)?(?:the\s+)?([\w ]+?)\s+where\s+(.+)$`),
			build: func(m []string) (string, error) {
				return g.buildRead(m[1], m[2], ".deleteMultiple()")
			},
		},
	}
	return g
}

// Generate translates the request or fails with the supported shapes.
func (g *Generator) Generate(text string) (string, error) {
	request := strings.TrimSpace(text)
	if request == "" {
		return "", ErrEmptyRequest
	}

	for _, p := range g.patterns {
		m := p.re.FindStringSubmatch(request)
		if m == nil {
			continue
		}
		return p.build(m)
	}

	shapes := make([]string, len(g.patterns))
	for i, p := range g.patterns {
		shapes[i] = p.Shape
	}
	return "", fmt.Errorf("%w; supported request shapes: %s",
		ErrUnsupportedRequest, strings.Join(shapes, "; "))
}

func (g *Generator) buildRead(tableText, condition, terminal string) (string, error) {
	table, err := resolveTable(tableText)
	if err != nil {
		return "", err
	}

	script := fmt.Sprintf("gq('%s')", table)
	if condition != "" {
		clause, err := buildWhere(condition)
		if err != nil {
			return "", err
		}
		script += clause
	}
	return script + terminal, nil
}

func (g *Generator) buildCreate(m []string) (string, error) {
	table, err := resolveTable(m[1])
	if err != nil {
		return "", err
	}

	assignments, err := parseAssignments(m[2])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("gq('%s').insert({%s})", table, assignments), nil
}

func (g *Generator) buildUpdate(m []string) (string, error) {
	table, err := resolveTable(m[1])
	if err != nil {
		return "", err
	}

	clause, err := buildWhere(m[2])
	if err != nil {
		return "", err
	}

	assignments, err := parseAssignments(m[3])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("gq('%s')%s.updateMultiple({%s})", table, clause, assignments), nil
}

func resolveTable(text string) (string, error) {
	if t, ok := records.Lookup(text); ok {
		return t.Name, nil
	}
	// A bare identifier may name a table outside the registry.
	candidate := strings.ToLower(strings.TrimSpace(text))
	if regexp.MustCompile(`^[a-z_][a-z0-9_]*$`).MatchString(candidate) {
		return candidate, nil
	}
	return "", fmt.Errorf("%w: %q (known tables: %s)",
		ErrUnknownTable, text, strings.Join(records.Known(), ", "))
}

// conditionRe splits "field is|=|contains|starts with|over|under value".
var conditionRe = regexp.MustCompile(`(?i)^([\w ]+?)\s+(is not|is|=|!=|contains|starts with|ends with|over|above|under|below)\s+(.+)$`)

var conditionOperators = map[string]string{
	"is":          "=",
	"=":           "=",
	"is not":      "!=",
	"!=":          "!=",
	"contains":    "CONTAINS",
	"starts with": "STARTSWITH",
	"ends with":   "ENDSWITH",
	"over":        ">",
	"above":       ">",
	"under":       "<",
	"below":       "<",
}

func buildWhere(condition string) (string, error) {
	var clauses []string
	for _, part := range regexp.MustCompile(`(?i)\s+and\s+`).Split(condition, -1) {
		m := conditionRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return "", fmt.Errorf("%w: %q", ErrUnparsableCondition, part)
		}

		field := normalizeField(m[1])
		op := conditionOperators[strings.ToLower(m[2])]
		value := strings.Trim(strings.TrimSpace(m[3]), `'"`)
		clauses = append(clauses, fmt.Sprintf(".where('%s', '%s', '%s')", field, op, value))
	}
	return strings.Join(clauses, ""), nil
}

var assignmentSplitRe = regexp.MustCompile(`(?i)\s*,\s*|\s+and\s+`)

func parseAssignments(text string) (string, error) {
	var pairs []string
	for _, part := range assignmentSplitRe.Split(text, -1) {
		m := conditionRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil || conditionOperators[strings.ToLower(m[2])] != "=" {
			return "", fmt.Errorf("%w: %q", ErrUnparsableCondition, part)
		}

		field := normalizeField(m[1])
		value := strings.Trim(strings.TrimSpace(m[3]), `'"`)
		pairs = append(pairs, fmt.Sprintf("%s: '%s'", field, value))
	}
	return strings.Join(pairs, ", "), nil
}

// normalizeField turns "short description" into "short_description".
func normalizeField(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), "_")
}
