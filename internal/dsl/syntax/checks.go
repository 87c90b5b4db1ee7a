package syntax

import (
	"fmt"
	"regexp"
	"strings"
)

// undefinedMethod maps a wrong-but-plausible method name to the correct call
// and a one-line suggestion.
type undefinedMethod struct {
	Name        string
	Replacement string
	Hint        string
}

var undefinedMethods = []undefinedMethod{
	{"selectAll", "select", "pass the field names you need to select(...), or use toArray(limit)"},
	{"findOne", "selectOne", "selectOne() returns an optional single result"},
	{"query", "select", "the fluent builder executes with select() or toArray(limit)"},
	{"addQuery", "where", "conditions are appended with where(field, operator, value)"},
	{"next", "select", "results are streamed; iterate with select(...).forEach(...)"},
	{"getValue", "select", "request fields through select('field') instead of reading them off a row"},
	{"setValue", "update", "pass the changed fields as an object to update(...) or insert(...)"},
}

var undefinedMethodLookup = func() map[string]undefinedMethod {
	m := make(map[string]undefinedMethod, len(undefinedMethods))
	for _, um := range undefinedMethods {
		m[um.Name] = um
	}
	return m
}()

var undefinedMethodRe = func() *regexp.Regexp {
	names := make([]string, len(undefinedMethods))
	for i, um := range undefinedMethods {
		names[i] = um.Name
	}
	return regexp.MustCompile(`\.\s*(` + strings.Join(names, "|") + `)\s*\(`)
}()

// checkUndefinedMethods reports every occurrence of a known-wrong method
// name, one error per occurrence including repeats.
func checkUndefinedMethods(script string) (errs, warns []Finding) {
	for _, m := range undefinedMethodRe.FindAllStringSubmatchIndex(script, -1) {
		name := script[m[2]:m[3]]
		um := undefinedMethodLookup[name]
		errs = append(errs, Finding{
			Message: fmt.Sprintf("Undefined method '%s'. Use %s(...) instead: %s",
				name, um.Replacement, um.Hint),
			Line: lineOf(script, m[0]),
		})
	}
	return errs, warns
}

// terminalOperations conclude a chain and trigger remote work. Only one may
// appear per statement.
var terminalOperations = []string{
	"select", "selectOne", "toArray", "get", "getBy",
	"insert", "update", "updateMultiple", "insertOrUpdate",
	"del", "deleteMultiple",
	"count", "sum", "avg", "min", "max",
}

var (
	terminalCallRe      = regexp.MustCompile(`\.\s*(` + strings.Join(terminalOperations, "|") + `)\s*\(`)
	terminalChainTailRe = regexp.MustCompile(`^\s*\.\s*(` + strings.Join(terminalOperations, "|") + `)\s*\(`)
)

// checkTerminalChaining reports a second terminal call chained directly onto
// the close of a first one. The error is attributed to the second call.
func checkTerminalChaining(script string) (errs, warns []Finding) {
	for _, m := range terminalCallRe.FindAllStringSubmatchIndex(script, -1) {
		first := script[m[2]:m[3]]

		// The match ends just past the opening paren of the first call.
		closeIdx := matchingParen(script, m[1]-1)
		if closeIdx < 0 {
			continue
		}

		tail := script[closeIdx+1:]
		tm := terminalChainTailRe.FindStringSubmatchIndex(tail)
		if tm == nil {
			continue
		}

		second := tail[tm[2]:tm[3]]
		errs = append(errs, Finding{
			Message: fmt.Sprintf("Cannot chain %s() after %s(): only one terminal operation is allowed per statement",
				second, first),
			Line: lineOf(script, closeIdx+1+tm[2]),
		})
	}
	return errs, warns
}

// matchingParen returns the index of the close paren matching the open paren
// at openIdx, skipping parens inside single- or double-quoted strings.
// Returns -1 when unbalanced.
func matchingParen(script string, openIdx int) int {
	depth := 0
	var quote byte
	for i := openIdx; i < len(script); i++ {
		c := script[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// allowedOperators is the comparison operator allow-list for three-argument
// filter clauses and having clauses. Checked case-insensitively.
var allowedOperators = []string{
	"=", "!=", ">", ">=", "<", "<=",
	"IN", "NOT IN",
	"STARTSWITH", "ENDSWITH", "CONTAINS", "DOES NOT CONTAIN",
	"SAMEAS", "NSAMEAS",
	"GT_FIELD", "LT_FIELD", "GT_OR_EQUALS_FIELD", "LT_OR_EQUALS_FIELD",
	"ON", "NOT ON",
}

var allowedOperatorSet = func() map[string]bool {
	m := make(map[string]bool, len(allowedOperators))
	for _, op := range allowedOperators {
		m[op] = true
	}
	return m
}()

// operatorClauseRe matches the field/operator prefix of a three-argument
// where, orWhere, or having clause. Group 1 is the method, group 4 the
// operator literal.
var operatorClauseRe = regexp.MustCompile(
	`\.\s*(where|orWhere|having)\s*\(\s*(['"])[^'"]*['"]\s*,\s*(['"])([^'"]*)['"]\s*,`)

func checkOperators(script string) (errs, warns []Finding) {
	for _, m := range operatorClauseRe.FindAllStringSubmatchIndex(script, -1) {
		method := script[m[2]:m[3]]
		op := script[m[8]:m[9]]
		if allowedOperatorSet[strings.ToUpper(op)] {
			continue
		}
		errs = append(errs, Finding{
			Message: fmt.Sprintf("Invalid operator '%s' in %s(). Allowed operators: %s",
				op, method, strings.Join(allowedOperators, ", ")),
			Line: lineOf(script, m[0]),
		})
	}
	return errs, warns
}

// allowedFieldModifiers are the recognized $ suffixes on field references.
var allowedFieldModifiers = map[string]bool{
	"DISPLAY":          true,
	"CURRENCY_CODE":    true,
	"CURRENCY_DISPLAY": true,
	"CURRENCY_STRING":  true,
}

var fieldModifierRe = regexp.MustCompile(`['"][A-Za-z0-9_.]+\$([A-Za-z_][A-Za-z0-9_]*)['"]`)

// checkFieldModifiers warns on unknown field modifiers. Advisory only.
func checkFieldModifiers(script string) (errs, warns []Finding) {
	for _, m := range fieldModifierRe.FindAllStringSubmatchIndex(script, -1) {
		mod := script[m[2]:m[3]]
		if allowedFieldModifiers[mod] {
			continue
		}
		warns = append(warns, Finding{
			Message: fmt.Sprintf("Unknown field modifier '$%s'. Known modifiers: $DISPLAY, $CURRENCY_CODE, $CURRENCY_DISPLAY, $CURRENCY_STRING",
				mod),
			Line: lineOf(script, m[0]),
		})
	}
	return errs, warns
}

// knownMethods is the full builder vocabulary, used by the missing-paren
// check.
var knownMethods = func() map[string]bool {
	m := make(map[string]bool)
	for _, name := range terminalOperations {
		m[name] = true
	}
	for _, name := range []string{
		"where", "orWhere", "whereNull", "whereNotNull",
		"aggregate", "groupBy", "having",
		"orderBy", "orderByDesc", "limit",
		"disableWorkflow", "disableAutoSysFields", "forceUpdate", "withAcls",
	} {
		m[name] = true
	}
	return m
}()

var methodRefRe = regexp.MustCompile(`\.\s*([A-Za-z_][A-Za-z0-9_]*)`)

// checkMissingParens warns when a known method name is referenced without a
// call. The identifier match is maximal, so longer identifiers sharing a
// known prefix are not flagged.
func checkMissingParens(script string) (errs, warns []Finding) {
	for _, m := range methodRefRe.FindAllStringSubmatchIndex(script, -1) {
		name := script[m[2]:m[3]]
		if !knownMethods[name] {
			continue
		}
		rest := strings.TrimLeft(script[m[3]:], " \t")
		if strings.HasPrefix(rest, "(") {
			continue
		}
		warns = append(warns, Finding{
			Message: fmt.Sprintf("Method '%s' is missing call parentheses", name),
			Line:    lineOf(script, m[0]),
		})
	}
	return errs, warns
}

var (
	selectOneRe     = regexp.MustCompile(`\.\s*selectOne\s*\(`)
	optionalGuardRe = regexp.MustCompile(`isPresent|ifPresent|isEmpty|orElse`)
	legacyRecordRe  = regexp.MustCompile(`\bGlideRecord\b`)
)

// checkUnguardedSelectOne warns when the single-result accessor is used
// without any presence check or fallback elsewhere in the script. Heuristic;
// false negatives are acceptable.
func checkUnguardedSelectOne(script string) (errs, warns []Finding) {
	m := selectOneRe.FindStringIndex(script)
	if m == nil || optionalGuardRe.MatchString(script) {
		return nil, nil
	}
	warns = append(warns, Finding{
		Message: "selectOne() returns an optional result; guard with isPresent()/ifPresent() or provide a fallback with orElse()",
		Line:    lineOf(script, m[0]),
	})
	return errs, warns
}

// checkLegacyAPI warns on legacy row-cursor API usage.
func checkLegacyAPI(script string) (errs, warns []Finding) {
	m := legacyRecordRe.FindStringIndex(script)
	if m == nil {
		return nil, nil
	}
	warns = append(warns, Finding{
		Message: "Legacy GlideRecord API detected; use the fluent query builder instead",
		Line:    lineOf(script, m[0]),
	})
	return errs, warns
}
