package executor

import (
	"fmt"
	"regexp"
	"strings"
)

// testModeWrapper embeds the original expression in an IIFE that measures
// array results against the test-mode bound and returns a tagged envelope
// when it truncates. Non-array results pass through unchanged.
const testModeWrapper = `(function () {
    var result = (%s);
    if (Array.isArray(result) && result.length > %d) {
        return {
            "__testModeEnvelope": true,
            "truncated": true,
            "totalCount": result.length,
            "data": result.slice(0, %d)
        };
    }
    return result;
})();`

// statementKeywordRe spots declarations and control flow at the start of a
// line, which mark a script as statement-shaped rather than a single
// expression.
var statementKeywordRe = regexp.MustCompile(`(?m)^\s*(var|let|const|if|for|while|function|return)\b`)

// WrapTestMode rewrites a single query expression for test-mode execution.
// The rewrite is text-to-text; the script is never parsed. Scripts that are
// not expression-shaped cannot be wrapped safely and are rejected rather
// than silently mis-wrapped.
func WrapTestMode(script string, maxResults int) (string, error) {
	expr := strings.TrimSpace(script)
	expr = strings.TrimSuffix(expr, ";")
	expr = strings.TrimSpace(expr)

	if strings.Contains(expr, ";") || statementKeywordRe.MatchString(expr) {
		return "", fmt.Errorf("%w: test mode requires a single query expression", ErrNotExpression)
	}

	return fmt.Sprintf(testModeWrapper, expr, maxResults, maxResults), nil
}
