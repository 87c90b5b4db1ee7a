package fancy

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/atlanticdynamic/glidegate/internal/dsl/executor"
	"github.com/atlanticdynamic/glidegate/internal/dsl/screener"
	"github.com/atlanticdynamic/glidegate/internal/dsl/syntax"
)

// newTree returns a tree with the shared branch styling applied.
func newTree(root string) *tree.Tree {
	t := tree.New()
	t.EnumeratorStyle(BranchStyle)
	t.Enumerator(tree.RoundedEnumerator)
	t.Root(root)
	return t
}

// ValidationReport renders a combined security and syntax report as a
// styled tree.
func ValidationReport(verdict screener.Verdict, result syntax.Result) string {
	valid := verdict.Safe && result.Valid

	var root string
	if valid {
		root = ValidText("✓ Script is valid")
	} else {
		root = ErrorText("✗ Script has problems")
	}
	t := newTree(RootStyle.Render("Validation") + " " + root)

	if len(verdict.Violations) > 0 {
		branch := newTree(HeaderStyle.Render("Security") + " " + CountText(fmt.Sprintf("(%d)", len(verdict.Violations))))
		for _, v := range verdict.Violations {
			branch.Child(ErrorText(v))
		}
		t.Child(branch)
	}

	if len(verdict.DangerousOperations) > 0 {
		branch := newTree(HeaderStyle.Render("Dangerous operations") + " " + CountText(fmt.Sprintf("(%d)", len(verdict.DangerousOperations))))
		for _, op := range verdict.DangerousOperations {
			branch.Child(WarningText(op + "() requires confirmation before execution"))
		}
		t.Child(branch)
	}

	if len(result.Errors) > 0 {
		branch := newTree(HeaderStyle.Render("Errors") + " " + CountText(fmt.Sprintf("(%d)", len(result.Errors))))
		for _, f := range result.Errors {
			branch.Child(ErrorText(findingText(f)))
		}
		t.Child(branch)
	}

	if len(result.Warnings) > 0 {
		branch := newTree(HeaderStyle.Render("Warnings") + " " + CountText(fmt.Sprintf("(%d)", len(result.Warnings))))
		for _, f := range result.Warnings {
			branch.Child(WarningText(findingText(f)))
		}
		t.Child(branch)
	}

	return t.String()
}

func findingText(f syntax.Finding) string {
	if f.Line > 0 {
		return fmt.Sprintf("line %d: %s", f.Line, f.Message)
	}
	return f.Message
}

// ExecutionSummary renders the outcome of a script execution.
func ExecutionSummary(result executor.Result) string {
	var root string
	if result.Success {
		root = ValidText("✓ Execution succeeded")
	} else {
		root = ErrorText("✗ Execution failed")
	}
	t := newTree(RootStyle.Render("Execution") + " " + root)

	if result.Error != "" {
		t.Child(ErrorText(result.Error))
	}
	if result.Success {
		detail := fmt.Sprintf("records: %d", result.RecordCount)
		if result.Truncated {
			detail += " (truncated)"
		}
		t.Child(SummaryText(detail))
		t.Child(SummaryText("time: " + result.ExecutionTime.String()))
	}

	if len(result.Logs) > 0 {
		branch := newTree(HeaderStyle.Render("Logs") + " " + CountText(fmt.Sprintf("(%d)", len(result.Logs))))
		for _, line := range result.Logs {
			branch.Child(InfoStyle.Render(TruncateString(line, 120)))
		}
		t.Child(branch)
	}

	return t.String()
}

// GeneratedScript renders a generated script with its validation findings.
func GeneratedScript(script string, result syntax.Result) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Generated script"))
	b.WriteString("\n\n  ")
	b.WriteString(script)
	b.WriteString("\n")
	if !result.Valid || len(result.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(ValidationReport(screener.Verdict{Safe: true}, result))
	}
	return b.String()
}
