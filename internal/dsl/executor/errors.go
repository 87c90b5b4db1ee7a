package executor

import "errors"

var (
	// ErrNilRunner indicates construction without a remote runner.
	ErrNilRunner = errors.New("remote runner is required")

	// ErrNotExpression indicates a script that cannot be wrapped for test
	// mode because it is not a single expression.
	ErrNotExpression = errors.New("script is not expression-shaped")
)
