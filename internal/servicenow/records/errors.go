package records

import "errors"

var (
	ErrNilClient    = errors.New("transport client is required")
	ErrUnknownTable = errors.New("unknown table")
	ErrEmptyRecord  = errors.New("record data is empty")
)
