package nlgen

import "errors"

var (
	ErrEmptyRequest        = errors.New("request is empty")
	ErrUnsupportedRequest  = errors.New("request did not match any supported shape")
	ErrUnknownTable        = errors.New("unknown table")
	ErrUnparsableCondition = errors.New("could not parse condition")
)
