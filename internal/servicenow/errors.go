package servicenow

import "errors"

var (
	ErrMissingBaseURL     = errors.New("instance base URL is required")
	ErrInvalidBaseURL     = errors.New("invalid instance base URL")
	ErrMissingCredentials = errors.New("instance credentials are required")
	ErrInvalidTable       = errors.New("invalid table name")
	ErrRequestFailed      = errors.New("request failed")
	ErrUnexpectedStatus   = errors.New("unexpected response status")
	ErrRecordNotFound     = errors.New("record not found")
	ErrScriptExecution    = errors.New("script execution failed")
)
