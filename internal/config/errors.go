package config

import "errors"

var (
	ErrInvalidTOML        = errors.New("invalid TOML")
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrMissingInstanceURL = errors.New("instance.url is required")
	ErrInvalidInstanceURL = errors.New("instance.url must be an absolute http or https URL")
	ErrMissingCredentials = errors.New("instance credentials are required (set instance.username/password or GLIDEGATE_USERNAME/GLIDEGATE_PASSWORD)")
	ErrInvalidValue       = errors.New("invalid config value")
	ErrUnknownLogFormat   = errors.New("unknown log format")
	ErrUnknownLogLevel    = errors.New("unknown log level")
)
