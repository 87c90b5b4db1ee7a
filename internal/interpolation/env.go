// Package interpolation expands ${VAR} and ${VAR:default} environment
// variable references in configuration values.
package interpolation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
)

// Captures the variable name, an optional colon, and the default value.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:)?([^}]*)\}`)

// ExpandEnvVars replaces every ${VAR_NAME} or ${VAR_NAME:default} reference
// in input. A reference with no default for an unset variable is an error;
// ${VAR:} resolves to the empty string.
func ExpandEnvVars(input string) (string, error) {
	if input == "" {
		return "", nil
	}

	var missing []error
	result := envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, fallback := sub[1], sub[2] == ":", sub[3]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if hasDefault {
			return fallback
		}

		missing = append(missing, fmt.Errorf("environment variable not defined: %s", name))
		return match
	})

	return result, errors.Join(missing...)
}
