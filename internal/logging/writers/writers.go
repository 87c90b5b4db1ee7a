// Package writers resolves log output destinations from configuration
// strings.
package writers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CreateWriter resolves an output specification to an io.Writer.
// Supported forms:
//   - "" or "stderr" - os.Stderr
//   - "stdout" - os.Stdout
//   - "file:///path/to/file" or "/path/to/file" - append to file, creating
//     parent directories as needed
func CreateWriter(output string) (io.Writer, error) {
	switch {
	case output == "" || output == "stderr":
		return os.Stderr, nil
	case output == "stdout":
		return os.Stdout, nil
	case strings.HasPrefix(output, "file://"):
		return createFileWriter(strings.TrimPrefix(output, "file://"))
	case isFilePath(output):
		return createFileWriter(output)
	default:
		return nil, fmt.Errorf("unsupported log output: %s", output)
	}
}

// isFilePath reports whether the string looks like a local file path rather
// than a URL with a non-file scheme.
func isFilePath(path string) bool {
	if strings.Contains(path, "://") {
		return false
	}
	return strings.ContainsAny(path, `/\`)
}

func createFileWriter(filePath string) (io.Writer, error) {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	return file, nil
}
