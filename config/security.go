package config

import (
	"errors"
	"fmt"
	"os"
)

const (
	maxConfigSize = 1 << 20 // 1MB max config file size
	maxJSONDepth  = 32      // Maximum JSON nesting depth
)

// safeReadFile reads a config file with size and type validation
func safeReadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("empty config path")
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat config file: %w", err)
	}

	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes > %d", info.Size(), maxConfigSize)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	return data, nil
}

// validateJSONDepth rejects pathologically nested JSON before parsing
func validateJSONDepth(data []byte) error {
	depth := 0
	inString := false
	escaped := false

	for _, b := range data {
		if escaped {
			escaped = false
			continue
		}
		switch b {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{', '[':
			if !inString {
				depth++
				if depth > maxJSONDepth {
					return fmt.Errorf("JSON nesting too deep: > %d levels", maxJSONDepth)
				}
			}
		case '}', ']':
			if !inString {
				depth--
			}
		}
	}

	return nil
}
