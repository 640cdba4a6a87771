package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// identifierRegex matches classifier and feature names.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateName validates a classifier, feature or enum literal name.
// Names travel in documents as plain strings and are resolved by exact match,
// so they are restricted to identifier characters.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidSchema, "name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidSchema, "name too long (max 256 characters)")
	}
	if !identifierRegex.MatchString(name) {
		return New(ErrCodeInvalidSchema, "invalid name: %q", name)
	}
	return nil
}

// ValidateNsURI validates a package namespace URI.
// It must be an absolute URI without a fragment.
func ValidateNsURI(nsURI string) error {
	if nsURI == "" {
		return New(ErrCodeInvalidSchema, "namespace URI cannot be empty")
	}
	u, err := url.Parse(nsURI)
	if err != nil {
		return Wrap(ErrCodeInvalidSchema, err, "invalid namespace URI %q", nsURI)
	}
	if u.Scheme == "" {
		return New(ErrCodeInvalidSchema, "namespace URI must be absolute: %q", nsURI)
	}
	if u.Fragment != "" {
		return New(ErrCodeInvalidSchema, "namespace URI cannot have a fragment: %q", nsURI)
	}
	return nil
}

// ValidateKey validates a document store key.
// It rejects keys that could escape a file store directory or confuse
// key-prefix scans:
//   - No empty keys
//   - No control characters or null bytes
//   - No path traversal sequences or backslashes
//   - No wildcard characters
//   - Maximum length of 512 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "key cannot be empty")
	}

	if len(key) > 512 {
		return New(ErrCodeInvalidKey, "key too long (max 512 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "\\", "*", "?", "[", "]"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidatePath validates a document file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
