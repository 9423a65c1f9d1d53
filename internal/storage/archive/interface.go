// internal/storage/archive/interface.go
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned by Read when nothing is stored at the path
var ErrNotFound = errors.New("archive: not found")

// Storage defines the interface for published output backends
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// Join builds a storage path from segments, rejecting empty, "." and ".."
// elements and absolute segments so a path can never leave the data root.
func Join(segments ...string) (string, error) {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		trimmed := strings.TrimSpace(seg)
		if trimmed == "" {
			return "", fmt.Errorf("path segment must not be empty")
		}
		if strings.HasPrefix(trimmed, "/") || strings.HasPrefix(trimmed, `\`) {
			return "", fmt.Errorf("absolute path segments are not allowed")
		}
		for _, elem := range strings.FieldsFunc(trimmed, func(r rune) bool { return r == '/' || r == '\\' }) {
			if elem == "." || elem == ".." {
				return "", fmt.Errorf("relative path segments are not allowed")
			}
		}
		parts = append(parts, trimmed)
	}
	return path.Join(parts...), nil
}

// WriteJSON encodes v with two-space indentation and stores it
func WriteJSON(ctx context.Context, s Storage, p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", p, err)
	}
	if err := s.Write(ctx, p, data); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

// ReadJSON reads and decodes the document at p into v
func ReadJSON(ctx context.Context, s Storage, p string, v any) error {
	data, err := s.Read(ctx, p)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", p, err)
	}
	return nil
}
