package ioutils

import (
	"context"
	"fmt"
	"os"
)

// ReadFile reads a text file such as a request template.
//
// Parameters:
//   - ctx: Context for cancellation (checked before reading)
//   - path: File path to read
//
// Example:
//
//	tmpl, err := ReadFile(ctx, "base-post.xml")
func ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
