// Package blobstore is the remote file store the catalog is read from and
// product images are written to. Paths starting with "/" are relative to the
// root captured at connect time, other paths to the current directory.
package blobstore

import (
	"context"
	"errors"
	"path"
	"strings"
)

var ErrClosed = errors.New("store is closed")

type Store interface {
	// Connect is idempotent; every other call connects lazily.
	Connect(ctx context.Context) error
	ChangeDir(ctx context.Context, dir string) error
	MakeDirAll(ctx context.Context, dir string) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	WriteFile(ctx context.Context, name string, data []byte) error
	Close() error
}

func resolve(root, cwd, p string) string {
	if path.IsAbs(p) {
		return path.Join(root, p)
	}
	return path.Join(cwd, p)
}

// relParts splits abs into its components below root.
func relParts(root, abs string) []string {
	rel := strings.TrimPrefix(abs, root)
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
