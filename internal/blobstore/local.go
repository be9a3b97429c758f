package blobstore

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// LocalStore serves the same layout from a filesystem directory; used for
// local runs and tests.
type LocalStore struct {
	fs        afero.Fs
	cwd       string
	connected bool
	closed    bool
}

// NewLocalStore roots the store at dir on the OS filesystem.
func NewLocalStore(dir string) (*LocalStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store root %s: %w", dir, err)
	}
	return NewLocalStoreFs(afero.NewBasePathFs(osFs, dir)), nil
}

func NewLocalStoreFs(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs, cwd: "/"}
}

func (s *LocalStore) Connect(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	s.connected = true
	return ctx.Err()
}

func (s *LocalStore) ChangeDir(ctx context.Context, dir string) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	target := resolve("/", s.cwd, dir)
	ok, err := afero.DirExists(s.fs, target)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if !ok {
		return fmt.Errorf("failed to change dir to %s: %w", target, os.ErrNotExist)
	}
	s.cwd = target
	return nil
}

func (s *LocalStore) MakeDirAll(ctx context.Context, dir string) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	target := resolve("/", s.cwd, dir)
	if err := s.fs.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create dir %s: %w", target, err)
	}
	return nil
}

func (s *LocalStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}

	target := resolve("/", s.cwd, name)
	data, err := afero.ReadFile(s.fs, target)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	return data, nil
}

func (s *LocalStore) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	target := resolve("/", s.cwd, name)
	if err := afero.WriteFile(s.fs, target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

func (s *LocalStore) Close() error {
	s.closed = true
	s.connected = false
	return nil
}
