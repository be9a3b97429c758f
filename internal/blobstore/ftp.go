package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
)

// ftpConn is the subset of *ftp.ServerConn the store needs.
type ftpConn interface {
	Login(user, password string) error
	CurrentDir() (string, error)
	ChangeDir(path string) error
	MakeDir(path string) error
	Retr(path string) (io.ReadCloser, error)
	Stor(path string, r io.Reader) error
	Quit() error
}

type serverConn struct {
	*ftp.ServerConn
}

func (c serverConn) Retr(path string) (io.ReadCloser, error) {
	res, err := c.ServerConn.Retr(path)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type FTPOptions struct {
	Addr        string
	User        string
	Password    string
	DialTimeout time.Duration
}

// FTPStore keeps one control connection for the whole run, opened on first
// use and closed once by Close.
type FTPStore struct {
	opts   FTPOptions
	logger *slog.Logger
	dial   func(ctx context.Context) (ftpConn, error)

	conn   ftpConn
	root   string
	cwd    string
	closed bool
}

func NewFTPStore(opts FTPOptions, logger *slog.Logger) *FTPStore {
	s := &FTPStore{opts: opts, logger: logger}
	s.dial = func(ctx context.Context) (ftpConn, error) {
		c, err := ftp.Dial(opts.Addr,
			ftp.DialWithContext(ctx),
			ftp.DialWithTimeout(opts.DialTimeout),
		)
		if err != nil {
			return nil, err
		}
		return serverConn{c}, nil
	}
	return s
}

func (s *FTPStore) Connect(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	if s.conn != nil {
		return nil
	}

	s.logger.Info("connecting to FTP", "addr", s.opts.Addr)

	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", s.opts.Addr, err)
	}

	if err := conn.Login(s.opts.User, s.opts.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("failed to login to %s: %w", s.opts.Addr, err)
	}

	root, err := conn.CurrentDir()
	if err != nil {
		conn.Quit()
		return fmt.Errorf("failed to read FTP root: %w", err)
	}

	s.conn = conn
	s.root = root
	s.cwd = root
	s.logger.Info("connected to FTP", "root", root)
	return nil
}

func (s *FTPStore) ChangeDir(ctx context.Context, dir string) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	target := resolve(s.root, s.cwd, dir)
	if err := s.conn.ChangeDir(target); err != nil {
		return fmt.Errorf("failed to change dir to %s: %w", target, err)
	}
	s.cwd = target
	return nil
}

// MakeDirAll creates every missing component of dir, then returns to the
// current directory.
func (s *FTPStore) MakeDirAll(ctx context.Context, dir string) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	target := resolve(s.root, s.cwd, dir)
	current := s.root
	for _, part := range relParts(s.root, target) {
		current = path.Join(current, part)
		if err := s.conn.ChangeDir(current); err == nil {
			continue
		}
		if err := s.conn.MakeDir(current); err != nil {
			return fmt.Errorf("failed to create dir %s: %w", current, err)
		}
	}

	if err := s.conn.ChangeDir(s.cwd); err != nil {
		return fmt.Errorf("failed to return to %s: %w", s.cwd, err)
	}
	return nil
}

func (s *FTPStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}

	target := resolve(s.root, s.cwd, name)
	r, err := s.conn.Retr(target)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s: %w", target, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	return data, nil
}

func (s *FTPStore) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}

	target := resolve(s.root, s.cwd, name)
	if err := s.conn.Stor(target, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store %s: %w", target, err)
	}
	return nil
}

func (s *FTPStore) Close() error {
	s.closed = true
	if s.conn == nil {
		return nil
	}

	err := s.conn.Quit()
	s.conn = nil
	s.logger.Info("FTP connection closed")
	return err
}
