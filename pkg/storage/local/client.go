// Package local stores evidence uploads and generated packets as flat files
// on the service's disk, one directory per artifact class.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/disputedesk/disputedesk-backend/pkg/config"
	pkgerrors "github.com/disputedesk/disputedesk-backend/pkg/errors"
)

// Class selects which directory an object lives under.
type Class string

const (
	ClassUpload Class = "uploads"
	ClassPacket Class = "packets"
)

// Client reads and writes blobs under the configured base directories.
type Client struct {
	uploadsDir string
	packetsDir string
}

// NewClient ensures both directories exist and returns a store over them.
func NewClient(cfg config.StorageConfig) (*Client, error) {
	c := &Client{
		uploadsDir: cfg.UploadsDir,
		packetsDir: cfg.PacketsDir,
	}
	for _, dir := range []string{c.uploadsDir, c.packetsDir} {
		if strings.TrimSpace(dir) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "storage directory not configured")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("create storage dir %s", dir))
		}
	}
	return c, nil
}

func (c *Client) dirFor(class Class) (string, error) {
	switch class {
	case ClassUpload:
		return c.uploadsDir, nil
	case ClassPacket:
		return c.packetsDir, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unknown storage class %q", class))
	}
}

// resolve keeps object names inside the class directory. Names are always
// generated server-side, this guards against a bad row making it into the DB.
func (c *Client) resolve(class Class, name string) (string, error) {
	dir, err := c.dirFor(class)
	if err != nil {
		return "", err
	}
	clean := filepath.Base(filepath.Clean(name))
	if clean == "." || clean == string(filepath.Separator) || clean == ".." {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid object name")
	}
	return filepath.Join(dir, clean), nil
}

// Save streams r to disk under the given class and returns the stored path.
// A partial write never leaves a file behind.
func (c *Client) Save(_ context.Context, class Class, name string, r io.Reader) (string, error) {
	path, err := c.resolve(class, name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open blob for write")
	}

	if _, err := io.Copy(f, r); err != nil {
		err = multierr.Append(err, f.Close())
		err = multierr.Append(err, os.Remove(path))
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write blob")
	}
	if err := f.Close(); err != nil {
		err = multierr.Append(err, os.Remove(path))
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close blob")
	}
	return path, nil
}

// Open returns a reader over a stored blob. Missing files map to not found.
func (c *Client) Open(_ context.Context, storedPath string) (io.ReadCloser, error) {
	f, err := os.Open(storedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "blob not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open blob")
	}
	return f, nil
}

// Remove deletes a stored blob. Removing a missing blob is not an error.
func (c *Client) Remove(_ context.Context, storedPath string) error {
	if err := os.Remove(storedPath); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove blob")
	}
	return nil
}

// Ping verifies both directories are present and writable.
func (c *Client) Ping(_ context.Context) error {
	for _, dir := range []string{c.uploadsDir, c.packetsDir} {
		probe, err := os.CreateTemp(dir, ".probe-*")
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, fmt.Sprintf("storage dir %s not writable", dir))
		}
		name := probe.Name()
		if err := multierr.Append(probe.Close(), os.Remove(name)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "storage probe cleanup")
		}
	}
	return nil
}
