package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var _ FileStore = (*DiskDriver)(nil)

// DiskDriver writes objects below baseDir; publicURL is where the server
// exposes that directory.
type DiskDriver struct {
	baseDir   string
	publicURL string
	logger    *log.Logger
}

func NewDiskDriver(baseDir, publicURL string, logger *log.Logger) (*DiskDriver, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create storage dir %s", baseDir)
	}
	return &DiskDriver{baseDir: baseDir, publicURL: publicURL, logger: logger}, nil
}

func (dd *DiskDriver) path(key string) (string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return "", errors.Errorf("invalid object key %q", key)
		}
	}
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", errors.Errorf("invalid object key %q", key)
	}
	return filepath.Join(dd.baseDir, filepath.FromSlash(clean)), nil
}

func (dd *DiskDriver) Put(_ context.Context, key string, r io.ReadSeeker, _ int64, _ string) (string, error) {
	p, err := dd.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", errors.Wrap(err, "create object dir")
	}

	f, err := os.Create(p)
	if err != nil {
		return "", errors.Wrap(err, "create object file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(p)
		return "", errors.Wrap(err, "write object file")
	}

	dd.logger.WithField("key", key).Debug("stored object on disk")
	return joinURL(dd.publicURL, key), nil
}

func (dd *DiskDriver) Delete(_ context.Context, key string) error {
	p, err := dd.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return errors.Wrap(err, "remove object file")
	}
	return nil
}
