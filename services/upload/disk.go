package uploadsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// DiskUploader writes files under a local directory served by the API under /media.
type DiskUploader struct {
	dir       string
	publicURL string
}

var _ Uploader = (*DiskUploader)(nil)

func NewDiskUploader(dir, publicURL string) *DiskUploader {
	return &DiskUploader{dir: dir, publicURL: publicURL}
}

func (u *DiskUploader) Dir() string { return u.dir }

func (u *DiskUploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key := objectKey(filename, time.Now().UTC())
	fp := filepath.Join(u.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating upload dir")
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating upload file")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(fp)
		return "", errors.Wrap(err, "writing upload file")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "closing upload file")
	}
	return joinURL(u.publicURL, key), nil
}
