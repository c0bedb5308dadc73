// Package uploadsvc stores uploaded media and returns their public URL.
package uploadsvc

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/astravon/portal/core"
)

const (
	DriverDisk = "disk"
	DriverS3   = "s3"
)

var ErrUnknownDriver = errors.New("unknown upload driver")

// Uploader saves a file and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

// New returns the uploader selected by conf.Upload.Driver.
func New(ctx context.Context, conf *core.Config) (Uploader, error) {
	switch conf.Upload.Driver {
	case DriverDisk, "":
		return NewDiskUploader(conf.Upload.Dir, conf.Upload.PublicURL), nil
	case DriverS3:
		return NewS3Uploader(ctx, conf.Upload)
	default:
		return nil, errors.Wrap(ErrUnknownDriver, conf.Upload.Driver)
	}
}

// objectKey returns a unique, date-prefixed key keeping the original extension.
func objectKey(filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 || strings.ContainsAny(ext, " /?#%") {
		ext = ""
	}
	return fmt.Sprintf("uploads/%d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
