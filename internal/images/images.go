package images

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidType = errors.New("invalid image type")

// PublicPrefix is the URL path local images are served under.
const PublicPrefix = "/public/uploads"

var allowedTypes = map[string]string{
	"image/png":  "png",
	"image/jpg":  "jpg",
	"image/jpeg": "jpeg",
}

// Extension maps an accepted content type to the stored file extension.
func Extension(contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext, ok := allowedTypes[ct]
	if !ok {
		return "", ErrInvalidType
	}
	return ext, nil
}

// FileName builds "<original with spaces as dashes>-<unix millis>.<ext>".
func FileName(original, ext string, now time.Time) string {
	base := strings.ReplaceAll(filepath.Base(original), " ", "-")
	return base + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "." + ext
}

type Store interface {
	// Save stores the image and returns its URL. Relative URLs start with
	// PublicPrefix and are completed by the caller.
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, name string) error
}
