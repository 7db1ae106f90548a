// Package imagestore keeps event images on local disk and serves them under
// a public URL prefix.
package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PublicPrefix is the URL path the upload directory is mounted at.
const PublicPrefix = "/uploads"

var ErrUnsupportedType = errors.New("unsupported image type")

var allowedExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

type Local struct {
	dir string
	now func() time.Time
}

func NewLocal(dir string) *Local {
	return &Local{dir: dir, now: time.Now}
}

func (l *Local) Dir() string { return l.dir }

// Save writes r under <dir>/<eventID>/ with a timestamped name and returns
// its public URL. A partially written file is removed.
func (l *Local) Save(ctx context.Context, eventID, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	eventDir := unsafeNameChars.ReplaceAllString(eventID, "_")
	base := unsafeNameChars.ReplaceAllString(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)), "_")
	name := strconv.FormatInt(l.now().UnixMilli(), 10) + "_" + base + ext

	dir := filepath.Join(l.dir, eventDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	full := filepath.Join(dir, name)
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close image: %w", err)
	}

	return path.Join(PublicPrefix, eventDir, name), nil
}
