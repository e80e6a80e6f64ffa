// internal/app/system/uploads/uploads.go
package uploads

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves user-submitted files and returns a URL the frontend can
// serve them from.
type Store interface {
	// Save writes r under a generated key in the given category
	// ("avatars", "documents", "banners", ...) and returns the public URL.
	Save(category, filename string, r io.Reader) (url string, err error)
	// Remove deletes a previously saved file by its URL. Unknown URLs are
	// a no-op.
	Remove(url string) error
}

// Local stores files on disk under baseDir and serves them under urlPrefix
// via the static file route.
type Local struct {
	baseDir   string
	urlPrefix string
}

func NewLocal(baseDir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{baseDir: baseDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Save writes the file under <category>/<yyyy>/<mm>/<uuid><ext>. The
// original filename only contributes its extension; everything else in the
// path is generated, so uploads can never collide or traverse.
func (l *Local) Save(category, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	now := time.Now().UTC()
	rel := path.Join(category, now.Format("2006"), now.Format("01"), uuid.NewString()+ext)

	dst := filepath.Join(l.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", err
	}
	return l.urlPrefix + "/" + rel, nil
}

// Remove deletes the file behind a URL this store produced.
func (l *Local) Remove(url string) error {
	rel, ok := strings.CutPrefix(url, l.urlPrefix+"/")
	if !ok {
		return nil
	}
	// Re-clean so a crafted URL cannot step outside baseDir.
	rel = filepath.Clean(filepath.FromSlash(rel))
	if rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(l.baseDir, rel))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// BaseDir exposes the root for wiring the static file route.
func (l *Local) BaseDir() string { return l.baseDir }
