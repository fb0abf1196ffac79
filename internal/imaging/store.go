package imaging

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// URLPrefix is the path under which annotated images are served.
const URLPrefix = "/imagens/"

// AnnotationStore writes annotated images as JPEG files with unique names
// into a single directory.
type AnnotationStore struct {
	dir     string
	quality int
}

// NewAnnotationStore creates dir if needed. quality is the JPEG quality
// (1-100).
func NewAnnotationStore(dir string, quality int) (*AnnotationStore, error) {
	if dir == "" {
		return nil, errors.New("annotation directory is empty")
	}
	if quality < 1 || quality > 100 {
		return nil, errors.Errorf("jpeg quality %d outside 1-100", quality)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", dir)
	}
	return &AnnotationStore{dir: dir, quality: quality}, nil
}

// Dir returns the directory images are written to.
func (s *AnnotationStore) Dir() string {
	return s.dir
}

// Save encodes img as annot_<32 hex digits>.jpg and returns the file name.
func (s *AnnotationStore) Save(img image.Image) (string, error) {
	name := NewAnnotationName()
	if err := imaging.Save(img, s.Path(name), imaging.JPEGQuality(s.quality)); err != nil {
		return "", errors.Wrap(err, "failed to write annotated image")
	}
	return name, nil
}

// Path returns the file system path of a stored image. Directory components
// in name are discarded.
func (s *AnnotationStore) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// NewAnnotationName returns a fresh annot_<hex>.jpg file name.
func NewAnnotationName() string {
	return "annot_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".jpg"
}

// URL returns the relative URL a stored image is served from.
func URL(name string) string {
	return URLPrefix + name
}
