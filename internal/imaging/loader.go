package imaging

import (
	"bytes"
	"image"
	"io"
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrInvalidImage is returned when input cannot be decoded as an image or
// decodes to an image with no pixels.
var ErrInvalidImage = errors.New("invalid image or unsupported format")

// Decode reads a JPEG, PNG, GIF, BMP or TIFF image from r.
//
// EXIF orientation is applied, so photos taken with a rotated camera are
// analyzed upright. Undecodable data and zero-area images are reported as
// ErrInvalidImage; use errors.Cause to test for it.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidImage, err.Error())
	}
	if img.Bounds().Empty() {
		return nil, errors.Wrap(ErrInvalidImage, "zero-area image")
	}
	return img, nil
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidImage, "empty upload")
	}
	return Decode(bytes.NewReader(data))
}

// Open decodes the image file at path.
//
// A missing or unreadable file is reported as a plain I/O error, not as
// ErrInvalidImage.
func Open(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	return Decode(f)
}

// DefaultCacheEntries bounds an ImageCache built by NewImageCache.
const DefaultCacheEntries = 32

// ImageCache keeps decoded images keyed by file path so repeated analyses of
// the same file skip decoding.
//
// An entry is reused only while the file's size and modification time are
// unchanged, so a file rewritten in place is decoded again. When the cache is
// full it is emptied before the next image is stored.
//
// ImageCache is safe for concurrent use. Cached images are never modified by
// the analyzer, so they can be shared between goroutines.
type ImageCache struct {
	mu         sync.RWMutex
	images     map[string]cacheEntry
	maxEntries int
}

type cacheEntry struct {
	img     image.Image
	size    int64
	modTime time.Time
}

// NewImageCache creates an empty cache holding up to DefaultCacheEntries images.
func NewImageCache() *ImageCache {
	return NewImageCacheSize(DefaultCacheEntries)
}

// NewImageCacheSize creates an empty cache holding up to maxEntries images.
// Values below 1 are treated as 1.
func NewImageCacheSize(maxEntries int) *ImageCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &ImageCache{
		images:     make(map[string]cacheEntry),
		maxEntries: maxEntries,
	}
}

// Load returns the cached image for path, decoding it with Open on a miss or
// when the file changed since it was cached. Failed loads are not cached and
// drop any stale entry for path.
func (c *ImageCache) Load(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, errors.Wrap(err, "failed to open image")
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.size == info.Size() && e.modTime.Equal(info.ModTime()) {
		return e.img, nil
	}

	img, err := Open(path)
	if err != nil {
		c.Evict(path)
		return nil, err
	}

	c.mu.Lock()
	if _, present := c.images[path]; !present && len(c.images) >= c.maxEntries {
		c.images = make(map[string]cacheEntry)
	}
	c.images[path] = cacheEntry{img: img, size: info.Size(), modTime: info.ModTime()}
	c.mu.Unlock()

	return img, nil
}

// Evict drops path from the cache. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Clear empties the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
