package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultCacheEntries is the number of decoded frames an ImageCache created
// by NewImageCache keeps.
const DefaultCacheEntries = 32

// ImageCache provides thread-safe caching of decoded frames keyed by path.
//
// Stateless analysis tools inspect the same still image repeatedly (frame
// info, then enhancement, then power); the cache avoids decoding it each
// time. Session frames are a stream and bypass the cache, see Decode.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Staleness
//
// Each entry remembers the modification time and size of the file it was
// decoded from. A camera that keeps rewriting the same path (e.g.
// latest.png) is picked up on the next Load.
//
// # Memory Management
//
// At most maxEntries images are kept; loading one more drops the entry that
// was decoded longest ago. Evict and Clear remove entries explicitly.
type ImageCache struct {
	mu         sync.RWMutex
	images     map[string]*cacheEntry
	maxEntries int
	seq        uint64
}

type cacheEntry struct {
	img     image.Image
	modTime time.Time
	size    int64
	seq     uint64
}

// NewImageCache creates an empty cache holding up to DefaultCacheEntries images.
func NewImageCache() *ImageCache {
	return NewImageCacheWithLimit(DefaultCacheEntries)
}

// NewImageCacheWithLimit creates an empty cache holding up to maxEntries
// images. A limit below 1 is treated as 1.
func NewImageCacheWithLimit(maxEntries int) *ImageCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &ImageCache{
		images:     make(map[string]*cacheEntry),
		maxEntries: maxEntries,
	}
}

// Load retrieves an image from the cache or decodes it from disk if it is
// not cached or the file changed since it was cached.
//
// The image is cached using the exact path string provided. Different paths to the
// same file (e.g., relative vs absolute) will result in separate cache entries.
func (c *ImageCache) Load(path string) (image.Image, error) {
	stat, err := os.Stat(path)
	if err != nil {
		c.Evict(path)
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok && e.size == stat.Size() && e.modTime.Equal(stat.ModTime()) {
		return e.img, nil
	}

	img, err := Decode(path)
	if err != nil {
		c.Evict(path)
		return nil, err
	}

	c.mu.Lock()
	c.seq++
	c.images[path] = &cacheEntry{img: img, modTime: stat.ModTime(), size: stat.Size(), seq: c.seq}
	for len(c.images) > c.maxEntries {
		c.evictOldestLocked()
	}
	c.mu.Unlock()

	return img, nil
}

func (c *ImageCache) evictOldestLocked() {
	var oldest string
	var oldestSeq uint64
	first := true
	for p, e := range c.images {
		if first || e.seq < oldestSeq {
			oldest, oldestSeq, first = p, e.seq, false
		}
	}
	delete(c.images, oldest)
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]*cacheEntry)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Decode reads and decodes one PNG, JPEG or GIF file without caching it.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// Region is a rectangle in frame coordinates, (X1,Y1) inclusive and
// (X2,Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func regionOf(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// FrameInfo describes a camera frame on disk and where its ROI lies.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// Format is "png", "jpeg", "gif" or "unknown", detected from the extension.
	Format string `json:"format"`

	// FileSizeBytes is the size of the file on disk.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// ROI is the centred analysis region. Empty when the frame is smaller
	// than the configured ROI.
	ROI Region `json:"roi"`

	// ROIFits reports whether the frame is large enough for the ROI.
	ROIFits bool `json:"roi_fits"`
}

// LoadFrameInfo loads a frame through the cache and describes it for an ROI
// of roiWidth x roiHeight pixels.
//
// The format is determined by file extension:
//   - ".png" -> "png"
//   - ".jpg", ".jpeg" -> "jpeg"
//   - ".gif" -> "gif"
//   - Other extensions -> "unknown"
func LoadFrameInfo(cache *ImageCache, path string, roiWidth, roiHeight int) (*FrameInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch filepath.Ext(path) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	}

	bounds := img.Bounds()
	info := &FrameInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        format,
		FileSizeBytes: stat.Size(),
	}
	if roi, err := ROIRect(bounds, roiWidth, roiHeight); err == nil {
		info.ROI = regionOf(roi)
		info.ROIFits = true
	}
	return info, nil
}
