package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"time"
)

// Dimensions describes an image without its pixel data.
type Dimensions struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name reported by the image package: "jpeg", "png"
	// or "gif".
	Format string `json:"format"`
}

// Probe reads just enough of the file at path to learn its dimensions.
// Pixel data is never decoded.
func Probe(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Dimensions{}, fmt.Errorf("image %s has empty dimensions %dx%d", path, cfg.Width, cfg.Height)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// cacheKey ties a cached entry to the file state it was read from, so a
// rewritten file is probed again.
type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// DimensionCache provides thread-safe caching of probed dimensions to avoid
// redundant header reads when the same dataset is scanned repeatedly, as the
// tool server does.
//
// Entries are keyed by path plus the file's size and modification time; a
// changed file misses the cache and is probed again.
//
// DimensionCache is safe for concurrent use by multiple goroutines.
type DimensionCache struct {
	mu   sync.RWMutex
	dims map[cacheKey]Dimensions
}

// NewDimensionCache creates and initializes a new empty cache.
func NewDimensionCache() *DimensionCache {
	return &DimensionCache{
		dims: make(map[cacheKey]Dimensions),
	}
}

// Probe returns cached dimensions for path, reading the image header when the
// file is not cached or has changed since it was cached.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable PNG, JPEG, or GIF image
func (c *DimensionCache) Probe(path string) (Dimensions, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to stat image: %w", err)
	}
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime()}

	c.mu.RLock()
	if d, ok := c.dims[key]; ok {
		c.mu.RUnlock()
		return d, nil
	}
	c.mu.RUnlock()

	d, err := Probe(path)
	if err != nil {
		return Dimensions{}, err
	}

	c.mu.Lock()
	c.dims[key] = d
	c.mu.Unlock()

	return d, nil
}

// Len returns the number of cached entries.
func (c *DimensionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.dims)
}

// Clear removes all cached entries.
func (c *DimensionCache) Clear() {
	c.mu.Lock()
	c.dims = make(map[cacheKey]Dimensions)
	c.mu.Unlock()
}
