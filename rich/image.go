package rich

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Image size limits to prevent memory exhaustion.
const (
	MaxImageWidth  = 4096             // Maximum width in pixels
	MaxImageHeight = 4096             // Maximum height in pixels
	MaxImageBytes  = 16 * 1024 * 1024 // 16MB uncompressed (RGBA at 4 bytes/pixel)
)

var (
	ErrNoImageLoader  = errors.New("no image loader configured")
	ErrNotImage       = errors.New("span is not an image")
	ErrUnsupportedURL = errors.New("unsupported image URL")
)

// ImageLoader fetches the pixels behind an Image span. It is injected
// with WithImageLoader; the document never fetches anything itself.
type ImageLoader interface {
	Load(ctx context.Context, img Image) (image.Image, error)
}

// LoadImage returns the image that s refers to.
func (d *Document) LoadImage(ctx context.Context, s *Span) (image.Image, error) {
	if d.images == nil {
		return nil, ErrNoImageLoader
	}
	img, ok := s.EffectiveKind().(Image)
	if !ok {
		return nil, ErrNotImage
	}
	m, err := d.images.Load(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("load image %q: %w", img.URL, err)
	}
	return m, nil
}

// FileImageLoader loads images from the local file system. Relative
// URLs are resolved against BaseDir. Supports PNG, JPEG, and GIF (first
// frame only for GIF).
type FileImageLoader struct {
	BaseDir string
}

// Load implements ImageLoader.
func (l FileImageLoader) Load(ctx context.Context, img Image) (image.Image, error) {
	path, err := l.path(img.URL)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer f.Close()
	return decodeImage(f)
}

func (l FileImageLoader) path(url string) (string, error) {
	switch {
	case strings.HasPrefix(url, "file://"):
		url = strings.TrimPrefix(url, "file://")
	case strings.Contains(url, "://"):
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, url)
	}
	if url == "" {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedURL)
	}
	if !filepath.IsAbs(url) && l.BaseDir != "" {
		url = filepath.Join(l.BaseDir, url)
	}
	return url, nil
}

// decodeImage checks the declared dimensions before decoding the pixels.
func decodeImage(r io.ReadSeeker) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if err := checkImageSize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to rewind image: %w", err)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

func checkImageSize(width, height int) error {
	if width > MaxImageWidth || height > MaxImageHeight {
		return fmt.Errorf("image too large: %dx%d (max %dx%d)",
			width, height, MaxImageWidth, MaxImageHeight)
	}
	// Check uncompressed size (assuming RGBA at 4 bytes per pixel)
	if size := width * height * 4; size > MaxImageBytes {
		return fmt.Errorf("image uncompressed size exceeds limit: %d bytes (max %d bytes)",
			size, MaxImageBytes)
	}
	return nil
}

// CachedImageLoader remembers the images another loader returned, keyed
// by URL. Failures are not cached.
type CachedImageLoader struct {
	next  ImageLoader
	cache *cache.Cache
}

// NewCachedImageLoader wraps next with a cache whose entries expire
// after ttl.
func NewCachedImageLoader(next ImageLoader, ttl time.Duration) *CachedImageLoader {
	return &CachedImageLoader{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Load implements ImageLoader.
func (c *CachedImageLoader) Load(ctx context.Context, img Image) (image.Image, error) {
	if v, ok := c.cache.Get(img.URL); ok {
		return v.(image.Image), nil
	}
	m, err := c.next.Load(ctx, img)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(img.URL, m)
	return m, nil
}
