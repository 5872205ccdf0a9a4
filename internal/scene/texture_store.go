package scene

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"
)

var errNoTextureSource = errors.New("no texture source")

// maxTextureBytes caps a single network fetch.
const maxTextureBytes = 32 << 20

// TextureStore fetches texture images with a tiered fallback: fresh disk
// cache, network fetch, then stale disk cache. A texture that exhausts every
// tier fails and the material keeps its plain color.
type TextureStore struct {
	cacheDir string
	maxAge   time.Duration
	client   *http.Client
	maxBytes int64

	// post hands a completion to the engine goroutine. When nil,
	// completions run on the fetching goroutine.
	post func(func())
}

// NewTextureStore returns a store caching under cacheDir. Completions are
// delivered through post.
func NewTextureStore(cacheDir string, refreshHours int, post func(func())) *TextureStore {
	return &TextureStore{
		cacheDir: cacheDir,
		maxAge:   time.Duration(refreshHours) * time.Hour,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: maxTextureBytes,
		post:     post,
	}
}

// Load fetches url in the background and reports the decoded image.
func (s *TextureStore) Load(url string, done func(image.Image, error)) {
	go func() {
		img, err := s.Fetch(url)
		if s.post == nil {
			done(img, err)
			return
		}
		s.post(func() { done(img, err) })
	}()
}

// Fetch returns the decoded image for url, blocking on I/O.
func (s *TextureStore) Fetch(url string) (image.Image, error) {
	raw, err := s.loadOrFetch(url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", url, err)
	}
	return img, nil
}

// CachePath returns where url is cached on disk.
func (s *TextureStore) CachePath(url string) string {
	sum := sha1.Sum([]byte(url))
	return filepath.Join(s.cacheDir, hex.EncodeToString(sum[:8])+"-"+path.Base(url))
}

func (s *TextureStore) loadOrFetch(url string) ([]byte, error) {
	cachePath := s.CachePath(url)

	// Tier 1: fresh disk cache
	info, err := os.Stat(cachePath)
	if err == nil && time.Since(info.ModTime()) < s.maxAge {
		if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
			return b, nil
		}
	}

	// Tier 2: network fetch
	body, fetchErr := s.fetchFromNetwork(url)
	if fetchErr == nil {
		// Cache write failure is non-fatal; the bytes are already in memory.
		_ = s.writeCache(cachePath, body)
		return body, nil
	}

	// Tier 3: stale disk cache
	if b, readErr := os.ReadFile(cachePath); readErr == nil && len(b) > 0 {
		return b, nil
	}

	return nil, fmt.Errorf("all texture sources exhausted for %s: %w", url, fetchErr)
}

func (s *TextureStore) fetchFromNetwork(url string) ([]byte, error) {
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("texture fetch returned HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("texture %s exceeds %d bytes", url, s.maxBytes)
	}
	return body, nil
}

// writeCache writes via a temp file and rename so readers never see a
// half-written image.
func (s *TextureStore) writeCache(cachePath string, data []byte) error {
	dir := filepath.Dir(cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "texture-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), cachePath)
}
