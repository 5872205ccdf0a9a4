package scene

import (
	"image"
)

// TextureState is where a texture is in its asynchronous load.
type TextureState int

const (
	TexturePending TextureState = iota
	TextureReady
	TextureFailed
)

func (s TextureState) String() string {
	switch s {
	case TexturePending:
		return "pending"
	case TextureReady:
		return "ready"
	case TextureFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TextureLoader starts loading url and eventually calls done exactly once,
// on the engine's goroutine, with the decoded image or an error. Load must
// not block.
type TextureLoader interface {
	Load(url string, done func(image.Image, error))
}

// Texture is an image bound to a material slot. Until it is ready the
// material renders with its plain color.
type Texture struct {
	URL   string
	State TextureState
	Err   error
	Image image.Image

	// OnSettle is called once when the texture becomes ready or fails.
	OnSettle func(*Texture)

	res *Resource
}

func newTexture(t *Tracker, url, label string) *Texture {
	return &Texture{URL: url, res: t.Acquire(KindTexture, label)}
}

// Load asks loader for the image. A nil loader or empty URL fails the
// texture immediately.
func (t *Texture) Load(loader TextureLoader) {
	if loader == nil || t.URL == "" {
		t.settle(nil, errNoTextureSource)
		return
	}
	loader.Load(t.URL, t.settle)
}

// Ready reports whether the image is available for shading.
func (t *Texture) Ready() bool { return t.State == TextureReady }

func (t *Texture) settle(img image.Image, err error) {
	// A texture released while its load was in flight drops the result.
	if t.res.Released() || t.State != TexturePending {
		return
	}
	if err != nil {
		t.State = TextureFailed
		t.Err = err
	} else {
		t.State = TextureReady
		t.Image = img
	}
	if t.OnSettle != nil {
		t.OnSettle(t)
	}
}

func (t *Texture) release() {
	t.Image = nil
	t.res.Release()
}
