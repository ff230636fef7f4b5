package textures

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/westbot657/RenderForge/core"
	"github.com/westbot657/RenderForge/gfx"
)

// MinFilter selects minification filtering. The mipmap variants require
// mipmaps; Upload generates them automatically for those filters.
type MinFilter int

const (
	MinNearest MinFilter = iota
	MinLinear
	MinNearestMipmapNearest
	MinLinearMipmapNearest
	MinNearestMipmapLinear
	MinLinearMipmapLinear
)

func (f MinFilter) gl() int32 {
	switch f {
	case MinNearest:
		return gl.NEAREST
	case MinLinear:
		return gl.LINEAR
	case MinNearestMipmapNearest:
		return gl.NEAREST_MIPMAP_NEAREST
	case MinLinearMipmapNearest:
		return gl.LINEAR_MIPMAP_NEAREST
	case MinNearestMipmapLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	}
	return gl.LINEAR_MIPMAP_LINEAR
}

func (f MinFilter) needsMipmaps() bool {
	return f >= MinNearestMipmapNearest
}

// MagFilter selects magnification filtering.
type MagFilter int

const (
	MagNearest MagFilter = iota
	MagLinear
)

func (f MagFilter) gl() int32 {
	if f == MagNearest {
		return gl.NEAREST
	}
	return gl.LINEAR
}

// WrapMode selects how coordinates outside [0,1] sample.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapMirroredRepeat
	WrapClampToEdge
	WrapClampToBorder
)

func (w WrapMode) gl() int32 {
	switch w {
	case WrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case WrapClampToBorder:
		return gl.CLAMP_TO_BORDER
	}
	return gl.REPEAT
}

// Sampling bundles the filter and wrap parameters applied at upload.
type Sampling struct {
	Min   MinFilter
	Mag   MagFilter
	WrapS WrapMode
	WrapT WrapMode
}

// DefaultSampling is trilinear filtering with repeat wrapping.
func DefaultSampling() Sampling {
	return Sampling{
		Min:   MinLinearMipmapLinear,
		Mag:   MagLinear,
		WrapS: WrapRepeat,
		WrapT: WrapRepeat,
	}
}

// AtlasSampling is the clamped bilinear setup atlases and font pages use;
// repeat wrapping would bleed neighboring regions into each other.
func AtlasSampling() Sampling {
	return Sampling{
		Min:   MinLinear,
		Mag:   MagLinear,
		WrapS: WrapClampToEdge,
		WrapT: WrapClampToEdge,
	}
}

// Texture owns one GL 2D texture.
type Texture struct {
	ctx        *gfx.Context
	id         uint32
	width      int
	height     int
	generation uint64
	path       string // empty for procedural textures
}

// Upload converts img to RGBA, uploads it as a 2D texture and applies the
// sampling parameters, generating mipmaps when the min filter needs them.
func Upload(ctx *gfx.Context, img image.Image, s Sampling) (*Texture, error) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		converted := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
		draw.Draw(converted, converted.Bounds(), img, img.Bounds().Min, draw.Src)
		rgba = converted
	}
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty image", gfx.ErrConfiguration)
	}

	t := &Texture{ctx: ctx, width: w, height: h, generation: ctx.Generation()}
	gl.GenTextures(1, &t.id)
	ctx.BindTexture(0, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("%w: %dx%d texture", gfx.ErrResourceCreation, w, h)
	}
	t.applySampling(s)
	if s.Min.needsMipmaps() {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	return t, nil
}

// UploadAlpha uploads a single-channel mask as a RED texture swizzled to
// white RGB with the mask in alpha, the layout glyph pages use.
func UploadAlpha(ctx *gfx.Context, mask *image.Alpha, s Sampling) (*Texture, error) {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: empty mask", gfx.ErrConfiguration)
	}

	t := &Texture{ctx: ctx, width: w, height: h, generation: ctx.Generation()}
	gl.GenTextures(1, &t.id)
	ctx.BindTexture(0, t.id)
	// Alpha rows are tightly packed, not 4-byte aligned.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(w), int32(h), 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(mask.Pix))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("%w: %dx%d mask texture", gfx.ErrResourceCreation, w, h)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_R, gl.ONE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_G, gl.ONE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_B, gl.ONE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_A, gl.RED)
	t.applySampling(s)
	if s.Min.needsMipmaps() {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	return t, nil
}

func (t *Texture) applySampling(s Sampling) {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, s.Min.gl())
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, s.Mag.gl())
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, s.WrapS.gl())
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, s.WrapT.gl())
}

// FromPixels uploads raw RGBA bytes, four per pixel in row-major order.
func FromPixels(ctx *gfx.Context, width, height int, pixels []byte, s Sampling) (*Texture, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d RGBA texture", gfx.ErrFormatMismatch, len(pixels), width, height)
	}
	img := &image.RGBA{Pix: pixels, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return Upload(ctx, img, s)
}

// LoadFile decodes a PNG or JPEG file and uploads it.
func LoadFile(ctx *gfx.Context, path string, s Sampling) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	t, err := Upload(ctx, img, s)
	if err != nil {
		return nil, err
	}
	t.path = path
	return t, nil
}

// Solid builds a 1x1 texture of one color.
func Solid(ctx *gfx.Context, c core.Color) (*Texture, error) {
	argb := c.ARGB()
	pixels := []byte{byte(argb >> 16), byte(argb >> 8), byte(argb), byte(argb >> 24)}
	return FromPixels(ctx, 1, 1, pixels, Sampling{Min: MinNearest, Mag: MagNearest})
}

// Checker builds a size x size checkerboard of two colors, eight blocks to
// a side.
func Checker(ctx *gfx.Context, size int, c1, c2 core.Color) (*Texture, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: checker size %d", gfx.ErrConfiguration, size)
	}
	block := size / 8
	if block < 1 {
		block = 1
	}
	pixels := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := c1
			if ((x/block)+(y/block))%2 == 1 {
				c = c2
			}
			argb := c.ARGB()
			idx := (y*size + x) * 4
			pixels[idx] = byte(argb >> 16)
			pixels[idx+1] = byte(argb >> 8)
			pixels[idx+2] = byte(argb)
			pixels[idx+3] = byte(argb >> 24)
		}
	}
	return FromPixels(ctx, size, size, pixels, DefaultSampling())
}

// ID returns the GL texture name.
func (t *Texture) ID() uint32 {
	return t.id
}

// Width returns the pixel width.
func (t *Texture) Width() int {
	return t.width
}

// Height returns the pixel height.
func (t *Texture) Height() int {
	return t.height
}

// Path returns the source file, empty for procedural textures.
func (t *Texture) Path() string {
	return t.path
}

// Bind binds the texture to a texture unit.
func (t *Texture) Bind(unit uint32) {
	t.ctx.BindTexture(unit, t.id)
}

// Release frees the GL texture. Safe to call repeatedly; a texture from a
// lost context generation is forgotten without a delete call.
func (t *Texture) Release() {
	if t == nil || t.id == 0 {
		return
	}
	if t.generation == t.ctx.Generation() {
		gl.DeleteTextures(1, &t.id)
	}
	t.id = 0
}

const defaultTextureKey = "__default_white__"

// Manager caches textures by name so repeated loads share one GL texture.
type Manager struct {
	mu       sync.RWMutex
	textures map[string]*Texture
}

// NewManager returns an empty texture cache.
func NewManager() *Manager {
	return &Manager{textures: make(map[string]*Texture)}
}

// Load returns the cached texture under name, loading path on a miss.
func (m *Manager) Load(ctx *gfx.Context, name, path string) (*Texture, error) {
	m.mu.RLock()
	tex, ok := m.textures[name]
	m.mu.RUnlock()
	if ok {
		return tex, nil
	}

	tex, err := LoadFile(ctx, path, DefaultSampling())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.textures[name] = tex
	m.mu.Unlock()
	return tex, nil
}

// Get returns a cached texture without loading.
func (m *Manager) Get(name string) (*Texture, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tex, ok := m.textures[name]
	return tex, ok
}

// Put caches an already built texture under name, replacing any previous
// entry without releasing it.
func (m *Manager) Put(name string, tex *Texture) {
	m.mu.Lock()
	m.textures[name] = tex
	m.mu.Unlock()
}

// GetOrDefault returns the named texture, falling back to the shared 1x1
// white texture when the name is empty or was never loaded.
func (m *Manager) GetOrDefault(ctx *gfx.Context, name string) *Texture {
	if name != "" {
		if tex, ok := m.Get(name); ok {
			return tex
		}
		gfx.Logger().Warn("texture not loaded, using default", "name", name)
	}
	return m.Default(ctx)
}

// Default returns the shared 1x1 white texture, creating it on first use.
func (m *Manager) Default(ctx *gfx.Context) *Texture {
	m.mu.RLock()
	tex, ok := m.textures[defaultTextureKey]
	m.mu.RUnlock()
	if ok {
		return tex
	}

	tex, err := Solid(ctx, core.ColorWhite)
	if err != nil {
		gfx.Logger().Warn("default texture creation failed", "err", err)
		return nil
	}
	m.mu.Lock()
	m.textures[defaultTextureKey] = tex
	m.mu.Unlock()
	return tex
}

// ReleaseAll releases every cached texture and empties the cache.
func (m *Manager) ReleaseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tex := range m.textures {
		tex.Release()
	}
	m.textures = make(map[string]*Texture)
}
