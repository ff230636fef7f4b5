package textures

import (
	"fmt"
	"image"
	"image/draw"
	"sort"

	"github.com/westbot657/RenderForge/gfx"
)

// Atlas errors. Both carry their gfx category for errors.Is checks.
var (
	ErrAtlasOverflow = fmt.Errorf("%w: atlas is full", gfx.ErrCapacity)
	ErrDuplicateID   = fmt.Errorf("%w: duplicate atlas id", gfx.ErrConfiguration)
)

// Atlas size defaults.
const (
	DefaultAtlasSize    = 2048
	DefaultAtlasPadding = 1
)

// AtlasConfig sizes the atlas page. Size is the square page dimension in
// pixels; Padding is the pixel gap kept around each packed image so linear
// sampling does not bleed between neighbors.
type AtlasConfig struct {
	Size    int
	Padding int
}

// DefaultAtlasConfig is a 2048x2048 page with one pixel of padding.
func DefaultAtlasConfig() AtlasConfig {
	return AtlasConfig{Size: DefaultAtlasSize, Padding: DefaultAtlasPadding}
}

// Region locates one packed image: its pixel rectangle on the page and the
// texture coordinates of its corners. V follows image rows, so V0 is the
// top edge.
type Region struct {
	Rect image.Rectangle
	U0   float32
	V0   float32
	U1   float32
	V1   float32
}

// shelf is one horizontal strip of the page. nextX is the first free
// column; height is fixed by the first image placed on the shelf.
type shelf struct {
	y      int
	height int
	nextX  int
}

// shelfPacker allocates rectangles on a fixed page by stacking shelves
// downward. Purely positional: it never touches pixels or GL.
type shelfPacker struct {
	width   int
	height  int
	padding int
	shelves []shelf
}

func newShelfPacker(width, height, padding int) *shelfPacker {
	if padding < 0 {
		padding = 0
	}
	return &shelfPacker{width: width, height: height, padding: padding}
}

// allocate returns the top-left corner for a w x h rectangle, or false when
// no shelf can take it. Each placement reserves padding to the right and
// below.
func (p *shelfPacker) allocate(w, h int) (image.Point, bool) {
	if w <= 0 || h <= 0 {
		return image.Point{}, false
	}
	pw, ph := w+p.padding, h+p.padding
	if pw > p.width || ph > p.height {
		return image.Point{}, false
	}

	for i := range p.shelves {
		s := &p.shelves[i]
		if s.nextX+pw > p.width || ph > s.height {
			continue
		}
		pt := image.Point{X: s.nextX, Y: s.y}
		s.nextX += pw
		return pt, true
	}

	newY := 0
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		newY = last.y + last.height
	}
	if newY+ph > p.height {
		return image.Point{}, false
	}
	p.shelves = append(p.shelves, shelf{y: newY, height: ph, nextX: pw})
	return image.Point{X: 0, Y: newY}, true
}

type atlasEntry struct {
	id  string
	img image.Image
}

// Builder collects images and packs them onto one page. Add in any order;
// Build sorts by pixel area descending before packing so large images get
// first pick of the space.
type Builder struct {
	cfg     AtlasConfig
	entries []atlasEntry
	ids     map[string]struct{}
}

// NewBuilder returns an empty atlas builder. Zero or negative config
// fields fall back to the defaults.
func NewBuilder(cfg AtlasConfig) *Builder {
	if cfg.Size <= 0 {
		cfg.Size = DefaultAtlasSize
	}
	if cfg.Padding < 0 {
		cfg.Padding = DefaultAtlasPadding
	}
	return &Builder{cfg: cfg, ids: make(map[string]struct{})}
}

// Add queues an image under an id unique within this builder.
func (b *Builder) Add(id string, img image.Image) error {
	if _, dup := b.ids[id]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return fmt.Errorf("%w: image %q is empty", gfx.ErrConfiguration, id)
	}
	b.ids[id] = struct{}{}
	b.entries = append(b.entries, atlasEntry{id: id, img: img})
	return nil
}

// Len returns the number of queued images.
func (b *Builder) Len() int {
	return len(b.entries)
}

// compose packs every queued image onto a fresh RGBA page, returning the
// pixel data, the placed regions and the ids that did not fit. Pure CPU
// work; Build and BuildOverflow wrap it with the GPU upload.
func (b *Builder) compose() (*image.RGBA, map[string]Region, []string) {
	page := image.NewRGBA(image.Rect(0, 0, b.cfg.Size, b.cfg.Size))
	regions, leftovers := b.composeInto(page)
	return page, regions, leftovers
}

func (b *Builder) composeInto(page draw.Image) (map[string]Region, []string) {
	sorted := make([]atlasEntry, len(b.entries))
	copy(sorted, b.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].img.Bounds(), sorted[j].img.Bounds()
		return bi.Dx()*bi.Dy() > bj.Dx()*bj.Dy()
	})

	packer := newShelfPacker(b.cfg.Size, b.cfg.Size, b.cfg.Padding)
	regions := make(map[string]Region, len(sorted))
	var leftovers []string

	size := float32(b.cfg.Size)
	for _, e := range sorted {
		w, h := e.img.Bounds().Dx(), e.img.Bounds().Dy()
		pt, ok := packer.allocate(w, h)
		if !ok {
			leftovers = append(leftovers, e.id)
			continue
		}
		rect := image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h)
		draw.Draw(page, rect, e.img, e.img.Bounds().Min, draw.Src)
		regions[e.id] = Region{
			Rect: rect,
			U0:   float32(rect.Min.X) / size,
			V0:   float32(rect.Min.Y) / size,
			U1:   float32(rect.Max.X) / size,
			V1:   float32(rect.Max.Y) / size,
		}
	}
	return regions, leftovers
}

// Build packs all queued images and uploads the page. Fails with
// ErrAtlasOverflow when any image does not fit; use BuildOverflow to accept
// partial packing.
func (b *Builder) Build(ctx *gfx.Context) (*Atlas, error) {
	page, regions, leftovers := b.compose()
	if len(leftovers) > 0 {
		return nil, fmt.Errorf("%w: %d of %d images do not fit on a %dx%d page",
			ErrAtlasOverflow, len(leftovers), len(b.entries), b.cfg.Size, b.cfg.Size)
	}
	return b.upload(ctx, page, regions)
}

// BuildAlpha is Build onto a single-channel page, uploaded swizzled to
// white RGB with the mask in alpha. Glyph pages use this; queued images
// contribute only their alpha channel.
func (b *Builder) BuildAlpha(ctx *gfx.Context) (*Atlas, error) {
	page := image.NewAlpha(image.Rect(0, 0, b.cfg.Size, b.cfg.Size))
	regions, leftovers := b.composeInto(page)
	if len(leftovers) > 0 {
		return nil, fmt.Errorf("%w: %d of %d images do not fit on a %dx%d page",
			ErrAtlasOverflow, len(leftovers), len(b.entries), b.cfg.Size, b.cfg.Size)
	}
	tex, err := UploadAlpha(ctx, page, AtlasSampling())
	if err != nil {
		return nil, err
	}
	gfx.Logger().Debug("alpha atlas built", "images", len(regions), "size", b.cfg.Size)
	return &Atlas{texture: tex, regions: regions}, nil
}

// BuildOverflow packs what fits, uploads the page and returns the ids left
// out, in packing order.
func (b *Builder) BuildOverflow(ctx *gfx.Context) (*Atlas, []string, error) {
	page, regions, leftovers := b.compose()
	atlas, err := b.upload(ctx, page, regions)
	if err != nil {
		return nil, nil, err
	}
	return atlas, leftovers, nil
}

func (b *Builder) upload(ctx *gfx.Context, page *image.RGBA, regions map[string]Region) (*Atlas, error) {
	tex, err := Upload(ctx, page, AtlasSampling())
	if err != nil {
		return nil, err
	}
	gfx.Logger().Debug("atlas built", "images", len(regions), "size", b.cfg.Size)
	return &Atlas{texture: tex, regions: regions}, nil
}

// Atlas is a built page: one texture plus the regions packed onto it.
type Atlas struct {
	texture *Texture
	regions map[string]Region
}

// Region returns the placement of an id.
func (a *Atlas) Region(id string) (Region, bool) {
	r, ok := a.regions[id]
	return r, ok
}

// Ids returns the packed ids in sorted order.
func (a *Atlas) Ids() []string {
	out := make([]string, 0, len(a.regions))
	for id := range a.regions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Texture returns the page texture.
func (a *Atlas) Texture() *Texture {
	return a.texture
}

// Release frees the page texture. Safe to call repeatedly.
func (a *Atlas) Release() {
	if a == nil {
		return
	}
	a.texture.Release()
}
