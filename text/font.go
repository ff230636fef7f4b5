// Package text rasterizes font glyphs onto a shared atlas page and pushes
// glyph quads through a buffer builder.
package text

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/westbot657/RenderForge/core"
	"github.com/westbot657/RenderForge/gfx"
	"github.com/westbot657/RenderForge/textures"
)

// FontConfig selects the face and the rune set rasterized up front. A nil
// Face falls back to basicfont.Face7x13; an empty rune set falls back to
// printable ASCII. Padding is the pixel gap between glyphs on the page.
type FontConfig struct {
	Face    font.Face
	Runes   []rune
	Padding int
}

// DefaultRuneSet returns the printable ASCII runes, space through tilde.
func DefaultRuneSet() []rune {
	runes := make([]rune, 0, 95)
	for r := rune(' '); r <= '~'; r++ {
		runes = append(runes, r)
	}
	return runes
}

// glyph is one rasterized rune: where it sits on the page and how to place
// it relative to the pen.
type glyph struct {
	region  textures.Region
	bearing image.Point // mask top-left relative to the baseline pen
	size    image.Point
	advance float32
}

// Font holds a glyph page for one face at one size. The face itself stays
// caller-owned; Release frees only the page texture.
type Font struct {
	face   font.Face
	atlas  *textures.Atlas
	glyphs map[rune]glyph

	lineHeight float32
	ascent     float32
}

// NewFont rasterizes the configured runes and packs them onto one alpha
// page. Runes the face cannot render are skipped.
func NewFont(ctx *gfx.Context, cfg FontConfig) (*Font, error) {
	face := cfg.Face
	if face == nil {
		face = basicfont.Face7x13
	}
	runes := cfg.Runes
	if len(runes) == 0 {
		runes = DefaultRuneSet()
	}
	padding := cfg.Padding
	if padding <= 0 {
		padding = 1
	}

	type rasterized struct {
		r    rune
		mask *image.Alpha
		g    glyph
	}
	var (
		masks     []rasterized
		seen      = make(map[rune]struct{}, len(runes))
		totalArea int
	)
	for _, r := range runes {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		mask, bearing, advance, ok := buildGlyphMask(face, r)
		if !ok {
			continue
		}
		entry := rasterized{r: r, g: glyph{bearing: bearing, advance: advance}}
		if mask != nil {
			entry.mask = mask
			entry.g.size = image.Point{X: mask.Bounds().Dx(), Y: mask.Bounds().Dy()}
			totalArea += (entry.g.size.X + padding) * (entry.g.size.Y + padding)
		}
		masks = append(masks, entry)
	}
	if len(masks) == 0 {
		return nil, fmt.Errorf("%w: face renders none of the configured runes", gfx.ErrConfiguration)
	}

	var atlas *textures.Atlas
	for size := pageSizeFor(totalArea); ; size *= 2 {
		if size > 4096 {
			return nil, fmt.Errorf("%w: glyph set exceeds a 4096x4096 page", textures.ErrAtlasOverflow)
		}
		builder := textures.NewBuilder(textures.AtlasConfig{Size: size, Padding: padding})
		for _, m := range masks {
			if m.mask == nil {
				continue
			}
			if err := builder.Add(string(m.r), m.mask); err != nil {
				return nil, err
			}
		}
		built, err := builder.BuildAlpha(ctx)
		if errors.Is(err, textures.ErrAtlasOverflow) {
			continue
		}
		if err != nil {
			return nil, err
		}
		atlas = built
		break
	}

	glyphs := make(map[rune]glyph, len(masks))
	for _, m := range masks {
		g := m.g
		if m.mask != nil {
			region, ok := atlas.Region(string(m.r))
			if !ok {
				atlas.Release()
				return nil, fmt.Errorf("%w: glyph %q missing from built page", gfx.ErrResourceCreation, m.r)
			}
			g.region = region
		}
		glyphs[m.r] = g
	}

	metrics := face.Metrics()
	f := &Font{
		face:       face,
		atlas:      atlas,
		glyphs:     glyphs,
		lineHeight: fixedToFloat(metrics.Height),
		ascent:     fixedToFloat(metrics.Ascent),
	}
	gfx.Logger().Debug("font page built", "glyphs", len(glyphs))
	return f, nil
}

// buildGlyphMask rasterizes one rune to a zero-origin alpha mask. A nil
// mask with ok=true is a rune that advances the pen without marking any
// pixels. ok=false means the face cannot render the rune.
func buildGlyphMask(face font.Face, r rune) (mask *image.Alpha, bearing image.Point, advance float32, ok bool) {
	bounds, adv, found := face.GlyphBounds(r)
	if !found {
		return nil, image.Point{}, 0, false
	}
	advance = fixedToFloat(adv)

	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 {
		return nil, image.Point{}, advance, true
	}

	mask = image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(string(r))
	return mask, image.Point{X: minX, Y: minY}, advance, true
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// pageSizeFor picks a power-of-two page side with headroom for the given
// total padded glyph area.
func pageSizeFor(totalArea int) int {
	size := 128
	for size*size < totalArea*2 && size < 4096 {
		size *= 2
	}
	return size
}

// Measure returns the pixel extent of s: the widest line and the total
// line count times the line height. Kerning is applied within lines.
func (f *Font) Measure(s string) (w, h float32) {
	var widest, line float32
	lines := 1
	var prev rune
	for _, r := range s {
		if r == '\n' {
			if line > widest {
				widest = line
			}
			line = 0
			lines++
			prev = 0
			continue
		}
		if prev != 0 {
			line += fixedToFloat(f.face.Kern(prev, r))
		}
		if g, ok := f.glyphs[r]; ok {
			line += g.advance
		} else if adv, ok := f.face.GlyphAdvance(r); ok {
			line += fixedToFloat(adv)
		}
		prev = r
	}
	if line > widest {
		widest = line
	}
	return widest, float32(lines) * f.lineHeight
}

// Draw pushes two triangles per glyph of s into the builder, with the pen
// starting at x on the baseline y and y growing downward. The builder must
// be recording a Position+Color+UV layout; the font's page is bound as its
// tex0 sampler. Begin and Flush stay with the caller so many strings can
// share a batch.
func (f *Font) Draw(b *gfx.BufferBuilder, s string, x, y float32, c core.Color) error {
	b.SetSampler("tex0", 0, f.atlas.Texture().ID())

	pen := x
	baseline := y
	var prev rune
	for _, r := range s {
		if r == '\n' {
			pen = x
			baseline += f.lineHeight
			prev = 0
			continue
		}
		g, ok := f.glyphs[r]
		if !ok {
			continue
		}
		if prev != 0 {
			pen += fixedToFloat(f.face.Kern(prev, r))
		}
		if g.size.X > 0 && g.size.Y > 0 {
			x0 := pen + float32(g.bearing.X)
			y0 := baseline + float32(g.bearing.Y)
			x1 := x0 + float32(g.size.X)
			y1 := y0 + float32(g.size.Y)
			reg := g.region

			b.Vertex(x0, y0, 0).Color(c).UV(reg.U0, reg.V0)
			b.Vertex(x1, y0, 0).Color(c).UV(reg.U1, reg.V0)
			b.Vertex(x1, y1, 0).Color(c).UV(reg.U1, reg.V1)

			b.Vertex(x0, y0, 0).Color(c).UV(reg.U0, reg.V0)
			b.Vertex(x1, y1, 0).Color(c).UV(reg.U1, reg.V1)
			b.Vertex(x0, y1, 0).Color(c).UV(reg.U0, reg.V1)
		}
		pen += g.advance
		prev = r
	}
	return b.Err()
}

// LineHeight returns the face's line height in pixels.
func (f *Font) LineHeight() float32 {
	return f.lineHeight
}

// Ascent returns the baseline-to-top distance in pixels.
func (f *Font) Ascent() float32 {
	return f.ascent
}

// PageTexture returns the glyph page, for callers binding it directly.
func (f *Font) PageTexture() *textures.Texture {
	return f.atlas.Texture()
}

// Release frees the glyph page. The face is caller-owned and untouched.
func (f *Font) Release() {
	if f == nil {
		return
	}
	f.atlas.Release()
}
