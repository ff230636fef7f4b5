// Package gui draws screen-space overlays: flat panels, borders and text
// labels batched over the preset buffer builders.
package gui

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/westbot657/RenderForge/core"
	"github.com/westbot657/RenderForge/gfx"
	"github.com/westbot657/RenderForge/text"
)

// Overlay batches one frame of 2D drawing. Coordinates are pixels with the
// origin at the top left. Fills and labels accumulate in separate builders
// and EndFrame draws them in that order, fills under text.
type Overlay struct {
	ctx  *gfx.Context
	font *text.Font

	fills  *gfx.BufferBuilder
	labels *gfx.BufferBuilder

	proj    mgl32.Mat4
	inFrame bool
}

// NewOverlay builds the two preset builders the overlay draws with.
func NewOverlay(ctx *gfx.Context, font *text.Font) (*Overlay, error) {
	if font == nil {
		return nil, fmt.Errorf("%w: overlay needs a font", gfx.ErrConfiguration)
	}
	fills, err := gfx.NewBufferBuilder(ctx, gfx.PresetPositionColor)
	if err != nil {
		return nil, err
	}
	labels, err := gfx.NewBufferBuilder(ctx, gfx.PresetPositionColorUV)
	if err != nil {
		fills.Release()
		return nil, err
	}
	return &Overlay{ctx: ctx, font: font, fills: fills, labels: labels}, nil
}

// BeginFrame starts a frame sized to the framebuffer in pixels.
func (o *Overlay) BeginFrame(width, height int) error {
	if o.inFrame {
		return fmt.Errorf("%w: BeginFrame while a frame is open", gfx.ErrInvalidState)
	}
	o.proj = mgl32.Ortho(0, float32(width), float32(height), 0, -1, 1)
	if err := o.fills.Begin(); err != nil {
		return err
	}
	if err := o.labels.Begin(); err != nil {
		return err
	}
	o.inFrame = true
	return nil
}

// Panel queues a filled rectangle.
func (o *Overlay) Panel(x, y, w, h float32, c core.Color) {
	o.quad(o.fills, x, y, w, h, c)
}

// Border queues the four edge strips of a rectangle outline, drawn inward
// from the given bounds.
func (o *Overlay) Border(x, y, w, h, thickness float32, c core.Color) {
	t := thickness
	o.quad(o.fills, x, y, w, t, c)
	o.quad(o.fills, x, y+h-t, w, t, c)
	o.quad(o.fills, x, y+t, t, h-2*t, c)
	o.quad(o.fills, x+w-t, y+t, t, h-2*t, c)
}

// Label queues a text string anchored by its top-left corner.
func (o *Overlay) Label(x, y float32, s string, c core.Color) error {
	return o.font.Draw(o.labels, s, x, y+o.font.Ascent(), c)
}

// MeasureLabel returns the pixel extent a Label of s would cover.
func (o *Overlay) MeasureLabel(s string) (w, h float32) {
	return o.font.Measure(s)
}

func (o *Overlay) quad(b *gfx.BufferBuilder, x, y, w, h float32, c core.Color) {
	x1, y1 := x+w, y+h
	b.Vertex(x, y, 0).Color(c)
	b.Vertex(x1, y, 0).Color(c)
	b.Vertex(x1, y1, 0).Color(c)

	b.Vertex(x, y, 0).Color(c)
	b.Vertex(x1, y1, 0).Color(c)
	b.Vertex(x, y1, 0).Color(c)
}

// EndFrame draws everything queued since BeginFrame: fills first, then
// text, alpha-blended with depth testing off. Surrounding GL state is
// restored afterwards. Both builders always flush, so one bad batch does
// not leave the other recording.
func (o *Overlay) EndFrame() error {
	if !o.inFrame {
		return fmt.Errorf("%w: EndFrame without BeginFrame", gfx.ErrInvalidState)
	}
	o.inFrame = false

	snap := o.ctx.Snapshot()
	defer snap.Restore()
	o.ctx.SetDepthTest(false)
	o.ctx.SetCulling(false)
	o.ctx.SetBlending(true)
	o.ctx.SetBlendFunc(gfx.BlendSrcAlpha, gfx.BlendOneMinusSrcAlpha)

	mvp := gfx.UniformMat4(o.proj)
	o.fills.SetUniform("mvp", mvp)
	o.labels.SetUniform("mvp", mvp)

	fillErr := o.fills.Flush()
	labelErr := o.labels.Flush()
	if fillErr != nil {
		return fillErr
	}
	return labelErr
}

// Release frees both builders. The font stays caller-owned.
func (o *Overlay) Release() {
	if o == nil {
		return
	}
	o.fills.Release()
	o.labels.Release()
}
