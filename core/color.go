package core

import "github.com/go-gl/mathgl/mgl32"

// Color is an RGBA color with float32 channels in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorRed         = Color{1, 0, 0, 1}
	ColorGreen       = Color{0, 1, 0, 1}
	ColorBlue        = Color{0, 0, 1, 1}
	ColorYellow      = Color{1, 1, 0, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

// RGBA builds a color from four channels.
func RGBA(r, g, b, a float32) Color {
	return Color{r, g, b, a}
}

// RGB builds an opaque color.
func RGB(r, g, b float32) Color {
	return Color{r, g, b, 1}
}

// FromARGB unpacks a 0xAARRGGBB integer.
func FromARGB(argb uint32) Color {
	return Color{
		R: float32(argb>>16&0xFF) / 255,
		G: float32(argb>>8&0xFF) / 255,
		B: float32(argb&0xFF) / 255,
		A: float32(argb>>24) / 255,
	}
}

// ARGB packs the color into a 0xAARRGGBB integer. Channels outside [0, 1]
// wrap rather than clamp; keep inputs in range.
func (c Color) ARGB() uint32 {
	r := uint32(c.R*255) & 0xFF
	g := uint32(c.G*255) & 0xFF
	b := uint32(c.B*255) & 0xFF
	a := uint32(c.A*255) & 0xFF
	return a<<24 | r<<16 | g<<8 | b
}

// WithAlpha returns the color with its alpha channel replaced.
func (c Color) WithAlpha(a float32) Color {
	c.A = a
	return c
}

// Mul multiplies channel-wise.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Vec4 returns the color as an (r, g, b, a) vector for uniform upload.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}
