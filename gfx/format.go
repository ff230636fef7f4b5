package gfx

import (
	"fmt"
	"strings"
)

// PresetFormat declares which optional attributes a preset vertex carries.
// It is a bitmask so that invalid combinations are representable and can be
// rejected with a useful error at configuration time. Position is mandatory
// in every valid combination; the eight valid values are exactly the masks
// that include PresetPosition.
type PresetFormat uint8

const (
	PresetPosition PresetFormat = 1 << iota
	PresetColor
	PresetNormal
	PresetUV
)

// The eight documented combinations.
const (
	PresetPositionColor         = PresetPosition | PresetColor
	PresetPositionNormal        = PresetPosition | PresetNormal
	PresetPositionUV            = PresetPosition | PresetUV
	PresetPositionColorNormal   = PresetPosition | PresetColor | PresetNormal
	PresetPositionColorUV       = PresetPosition | PresetColor | PresetUV
	PresetPositionNormalUV      = PresetPosition | PresetNormal | PresetUV
	PresetPositionColorNormalUV = PresetPosition | PresetColor | PresetNormal | PresetUV
)

const presetValidMask = PresetPosition | PresetColor | PresetNormal | PresetUV

// HasColor reports whether the combination carries a color attribute.
func (f PresetFormat) HasColor() bool { return f&PresetColor != 0 }

// HasNormal reports whether the combination carries a normal attribute.
func (f PresetFormat) HasNormal() bool { return f&PresetNormal != 0 }

// HasUV reports whether the combination carries a texture coordinate
// attribute.
func (f PresetFormat) HasUV() bool { return f&PresetUV != 0 }

// Valid reports whether f is one of the eight documented combinations.
func (f PresetFormat) Valid() bool {
	return f&PresetPosition != 0 && f&^presetValidMask == 0
}

func (f PresetFormat) String() string {
	if f == 0 {
		return "Empty"
	}
	var parts []string
	if f&PresetPosition != 0 {
		parts = append(parts, "Position")
	}
	if f.HasColor() {
		parts = append(parts, "Color")
	}
	if f.HasNormal() {
		parts = append(parts, "Normal")
	}
	if f.HasUV() {
		parts = append(parts, "UV")
	}
	if bad := f &^ presetValidMask; bad != 0 {
		parts = append(parts, fmt.Sprintf("Unknown(0x%X)", uint8(bad)))
	}
	return strings.Join(parts, "+")
}

// Resolve maps the combination to its canonical vertex layout: position
// (3 floats), then color (4), normal (3) and uv (2) in that fixed order,
// binding locations assigned by presence order. The mapping is total over
// the eight documented combinations; anything else fails with
// ErrUnsupportedFormat before any GPU resource is touched.
func (f PresetFormat) Resolve() (*VertexLayout, error) {
	if f&^presetValidMask != 0 {
		return nil, fmt.Errorf("%w: unknown attribute bits in %s", ErrUnsupportedFormat, f)
	}
	if f&PresetPosition == 0 {
		return nil, fmt.Errorf("%w: %s omits the mandatory Position attribute", ErrUnsupportedFormat, f)
	}

	attrs := make([]Attribute, 0, 4)
	attrs = append(attrs, PositionAttribute())
	if f.HasColor() {
		attrs = append(attrs, ColorAttribute())
	}
	if f.HasNormal() {
		attrs = append(attrs, NormalAttribute())
	}
	if f.HasUV() {
		attrs = append(attrs, UVAttribute())
	}
	return NewVertexLayout(attrs...)
}
