package gfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Semantic names the role of a vertex attribute. The builder's typed
// setters (Vertex, Color, Normal, UV) address attributes by semantic;
// SemanticCustom attributes are addressed by name.
type Semantic uint8

const (
	SemanticPosition Semantic = iota
	SemanticColor
	SemanticNormal
	SemanticUV
	SemanticCustom
)

func (s Semantic) String() string {
	switch s {
	case SemanticPosition:
		return "Position"
	case SemanticColor:
		return "Color"
	case SemanticNormal:
		return "Normal"
	case SemanticUV:
		return "UV"
	case SemanticCustom:
		return "Custom"
	}
	return fmt.Sprintf("Semantic(%d)", uint8(s))
}

// ComponentKind is the scalar type of one attribute component.
type ComponentKind uint8

const (
	KindFloat ComponentKind = iota // 32-bit float
	KindInt                        // 32-bit signed integer
	KindUByteNorm                  // unsigned byte, normalized to [0,1] on fetch
)

// Size returns the byte size of one component.
func (k ComponentKind) Size() int {
	if k == KindUByteNorm {
		return 1
	}
	return 4
}

func (k ComponentKind) String() string {
	switch k {
	case KindFloat:
		return "Float"
	case KindInt:
		return "Int"
	case KindUByteNorm:
		return "UByteNorm"
	}
	return fmt.Sprintf("ComponentKind(%d)", uint8(k))
}

// Attribute declares one vertex attribute. Name is used in error messages
// and to match shader inputs; when empty it defaults to the lower-case
// semantic name ("position", "color", ...).
type Attribute struct {
	Name     string
	Semantic Semantic
	Count    int // components per vertex, 1..4
	Kind     ComponentKind
}

// Canonical attribute declarations shared by the preset formats.

func PositionAttribute() Attribute {
	return Attribute{Name: "position", Semantic: SemanticPosition, Count: 3, Kind: KindFloat}
}

func ColorAttribute() Attribute {
	return Attribute{Name: "color", Semantic: SemanticColor, Count: 4, Kind: KindFloat}
}

func NormalAttribute() Attribute {
	return Attribute{Name: "normal", Semantic: SemanticNormal, Count: 3, Kind: KindFloat}
}

func UVAttribute() Attribute {
	return Attribute{Name: "uv", Semantic: SemanticUV, Count: 2, Kind: KindFloat}
}

// CustomAttribute declares a named attribute outside the canonical set.
func CustomAttribute(name string, count int, kind ComponentKind) Attribute {
	return Attribute{Name: name, Semantic: SemanticCustom, Count: count, Kind: kind}
}

// Mat4Attributes returns the four vec4 column attributes a mat4 shader
// input occupies. Instance layouts carrying per-instance transforms use
// this so the columns land on four consecutive locations.
func Mat4Attributes(name string) []Attribute {
	cols := make([]Attribute, 4)
	for i := range cols {
		cols[i] = Attribute{
			Name:     fmt.Sprintf("%s%d", name, i),
			Semantic: SemanticCustom,
			Count:    4,
			Kind:     KindFloat,
		}
	}
	return cols
}

// VertexLayout describes the binary shape of one vertex: an ordered
// attribute list with computed byte offsets and a fixed stride. Attribute
// order defines shader input binding order (attribute i binds location i,
// offset by a base location for instance layouts). Immutable after
// construction and freely shared between buffers and shaders.
//
// Offsets are contiguous. Each attribute's size is Count*Kind.Size()
// rounded up to a 4-byte boundary; the rounding only affects KindUByteNorm
// attributes with fewer than four components and keeps every offset
// 4-byte aligned as GL pointer setup expects.
type VertexLayout struct {
	attrs   []Attribute
	offsets []int32
	stride  int32
	floats  int // float32 values per vertex, 0 unless every attribute is KindFloat
}

// NewVertexLayout validates the declarations and computes offsets and
// stride. An empty attribute list fails with ErrEmptyLayout; component
// counts outside 1..4, unknown kinds and duplicate names fail with
// ErrConfiguration.
func NewVertexLayout(attrs ...Attribute) (*VertexLayout, error) {
	if len(attrs) == 0 {
		return nil, ErrEmptyLayout
	}

	resolved := make([]Attribute, len(attrs))
	offsets := make([]int32, len(attrs))
	seen := make(map[string]struct{}, len(attrs))

	var offset int32
	floats := 0
	allFloat := true
	for i, a := range attrs {
		if a.Name == "" {
			a.Name = defaultAttributeName(a.Semantic, i)
		}
		if a.Count < 1 || a.Count > 4 {
			return nil, fmt.Errorf("%w: attribute %q component count %d outside 1..4", ErrConfiguration, a.Name, a.Count)
		}
		if a.Kind > KindUByteNorm {
			return nil, fmt.Errorf("%w: attribute %q has unknown component kind", ErrConfiguration, a.Name)
		}
		if _, dup := seen[a.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate attribute name %q", ErrConfiguration, a.Name)
		}
		seen[a.Name] = struct{}{}

		resolved[i] = a
		offsets[i] = offset
		offset += paddedAttributeSize(a)

		if a.Kind == KindFloat {
			floats += a.Count
		} else {
			allFloat = false
		}
	}
	if !allFloat {
		floats = 0
	}

	return &VertexLayout{attrs: resolved, offsets: offsets, stride: offset, floats: floats}, nil
}

// MustVertexLayout is NewVertexLayout that panics on error, for layouts
// built from constants.
func MustVertexLayout(attrs ...Attribute) *VertexLayout {
	l, err := NewVertexLayout(attrs...)
	if err != nil {
		panic(err)
	}
	return l
}

func defaultAttributeName(s Semantic, index int) string {
	switch s {
	case SemanticPosition:
		return "position"
	case SemanticColor:
		return "color"
	case SemanticNormal:
		return "normal"
	case SemanticUV:
		return "uv"
	}
	return fmt.Sprintf("attr%d", index)
}

func paddedAttributeSize(a Attribute) int32 {
	size := int32(a.Count * a.Kind.Size())
	return (size + 3) &^ 3
}

// Stride returns the byte size of one vertex record.
func (l *VertexLayout) Stride() int32 {
	return l.stride
}

// AttributeCount returns the number of attributes.
func (l *VertexLayout) AttributeCount() int {
	return len(l.attrs)
}

// Attributes returns a copy of the attribute declarations in binding order.
func (l *VertexLayout) Attributes() []Attribute {
	out := make([]Attribute, len(l.attrs))
	copy(out, l.attrs)
	return out
}

// AttributeOffset returns the byte offset of attribute i within a vertex.
func (l *VertexLayout) AttributeOffset(i int) int32 {
	return l.offsets[i]
}

// FloatsPerVertex returns the number of float32 values in one vertex, or 0
// when any attribute is not KindFloat. Callers feeding raw float slices
// (InstancedMesh, the procedural generators) require an all-float layout.
func (l *VertexLayout) FloatsPerVertex() int {
	return l.floats
}

// indexOfName returns the attribute index for name, or -1.
func (l *VertexLayout) indexOfName(name string) int {
	for i, a := range l.attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// indexOfSemantic returns the first attribute index with the semantic,
// or -1.
func (l *VertexLayout) indexOfSemantic(s Semantic) int {
	for i, a := range l.attrs {
		if a.Semantic == s {
			return i
		}
	}
	return -1
}

// enablePointers configures and enables the attribute pointers of this
// layout against the currently bound VAO and ARRAY_BUFFER. Attribute i is
// bound at location baseLocation+i with the given instancing divisor.
func (l *VertexLayout) enablePointers(baseLocation, divisor uint32) {
	for i, a := range l.attrs {
		loc := baseLocation + uint32(i)
		gl.EnableVertexAttribArray(loc)
		switch a.Kind {
		case KindInt:
			gl.VertexAttribIPointer(loc, int32(a.Count), gl.INT, l.stride, gl.PtrOffset(int(l.offsets[i])))
		case KindUByteNorm:
			gl.VertexAttribPointer(loc, int32(a.Count), gl.UNSIGNED_BYTE, true, l.stride, gl.PtrOffset(int(l.offsets[i])))
		default:
			gl.VertexAttribPointer(loc, int32(a.Count), gl.FLOAT, false, l.stride, gl.PtrOffset(int(l.offsets[i])))
		}
		gl.VertexAttribDivisor(loc, divisor)
	}
}
