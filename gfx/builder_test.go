package gfx

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/westbot657/RenderForge/core"
)

// newTestBuilder builds the CPU side of a builder. Everything up to the
// upload-and-draw half of Flush runs without a GL context.
func newTestBuilder(t *testing.T, f PresetFormat) *BufferBuilder {
	t.Helper()
	layout, err := f.Resolve()
	if err != nil {
		t.Fatalf("Resolve(%s): %v", f, err)
	}
	return newBuilderState(&Context{}, layout, nil, f, DrawTriangles)
}

func newTestBuilderLayout(layout *VertexLayout, mode DrawMode) *BufferBuilder {
	return newBuilderState(&Context{}, layout, nil, 0, mode)
}

func TestBuilderPushBeforeBegin(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	b.Vertex(1, 2, 3)
	if !errors.Is(b.Err(), ErrInvalidState) {
		t.Errorf("Err() = %v, want ErrInvalidState", b.Err())
	}
	if b.Cursor() != 0 {
		t.Errorf("Cursor() = %d after rejected push, want 0", b.Cursor())
	}
	if len(b.staging) != 0 {
		t.Errorf("staging grew to %d bytes on a rejected push", len(b.staging))
	}
}

func TestBuilderStagesPositionColorVertices(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	red := core.Color{R: 1, A: 1}
	b.Vertex(0, 0, 0).Color(red)
	b.Vertex(1, 0, 0).Color(red)
	b.Vertex(0, 1, 0).Color(red)

	if err := b.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got, want := b.Cursor(), 84; got != want {
		t.Errorf("Cursor() = %d, want %d", got, want)
	}
	if got, want := b.VertexCount(), 3; got != want {
		t.Errorf("VertexCount() = %d, want %d", got, want)
	}

	// Second vertex record starts at stride 28: x=1 at offset 28, R=1 at
	// offset 40.
	if got := binary.LittleEndian.Uint32(b.staging[28:]); got != math.Float32bits(1) {
		t.Errorf("second vertex x bits = %#x, want %#x", got, math.Float32bits(1))
	}
	if got := binary.LittleEndian.Uint32(b.staging[40:]); got != math.Float32bits(1) {
		t.Errorf("second vertex color r bits = %#x, want %#x", got, math.Float32bits(1))
	}
}

func TestBuilderAttributeOrderWithinVertexIsFree(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	c := core.ColorWhite
	b.Color(c).Vertex(0, 0, 0)
	b.Vertex(1, 0, 0).Color(c)
	b.Color(c).Vertex(0, 1, 0)
	if err := b.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got, want := b.VertexCount(), 3; got != want {
		t.Errorf("VertexCount() = %d, want %d", got, want)
	}
}

func TestBuilderFlushWithoutBegin(t *testing.T) {
	b := newTestBuilder(t, PresetPosition)
	if err := b.Flush(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Flush() = %v, want ErrInvalidState", err)
	}
}

func TestBuilderBeginWhileRecording(t *testing.T) {
	b := newTestBuilder(t, PresetPosition)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := b.Begin(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Begin() = %v, want ErrInvalidState", err)
	}
}

func TestBuilderFlushEmptyBatch(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := b.Flush(); err != nil {
		t.Errorf("Flush() of empty batch = %v, want nil", err)
	}
	// Back to idle: a new batch can start.
	if err := b.Begin(); err != nil {
		t.Errorf("Begin after empty flush: %v", err)
	}
}

func TestBuilderIncompleteFinalVertex(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Vertex(0, 0, 0) // color never set
	if err := b.Flush(); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("Flush() = %v, want ErrFormatMismatch", err)
	}
	if b.Cursor() != 0 || b.Err() != nil {
		t.Errorf("builder not reset after failed flush: cursor %d, err %v", b.Cursor(), b.Err())
	}
}

func TestBuilderAttributeSetTwice(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	// Second Vertex arrives while the first still waits for its color.
	b.Vertex(0, 0, 0).Vertex(1, 1, 1)
	if !errors.Is(b.Err(), ErrFormatMismatch) {
		t.Errorf("Err() = %v, want ErrFormatMismatch", b.Err())
	}
	if err := b.Flush(); !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("Flush() = %v, want the latched ErrFormatMismatch", err)
	}
}

func TestBuilderAttributeAbsentFromLayout(t *testing.T) {
	b := newTestBuilder(t, PresetPosition)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Vertex(0, 0, 0).Color(core.ColorWhite)
	if !errors.Is(b.Err(), ErrFormatMismatch) {
		t.Errorf("Err() = %v, want ErrFormatMismatch for color on a position-only layout", b.Err())
	}
}

func TestBuilderUnknownAttrName(t *testing.T) {
	layout := MustVertexLayout(PositionAttribute(), CustomAttribute("weight", 1, KindFloat))
	b := newTestBuilderLayout(layout, DrawTriangles)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Attr("bogus", 1)
	var nameErr *AttributeNameError
	if !errors.As(b.Err(), &nameErr) {
		t.Fatalf("Err() = %v, want AttributeNameError", b.Err())
	}
	if nameErr.Name != "bogus" {
		t.Errorf("AttributeNameError.Name = %q, want %q", nameErr.Name, "bogus")
	}
	if !errors.Is(b.Err(), ErrFormatMismatch) {
		t.Errorf("AttributeNameError does not unwrap to ErrFormatMismatch")
	}
}

func TestBuilderAttrComponentCount(t *testing.T) {
	layout := MustVertexLayout(PositionAttribute(), CustomAttribute("weight", 1, KindFloat))
	b := newTestBuilderLayout(layout, DrawTriangles)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Attr("weight", 1, 2)
	var sizeErr *AttributeSizeError
	if !errors.As(b.Err(), &sizeErr) {
		t.Fatalf("Err() = %v, want AttributeSizeError", b.Err())
	}
	if sizeErr.Expected != 1 || sizeErr.Found != 2 {
		t.Errorf("AttributeSizeError = expected %d found %d, want expected 1 found 2", sizeErr.Expected, sizeErr.Found)
	}
}

func TestBuilderWholeTriangles(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for i := 0; i < 4; i++ {
		b.Vertex(float32(i), 0, 0).Color(core.ColorWhite)
	}
	if err := b.Flush(); !errors.Is(err, ErrIncompleteGeometry) {
		t.Errorf("Flush() with 4 vertices = %v, want ErrIncompleteGeometry", err)
	}
}

func TestBuilderWholeLines(t *testing.T) {
	layout := MustVertexLayout(PositionAttribute())
	b := newTestBuilderLayout(layout, DrawLines)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Vertex(0, 0, 0)
	b.Vertex(1, 0, 0)
	b.Vertex(2, 0, 0)
	if err := b.Flush(); !errors.Is(err, ErrIncompleteGeometry) {
		t.Errorf("Flush() with 3 line vertices = %v, want ErrIncompleteGeometry", err)
	}
}

func TestBuilderLatchedErrorStopsStaging(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Attr("bogus", 1)
	b.Vertex(0, 0, 0).Color(core.ColorWhite)
	b.Vertex(1, 0, 0).Color(core.ColorWhite)
	if b.Cursor() != 0 {
		t.Errorf("Cursor() = %d after latched error, want 0", b.Cursor())
	}
}

func TestBuilderStagingGrowth(t *testing.T) {
	b := newTestBuilder(t, PresetPositionColor)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for i := 0; i < 99; i++ {
		b.Vertex(float32(i), 0, 0).Color(core.ColorWhite)
		if b.Cursor() > len(b.staging) {
			t.Fatalf("cursor %d ran past staging length %d", b.Cursor(), len(b.staging))
		}
	}
	if err := b.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got, want := b.Cursor(), 99*28; got != want {
		t.Errorf("Cursor() = %d, want %d", got, want)
	}
}

func TestBuilderPacksNormalizedBytes(t *testing.T) {
	layout := MustVertexLayout(
		PositionAttribute(),
		Attribute{Name: "color", Semantic: SemanticColor, Count: 4, Kind: KindUByteNorm},
	)
	b := newTestBuilderLayout(layout, DrawTriangles)
	if err := b.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	b.Vertex(0, 0, 0).Color(core.Color{R: 1, G: 0.5, B: 0, A: 1})
	if err := b.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got, want := b.Cursor(), 16; got != want {
		t.Fatalf("Cursor() = %d, want %d", got, want)
	}
	got := b.staging[12:16]
	want := []byte{255, 128, 0, 255}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("packed color byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBuilderUniformAndSamplerStaging(t *testing.T) {
	b := newTestBuilder(t, PresetPositionUV)
	b.SetUniform("tint", UniformVec4{1, 0, 0, 1})
	b.SetSampler("tex0", 0, 7)
	if v, ok := b.uniforms["tint"]; !ok || v != (UniformVec4{1, 0, 0, 1}) {
		t.Errorf("uniforms[tint] = %v, want staged red vec4", v)
	}
	if s := b.samplers["tex0"]; s.unit != 0 || s.tex != 7 {
		t.Errorf("samplers[tex0] = %+v, want unit 0 tex 7", s)
	}
}

func TestPackUnorm8(t *testing.T) {
	cases := []struct {
		in   float32
		want byte
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 64},
		{0.5, 128},
		{1, 255},
		{2, 255},
	}
	for _, tc := range cases {
		if got := packUnorm8(tc.in); got != tc.want {
			t.Errorf("packUnorm8(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
