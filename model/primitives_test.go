package model

import (
	"errors"
	"testing"

	"github.com/westbot657/RenderForge/gfx"
)

func sub(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// checkWindingMatchesNormals verifies every triangle winds counter-clockwise
// when viewed from the side its vertex normal points at.
func checkWindingMatchesNormals(t *testing.T, verts []float32, indices []uint32, fpv int) {
	t.Helper()
	for tri := 0; tri+2 < len(indices); tri += 3 {
		var p [3][3]float32
		for k := 0; k < 3; k++ {
			base := int(indices[tri+k]) * fpv
			p[k] = [3]float32{verts[base], verts[base+1], verts[base+2]}
		}
		face := cross(sub(p[1], p[0]), sub(p[2], p[0]))
		nb := int(indices[tri])*fpv + 3
		stored := [3]float32{verts[nb], verts[nb+1], verts[nb+2]}
		if dot(face, stored) <= 0 {
			t.Errorf("triangle %d winds against its normal %v", tri/3, stored)
		}
	}
}

func TestQuadPositionOnly(t *testing.T) {
	verts, indices, err := Quad(gfx.PresetPosition)
	if err != nil {
		t.Fatalf("Quad: %v", err)
	}
	if len(verts) != 12 {
		t.Fatalf("got %d floats, want 12", len(verts))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	if len(indices) != len(want) {
		t.Fatalf("got %d indices, want %d", len(indices), len(want))
	}
	for i, idx := range want {
		if indices[i] != idx {
			t.Errorf("index %d = %d, want %d", i, indices[i], idx)
		}
	}
	if verts[0] != -0.5 || verts[1] != -0.5 || verts[2] != 0 {
		t.Errorf("vertex 0 = %v, want (-0.5 -0.5 0)", verts[:3])
	}
}

func TestQuadFullPreset(t *testing.T) {
	verts, _, err := Quad(gfx.PresetPositionColorNormalUV)
	if err != nil {
		t.Fatalf("Quad: %v", err)
	}
	const fpv = 12
	if len(verts) != 4*fpv {
		t.Fatalf("got %d floats, want %d", len(verts), 4*fpv)
	}
	want0 := []float32{-0.5, -0.5, 0, 1, 1, 1, 1, 0, 0, 1, 0, 0}
	for i, w := range want0 {
		if verts[i] != w {
			t.Errorf("vertex 0 float %d = %g, want %g", i, verts[i], w)
		}
	}
	want2 := []float32{0.5, 0.5, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1}
	for i, w := range want2 {
		if verts[2*fpv+i] != w {
			t.Errorf("vertex 2 float %d = %g, want %g", i, verts[2*fpv+i], w)
		}
	}
}

func TestQuadFloatsPerPreset(t *testing.T) {
	cases := []struct {
		preset gfx.PresetFormat
		fpv    int
	}{
		{gfx.PresetPosition, 3},
		{gfx.PresetPositionColor, 7},
		{gfx.PresetPositionNormal, 6},
		{gfx.PresetPositionUV, 5},
		{gfx.PresetPositionColorNormal, 10},
		{gfx.PresetPositionColorUV, 9},
		{gfx.PresetPositionNormalUV, 8},
		{gfx.PresetPositionColorNormalUV, 12},
	}
	for _, tc := range cases {
		verts, _, err := Quad(tc.preset)
		if err != nil {
			t.Fatalf("%s: %v", tc.preset, err)
		}
		if len(verts) != 4*tc.fpv {
			t.Errorf("%s: got %d floats, want %d", tc.preset, len(verts), 4*tc.fpv)
		}
	}
}

func TestCubeShape(t *testing.T) {
	verts, indices, err := Cube(gfx.PresetPositionNormal)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	const fpv = 6
	if len(verts) != 24*fpv {
		t.Fatalf("got %d floats, want %d", len(verts), 24*fpv)
	}
	if len(indices) != 36 {
		t.Fatalf("got %d indices, want 36", len(indices))
	}
	for i, idx := range indices {
		if idx >= 24 {
			t.Fatalf("index %d = %d, out of range", i, idx)
		}
	}
	for v := 0; v < 24; v++ {
		n := [3]float32{verts[v*fpv+3], verts[v*fpv+4], verts[v*fpv+5]}
		if d := dot(n, n); d < 0.999 || d > 1.001 {
			t.Errorf("vertex %d normal %v is not unit length", v, n)
		}
		for k := 0; k < 3; k++ {
			if p := verts[v*fpv+k]; p != 0.5 && p != -0.5 {
				t.Errorf("vertex %d position component %d = %g, want +-0.5", v, k, p)
			}
		}
	}
	checkWindingMatchesNormals(t, verts, indices, fpv)
}

func TestGridShape(t *testing.T) {
	verts, indices, err := Grid(gfx.PresetPositionUV, 2, 3)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	const fpv = 5
	vertCount := 3 * 4
	if len(verts) != vertCount*fpv {
		t.Fatalf("got %d floats, want %d", len(verts), vertCount*fpv)
	}
	if len(indices) != 2*3*6 {
		t.Fatalf("got %d indices, want %d", len(indices), 2*3*6)
	}
	for i, idx := range indices {
		if int(idx) >= vertCount {
			t.Fatalf("index %d = %d, out of range", i, idx)
		}
	}
	for v := 0; v < vertCount; v++ {
		if y := verts[v*fpv+1]; y != 0 {
			t.Errorf("vertex %d y = %g, want 0", v, y)
		}
	}
	first := verts[:fpv]
	if first[0] != -0.5 || first[2] != -0.5 || first[3] != 0 || first[4] != 0 {
		t.Errorf("first vertex = %v, want corner (-0.5 0 -0.5) uv (0 0)", first)
	}
	last := verts[(vertCount-1)*fpv:]
	if last[0] != 0.5 || last[2] != 0.5 || last[3] != 1 || last[4] != 1 {
		t.Errorf("last vertex = %v, want corner (0.5 0 0.5) uv (1 1)", last)
	}
}

func TestGridWindingFacesUp(t *testing.T) {
	verts, indices, err := Grid(gfx.PresetPositionNormal, 3, 2)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	checkWindingMatchesNormals(t, verts, indices, 6)
}

func TestGridRejectsZeroCells(t *testing.T) {
	if _, _, err := Grid(gfx.PresetPosition, 0, 2); !errors.Is(err, gfx.ErrConfiguration) {
		t.Fatalf("got %v, want ErrConfiguration", err)
	}
	if _, _, err := Grid(gfx.PresetPosition, 2, -1); !errors.Is(err, gfx.ErrConfiguration) {
		t.Fatalf("got %v, want ErrConfiguration", err)
	}
}

func TestInvalidPresetPropagates(t *testing.T) {
	if _, _, err := Quad(gfx.PresetColor); !errors.Is(err, gfx.ErrUnsupportedFormat) {
		t.Errorf("Quad: got %v, want ErrUnsupportedFormat", err)
	}
	if _, _, err := Cube(gfx.PresetFormat(0)); !errors.Is(err, gfx.ErrUnsupportedFormat) {
		t.Errorf("Cube: got %v, want ErrUnsupportedFormat", err)
	}
	if _, _, err := Grid(gfx.PresetColor, 2, 2); !errors.Is(err, gfx.ErrUnsupportedFormat) {
		t.Errorf("Grid: got %v, want ErrUnsupportedFormat", err)
	}
}
