// Package model supplies interleaved vertex data for the preset formats:
// procedural primitives plus glTF and Wavefront OBJ meshes. Every producer
// resolves the preset first, so geometry and layout cannot drift apart.
package model

import (
	"fmt"

	"github.com/westbot657/RenderForge/gfx"
)

var quadUVs = [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

var cubeFaces = [6]struct {
	normal  [3]float32
	corners [4][3]float32
}{
	{[3]float32{0, 0, 1}, [4][3]float32{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
	{[3]float32{0, 0, -1}, [4][3]float32{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
	{[3]float32{1, 0, 0}, [4][3]float32{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
	{[3]float32{-1, 0, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{0, 1, 0}, [4][3]float32{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
	{[3]float32{0, -1, 0}, [4][3]float32{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
}

// appendVertex interleaves one vertex in the canonical preset order:
// position, color, normal, uv. Color is always white; sources without
// vertex colors stay compatible with every preset.
func appendVertex(dst []float32, f gfx.PresetFormat, pos, normal [3]float32, uv [2]float32) []float32 {
	dst = append(dst, pos[0], pos[1], pos[2])
	if f.HasColor() {
		dst = append(dst, 1, 1, 1, 1)
	}
	if f.HasNormal() {
		dst = append(dst, normal[0], normal[1], normal[2])
	}
	if f.HasUV() {
		dst = append(dst, uv[0], uv[1])
	}
	return dst
}

// Quad returns a unit square centered on the origin in the XY plane,
// facing +Z, wound counter-clockwise.
func Quad(preset gfx.PresetFormat) ([]float32, []uint32, error) {
	layout, err := preset.Resolve()
	if err != nil {
		return nil, nil, err
	}
	corners := [4][3]float32{
		{-0.5, -0.5, 0},
		{0.5, -0.5, 0},
		{0.5, 0.5, 0},
		{-0.5, 0.5, 0},
	}
	verts := make([]float32, 0, 4*layout.FloatsPerVertex())
	for i, c := range corners {
		verts = appendVertex(verts, preset, c, [3]float32{0, 0, 1}, quadUVs[i])
	}
	return verts, []uint32{0, 1, 2, 0, 2, 3}, nil
}

// Cube returns a unit cube centered on the origin. Each face carries its
// own four vertices so normals and uvs stay flat per face.
func Cube(preset gfx.PresetFormat) ([]float32, []uint32, error) {
	layout, err := preset.Resolve()
	if err != nil {
		return nil, nil, err
	}
	verts := make([]float32, 0, 24*layout.FloatsPerVertex())
	indices := make([]uint32, 0, 36)
	for fi, face := range cubeFaces {
		base := uint32(fi * 4)
		for ci, corner := range face.corners {
			verts = appendVertex(verts, preset, corner, face.normal, quadUVs[ci])
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return verts, indices, nil
}

// Grid returns an nx by nz cell grid on the XZ plane spanning [-0.5, 0.5]
// on both axes, facing +Y. UVs run [0,1] across the full grid.
func Grid(preset gfx.PresetFormat, nx, nz int) ([]float32, []uint32, error) {
	if nx < 1 || nz < 1 {
		return nil, nil, fmt.Errorf("%w: grid needs at least one cell per axis, got %dx%d", gfx.ErrConfiguration, nx, nz)
	}
	layout, err := preset.Resolve()
	if err != nil {
		return nil, nil, err
	}
	cols, rows := nx+1, nz+1
	verts := make([]float32, 0, cols*rows*layout.FloatsPerVertex())
	for iz := 0; iz < rows; iz++ {
		for ix := 0; ix < cols; ix++ {
			u := float32(ix) / float32(nx)
			v := float32(iz) / float32(nz)
			pos := [3]float32{u - 0.5, 0, v - 0.5}
			verts = appendVertex(verts, preset, pos, [3]float32{0, 1, 0}, [2]float32{u, v})
		}
	}
	indices := make([]uint32, 0, nx*nz*6)
	for iz := 0; iz < nz; iz++ {
		for ix := 0; ix < nx; ix++ {
			a := uint32(iz*cols + ix)
			b := a + 1
			d := a + uint32(cols)
			c := d + 1
			indices = append(indices, a, d, c, a, c, b)
		}
	}
	return verts, indices, nil
}
