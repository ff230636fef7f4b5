package model

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/westbot657/RenderForge/gfx"
)

// Primitive is one drawable slab of a glTF mesh, interleaved for the
// preset it was loaded with. Indices is empty for non-indexed primitives.
type Primitive struct {
	Name     string
	Vertices []float32
	Indices  []uint32
}

// LoadGLTF reads every mesh primitive from a .gltf or .glb file and
// interleaves it for the given preset. Positions are required; missing
// normals default to +Y, missing uvs to zero and colors are white.
func LoadGLTF(path string, preset gfx.PresetFormat) ([]Primitive, error) {
	layout, err := preset.Resolve()
	if err != nil {
		return nil, err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	var prims []Primitive
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			p, err := readPrimitive(doc, gm.Name, pi, *prim, preset, layout.FloatsPerVertex())
			if err != nil {
				return nil, fmt.Errorf("gltf %q mesh %d primitive %d: %w", path, mi, pi, err)
			}
			prims = append(prims, p)
		}
	}
	return prims, nil
}

func readPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive, preset gfx.PresetFormat, fpv int) (Primitive, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return Primitive{}, fmt.Errorf("%w: no POSITION attribute", gfx.ErrFormatMismatch)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return Primitive{}, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]float32, 0, len(positions)*fpv)
	for i, p := range positions {
		normal := [3]float32{0, 1, 0}
		if i < len(normals) {
			normal = normals[i]
		}
		var uv [2]float32
		if i < len(uvs) {
			uv = uvs[i]
		}
		verts = appendVertex(verts, preset, p, normal, uv)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return Primitive{}, fmt.Errorf("indices: %w", err)
		}
	}

	return Primitive{Name: name, Vertices: verts, Indices: indices}, nil
}
