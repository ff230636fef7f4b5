package model

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/westbot657/RenderForge/gfx"
)

func writeGLB(t *testing.T, build func(doc *gltf.Document)) string {
	t.Helper()
	doc := gltf.NewDocument()
	build(doc)
	path := filepath.Join(t.TempDir(), "fixture.glb")
	if err := gltf.SaveBinary(doc, path); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	return path
}

func quadDocument(doc *gltf.Document) {
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{
				"POSITION":   modeler.WritePosition(doc, [][3]float32{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}),
				"NORMAL":     modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}),
				"TEXCOORD_0": modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}),
			},
			Indices: gltf.Index(modeler.WriteIndices(doc, []uint32{0, 1, 2, 0, 2, 3})),
		}},
	}}
}

func TestLoadGLTFQuad(t *testing.T) {
	path := writeGLB(t, quadDocument)
	prims, err := LoadGLTF(path, gfx.PresetPositionNormalUV)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if len(prims) != 1 {
		t.Fatalf("primitives = %d, want 1", len(prims))
	}
	p := prims[0]
	if p.Name != "quad_p0" {
		t.Errorf("name = %q, want %q", p.Name, "quad_p0")
	}

	fpv := 8
	if got := len(p.Vertices); got != 4*fpv {
		t.Fatalf("vertex floats = %d, want %d", got, 4*fpv)
	}
	want := []float32{-1, -1, 0, 0, 0, 1, 0, 0}
	for i, v := range want {
		if p.Vertices[i] != v {
			t.Errorf("vertex 0 float %d = %v, want %v", i, p.Vertices[i], v)
		}
	}

	wantIdx := []uint32{0, 1, 2, 0, 2, 3}
	if len(p.Indices) != len(wantIdx) {
		t.Fatalf("indices = %v, want %v", p.Indices, wantIdx)
	}
	for i, v := range wantIdx {
		if p.Indices[i] != v {
			t.Errorf("index %d = %d, want %d", i, p.Indices[i], v)
		}
	}

	checkWindingMatchesNormals(t, p.Vertices, p.Indices, fpv)
}

func TestLoadGLTFDefaultsWhenAttributesAbsent(t *testing.T) {
	path := writeGLB(t, func(doc *gltf.Document) {
		doc.Meshes = []*gltf.Mesh{{
			Name: "bare",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{
					"POSITION": modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, -1}}),
				},
			}},
		}}
	})
	prims, err := LoadGLTF(path, gfx.PresetPositionColorNormalUV)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	p := prims[0]
	if got := len(p.Vertices); got != 3*12 {
		t.Fatalf("vertex floats = %d, want %d", got, 3*12)
	}
	if len(p.Indices) != 0 {
		t.Errorf("indices = %v, want none", p.Indices)
	}
	// position, then white color, +Y normal and zero uv
	want := []float32{0, 0, 0, 1, 1, 1, 1, 0, 1, 0, 0, 0}
	for i, v := range want {
		if p.Vertices[i] != v {
			t.Errorf("vertex 0 float %d = %v, want %v", i, p.Vertices[i], v)
		}
	}
}

func TestLoadGLTFUnnamedMeshFallback(t *testing.T) {
	path := writeGLB(t, func(doc *gltf.Document) {
		doc.Meshes = []*gltf.Mesh{{
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{
					"POSITION": modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
				},
			}},
		}}
	})
	prims, err := LoadGLTF(path, gfx.PresetPosition)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if prims[0].Name != "prim_0" {
		t.Errorf("name = %q, want %q", prims[0].Name, "prim_0")
	}
}

func TestLoadGLTFMissingPosition(t *testing.T) {
	path := writeGLB(t, func(doc *gltf.Document) {
		doc.Meshes = []*gltf.Mesh{{
			Name: "noPos",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{
					"NORMAL": modeler.WriteNormal(doc, [][3]float32{{0, 1, 0}}),
				},
			}},
		}}
	})
	if _, err := LoadGLTF(path, gfx.PresetPosition); !errors.Is(err, gfx.ErrFormatMismatch) {
		t.Errorf("err = %v, want ErrFormatMismatch", err)
	}
}

func TestLoadGLTFMissingFile(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "nope.glb"), gfx.PresetPosition); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadGLTFInvalidPreset(t *testing.T) {
	if _, err := LoadGLTF("ignored.glb", gfx.PresetColor); !errors.Is(err, gfx.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
