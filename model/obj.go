package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/westbot657/RenderForge/gfx"
)

// LoadOBJ parses a Wavefront .obj file into one Primitive per object or
// group, interleaved for the given preset. Faces with more than three
// vertices are fan triangulated. Missing normals default to +Y, missing
// uvs to zero and colors are white. Material directives (mtllib, usemtl)
// are skipped.
func LoadOBJ(path string, preset gfx.PresetFormat) ([]Primitive, error) {
	layout, err := preset.Resolve()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("obj open %q: %w", path, err)
	}
	defer f.Close()

	fpv := layout.FloatsPerVertex()

	var positions, normals [][3]float32
	var uvs [][2]float32

	var prims []Primitive
	cur := Primitive{Name: "default"}
	vertexIdx := make(map[string]uint32) // "v/vt/vn" spec -> index into cur

	flush := func() {
		if len(cur.Vertices) > 0 {
			prims = append(prims, cur)
		}
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			if v, ok := parseVec3(fields); ok {
				positions = append(positions, v)
			}
		case "vn":
			if v, ok := parseVec3(fields); ok {
				normals = append(normals, v)
			}
		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				uvs = append(uvs, [2]float32{float32(u), float32(v)})
			}
		case "f":
			face := make([]uint32, 0, len(fields)-1)
			for _, spec := range fields[1:] {
				idx, ok := vertexIdx[spec]
				if !ok {
					pos, normal, uv := resolveFaceVertex(spec, positions, normals, uvs)
					idx = uint32(len(cur.Vertices) / fpv)
					cur.Vertices = appendVertex(cur.Vertices, preset, pos, normal, uv)
					vertexIdx[spec] = idx
				}
				face = append(face, idx)
			}
			for i := 2; i < len(face); i++ {
				cur.Indices = append(cur.Indices, face[0], face[i-1], face[i])
			}
		case "o", "g":
			flush()
			name := "unnamed"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = Primitive{Name: name}
			vertexIdx = make(map[string]uint32)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj read %q: %w", path, err)
	}
	flush()

	if len(prims) == 0 {
		return nil, fmt.Errorf("obj %q: %w: no face data", path, gfx.ErrIncompleteGeometry)
	}
	return prims, nil
}

func parseVec3(fields []string) ([3]float32, bool) {
	if len(fields) < 4 {
		return [3]float32{}, false
	}
	x, _ := strconv.ParseFloat(fields[1], 32)
	y, _ := strconv.ParseFloat(fields[2], 32)
	z, _ := strconv.ParseFloat(fields[3], 32)
	return [3]float32{float32(x), float32(y), float32(z)}, true
}

// resolveFaceVertex looks up a face vertex spec such as "3", "3/1" or
// "3/1/2" against the index pools. OBJ indices are 1-based and may be
// negative to count back from the end of a pool.
func resolveFaceVertex(spec string, positions, normals [][3]float32, uvs [][2]float32) (pos, normal [3]float32, uv [2]float32) {
	normal = [3]float32{0, 1, 0}

	parts := strings.Split(spec, "/")
	if i, ok := poolIndex(parts, 0, len(positions)); ok {
		pos = positions[i]
	}
	if i, ok := poolIndex(parts, 1, len(uvs)); ok {
		uv = uvs[i]
	}
	if i, ok := poolIndex(parts, 2, len(normals)); ok {
		normal = normals[i]
	}
	return pos, normal, uv
}

func poolIndex(parts []string, slot, size int) (int, bool) {
	if slot >= len(parts) || parts[slot] == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(parts[slot])
	if err != nil {
		return 0, false
	}
	if idx < 0 {
		idx = size + idx + 1
	}
	if idx < 1 || idx > size {
		return 0, false
	}
	return idx - 1, true
}
