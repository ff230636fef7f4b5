package gfx

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// UniformValue is a shader uniform value. The concrete types are all
// comparable so the context can cache the last value per program and name
// and skip redundant GL calls. The set of implementations is closed.
type UniformValue interface {
	apply(loc int32)
}

type UniformFloat float32

func (v UniformFloat) apply(loc int32) { gl.Uniform1f(loc, float32(v)) }

type UniformVec2 mgl32.Vec2

func (v UniformVec2) apply(loc int32) { gl.Uniform2f(loc, v[0], v[1]) }

type UniformVec3 mgl32.Vec3

func (v UniformVec3) apply(loc int32) { gl.Uniform3f(loc, v[0], v[1], v[2]) }

type UniformVec4 mgl32.Vec4

func (v UniformVec4) apply(loc int32) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }

type UniformInt int32

func (v UniformInt) apply(loc int32) { gl.Uniform1i(loc, int32(v)) }

type UniformIVec2 [2]int32

func (v UniformIVec2) apply(loc int32) { gl.Uniform2i(loc, v[0], v[1]) }

type UniformIVec3 [3]int32

func (v UniformIVec3) apply(loc int32) { gl.Uniform3i(loc, v[0], v[1], v[2]) }

type UniformIVec4 [4]int32

func (v UniformIVec4) apply(loc int32) { gl.Uniform4i(loc, v[0], v[1], v[2], v[3]) }

type UniformMat4 mgl32.Mat4

func (v UniformMat4) apply(loc int32) {
	m := mgl32.Mat4(v)
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}
