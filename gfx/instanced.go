package gfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// MeshLayout pairs the per-vertex and per-instance vertex layouts of an
// InstancedMesh. Base attributes bind at locations [0, len(base)) with
// divisor 0; instance attributes follow at the next locations with
// divisor 1.
type MeshLayout struct {
	Base     *VertexLayout
	Instance *VertexLayout
}

// InstancedMesh renders one piece of geometry many times per draw call.
// Base geometry is uploaded once with STATIC_DRAW and stays untouched while
// per-instance data streams through a separate DYNAMIC_DRAW buffer whose
// capacity only grows.
type InstancedMesh struct {
	ctx    *Context
	layout MeshLayout
	shader *Shader

	vao      uint32
	base     *GpuBuffer
	index    *GpuBuffer
	instance *GpuBuffer

	vertexCount   int
	indexCount    int
	instanceCount int
	mode          DrawMode

	hasIndices    bool
	geometryReady bool
	released      bool
	generation    uint64
}

// NewInstancedMesh validates the layouts against the shader's active
// attributes, then builds the VAO with base pointers at divisor 0 and
// instance pointers at divisor 1.
func NewInstancedMesh(ctx *Context, layout MeshLayout, shader *Shader) (*InstancedMesh, error) {
	if layout.Base == nil || layout.Base.AttributeCount() == 0 {
		return nil, fmt.Errorf("%w: mesh needs a base vertex layout", ErrConfiguration)
	}
	if layout.Instance == nil || layout.Instance.AttributeCount() == 0 {
		return nil, fmt.Errorf("%w: mesh needs an instance vertex layout", ErrConfiguration)
	}
	if shader == nil {
		return nil, fmt.Errorf("%w: mesh needs a shader", ErrConfiguration)
	}
	if err := shader.ValidateLayouts(layout.Base, layout.Instance); err != nil {
		return nil, err
	}

	m := &InstancedMesh{
		ctx:        ctx,
		layout:     layout,
		shader:     shader,
		base:       NewGpuBuffer(ctx, ArrayBuffer, StaticDraw),
		index:      NewGpuBuffer(ctx, ElementArrayBuffer, StaticDraw),
		instance:   NewGpuBuffer(ctx, ArrayBuffer, DynamicDraw),
		mode:       DrawTriangles,
		generation: ctx.Generation(),
	}
	if err := m.configureVAO(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *InstancedMesh) configureVAO() error {
	gl.GenVertexArrays(1, &m.vao)
	if m.vao == 0 {
		return fmt.Errorf("%w: vertex array creation failed", ErrResourceCreation)
	}
	m.ctx.BindVAO(m.vao)

	m.base.ensure()
	m.layout.Base.enablePointers(0, 0)

	m.instance.ensure()
	m.layout.Instance.enablePointers(uint32(m.layout.Base.AttributeCount()), 1)

	m.ctx.BindVAO(0)
	return nil
}

// refresh rebuilds the VAO after a context invalidation. All uploaded
// contents are gone; the mesh reports not ready until geometry and
// instances are uploaded again.
func (m *InstancedMesh) refresh() error {
	if m.generation == m.ctx.Generation() {
		return nil
	}
	m.generation = m.ctx.Generation()
	m.vertexCount = 0
	m.indexCount = 0
	m.instanceCount = 0
	m.hasIndices = false
	m.geometryReady = false
	return m.configureVAO()
}

// SetBaseGeometry uploads interleaved vertex floats and optional indices,
// replacing any previous geometry. The float count must be a multiple of
// the base layout's floats per vertex.
func (m *InstancedMesh) SetBaseGeometry(vertices []float32, indices []uint32) error {
	if m.released {
		return fmt.Errorf("%w: mesh", ErrReleased)
	}
	if err := m.refresh(); err != nil {
		return err
	}
	fpv := m.layout.Base.FloatsPerVertex()
	if fpv == 0 {
		return fmt.Errorf("%w: base layout has non-float attributes", ErrConfiguration)
	}
	if len(vertices) == 0 || len(vertices)%fpv != 0 {
		return fmt.Errorf("%w: %d floats is not a whole number of %d-float vertices",
			ErrFormatMismatch, len(vertices), fpv)
	}

	m.ctx.BindVAO(m.vao)
	if err := m.base.UploadFloats(vertices); err != nil {
		return err
	}
	if len(indices) > 0 {
		// Uploading with the VAO bound records the element buffer
		// binding in the VAO.
		if err := m.index.UploadUint32s(indices); err != nil {
			return err
		}
	}
	m.ctx.BindVAO(0)

	m.vertexCount = len(vertices) / fpv
	m.indexCount = len(indices)
	m.hasIndices = len(indices) > 0
	m.geometryReady = true
	return nil
}

// SetInstances uploads per-instance attribute data for count instances.
// The instance buffer grows geometrically and never shrinks; base geometry
// is not touched. count zero clears the instance set without an upload.
func (m *InstancedMesh) SetInstances(data []float32, count int) error {
	if m.released {
		return fmt.Errorf("%w: mesh", ErrReleased)
	}
	if err := m.refresh(); err != nil {
		return err
	}
	fpv := m.layout.Instance.FloatsPerVertex()
	if fpv == 0 {
		return fmt.Errorf("%w: instance layout has non-float attributes", ErrConfiguration)
	}
	if count < 0 || len(data) != count*fpv {
		return fmt.Errorf("%w: %d floats does not match %d instances of %d floats",
			ErrFormatMismatch, len(data), count, fpv)
	}
	if count == 0 {
		m.instanceCount = 0
		return nil
	}

	before := m.instance.Capacity()
	if err := m.instance.UploadFloats(data); err != nil {
		return err
	}
	if m.instance.Capacity() != before {
		// Reallocation keeps the GL name, so existing pointers stay
		// valid, but re-recording them also covers a buffer recreated
		// after context loss.
		m.ctx.BindVAO(m.vao)
		m.instance.ensure()
		m.layout.Instance.enablePointers(uint32(m.layout.Base.AttributeCount()), 1)
		m.ctx.BindVAO(0)
	}
	m.instanceCount = count
	return nil
}

// SetDrawMode changes the primitive type, DrawTriangles by default.
func (m *InstancedMesh) SetDrawMode(mode DrawMode) {
	m.mode = mode
}

// SetUniform sets a uniform on the mesh's shader.
func (m *InstancedMesh) SetUniform(name string, value UniformValue) error {
	if m.released {
		return fmt.Errorf("%w: mesh", ErrReleased)
	}
	m.ctx.UseProgram(m.shader.ID())
	return m.ctx.SetUniform(name, value)
}

// Draw issues one instanced draw call covering all current instances.
// A mesh without base geometry or with zero instances is not ready to
// draw and fails rather than silently doing nothing.
func (m *InstancedMesh) Draw() error {
	if m.released {
		return fmt.Errorf("%w: mesh", ErrReleased)
	}
	if m.generation != m.ctx.Generation() {
		return fmt.Errorf("%w: mesh resources lost, re-upload geometry", ErrContextLost)
	}
	if !m.geometryReady {
		return fmt.Errorf("%w: no base geometry", ErrNotReady)
	}
	if m.instanceCount == 0 {
		return fmt.Errorf("%w: zero instances", ErrNotReady)
	}

	m.ctx.UseProgram(m.shader.ID())
	m.ctx.BindVAO(m.vao)
	if m.hasIndices {
		gl.DrawElementsInstanced(m.mode.gl(), int32(m.indexCount), gl.UNSIGNED_INT, gl.PtrOffset(0), int32(m.instanceCount))
	} else {
		gl.DrawArraysInstanced(m.mode.gl(), 0, int32(m.vertexCount), int32(m.instanceCount))
	}
	return nil
}

// VertexCount returns the number of base vertices uploaded.
func (m *InstancedMesh) VertexCount() int {
	return m.vertexCount
}

// InstanceCount returns the number of instances from the last SetInstances.
func (m *InstancedMesh) InstanceCount() int {
	return m.instanceCount
}

// Release frees the VAO and all three buffers. Safe to call repeatedly.
func (m *InstancedMesh) Release() {
	if m == nil || m.released {
		return
	}
	if m.generation == m.ctx.Generation() {
		m.ctx.deleteVAO(m.vao)
	}
	m.vao = 0
	m.base.Release()
	m.index.Release()
	m.instance.Release()
	m.released = true
}
