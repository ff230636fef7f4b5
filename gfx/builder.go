package gfx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/westbot657/RenderForge/core"
)

type builderState uint8

const (
	builderIdle builderState = iota
	builderRecording
)

// pendingVertex is the vertex under construction. Component values live in
// one scratch slab indexed by per-attribute offsets; the vertex packs into
// staging the moment its last attribute is set.
type pendingVertex struct {
	active  bool
	set     []bool
	scratch []float32
}

func (p *pendingVertex) reset() {
	p.active = false
	for i := range p.set {
		p.set[i] = false
	}
}

func (p *pendingVertex) complete() bool {
	for _, s := range p.set {
		if !s {
			return false
		}
	}
	return true
}

type samplerBinding struct {
	unit uint32
	tex  uint32
}

// BufferBuilder accumulates vertices on the CPU and draws them in one call.
// Attribute setters chain; the first error latches and subsequent calls
// no-op, so a push sequence reads cleanly and Flush reports what went
// wrong. One stream VBO and one VAO are reused across batches, as is the
// staging allocation.
type BufferBuilder struct {
	ctx    *Context
	layout *VertexLayout
	shader *Shader
	preset PresetFormat

	vao           uint32
	vbo           *GpuBuffer
	configuredVBO uint32

	staging []byte
	cursor  int
	state   builderState
	err     error

	pending     pendingVertex
	compOffsets []int

	uniforms map[string]UniformValue
	samplers map[string]samplerBinding
	mode     DrawMode

	generation uint64
	released   bool
}

// BuilderOption adjusts builder construction.
type BuilderOption func(*builderConfig)

type builderConfig struct {
	shader *Shader
	mode   DrawMode
}

// WithShader replaces the program a builder draws with. For the preset
// flavor this overrides the built-in program; the replacement is validated
// against the layout.
func WithShader(s *Shader) BuilderOption {
	return func(c *builderConfig) { c.shader = s }
}

// WithDrawMode sets the primitive type, DrawTriangles by default.
func WithDrawMode(m DrawMode) BuilderOption {
	return func(c *builderConfig) { c.mode = m }
}

// NewBufferBuilder builds for a preset attribute combination using its
// canonical layout and the shared built-in program.
func NewBufferBuilder(ctx *Context, preset PresetFormat, opts ...BuilderOption) (*BufferBuilder, error) {
	layout, err := preset.Resolve()
	if err != nil {
		return nil, err
	}
	cfg := builderConfig{mode: DrawTriangles}
	for _, opt := range opts {
		opt(&cfg)
	}
	shader := cfg.shader
	if shader == nil {
		shader, err = ctx.presetProgram(preset)
		if err != nil {
			return nil, err
		}
	} else if err := shader.ValidateLayouts(layout); err != nil {
		return nil, err
	}
	return newBuilder(ctx, layout, shader, preset, cfg.mode)
}

// NewCustomBufferBuilder builds for an arbitrary layout with a caller
// supplied program. The layout must satisfy the program's active
// attributes.
func NewCustomBufferBuilder(ctx *Context, layout *VertexLayout, shader *Shader, opts ...BuilderOption) (*BufferBuilder, error) {
	if layout == nil || layout.AttributeCount() == 0 {
		return nil, fmt.Errorf("%w: builder needs a vertex layout", ErrEmptyLayout)
	}
	cfg := builderConfig{mode: DrawTriangles}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.shader != nil {
		shader = cfg.shader
	}
	if shader == nil {
		return nil, fmt.Errorf("%w: builder needs a shader", ErrConfiguration)
	}
	if err := shader.ValidateLayouts(layout); err != nil {
		return nil, err
	}
	return newBuilder(ctx, layout, shader, 0, cfg.mode)
}

func newBuilder(ctx *Context, layout *VertexLayout, shader *Shader, preset PresetFormat, mode DrawMode) (*BufferBuilder, error) {
	b := newBuilderState(ctx, layout, shader, preset, mode)
	if err := b.configureVAO(); err != nil {
		return nil, err
	}
	return b, nil
}

// newBuilderState assembles the CPU side of a builder; GL objects are
// configured separately.
func newBuilderState(ctx *Context, layout *VertexLayout, shader *Shader, preset PresetFormat, mode DrawMode) *BufferBuilder {
	compOffsets := make([]int, layout.AttributeCount())
	total := 0
	for i, a := range layout.attrs {
		compOffsets[i] = total
		total += a.Count
	}
	return &BufferBuilder{
		ctx:    ctx,
		layout: layout,
		shader: shader,
		preset: preset,
		vbo:    NewGpuBuffer(ctx, ArrayBuffer, StreamDraw),
		pending: pendingVertex{
			set:     make([]bool, layout.AttributeCount()),
			scratch: make([]float32, total),
		},
		compOffsets: compOffsets,
		uniforms:    make(map[string]UniformValue),
		samplers:    make(map[string]samplerBinding),
		mode:        mode,
		generation:  ctx.Generation(),
	}
}

func (b *BufferBuilder) configureVAO() error {
	gl.GenVertexArrays(1, &b.vao)
	if b.vao == 0 {
		return fmt.Errorf("%w: vertex array creation failed", ErrResourceCreation)
	}
	b.ctx.BindVAO(b.vao)
	b.vbo.ensure()
	b.layout.enablePointers(0, 0)
	b.configuredVBO = b.vbo.ID()
	b.ctx.BindVAO(0)
	return nil
}

// Begin starts a recording batch. The previous staging allocation is
// reused; only the cursor resets.
func (b *BufferBuilder) Begin() error {
	if b.released {
		return fmt.Errorf("%w: builder", ErrReleased)
	}
	if b.state == builderRecording {
		return fmt.Errorf("%w: Begin while already recording", ErrInvalidState)
	}
	if b.generation != b.ctx.Generation() {
		if err := b.configureVAO(); err != nil {
			return err
		}
		b.generation = b.ctx.Generation()
	}
	b.cursor = 0
	b.err = nil
	b.pending.reset()
	b.state = builderRecording
	return nil
}

// latch records the first error of a batch. Later calls keep chaining as
// no-ops and Flush reports the latched error.
func (b *BufferBuilder) latch(err error) {
	if b.err == nil {
		b.err = err
	}
}

// recordable reports whether attribute pushes may proceed, latching the
// violation otherwise. Pushes outside Begin/Flush never touch staging.
func (b *BufferBuilder) recordable() bool {
	if b.err != nil {
		return false
	}
	if b.released {
		b.err = fmt.Errorf("%w: builder", ErrReleased)
		return false
	}
	if b.state != builderRecording {
		b.err = fmt.Errorf("%w: vertex data pushed outside Begin/Flush", ErrInvalidState)
		return false
	}
	return true
}

// setComponents stores values for one attribute of the pending vertex and
// packs the vertex once every attribute is set.
func (b *BufferBuilder) setComponents(idx int, vals ...float32) {
	a := b.layout.attrs[idx]
	if len(vals) != a.Count {
		b.latch(&AttributeSizeError{Name: a.Name, Expected: a.Count, Found: len(vals)})
		return
	}
	if b.pending.set[idx] {
		b.latch(fmt.Errorf("%w: attribute %q set twice on one vertex", ErrFormatMismatch, a.Name))
		return
	}
	b.pending.active = true
	copy(b.pending.scratch[b.compOffsets[idx]:], vals)
	b.pending.set[idx] = true
	if b.pending.complete() {
		b.packPending()
	}
}

// Vertex sets the position of a new vertex. Calling it while the previous
// vertex still lacks attributes latches an error naming the double-set
// position.
func (b *BufferBuilder) Vertex(x, y, z float32) *BufferBuilder {
	if !b.recordable() {
		return b
	}
	idx := b.layout.indexOfSemantic(SemanticPosition)
	if idx < 0 {
		b.latch(fmt.Errorf("%w: layout has no position attribute", ErrFormatMismatch))
		return b
	}
	b.setComponents(idx, x, y, z)
	return b
}

// Color sets the pending vertex's color. Three-component color attributes
// take the RGB channels, four-component take RGBA.
func (b *BufferBuilder) Color(c core.Color) *BufferBuilder {
	if !b.recordable() {
		return b
	}
	idx := b.layout.indexOfSemantic(SemanticColor)
	if idx < 0 {
		b.latch(fmt.Errorf("%w: layout has no color attribute", ErrFormatMismatch))
		return b
	}
	if b.layout.attrs[idx].Count == 3 {
		b.setComponents(idx, c.R, c.G, c.B)
	} else {
		b.setComponents(idx, c.R, c.G, c.B, c.A)
	}
	return b
}

// Normal sets the pending vertex's normal.
func (b *BufferBuilder) Normal(x, y, z float32) *BufferBuilder {
	if !b.recordable() {
		return b
	}
	idx := b.layout.indexOfSemantic(SemanticNormal)
	if idx < 0 {
		b.latch(fmt.Errorf("%w: layout has no normal attribute", ErrFormatMismatch))
		return b
	}
	b.setComponents(idx, x, y, z)
	return b
}

// UV sets the pending vertex's texture coordinates.
func (b *BufferBuilder) UV(u, v float32) *BufferBuilder {
	if !b.recordable() {
		return b
	}
	idx := b.layout.indexOfSemantic(SemanticUV)
	if idx < 0 {
		b.latch(fmt.Errorf("%w: layout has no uv attribute", ErrFormatMismatch))
		return b
	}
	b.setComponents(idx, u, v)
	return b
}

// Attr sets an attribute by layout name, the general form for custom
// layouts. The value count must match the attribute's component count.
func (b *BufferBuilder) Attr(name string, values ...float32) *BufferBuilder {
	if !b.recordable() {
		return b
	}
	idx := b.layout.indexOfName(name)
	if idx < 0 {
		b.latch(&AttributeNameError{Name: name})
		return b
	}
	b.setComponents(idx, values...)
	return b
}

// packPending serializes the completed vertex into staging, encoding each
// attribute per its component kind and zeroing alignment padding.
func (b *BufferBuilder) packPending() {
	stride := int(b.layout.Stride())
	b.ensureStaging(stride)
	rec := b.staging[b.cursor : b.cursor+stride]
	for i := range rec {
		rec[i] = 0
	}
	for i, a := range b.layout.attrs {
		off := int(b.layout.offsets[i])
		vals := b.pending.scratch[b.compOffsets[i] : b.compOffsets[i]+a.Count]
		switch a.Kind {
		case KindInt:
			for j, v := range vals {
				binary.LittleEndian.PutUint32(rec[off+j*4:], uint32(int32(v)))
			}
		case KindUByteNorm:
			for j, v := range vals {
				rec[off+j] = packUnorm8(v)
			}
		default:
			for j, v := range vals {
				binary.LittleEndian.PutUint32(rec[off+j*4:], math.Float32bits(v))
			}
		}
	}
	b.cursor += stride
	b.pending.reset()
}

// ensureStaging grows staging so n more bytes fit after the cursor.
// Doubling keeps long pushes amortized linear.
func (b *BufferBuilder) ensureStaging(n int) {
	need := b.cursor + n
	if need <= len(b.staging) {
		return
	}
	next := growCapacity(len(b.staging), need)
	grown := make([]byte, next)
	copy(grown, b.staging[:b.cursor])
	b.staging = grown
}

func packUnorm8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// SetUniform stages a uniform applied at every flush until overwritten.
func (b *BufferBuilder) SetUniform(name string, value UniformValue) {
	b.uniforms[name] = value
}

// SetSampler stages a texture binding: at flush the texture binds to the
// unit and the named sampler uniform is pointed at it.
func (b *BufferBuilder) SetSampler(name string, unit uint32, tex uint32) {
	b.samplers[name] = samplerBinding{unit: unit, tex: tex}
}

// Cursor returns the staged byte count of the current batch.
func (b *BufferBuilder) Cursor() int {
	return b.cursor
}

// VertexCount returns the number of completed vertices staged so far.
func (b *BufferBuilder) VertexCount() int {
	return b.cursor / int(b.layout.Stride())
}

// Err returns the latched error of the current batch, if any.
func (b *BufferBuilder) Err() error {
	return b.err
}

// Layout returns the builder's vertex layout.
func (b *BufferBuilder) Layout() *VertexLayout {
	return b.layout
}

// Flush uploads the staged bytes, applies uniforms and samplers, and draws
// the batch as one call, returning the builder to idle. A batch with a
// latched error, an incomplete final vertex, or a vertex count that does
// not fill whole primitives is discarded and reported. An empty batch is a
// no-op. The staging allocation is kept for the next batch.
func (b *BufferBuilder) Flush() error {
	if b.released {
		return fmt.Errorf("%w: builder", ErrReleased)
	}
	if b.state != builderRecording {
		return fmt.Errorf("%w: Flush without Begin", ErrInvalidState)
	}
	b.state = builderIdle

	err := b.err
	b.err = nil
	if err == nil && b.pending.active {
		err = fmt.Errorf("%w: final vertex is missing attributes", ErrFormatMismatch)
	}
	if err != nil {
		b.cursor = 0
		b.pending.reset()
		return err
	}
	if b.cursor == 0 {
		return nil
	}

	n := b.cursor / int(b.layout.Stride())
	if per := b.mode.verticesPerPrimitive(); per > 1 && n%per != 0 {
		b.cursor = 0
		return fmt.Errorf("%w: %d vertices do not fill whole %s primitives", ErrIncompleteGeometry, n, b.mode)
	}

	if b.generation != b.ctx.Generation() {
		if err := b.configureVAO(); err != nil {
			b.cursor = 0
			return err
		}
		b.generation = b.ctx.Generation()
	}
	if err := b.vbo.Upload(b.staging[:b.cursor]); err != nil {
		b.cursor = 0
		return err
	}
	if b.vbo.ID() != b.configuredVBO {
		// The VBO was recreated under the same VAO; re-record pointers.
		b.ctx.BindVAO(b.vao)
		b.vbo.ensure()
		b.layout.enablePointers(0, 0)
		b.configuredVBO = b.vbo.ID()
	}

	b.ctx.UseProgram(b.shader.ID())
	for name, v := range b.uniforms {
		if err := b.ctx.SetUniform(name, v); err != nil {
			b.cursor = 0
			return err
		}
	}
	for name, s := range b.samplers {
		b.ctx.BindTexture(s.unit, s.tex)
		if err := b.ctx.SetUniform(name, UniformInt(s.unit)); err != nil {
			b.cursor = 0
			return err
		}
	}

	b.ctx.BindVAO(b.vao)
	gl.DrawArrays(b.mode.gl(), 0, int32(n))
	Logger().Debug("batch flushed", "vertices", n, "bytes", b.cursor)
	b.cursor = 0
	return nil
}

// Release frees the VAO and stream VBO. Safe to call repeatedly; staged
// data is discarded.
func (b *BufferBuilder) Release() {
	if b == nil || b.released {
		return
	}
	if b.generation == b.ctx.Generation() {
		b.ctx.deleteVAO(b.vao)
	}
	b.vao = 0
	b.vbo.Release()
	b.staging = nil
	b.cursor = 0
	b.state = builderIdle
	b.released = true
}
