package gfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/westbot657/RenderForge/core"
)

// Context owns the ambient GL state. Every state-mutating call in this
// module goes through it, so redundant driver calls are elided against the
// cached values and mutation of the process-wide bind state stays traceable.
//
// A Context is bound to the thread that owns the GL context; it is not safe
// for concurrent use. Callers must keep bind-then-draw sequences atomic:
// nothing may rebind between a component's bind and its draw.
type Context struct {
	generation uint64

	program uint32
	vao     uint32
	fbo     uint32

	depth   depthState
	cull    cullState
	blend   blendState
	stencil stencilState
	raster  rasterState

	clearColor core.Color

	// uniform value cache, program id -> name -> last applied value
	uniforms map[uint32]map[string]UniformValue

	// built-in preset programs, compiled on first use
	presets map[PresetFormat]*Shader
}

// NewContext loads the GL function pointers and seeds the state cache with
// the context's default state. The window's GL context must already be
// current on the calling thread.
func NewContext() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	c := &Context{
		generation: 1,
		uniforms:   make(map[uint32]map[string]UniformValue),
		presets:    make(map[PresetFormat]*Shader),
	}
	c.seedDefaults()

	version := gl.GoStr(gl.GetString(gl.VERSION))
	renderer := gl.GoStr(gl.GetString(gl.RENDERER))
	Logger().Info("gl context ready", "version", version, "renderer", renderer)

	return c, nil
}

// seedDefaults mirrors the initial state a fresh GL context guarantees.
func (c *Context) seedDefaults() {
	c.program = 0
	c.vao = 0
	c.fbo = 0
	c.depth = depthState{enabled: false, fn: DepthLess, mask: true}
	c.cull = cullState{enabled: false, face: CullBack, frontFace: WindingCCW}
	c.blend = blendState{
		enabled: false,
		srcRGB:  BlendOne, srcAlpha: BlendOne,
		dstRGB: BlendZero, dstAlpha: BlendZero,
		eqRGB: BlendAdd, eqAlpha: BlendAdd,
	}
	c.stencil = stencilState{
		enabled: false,
		fn:      StencilAlways,
		mask:    ^uint32(0),
		fail:    StencilKeep, zfail: StencilKeep, zpass: StencilKeep,
	}
	var vp [4]int32
	gl.GetIntegerv(gl.VIEWPORT, &vp[0])
	c.raster = rasterState{viewport: vp, scissorBox: vp, lineWidth: 1}
	c.clearColor = core.ColorBlack.WithAlpha(0)
}

// Generation identifies the current context lifetime. It advances on
// Invalidate; resources remember the generation they were created under and
// treat a mismatch as a dead handle.
func (c *Context) Generation() uint64 {
	return c.generation
}

// Invalidate is the bulk invalidation signal for context loss. Every GPU
// handle created before the call (buffers, VAOs, programs, textures) is
// dead; buffers recreate themselves lazily on their next upload, meshes and
// builders refresh when geometry is next supplied, and built-in preset
// programs recompile on demand. Callers re-upload their content afterwards.
func (c *Context) Invalidate() {
	c.generation++
	c.uniforms = make(map[uint32]map[string]UniformValue)
	c.presets = make(map[PresetFormat]*Shader)
	c.seedDefaults()
	Logger().Warn("gl context invalidated", "generation", c.generation)
}

// UseProgram binds a program, skipping the call when already bound.
func (c *Context) UseProgram(program uint32) {
	if c.program != program {
		c.program = program
		gl.UseProgram(program)
	}
}

// BindVAO binds a vertex array object, skipping the call when already
// bound.
func (c *Context) BindVAO(vao uint32) {
	if c.vao != vao {
		c.vao = vao
		gl.BindVertexArray(vao)
	}
}

// BindFBO binds a framebuffer, skipping the call when already bound.
func (c *Context) BindFBO(fbo uint32) {
	if c.fbo != fbo {
		c.fbo = fbo
		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	}
}

// BindTexture binds tex to the given texture unit. Texture bindings are
// not cached; collaborators rebind per draw.
func (c *Context) BindTexture(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (c *Context) SetDepthTest(enabled bool) {
	if c.depth.enabled != enabled {
		c.depth.enabled = enabled
		if enabled {
			gl.Enable(gl.DEPTH_TEST)
		} else {
			gl.Disable(gl.DEPTH_TEST)
		}
	}
}

func (c *Context) SetDepthFunc(fn DepthFunc) {
	if c.depth.fn != fn {
		c.depth.fn = fn
		gl.DepthFunc(fn.gl())
	}
}

func (c *Context) SetDepthMask(enabled bool) {
	if c.depth.mask != enabled {
		c.depth.mask = enabled
		gl.DepthMask(enabled)
	}
}

func (c *Context) SetCulling(enabled bool) {
	if c.cull.enabled != enabled {
		c.cull.enabled = enabled
		if enabled {
			gl.Enable(gl.CULL_FACE)
		} else {
			gl.Disable(gl.CULL_FACE)
		}
	}
}

func (c *Context) SetCullFace(face CullFace) {
	if c.cull.face != face {
		c.cull.face = face
		gl.CullFace(face.gl())
	}
}

func (c *Context) SetFrontFace(w Winding) {
	if c.cull.frontFace != w {
		c.cull.frontFace = w
		gl.FrontFace(w.gl())
	}
}

func (c *Context) SetBlending(enabled bool) {
	if c.blend.enabled != enabled {
		c.blend.enabled = enabled
		if enabled {
			gl.Enable(gl.BLEND)
		} else {
			gl.Disable(gl.BLEND)
		}
	}
}

// SetBlendFunc sets one factor pair for both color and alpha.
func (c *Context) SetBlendFunc(src, dst BlendFactor) {
	c.SetBlendFuncSeparate(src, src, dst, dst)
}

func (c *Context) SetBlendFuncSeparate(srcRGB, srcAlpha, dstRGB, dstAlpha BlendFactor) {
	b := &c.blend
	if b.srcRGB != srcRGB || b.srcAlpha != srcAlpha || b.dstRGB != dstRGB || b.dstAlpha != dstAlpha {
		b.srcRGB, b.srcAlpha, b.dstRGB, b.dstAlpha = srcRGB, srcAlpha, dstRGB, dstAlpha
		gl.BlendFuncSeparate(srcRGB.gl(), dstRGB.gl(), srcAlpha.gl(), dstAlpha.gl())
	}
}

func (c *Context) SetBlendEquation(rgb, alpha BlendEquation) {
	if c.blend.eqRGB != rgb || c.blend.eqAlpha != alpha {
		c.blend.eqRGB, c.blend.eqAlpha = rgb, alpha
		gl.BlendEquationSeparate(rgb.gl(), alpha.gl())
	}
}

func (c *Context) SetStencilTest(enabled bool) {
	if c.stencil.enabled != enabled {
		c.stencil.enabled = enabled
		if enabled {
			gl.Enable(gl.STENCIL_TEST)
		} else {
			gl.Disable(gl.STENCIL_TEST)
		}
	}
}

func (c *Context) SetStencilFunc(fn StencilFunc, ref int32, mask uint32) {
	s := &c.stencil
	if s.fn != fn || s.reference != ref || s.mask != mask {
		s.fn, s.reference, s.mask = fn, ref, mask
		gl.StencilFunc(fn.gl(), ref, mask)
	}
}

func (c *Context) SetStencilOp(fail, zfail, zpass StencilOp) {
	s := &c.stencil
	if s.fail != fail || s.zfail != zfail || s.zpass != zpass {
		s.fail, s.zfail, s.zpass = fail, zfail, zpass
		gl.StencilOp(fail.gl(), zfail.gl(), zpass.gl())
	}
}

func (c *Context) SetScissorTest(enabled bool) {
	if c.raster.scissorTest != enabled {
		c.raster.scissorTest = enabled
		if enabled {
			gl.Enable(gl.SCISSOR_TEST)
		} else {
			gl.Disable(gl.SCISSOR_TEST)
		}
	}
}

func (c *Context) SetScissor(x, y, w, h int32) {
	box := [4]int32{x, y, w, h}
	if c.raster.scissorBox != box {
		c.raster.scissorBox = box
		gl.Scissor(x, y, w, h)
	}
}

func (c *Context) SetViewport(x, y, w, h int32) {
	vp := [4]int32{x, y, w, h}
	if c.raster.viewport != vp {
		c.raster.viewport = vp
		gl.Viewport(x, y, w, h)
	}
}

func (c *Context) SetLineWidth(w float32) {
	if c.raster.lineWidth != w {
		c.raster.lineWidth = w
		gl.LineWidth(w)
	}
}

func (c *Context) SetClearColor(col core.Color) {
	if c.clearColor != col {
		c.clearColor = col
		gl.ClearColor(col.R, col.G, col.B, col.A)
	}
}

// Clear clears the selected buffers of the bound framebuffer.
func (c *Context) Clear(color, depth, stencil bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if stencil {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

// SetUniform applies a uniform on the currently bound program, skipping the
// GL call when the cached value already matches. A name the program does
// not use is applied against location -1, which the driver ignores; the
// value is still cached. Fails with ErrInvalidState when no program is
// bound.
func (c *Context) SetUniform(name string, value UniformValue) error {
	if c.program == 0 {
		return fmt.Errorf("%w: SetUniform with no program bound", ErrInvalidState)
	}

	cache, ok := c.uniforms[c.program]
	if !ok {
		cache = make(map[string]UniformValue)
		c.uniforms[c.program] = cache
	}
	if prev, ok := cache[name]; ok && prev == value {
		return nil
	}
	cache[name] = value

	loc := gl.GetUniformLocation(c.program, gl.Str(name+"\x00"))
	value.apply(loc)
	return nil
}

// DestroyProgram deletes a program and drops its uniform cache, unbinding
// it first when it is current.
func (c *Context) DestroyProgram(program uint32) {
	if c.program == program {
		c.UseProgram(0)
	}
	delete(c.uniforms, program)
	gl.DeleteProgram(program)
}

// deleteVAO releases a vertex array object, unbinding it first when it is
// current.
func (c *Context) deleteVAO(vao uint32) {
	if vao == 0 {
		return
	}
	if c.vao == vao {
		c.BindVAO(0)
	}
	gl.DeleteVertexArrays(1, &vao)
}

// StateSnapshot is a saved copy of the cached GL state. Restore reapplies
// it through the eliding setters, so a bracketed sequence of state changes
// can be unwound without tracking each one.
type StateSnapshot struct {
	ctx *Context

	program uint32
	vao     uint32
	fbo     uint32
	depth   depthState
	cull    cullState
	blend   blendState
	stencil stencilState
	raster  rasterState
	clear   core.Color
}

// Snapshot captures the current cached state. Pair with a deferred Restore.
func (c *Context) Snapshot() *StateSnapshot {
	return &StateSnapshot{
		ctx:     c,
		program: c.program,
		vao:     c.vao,
		fbo:     c.fbo,
		depth:   c.depth,
		cull:    c.cull,
		blend:   c.blend,
		stencil: c.stencil,
		raster:  c.raster,
		clear:   c.clearColor,
	}
}

// Restore reapplies the captured state.
func (s *StateSnapshot) Restore() {
	c := s.ctx
	c.UseProgram(s.program)
	c.BindVAO(s.vao)
	c.BindFBO(s.fbo)
	c.SetDepthTest(s.depth.enabled)
	c.SetDepthFunc(s.depth.fn)
	c.SetDepthMask(s.depth.mask)
	c.SetCulling(s.cull.enabled)
	c.SetCullFace(s.cull.face)
	c.SetFrontFace(s.cull.frontFace)
	c.SetBlending(s.blend.enabled)
	c.SetBlendFuncSeparate(s.blend.srcRGB, s.blend.srcAlpha, s.blend.dstRGB, s.blend.dstAlpha)
	c.SetBlendEquation(s.blend.eqRGB, s.blend.eqAlpha)
	c.SetStencilTest(s.stencil.enabled)
	c.SetStencilFunc(s.stencil.fn, s.stencil.reference, s.stencil.mask)
	c.SetStencilOp(s.stencil.fail, s.stencil.zfail, s.stencil.zpass)
	c.SetScissorTest(s.raster.scissorTest)
	c.SetScissor(s.raster.scissorBox[0], s.raster.scissorBox[1], s.raster.scissorBox[2], s.raster.scissorBox[3])
	c.SetViewport(s.raster.viewport[0], s.raster.viewport[1], s.raster.viewport[2], s.raster.viewport[3])
	c.SetLineWidth(s.raster.lineWidth)
	c.SetClearColor(s.clear)
}
