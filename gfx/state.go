package gfx

import "github.com/go-gl/gl/v4.1-core/gl"

// DepthFunc selects the depth comparison.
type DepthFunc uint8

const (
	DepthNever DepthFunc = iota
	DepthLess
	DepthEqual
	DepthLEqual
	DepthGreater
	DepthGEqual
	DepthNotEqual
	DepthAlways
)

func (f DepthFunc) gl() uint32 {
	switch f {
	case DepthNever:
		return gl.NEVER
	case DepthEqual:
		return gl.EQUAL
	case DepthLEqual:
		return gl.LEQUAL
	case DepthGreater:
		return gl.GREATER
	case DepthGEqual:
		return gl.GEQUAL
	case DepthNotEqual:
		return gl.NOTEQUAL
	case DepthAlways:
		return gl.ALWAYS
	}
	return gl.LESS
}

// CullFace selects which triangle faces are culled.
type CullFace uint8

const (
	CullBack CullFace = iota
	CullFront
	CullFrontAndBack
)

func (f CullFace) gl() uint32 {
	switch f {
	case CullFront:
		return gl.FRONT
	case CullFrontAndBack:
		return gl.FRONT_AND_BACK
	}
	return gl.BACK
}

// Winding selects which vertex order counts as front-facing.
type Winding uint8

const (
	WindingCCW Winding = iota
	WindingCW
)

func (w Winding) gl() uint32 {
	if w == WindingCW {
		return gl.CW
	}
	return gl.CCW
}

// BlendFactor is a source or destination blend weight.
// BlendSrcAlphaSaturate is valid only as a source factor.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendConstantColor
	BlendOneMinusConstantColor
	BlendConstantAlpha
	BlendOneMinusConstantAlpha
	BlendSrcAlphaSaturate
)

func (f BlendFactor) gl() uint32 {
	switch f {
	case BlendOne:
		return gl.ONE
	case BlendSrcColor:
		return gl.SRC_COLOR
	case BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case BlendDstColor:
		return gl.DST_COLOR
	case BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case BlendSrcAlpha:
		return gl.SRC_ALPHA
	case BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case BlendDstAlpha:
		return gl.DST_ALPHA
	case BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case BlendConstantColor:
		return gl.CONSTANT_COLOR
	case BlendOneMinusConstantColor:
		return gl.ONE_MINUS_CONSTANT_COLOR
	case BlendConstantAlpha:
		return gl.CONSTANT_ALPHA
	case BlendOneMinusConstantAlpha:
		return gl.ONE_MINUS_CONSTANT_ALPHA
	case BlendSrcAlphaSaturate:
		return gl.SRC_ALPHA_SATURATE
	}
	return gl.ZERO
}

// BlendEquation combines source and destination after weighting.
type BlendEquation uint8

const (
	BlendAdd BlendEquation = iota
	BlendSubtract
	BlendReverseSubtract
	BlendMin
	BlendMax
)

func (e BlendEquation) gl() uint32 {
	switch e {
	case BlendSubtract:
		return gl.FUNC_SUBTRACT
	case BlendReverseSubtract:
		return gl.FUNC_REVERSE_SUBTRACT
	case BlendMin:
		return gl.MIN
	case BlendMax:
		return gl.MAX
	}
	return gl.FUNC_ADD
}

// StencilFunc selects the stencil comparison.
type StencilFunc uint8

const (
	StencilNever StencilFunc = iota
	StencilLess
	StencilLEqual
	StencilGreater
	StencilGEqual
	StencilEqual
	StencilNotEqual
	StencilAlways
)

func (f StencilFunc) gl() uint32 {
	switch f {
	case StencilNever:
		return gl.NEVER
	case StencilLess:
		return gl.LESS
	case StencilLEqual:
		return gl.LEQUAL
	case StencilGreater:
		return gl.GREATER
	case StencilGEqual:
		return gl.GEQUAL
	case StencilEqual:
		return gl.EQUAL
	case StencilNotEqual:
		return gl.NOTEQUAL
	}
	return gl.ALWAYS
}

// StencilOp selects what happens to the stencil value on test outcomes.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilZero
	StencilReplace
	StencilIncr
	StencilIncrWrap
	StencilDecr
	StencilDecrWrap
	StencilInvert
)

func (o StencilOp) gl() uint32 {
	switch o {
	case StencilZero:
		return gl.ZERO
	case StencilReplace:
		return gl.REPLACE
	case StencilIncr:
		return gl.INCR
	case StencilIncrWrap:
		return gl.INCR_WRAP
	case StencilDecr:
		return gl.DECR
	case StencilDecrWrap:
		return gl.DECR_WRAP
	case StencilInvert:
		return gl.INVERT
	}
	return gl.KEEP
}

// DrawMode is the primitive type a builder or mesh draws.
type DrawMode uint8

const (
	DrawTriangles DrawMode = iota
	DrawLines
	DrawLineStrip
	DrawPoints
)

func (m DrawMode) gl() uint32 {
	switch m {
	case DrawLines:
		return gl.LINES
	case DrawLineStrip:
		return gl.LINE_STRIP
	case DrawPoints:
		return gl.POINTS
	}
	return gl.TRIANGLES
}

func (m DrawMode) String() string {
	switch m {
	case DrawLines:
		return "Lines"
	case DrawLineStrip:
		return "LineStrip"
	case DrawPoints:
		return "Points"
	}
	return "Triangles"
}

// verticesPerPrimitive returns the vertex count one complete primitive
// needs, or 1 when any count is drawable.
func (m DrawMode) verticesPerPrimitive() int {
	switch m {
	case DrawTriangles:
		return 3
	case DrawLines:
		return 2
	}
	return 1
}

// Cached fragments of the GL state. One of each lives in Context; a
// StateSnapshot holds copies.

type depthState struct {
	enabled bool
	fn      DepthFunc
	mask    bool
}

type cullState struct {
	enabled   bool
	face      CullFace
	frontFace Winding
}

type blendState struct {
	enabled  bool
	srcRGB   BlendFactor
	srcAlpha BlendFactor
	dstRGB   BlendFactor
	dstAlpha BlendFactor
	eqRGB    BlendEquation
	eqAlpha  BlendEquation
}

type stencilState struct {
	enabled   bool
	fn        StencilFunc
	reference int32
	mask      uint32
	fail      StencilOp
	zfail     StencilOp
	zpass     StencilOp
}

type rasterState struct {
	scissorTest bool
	scissorBox  [4]int32
	viewport    [4]int32
	lineWidth   float32
}
