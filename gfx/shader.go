package gfx

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader wraps a linked GL program with cached uniform and attribute
// locations.
type Shader struct {
	ctx        *Context
	id         uint32
	generation uint64

	uniformLocs map[string]int32
	attribLocs  map[string]int32
}

// NewShader compiles and links a program from GLSL sources. Failures carry
// the driver's info log in a ShaderCompileError.
func NewShader(ctx *Context, vertSrc, fragSrc string) (*Shader, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return nil, err
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		gl.DeleteShader(vert)
		return nil, err
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return nil, &ShaderCompileError{Stage: "link", Log: strings.TrimRight(log, "\x00")}
	}

	return &Shader{
		ctx:         ctx,
		id:          prog,
		generation:  ctx.Generation(),
		uniformLocs: make(map[string]int32),
		attribLocs:  make(map[string]int32),
	}, nil
}

func compileShader(src string, shaderType uint32, stage string) (uint32, error) {
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, &ShaderCompileError{Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}
	return shader, nil
}

// ID returns the GL program name.
func (s *Shader) ID() uint32 {
	return s.id
}

// UniformLocation returns the location of a uniform, caching lookups.
// Returns -1 for names the program does not use.
func (s *Shader) UniformLocation(name string) int32 {
	if loc, ok := s.uniformLocs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(s.id, gl.Str(name+"\x00"))
	s.uniformLocs[name] = loc
	return loc
}

// AttribLocation returns the location of a vertex attribute, caching
// lookups. Returns -1 for names the program does not use.
func (s *Shader) AttribLocation(name string) int32 {
	if loc, ok := s.attribLocs[name]; ok {
		return loc
	}
	loc := gl.GetAttribLocation(s.id, gl.Str(name+"\x00"))
	s.attribLocs[name] = loc
	return loc
}

// ValidateLayouts checks that every active vertex attribute of the program
// is fed by the given layouts. Layouts occupy consecutive location ranges
// in order: the first layout binds locations [0, n), the next [n, n+m), as
// InstancedMesh configures base and instance layouts. A matrix attribute
// consumes one location per column. Mismatches fail with an error wrapping
// ErrFormatMismatch.
func (s *Shader) ValidateLayouts(layouts ...*VertexLayout) error {
	type slot struct {
		name  string
		count int
	}
	provided := make(map[int32]slot)
	base := int32(0)
	for _, l := range layouts {
		if l == nil {
			continue
		}
		for i, a := range l.attrs {
			provided[base+int32(i)] = slot{name: a.Name, count: a.Count}
		}
		base += int32(len(l.attrs))
	}

	var count int32
	gl.GetProgramiv(s.id, gl.ACTIVE_ATTRIBUTES, &count)
	nameBuf := make([]byte, 256)
	for i := int32(0); i < count; i++ {
		var nameLen, size int32
		var xtype uint32
		gl.GetActiveAttrib(s.id, uint32(i), int32(len(nameBuf)), &nameLen, &size, &xtype, &nameBuf[0])
		name := string(nameBuf[:nameLen])
		if strings.HasPrefix(name, "gl_") {
			continue
		}
		loc := gl.GetAttribLocation(s.id, gl.Str(name+"\x00"))
		if loc < 0 {
			continue
		}

		span, comps := attribTypeShape(xtype)
		for col := int32(0); col < span; col++ {
			got, ok := provided[loc+col]
			if !ok {
				return fmt.Errorf("%w: shader attribute %q needs location %d, layout provides none",
					ErrFormatMismatch, name, loc+col)
			}
			if got.count != comps {
				return fmt.Errorf("%w: shader attribute %q at location %d has %d components, layout attribute %q has %d",
					ErrFormatMismatch, name, loc+col, comps, got.name, got.count)
			}
		}
	}
	return nil
}

// attribTypeShape maps a GL attribute type to (locations consumed,
// components per location).
func attribTypeShape(xtype uint32) (span int32, comps int) {
	switch xtype {
	case gl.FLOAT, gl.INT, gl.UNSIGNED_INT:
		return 1, 1
	case gl.FLOAT_VEC2, gl.INT_VEC2:
		return 1, 2
	case gl.FLOAT_VEC3, gl.INT_VEC3:
		return 1, 3
	case gl.FLOAT_VEC4, gl.INT_VEC4:
		return 1, 4
	case gl.FLOAT_MAT2:
		return 2, 2
	case gl.FLOAT_MAT3:
		return 3, 3
	case gl.FLOAT_MAT4:
		return 4, 4
	}
	return 1, 4
}

// Release deletes the program. Idempotent; a program from a lost context
// generation is forgotten without a delete call.
func (s *Shader) Release() {
	if s == nil || s.id == 0 {
		return
	}
	if s.generation == s.ctx.Generation() {
		s.ctx.DestroyProgram(s.id)
	}
	s.id = 0
}

// presetProgram returns the built-in program for a preset combination,
// compiling and caching it on first use. Freshly compiled programs get
// their convenience defaults: identity mvp, white tint and texture unit 0,
// so a builder with no uniforms set draws in clip space.
func (c *Context) presetProgram(f PresetFormat) (*Shader, error) {
	if s, ok := c.presets[f]; ok {
		return s, nil
	}
	vertSrc, fragSrc := presetShaderSources(f)
	s, err := NewShader(c, vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", f, err)
	}

	c.UseProgram(s.ID())
	if err := c.SetUniform("mvp", UniformMat4(mgl32.Ident4())); err != nil {
		return nil, err
	}
	if err := c.SetUniform("tint", UniformVec4{1, 1, 1, 1}); err != nil {
		return nil, err
	}
	if f.HasUV() {
		if err := c.SetUniform("tex0", UniformInt(0)); err != nil {
			return nil, err
		}
	}

	c.presets[f] = s
	Logger().Debug("preset program compiled", "format", f.String(), "program", s.ID())
	return s, nil
}

// presetShaderSources assembles the GLSL pair for a preset combination.
// Attribute locations follow the canonical layout order; interpolants and
// shading terms are included only for the attributes present.
func presetShaderSources(f PresetFormat) (string, string) {
	var vert strings.Builder
	vert.WriteString("#version 410 core\n")
	loc := 0
	fmt.Fprintf(&vert, "layout(location = %d) in vec3 position;\n", loc)
	loc++
	if f.HasColor() {
		fmt.Fprintf(&vert, "layout(location = %d) in vec4 color;\n", loc)
		loc++
	}
	if f.HasNormal() {
		fmt.Fprintf(&vert, "layout(location = %d) in vec3 normal;\n", loc)
		loc++
	}
	if f.HasUV() {
		fmt.Fprintf(&vert, "layout(location = %d) in vec2 uv;\n", loc)
		loc++
	}
	vert.WriteString("uniform mat4 mvp;\n")
	if f.HasColor() {
		vert.WriteString("out vec4 vColor;\n")
	}
	if f.HasNormal() {
		vert.WriteString("out vec3 vNormal;\n")
	}
	if f.HasUV() {
		vert.WriteString("out vec2 vUV;\n")
	}
	vert.WriteString("void main() {\n")
	if f.HasColor() {
		vert.WriteString("    vColor = color;\n")
	}
	if f.HasNormal() {
		vert.WriteString("    vNormal = normal;\n")
	}
	if f.HasUV() {
		vert.WriteString("    vUV = uv;\n")
	}
	vert.WriteString("    gl_Position = mvp * vec4(position, 1.0);\n")
	vert.WriteString("}\n")

	var frag strings.Builder
	frag.WriteString("#version 410 core\n")
	if f.HasColor() {
		frag.WriteString("in vec4 vColor;\n")
	}
	if f.HasNormal() {
		frag.WriteString("in vec3 vNormal;\n")
	}
	if f.HasUV() {
		frag.WriteString("in vec2 vUV;\n")
	}
	frag.WriteString("uniform vec4 tint;\n")
	if f.HasUV() {
		frag.WriteString("uniform sampler2D tex0;\n")
	}
	frag.WriteString("out vec4 fragColor;\n")
	if f.HasNormal() {
		frag.WriteString("const vec3 lightDir = normalize(vec3(0.4, 0.8, 0.35));\n")
	}
	frag.WriteString("void main() {\n")
	frag.WriteString("    vec4 col = tint;\n")
	if f.HasColor() {
		frag.WriteString("    col *= vColor;\n")
	}
	if f.HasUV() {
		frag.WriteString("    col *= texture(tex0, vUV);\n")
	}
	if f.HasNormal() {
		frag.WriteString("    float ndl = max(dot(normalize(vNormal), lightDir), 0.0);\n")
		frag.WriteString("    col.rgb *= mix(0.35, 1.0, ndl);\n")
	}
	frag.WriteString("    fragColor = col;\n")
	frag.WriteString("}\n")

	return vert.String(), frag.String()
}
