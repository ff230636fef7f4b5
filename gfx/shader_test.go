package gfx

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/gl/v4.1-core/gl"
)

func TestPresetShaderSourceLocations(t *testing.T) {
	vert, _ := presetShaderSources(PresetPositionColorNormalUV)
	wantLines := []string{
		"layout(location = 0) in vec3 position;",
		"layout(location = 1) in vec4 color;",
		"layout(location = 2) in vec3 normal;",
		"layout(location = 3) in vec2 uv;",
	}
	for _, line := range wantLines {
		if !strings.Contains(vert, line) {
			t.Errorf("vertex source missing %q", line)
		}
	}

	// Locations compact when attributes are absent.
	vert, _ = presetShaderSources(PresetPositionUV)
	if !strings.Contains(vert, "layout(location = 1) in vec2 uv;") {
		t.Errorf("Position+UV vertex source should place uv at location 1")
	}
	if strings.Contains(vert, "in vec4 color;") {
		t.Errorf("Position+UV vertex source should not declare color")
	}
}

func TestPresetShaderSourceFeatures(t *testing.T) {
	for _, f := range []PresetFormat{PresetPosition, PresetPositionColor, PresetPositionNormal, PresetPositionColorNormalUV} {
		vert, frag := presetShaderSources(f)
		if !strings.HasPrefix(vert, "#version 410 core") || !strings.HasPrefix(frag, "#version 410 core") {
			t.Errorf("%s: sources must start with the GLSL version directive", f)
		}
		if !strings.Contains(vert, "uniform mat4 mvp;") {
			t.Errorf("%s: vertex source missing mvp uniform", f)
		}
		if !strings.Contains(frag, "uniform vec4 tint;") {
			t.Errorf("%s: fragment source missing tint uniform", f)
		}
		if got, want := strings.Contains(frag, "sampler2D tex0"), f.HasUV(); got != want {
			t.Errorf("%s: sampler presence = %v, want %v", f, got, want)
		}
		if got, want := strings.Contains(frag, "lightDir"), f.HasNormal(); got != want {
			t.Errorf("%s: lighting presence = %v, want %v", f, got, want)
		}
	}
}

func TestAttribTypeShape(t *testing.T) {
	cases := []struct {
		xtype uint32
		span  int32
		comps int
	}{
		{gl.FLOAT, 1, 1},
		{gl.FLOAT_VEC2, 1, 2},
		{gl.FLOAT_VEC3, 1, 3},
		{gl.FLOAT_VEC4, 1, 4},
		{gl.INT_VEC3, 1, 3},
		{gl.FLOAT_MAT4, 4, 4},
		{gl.FLOAT_MAT3, 3, 3},
	}
	for _, tc := range cases {
		span, comps := attribTypeShape(tc.xtype)
		if span != tc.span || comps != tc.comps {
			t.Errorf("attribTypeShape(%#x) = (%d, %d), want (%d, %d)", tc.xtype, span, comps, tc.span, tc.comps)
		}
	}
}

func TestShaderCompileErrorWrapsResourceCreation(t *testing.T) {
	err := error(&ShaderCompileError{Stage: "vertex", Log: "0:1(1): error: syntax error"})
	if !errors.Is(err, ErrResourceCreation) {
		t.Errorf("ShaderCompileError should unwrap to ErrResourceCreation")
	}
	if !strings.Contains(err.Error(), "vertex") {
		t.Errorf("Error() = %q, want the stage named", err.Error())
	}
}
