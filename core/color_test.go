package core

import (
	"math"
	"testing"
)

func TestColorARGBRoundTrip(t *testing.T) {
	cases := []uint32{
		0xFFFFFFFF,
		0xFF000000,
		0x00000000,
		0xFF4080C0,
		0x80FF00FF,
	}
	for _, argb := range cases {
		c := FromARGB(argb)
		got := c.ARGB()
		if got != argb {
			t.Errorf("ARGB round trip: expected %08X, got %08X", argb, got)
		}
	}
}

func TestColorFromARGBChannels(t *testing.T) {
	c := FromARGB(0x80FF7F00)
	if math.Abs(float64(c.A-128.0/255)) > 0.0001 {
		t.Errorf("A: expected %v, got %v", 128.0/255.0, c.A)
	}
	if c.R != 1 {
		t.Errorf("R: expected 1, got %v", c.R)
	}
	if math.Abs(float64(c.G-127.0/255)) > 0.0001 {
		t.Errorf("G: expected %v, got %v", 127.0/255.0, c.G)
	}
	if c.B != 0 {
		t.Errorf("B: expected 0, got %v", c.B)
	}
}

func TestColorRGBAlphaDefaults(t *testing.T) {
	c := RGB(0.25, 0.5, 0.75)
	if c.A != 1 {
		t.Errorf("RGB alpha: expected 1, got %v", c.A)
	}
	d := c.WithAlpha(0.5)
	if d.A != 0.5 || d.R != 0.25 {
		t.Errorf("WithAlpha: expected alpha 0.5 with channels kept, got %v", d)
	}
}

func TestColorMul(t *testing.T) {
	got := Color{0.5, 1, 0.25, 1}.Mul(Color{0.5, 0.5, 1, 0.5})
	expected := Color{0.25, 0.5, 0.25, 0.5}
	if got != expected {
		t.Errorf("Mul: expected %v, got %v", expected, got)
	}
}

func TestColorVec4(t *testing.T) {
	v := ColorYellow.Vec4()
	if v[0] != 1 || v[1] != 1 || v[2] != 0 || v[3] != 1 {
		t.Errorf("Vec4: expected (1 1 0 1), got %v", v)
	}
}
