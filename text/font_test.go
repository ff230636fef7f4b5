package text

import (
	"image"
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestDefaultRuneSet(t *testing.T) {
	runes := DefaultRuneSet()
	if len(runes) != 95 {
		t.Fatalf("len = %d, want 95 printable ASCII runes", len(runes))
	}
	if runes[0] != ' ' || runes[len(runes)-1] != '~' {
		t.Errorf("range = %q..%q, want space..tilde", runes[0], runes[len(runes)-1])
	}
}

func TestBuildGlyphMask(t *testing.T) {
	mask, bearing, advance, ok := buildGlyphMask(basicfont.Face7x13, 'A')
	if !ok {
		t.Fatal("buildGlyphMask('A') not ok")
	}
	if advance != 7 {
		t.Errorf("advance = %v, want 7", advance)
	}
	if mask == nil {
		t.Fatal("mask is nil for a visible glyph")
	}
	b := mask.Bounds()
	if b.Min != (image.Point{}) || b.Dx() <= 0 || b.Dy() <= 0 {
		t.Errorf("mask bounds = %v, want a zero-origin non-empty rectangle", b)
	}
	if bearing.Y >= 0 {
		t.Errorf("bearing.Y = %d, want negative (glyph extends above the baseline)", bearing.Y)
	}

	marked := false
	for i := range mask.Pix {
		if mask.Pix[i] != 0 {
			marked = true
			break
		}
	}
	if !marked {
		t.Error("mask for 'A' has no coverage")
	}
}

func TestBuildGlyphMaskMissingRune(t *testing.T) {
	if _, _, _, ok := buildGlyphMask(basicfont.Face7x13, '日'); ok {
		t.Error("buildGlyphMask ok for a rune outside the face's ranges")
	}
}

func TestPageSizeFor(t *testing.T) {
	cases := []struct {
		area int
		want int
	}{
		{0, 128},
		{100, 128},
		{128 * 128, 256},
		{512 * 512, 1024},
	}
	for _, tc := range cases {
		if got := pageSizeFor(tc.area); got != tc.want {
			t.Errorf("pageSizeFor(%d) = %d, want %d", tc.area, got, tc.want)
		}
	}
	if got := pageSizeFor(1 << 30); got != 4096 {
		t.Errorf("pageSizeFor caps at %d, want 4096", got)
	}
}

func TestMeasure(t *testing.T) {
	f := &Font{face: basicfont.Face7x13, lineHeight: 13}

	w, h := f.Measure("abc")
	if w != 21 || h != 13 {
		t.Errorf("Measure(abc) = (%v, %v), want (21, 13)", w, h)
	}

	w, h = f.Measure("ab\ncdef")
	if w != 28 || h != 26 {
		t.Errorf("Measure(ab\\ncdef) = (%v, %v), want (28, 26)", w, h)
	}

	w, h = f.Measure("")
	if w != 0 || h != 13 {
		t.Errorf("Measure(empty) = (%v, %v), want (0, 13)", w, h)
	}
}
