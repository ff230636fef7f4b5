package main

import (
	"fmt"

	"github.com/westbot657/RenderForge/core"
	"github.com/westbot657/RenderForge/gui"
)

// statsBoard collects formatted debug lines for one frame and draws them
// as a single backed panel in the top-left corner.
type statsBoard struct {
	lines []string
}

func (sb *statsBoard) addf(format string, args ...interface{}) {
	sb.lines = append(sb.lines, fmt.Sprintf(format, args...))
}

func (sb *statsBoard) reset() {
	sb.lines = sb.lines[:0]
}

func (sb *statsBoard) draw(o *gui.Overlay, lineHeight float32) error {
	if len(sb.lines) == 0 {
		return nil
	}
	const margin, pad = 8, 8

	w := float32(0)
	for _, line := range sb.lines {
		if lw, _ := o.MeasureLabel(line); lw > w {
			w = lw
		}
	}
	h := lineHeight*float32(len(sb.lines)) + 2*pad

	o.Panel(margin, margin, w+2*pad, h, core.Color{R: 0, G: 0, B: 0, A: 0.55})
	o.Border(margin, margin, w+2*pad, h, 1, core.Color{R: 1, G: 1, B: 1, A: 0.25})

	y := float32(margin + pad)
	for _, line := range sb.lines {
		if err := o.Label(margin+pad, y, line, core.ColorWhite); err != nil {
			return err
		}
		y += lineHeight
	}
	return nil
}
