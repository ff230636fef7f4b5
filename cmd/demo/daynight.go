package main

import (
	"fmt"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/westbot657/RenderForge/core"
)

// skyKey holds the sky and sun values for one key time of day.
type skyKey struct {
	t   float32 // normalised time 0..1
	sky core.Color
	sun core.Color
}

// skyKeys defines the key states through the day. t is ordered 0..1 and
// wraps (0 == 1).
var skyKeys = []skyKey{
	{ // noon
		t:   0.00,
		sky: core.Color{R: 0.45, G: 0.65, B: 0.92, A: 1},
		sun: core.Color{R: 1.00, G: 0.97, B: 0.90, A: 1},
	},
	{ // dusk
		t:   0.28,
		sky: core.Color{R: 0.55, G: 0.30, B: 0.25, A: 1},
		sun: core.Color{R: 0.95, G: 0.55, B: 0.30, A: 1},
	},
	{ // midnight
		t:   0.50,
		sky: core.Color{R: 0.03, G: 0.04, B: 0.09, A: 1},
		sun: core.Color{R: 0.30, G: 0.35, B: 0.50, A: 1},
	},
	{ // dawn
		t:   0.76,
		sky: core.Color{R: 0.50, G: 0.35, B: 0.40, A: 1},
		sun: core.Color{R: 0.95, G: 0.62, B: 0.38, A: 1},
	},
}

// DayNight drives an animated day cycle: the clear color plus a sun
// direction and tint for the lit shaders.
type DayNight struct {
	Time   float32 // 0..1: 0=noon, 0.5=midnight
	Speed  float32 // full-cycle duration in seconds
	Active bool
}

func NewDayNight() *DayNight {
	return &DayNight{Speed: 90, Active: true}
}

func (dn *DayNight) Update(dt float32) {
	if !dn.Active {
		return
	}
	dn.Time += dt / dn.Speed
	if dn.Time > 1 {
		dn.Time -= 1
	}
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: 1,
	}
}

// sample interpolates the two keyframes surrounding the current time,
// wrapping between the last key and the first.
func (dn *DayNight) sample() skyKey {
	n := len(skyKeys)
	for i := 0; i < n; i++ {
		a := skyKeys[i]
		b := skyKeys[(i+1)%n]
		tb := b.t
		if (i+1)%n == 0 {
			tb = 1
		}
		if dn.Time < a.t || dn.Time >= tb {
			continue
		}
		local := (dn.Time - a.t) / (tb - a.t)
		return skyKey{
			sky: lerpColor(a.sky, b.sky, local),
			sun: lerpColor(a.sun, b.sun, local),
		}
	}
	return skyKeys[0]
}

// State returns the clear color, sun direction and sun tint for the
// current time. The sun sweeps a full circle per day, tilted off axis so
// faces never go flat.
func (dn *DayNight) State() (sky core.Color, dir mgl32.Vec3, sun core.Color) {
	k := dn.sample()
	angle := float64(dn.Time * 2 * stdmath.Pi)
	dir = mgl32.Vec3{
		float32(stdmath.Sin(angle)),
		float32(stdmath.Cos(angle)),
		0.35,
	}.Normalize()
	return k.sky, dir, k.sun
}

// Clock returns a readable time-of-day label. Time 0 is noon.
func (dn *DayNight) Clock() string {
	hours := stdmath.Mod(float64(dn.Time)*24+12, 24)
	h := int(hours)
	m := int((hours - float64(h)) * 60)
	return fmt.Sprintf("%02d:%02d", h, m)
}
