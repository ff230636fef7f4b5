package main

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/westbot657/RenderForge/core"
)

// OrbitCamera circles a target point. Right mouse drag orbits, scroll
// zooms, and it keeps a slow spin of its own while untouched.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	AutoSpin bool

	yaw   float32 // radians around +Y
	pitch float32 // radians above the horizon

	lastX, lastY float64
	dragging     bool
}

func NewOrbitCamera(distance float32) *OrbitCamera {
	return &OrbitCamera{
		Distance: distance,
		AutoSpin: true,
		pitch:    0.45,
	}
}

// Zoom moves the camera along its orbit radius, clamped to sane bounds.
func (oc *OrbitCamera) Zoom(delta float32) {
	oc.Distance -= delta
	if oc.Distance < 4 {
		oc.Distance = 4
	}
	if oc.Distance > 90 {
		oc.Distance = 90
	}
}

func (oc *OrbitCamera) Update(window *core.Window, dt float32) {
	if window.IsMouseButtonPressed(core.MouseButtonRight) {
		x, y := window.GetCursorPos()
		if oc.dragging {
			oc.yaw += float32(x-oc.lastX) * 0.005
			oc.pitch += float32(y-oc.lastY) * 0.005
		}
		oc.lastX, oc.lastY = x, y
		oc.dragging = true
	} else {
		oc.dragging = false
	}

	if oc.AutoSpin && !oc.dragging {
		oc.yaw += 0.25 * dt
	}

	if oc.pitch > 1.45 {
		oc.pitch = 1.45
	}
	if oc.pitch < 0.08 {
		oc.pitch = 0.08
	}
}

// View returns the camera's view matrix for the current orbit position.
func (oc *OrbitCamera) View() mgl32.Mat4 {
	cp := float32(stdmath.Cos(float64(oc.pitch)))
	eye := oc.Target.Add(mgl32.Vec3{
		oc.Distance * cp * float32(stdmath.Sin(float64(oc.yaw))),
		oc.Distance * float32(stdmath.Sin(float64(oc.pitch))),
		oc.Distance * cp * float32(stdmath.Cos(float64(oc.yaw))),
	})
	return mgl32.LookAtV(eye, oc.Target, mgl32.Vec3{0, 1, 0})
}
