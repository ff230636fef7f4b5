package gfx

import (
	"errors"
	"fmt"
)

// Error categories. Callers match with errors.Is; richer errors below wrap
// one of these so category checks keep working through layers.
var (
	// ErrConfiguration covers invalid static setup detected before any GPU
	// resource is touched (bad component counts, layout/shader mismatch at
	// construction).
	ErrConfiguration = errors.New("gfx: invalid configuration")

	// ErrEmptyLayout is returned when a vertex layout declares no attributes.
	ErrEmptyLayout = errors.New("gfx: vertex layout has no attributes")

	// ErrUnsupportedFormat is returned for preset combinations outside the
	// documented set, most commonly a combination missing Position.
	ErrUnsupportedFormat = errors.New("gfx: unsupported preset format")

	// ErrFormatMismatch is returned when pushed vertex data does not match
	// the builder's or mesh's vertex layout.
	ErrFormatMismatch = errors.New("gfx: vertex format mismatch")

	// ErrInvalidState is returned for lifecycle calls made out of order,
	// such as pushing vertices before Begin.
	ErrInvalidState = errors.New("gfx: invalid state")

	// ErrNotReady is returned when a draw is issued before the resources it
	// needs have been uploaded.
	ErrNotReady = errors.New("gfx: resource not ready")

	// ErrResourceCreation is returned when the driver refuses to create or
	// allocate a resource. Fatal for that resource; never retried here.
	ErrResourceCreation = errors.New("gfx: resource creation failed")

	// ErrCapacity is returned by fixed-capacity paths that cannot grow.
	ErrCapacity = errors.New("gfx: capacity exceeded")

	// ErrContextLost is returned when an operation runs against a resource
	// from a previous context generation. See Context.Invalidate.
	ErrContextLost = errors.New("gfx: context lost")

	// ErrReleased is returned when a released resource is used again.
	ErrReleased = errors.New("gfx: resource released")

	// ErrIncompleteGeometry is returned by Flush when the staged vertex
	// count does not complete the builder's primitive type.
	ErrIncompleteGeometry = errors.New("gfx: staged vertices do not complete primitives")
)

// AttributeNameError reports a reference to an attribute the layout does not
// declare.
type AttributeNameError struct {
	Name string
}

func (e *AttributeNameError) Error() string {
	return fmt.Sprintf("gfx: no attribute named %q in layout", e.Name)
}

func (e *AttributeNameError) Unwrap() error { return ErrFormatMismatch }

// AttributeSizeError reports a value whose component count does not match
// the attribute declaration.
type AttributeSizeError struct {
	Name     string
	Expected int
	Found    int
}

func (e *AttributeSizeError) Error() string {
	return fmt.Sprintf("gfx: attribute %q expects %d components, got %d", e.Name, e.Expected, e.Found)
}

func (e *AttributeSizeError) Unwrap() error { return ErrFormatMismatch }

// ShaderCompileError carries the driver's info log for a failed compile or
// link. Stage is "vertex", "fragment" or "link".
type ShaderCompileError struct {
	Stage string
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gfx: %s shader failed: %s", e.Stage, e.Log)
}

func (e *ShaderCompileError) Unwrap() error { return ErrResourceCreation }
