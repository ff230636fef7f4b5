package gfx

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// BufferTarget selects the GL binding point a buffer is used with.
type BufferTarget int

const (
	// ArrayBuffer holds vertex attribute data.
	ArrayBuffer BufferTarget = iota
	// ElementArrayBuffer holds index data.
	ElementArrayBuffer
)

func (t BufferTarget) gl() uint32 {
	switch t {
	case ElementArrayBuffer:
		return gl.ELEMENT_ARRAY_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "ArrayBuffer"
	case ElementArrayBuffer:
		return "ElementArrayBuffer"
	default:
		return fmt.Sprintf("BufferTarget(%d)", int(t))
	}
}

// BufferUsage hints how often buffer contents change.
type BufferUsage int

const (
	// StaticDraw for data uploaded once and drawn many times.
	StaticDraw BufferUsage = iota
	// DynamicDraw for data updated occasionally between draws.
	DynamicDraw
	// StreamDraw for data rewritten every frame.
	StreamDraw
)

func (u BufferUsage) gl() uint32 {
	switch u {
	case DynamicDraw:
		return gl.DYNAMIC_DRAW
	case StreamDraw:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func (u BufferUsage) String() string {
	switch u {
	case StaticDraw:
		return "StaticDraw"
	case DynamicDraw:
		return "DynamicDraw"
	case StreamDraw:
		return "StreamDraw"
	default:
		return fmt.Sprintf("BufferUsage(%d)", int(u))
	}
}

// GpuBuffer owns a GL buffer object. The GL buffer is created lazily on the
// first Upload or an explicit Allocate; until then the handle exists but
// holds no GPU storage. Uploads larger than the current capacity reallocate
// the storage in place, keeping the same GL name, so vertex array bindings
// that reference the buffer stay valid.
type GpuBuffer struct {
	ctx        *Context
	id         uint32
	target     BufferTarget
	usage      BufferUsage
	capacity   int
	length     int
	generation uint64
}

// NewGpuBuffer returns an unallocated buffer handle.
func NewGpuBuffer(ctx *Context, target BufferTarget, usage BufferUsage) *GpuBuffer {
	return &GpuBuffer{
		ctx:        ctx,
		target:     target,
		usage:      usage,
		generation: ctx.Generation(),
	}
}

// stale reports whether the context was invalidated after the GL buffer was
// created. A stale GL name must not be touched; the buffer resets to the
// unallocated state and recreates on the next upload.
func (b *GpuBuffer) stale() bool {
	return b.id != 0 && b.generation != b.ctx.Generation()
}

func (b *GpuBuffer) resetAfterLoss() {
	b.id = 0
	b.capacity = 0
	b.length = 0
	b.generation = b.ctx.Generation()
}

// Allocate creates GPU storage of the given capacity without writing data.
// Existing contents, if any, are discarded.
func (b *GpuBuffer) Allocate(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: buffer capacity must be positive, got %d", ErrConfiguration, capacity)
	}
	b.ensure()
	gl.BufferData(b.target.gl(), capacity, nil, b.usage.gl())
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		return fmt.Errorf("%w: allocating %d bytes for %s", ErrResourceCreation, capacity, b.target)
	}
	b.capacity = capacity
	b.length = 0
	return nil
}

// ensure binds the buffer, generating the GL name first if needed. The
// name alone carries no storage; storage appears on the first BufferData.
func (b *GpuBuffer) ensure() {
	if b.stale() {
		b.resetAfterLoss()
	}
	if b.id == 0 {
		gl.GenBuffers(1, &b.id)
		b.generation = b.ctx.Generation()
	}
	gl.BindBuffer(b.target.gl(), b.id)
}

// uploadRaw writes size bytes from ptr at offset zero, growing storage on
// the same GL name when size exceeds capacity. Growth discards any bytes
// beyond the uploaded range; callers that rely on a retained tail must
// re-upload it. Keeping the GL name stable means vertex array bindings
// that reference the buffer stay valid across growth.
func (b *GpuBuffer) uploadRaw(size int, ptr unsafe.Pointer) error {
	b.ensure()
	if size > b.capacity {
		next := growCapacity(b.capacity, size)
		gl.BufferData(b.target.gl(), next, nil, b.usage.gl())
		if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
			return fmt.Errorf("%w: growing %s from %d to %d bytes", ErrResourceCreation, b.target, b.capacity, next)
		}
		Logger().Debug("buffer grown", "target", b.target.String(), "from", b.capacity, "to", next)
		b.capacity = next
	}
	gl.BufferSubData(b.target.gl(), 0, size, ptr)
	b.length = size
	return nil
}

// Upload writes data starting at offset zero, creating or growing the GPU
// storage as needed.
func (b *GpuBuffer) Upload(data []byte) error {
	if len(data) == 0 {
		if b.stale() {
			b.resetAfterLoss()
		}
		b.length = 0
		return nil
	}
	return b.uploadRaw(len(data), gl.Ptr(data))
}

// UploadAt writes data at a byte offset into existing storage. Unlike
// Upload it never grows; writes past the capacity fail with ErrCapacity.
func (b *GpuBuffer) UploadAt(offset int, data []byte) error {
	if b.stale() {
		b.resetAfterLoss()
	}
	if b.id == 0 {
		return fmt.Errorf("%w: buffer has no GPU storage", ErrNotReady)
	}
	if offset < 0 || offset+len(data) > b.capacity {
		return fmt.Errorf("%w: write [%d, %d) exceeds capacity %d", ErrCapacity, offset, offset+len(data), b.capacity)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(b.target.gl(), b.id)
	gl.BufferSubData(b.target.gl(), offset, len(data), gl.Ptr(data))
	if end := offset + len(data); end > b.length {
		b.length = end
	}
	return nil
}

// UploadFloats is Upload for float32 slices.
func (b *GpuBuffer) UploadFloats(data []float32) error {
	if len(data) == 0 {
		if b.stale() {
			b.resetAfterLoss()
		}
		b.length = 0
		return nil
	}
	return b.uploadRaw(len(data)*4, gl.Ptr(data))
}

// UploadUint32s is Upload for uint32 slices, typically index data.
func (b *GpuBuffer) UploadUint32s(data []uint32) error {
	if len(data) == 0 {
		if b.stale() {
			b.resetAfterLoss()
		}
		b.length = 0
		return nil
	}
	return b.uploadRaw(len(data)*4, gl.Ptr(data))
}

// Bind binds the buffer to its target. Unallocated buffers cannot be bound.
func (b *GpuBuffer) Bind() error {
	if b.stale() {
		b.resetAfterLoss()
	}
	if b.id == 0 {
		return fmt.Errorf("%w: buffer has no GPU storage", ErrNotReady)
	}
	gl.BindBuffer(b.target.gl(), b.id)
	return nil
}

// ID returns the GL buffer name, zero when unallocated.
func (b *GpuBuffer) ID() uint32 {
	return b.id
}

// Capacity returns the allocated GPU storage in bytes.
func (b *GpuBuffer) Capacity() int {
	return b.capacity
}

// Len returns the number of bytes written by the most recent upload.
func (b *GpuBuffer) Len() int {
	return b.length
}

// Release frees the GPU storage. Safe to call repeatedly and on buffers
// that never allocated; a buffer orphaned by context loss is forgotten
// without a delete call.
func (b *GpuBuffer) Release() {
	if b == nil || b.id == 0 {
		return
	}
	if b.generation == b.ctx.Generation() {
		gl.DeleteBuffers(1, &b.id)
	}
	b.id = 0
	b.capacity = 0
	b.length = 0
}

// growCapacity picks the new byte capacity when need exceeds have:
// doubling, and at least need. Doubling amortizes per-frame growth so a
// builder that expands steadily reallocates O(log n) times.
func growCapacity(have, need int) int {
	next := have * 2
	if next < need {
		next = need
	}
	return next
}
