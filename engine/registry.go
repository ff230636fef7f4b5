// Package engine ties a window, a GL context and a resource registry into
// one frame-loop facade.
package engine

import (
	"sync"

	"github.com/westbot657/RenderForge/gfx"
	"github.com/westbot657/RenderForge/text"
	"github.com/westbot657/RenderForge/textures"
)

// Kind tags which arena a Handle points into.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindTexture
	KindAtlas
	KindMesh
	KindBuilder
	KindFont
)

func (k Kind) String() string {
	switch k {
	case KindTexture:
		return "Texture"
	case KindAtlas:
		return "Atlas"
	case KindMesh:
		return "Mesh"
	case KindBuilder:
		return "Builder"
	case KindFont:
		return "Font"
	}
	return "Invalid"
}

// Handle is a weak reference into the registry. A handle stays cheap to
// copy and goes stale, rather than dangling, once its slot is removed.
// The zero Handle never resolves.
type Handle struct {
	kind       Kind
	index      uint32
	generation uint32
}

// Kind reports which resource kind the handle was issued for.
func (h Handle) Kind() Kind { return h.kind }

// Zero reports whether h is the zero handle.
func (h Handle) Zero() bool { return h.generation == 0 }

type releasable interface{ Release() }

type slot[T releasable] struct {
	value      T
	generation uint32
	live       bool
}

// arena hands out index+generation pairs and recycles freed slots. A freed
// slot bumps its generation, so handles into it miss forever after.
type arena[T releasable] struct {
	slots []slot[T]
	free  []uint32
}

func (a *arena[T]) add(v T) (index, generation uint32) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.value = v
		s.live = true
		return idx, s.generation
	}
	a.slots = append(a.slots, slot[T]{value: v, generation: 1, live: true})
	return uint32(len(a.slots) - 1), 1
}

func (a *arena[T]) get(index, generation uint32) (T, bool) {
	var zero T
	if int(index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[index]
	if !s.live || s.generation != generation {
		return zero, false
	}
	return s.value, true
}

// remove releases the slot's resource and retires the slot. Reports false
// when the handle is already stale.
func (a *arena[T]) remove(index, generation uint32) bool {
	if int(index) >= len(a.slots) {
		return false
	}
	s := &a.slots[index]
	if !s.live || s.generation != generation {
		return false
	}
	s.value.Release()
	var zero T
	s.value = zero
	s.live = false
	s.generation++
	a.free = append(a.free, index)
	return true
}

// Registry owns the GPU resources of an application: meshes, builders,
// textures, atlases and fonts, addressed by Handle and optionally by name.
// Removing a resource releases it and invalidates every handle to it.
type Registry struct {
	mu sync.RWMutex

	textures arena[*textures.Texture]
	atlases  arena[*textures.Atlas]
	meshes   arena[*gfx.InstancedMesh]
	builders arena[*gfx.BufferBuilder]
	fonts    arena[*text.Font]

	names map[string]Handle
	order []Handle
}

func NewRegistry() *Registry {
	return &Registry{names: make(map[string]Handle)}
}

// register indexes a freshly issued handle. An empty name skips the name
// index; a reused name rebinds to the new handle.
func (r *Registry) register(name string, h Handle) Handle {
	r.order = append(r.order, h)
	if name != "" {
		r.names[name] = h
	}
	return h
}

// AddTexture takes ownership of t. Name may be empty.
func (r *Registry) AddTexture(name string, t *textures.Texture) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, gen := r.textures.add(t)
	return r.register(name, Handle{kind: KindTexture, index: idx, generation: gen})
}

// AddAtlas takes ownership of a. Name may be empty.
func (r *Registry) AddAtlas(name string, a *textures.Atlas) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, gen := r.atlases.add(a)
	return r.register(name, Handle{kind: KindAtlas, index: idx, generation: gen})
}

// AddMesh takes ownership of m. Name may be empty.
func (r *Registry) AddMesh(name string, m *gfx.InstancedMesh) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, gen := r.meshes.add(m)
	return r.register(name, Handle{kind: KindMesh, index: idx, generation: gen})
}

// AddBuilder takes ownership of b. Name may be empty.
func (r *Registry) AddBuilder(name string, b *gfx.BufferBuilder) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, gen := r.builders.add(b)
	return r.register(name, Handle{kind: KindBuilder, index: idx, generation: gen})
}

// AddFont takes ownership of f. Name may be empty.
func (r *Registry) AddFont(name string, f *text.Font) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, gen := r.fonts.add(f)
	return r.register(name, Handle{kind: KindFont, index: idx, generation: gen})
}

func (r *Registry) Texture(h Handle) (*textures.Texture, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h.kind != KindTexture {
		return nil, false
	}
	return r.textures.get(h.index, h.generation)
}

func (r *Registry) Atlas(h Handle) (*textures.Atlas, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h.kind != KindAtlas {
		return nil, false
	}
	return r.atlases.get(h.index, h.generation)
}

func (r *Registry) Mesh(h Handle) (*gfx.InstancedMesh, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h.kind != KindMesh {
		return nil, false
	}
	return r.meshes.get(h.index, h.generation)
}

func (r *Registry) Builder(h Handle) (*gfx.BufferBuilder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h.kind != KindBuilder {
		return nil, false
	}
	return r.builders.get(h.index, h.generation)
}

func (r *Registry) Font(h Handle) (*text.Font, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h.kind != KindFont {
		return nil, false
	}
	return r.fonts.get(h.index, h.generation)
}

// LookupHandle resolves a registration name. Removed resources may leave a
// stale binding behind; resolving the returned handle then misses.
func (r *Registry) LookupHandle(name string) (Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.names[name]
	return h, ok
}

// Remove releases the resource behind h and retires its slot. Every copy
// of the handle goes stale. Reports false for already-stale handles.
func (r *Registry) Remove(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.removeLocked(h) {
		return false
	}
	for name, nh := range r.names {
		if nh == h {
			delete(r.names, name)
		}
	}
	return true
}

func (r *Registry) removeLocked(h Handle) bool {
	switch h.kind {
	case KindTexture:
		return r.textures.remove(h.index, h.generation)
	case KindAtlas:
		return r.atlases.remove(h.index, h.generation)
	case KindMesh:
		return r.meshes.remove(h.index, h.generation)
	case KindBuilder:
		return r.builders.remove(h.index, h.generation)
	case KindFont:
		return r.fonts.remove(h.index, h.generation)
	}
	return false
}

// ReleaseAll releases every live resource in registration order and drops
// the name index. Old handles stay stale afterwards; the registry itself
// remains usable.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	released := 0
	for _, h := range r.order {
		if r.removeLocked(h) {
			released++
		}
	}
	r.order = r.order[:0]
	r.names = make(map[string]Handle)
	if released > 0 {
		gfx.Logger().Warn("registry released live resources", "count", released)
	}
}
