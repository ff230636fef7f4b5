package engine

import (
	"testing"

	"github.com/westbot657/RenderForge/textures"
)

type fakeResource struct{ released int }

func (f *fakeResource) Release() { f.released++ }

func TestArenaAddGetRemove(t *testing.T) {
	var a arena[*fakeResource]
	res := &fakeResource{}
	idx, gen := a.add(res)
	if idx != 0 || gen != 1 {
		t.Fatalf("first slot = (%d, %d), want (0, 1)", idx, gen)
	}
	got, ok := a.get(idx, gen)
	if !ok || got != res {
		t.Fatalf("get returned (%v, %v), want the stored resource", got, ok)
	}
	if !a.remove(idx, gen) {
		t.Fatal("remove reported false for a live slot")
	}
	if res.released != 1 {
		t.Fatalf("resource released %d times, want 1", res.released)
	}
	if _, ok := a.get(idx, gen); ok {
		t.Fatal("get hit a removed slot")
	}
	if a.remove(idx, gen) {
		t.Fatal("second remove reported true")
	}
	if res.released != 1 {
		t.Fatalf("stale remove released again, count %d", res.released)
	}
}

func TestArenaSlotReuseBumpsGeneration(t *testing.T) {
	var a arena[*fakeResource]
	first := &fakeResource{}
	idx1, gen1 := a.add(first)
	a.remove(idx1, gen1)

	second := &fakeResource{}
	idx2, gen2 := a.add(second)
	if idx2 != idx1 {
		t.Fatalf("freed slot not reused: got index %d, want %d", idx2, idx1)
	}
	if gen2 == gen1 {
		t.Fatal("reused slot kept its old generation")
	}
	if _, ok := a.get(idx1, gen1); ok {
		t.Fatal("stale handle resolved after slot reuse")
	}
	got, ok := a.get(idx2, gen2)
	if !ok || got != second {
		t.Fatal("fresh handle missed its resource")
	}
}

func TestArenaOutOfRangeIndex(t *testing.T) {
	var a arena[*fakeResource]
	if _, ok := a.get(3, 1); ok {
		t.Fatal("get hit an index that was never issued")
	}
	if a.remove(3, 1) {
		t.Fatal("remove reported true for an index that was never issued")
	}
}

func TestRegistryAddAndResolve(t *testing.T) {
	r := NewRegistry()
	tex := &textures.Texture{}
	h := r.AddTexture("hero", tex)
	if h.Zero() {
		t.Fatal("AddTexture issued the zero handle")
	}
	if h.Kind() != KindTexture {
		t.Fatalf("handle kind = %v, want Texture", h.Kind())
	}
	got, ok := r.Texture(h)
	if !ok || got != tex {
		t.Fatal("Texture(h) missed the stored texture")
	}
	if _, ok := r.Atlas(h); ok {
		t.Fatal("a texture handle resolved as an atlas")
	}
	if _, ok := r.Mesh(h); ok {
		t.Fatal("a texture handle resolved as a mesh")
	}
}

func TestRegistryLookupHandle(t *testing.T) {
	r := NewRegistry()
	h := r.AddTexture("ground", &textures.Texture{})
	got, ok := r.LookupHandle("ground")
	if !ok || got != h {
		t.Fatalf("LookupHandle = (%v, %v), want the issued handle", got, ok)
	}
	if _, ok := r.LookupHandle("missing"); ok {
		t.Fatal("unknown name resolved")
	}

	r.AddTexture("", &textures.Texture{})
	if _, ok := r.LookupHandle(""); ok {
		t.Fatal("empty name was indexed")
	}
}

func TestRegistryNameRebind(t *testing.T) {
	r := NewRegistry()
	r.AddTexture("skin", &textures.Texture{})
	second := &textures.Texture{}
	h2 := r.AddTexture("skin", second)
	h, ok := r.LookupHandle("skin")
	if !ok || h != h2 {
		t.Fatal("reused name did not rebind to the newest handle")
	}
	got, _ := r.Texture(h)
	if got != second {
		t.Fatal("rebound name resolved the old texture")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	h := r.AddTexture("tiles", &textures.Texture{})
	if !r.Remove(h) {
		t.Fatal("Remove reported false for a live handle")
	}
	if _, ok := r.Texture(h); ok {
		t.Fatal("removed handle still resolves")
	}
	if r.Remove(h) {
		t.Fatal("double Remove reported true")
	}
	if _, ok := r.LookupHandle("tiles"); ok {
		t.Fatal("name survived Remove")
	}
}

func TestRegistryZeroHandle(t *testing.T) {
	r := NewRegistry()
	var h Handle
	if !h.Zero() {
		t.Fatal("zero handle does not report Zero")
	}
	if _, ok := r.Texture(h); ok {
		t.Fatal("zero handle resolved")
	}
	if r.Remove(h) {
		t.Fatal("zero handle removed something")
	}
}

func TestRegistryReleaseAll(t *testing.T) {
	r := NewRegistry()
	th := r.AddTexture("a", &textures.Texture{})
	ah := r.AddAtlas("b", &textures.Atlas{})
	r.ReleaseAll()

	if _, ok := r.Texture(th); ok {
		t.Fatal("texture handle survived ReleaseAll")
	}
	if _, ok := r.Atlas(ah); ok {
		t.Fatal("atlas handle survived ReleaseAll")
	}
	if _, ok := r.LookupHandle("a"); ok {
		t.Fatal("name index survived ReleaseAll")
	}

	h := r.AddTexture("c", &textures.Texture{})
	if _, ok := r.Texture(h); !ok {
		t.Fatal("registry unusable after ReleaseAll")
	}
	if _, ok := r.Texture(th); ok {
		t.Fatal("pre-release handle resolved a post-release resource")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindInvalid: "Invalid",
		KindTexture: "Texture",
		KindAtlas:   "Atlas",
		KindMesh:    "Mesh",
		KindBuilder: "Builder",
		KindFont:    "Font",
		Kind(99):    "Invalid",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", uint8(k), got, want)
		}
	}
}
