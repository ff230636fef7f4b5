package engine

import (
	"github.com/westbot657/RenderForge/core"
	"github.com/westbot657/RenderForge/gfx"
	"github.com/westbot657/RenderForge/textures"
)

type EngineConfig struct {
	Window     core.WindowConfig
	ClearColor core.Color
	DepthTest  bool
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Window:     core.DefaultWindowConfig(),
		ClearColor: core.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
		DepthTest:  true,
	}
}

// Engine owns the window, the GL context, the resource registry and a
// shared texture cache, and drives the per-frame loop. All methods must run
// on the main thread that created it.
type Engine struct {
	Window   *core.Window
	Ctx      *gfx.Context
	Registry *Registry
	Textures *textures.Manager

	lossHooks []func()
	lastTime  float64
}

// New opens the window, brings up the GL context on the calling thread and
// applies the initial clear and depth configuration.
func New(cfg EngineConfig) (*Engine, error) {
	window, err := core.NewWindow(cfg.Window)
	if err != nil {
		return nil, err
	}
	ctx, err := gfx.NewContext()
	if err != nil {
		window.Destroy()
		return nil, err
	}
	ctx.SetClearColor(cfg.ClearColor)
	ctx.SetDepthTest(cfg.DepthTest)

	w, h := window.GetFramebufferSize()
	ctx.SetViewport(0, 0, int32(w), int32(h))
	window.SetResizeCallback(func(width, height int) {
		ctx.SetViewport(0, 0, int32(width), int32(height))
	})

	return &Engine{
		Window:   window,
		Ctx:      ctx,
		Registry: NewRegistry(),
		Textures: textures.NewManager(),
	}, nil
}

// Run drives the frame loop until the window closes or the callback fails.
// Each frame polls events, clears color and depth, invokes frame with the
// seconds elapsed since the previous frame and swaps buffers.
func (e *Engine) Run(frame func(dt float64) error) error {
	e.lastTime = e.Window.Time()
	for !e.Window.ShouldClose() {
		e.Window.PollEvents()

		now := e.Window.Time()
		dt := now - e.lastTime
		e.lastTime = now

		e.Ctx.Clear(true, true, false)
		if err := frame(dt); err != nil {
			return err
		}
		e.Window.SwapBuffers()
	}
	return nil
}

// OnContextLoss registers fn to run after NotifyContextLoss invalidates the
// context. Applications re-upload their geometry and textures here.
func (e *Engine) OnContextLoss(fn func()) {
	e.lossHooks = append(e.lossHooks, fn)
}

// NotifyContextLoss marks every GPU handle created so far as dead and runs
// the registered re-upload hooks.
func (e *Engine) NotifyContextLoss() {
	e.Ctx.Invalidate()
	for _, fn := range e.lossHooks {
		fn()
	}
}

// Shutdown releases every registered resource and cached texture, then
// destroys the window.
func (e *Engine) Shutdown() {
	e.Registry.ReleaseAll()
	e.Textures.ReleaseAll()
	e.Window.Destroy()
}
