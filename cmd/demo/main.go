package main

import (
	"fmt"
	"log/slog"
	stdmath "math"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/westbot657/RenderForge/core"
	"github.com/westbot657/RenderForge/engine"
	"github.com/westbot657/RenderForge/gfx"
	"github.com/westbot657/RenderForge/gui"
	"github.com/westbot657/RenderForge/model"
	"github.com/westbot657/RenderForge/text"
	"github.com/westbot657/RenderForge/textures"
)

const instCols, instRows = 20, 20

const instanceVertexSrc = `#version 410 core
layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 uv;
layout(location = 3) in vec4 model0;
layout(location = 4) in vec4 model1;
layout(location = 5) in vec4 model2;
layout(location = 6) in vec4 model3;
layout(location = 7) in vec4 tint;

uniform mat4 viewProj;

out vec3 vNormal;
out vec2 vUV;
out vec4 vTint;

void main() {
	mat4 model = mat4(model0, model1, model2, model3);
	vNormal = mat3(model) * normal;
	vUV = uv;
	vTint = tint;
	gl_Position = viewProj * model * vec4(position, 1.0);
}
`

const instanceFragmentSrc = `#version 410 core
in vec3 vNormal;
in vec2 vUV;
in vec4 vTint;

uniform vec3 lightDir;
uniform vec3 lightColor;
uniform sampler2D tex0;

out vec4 fragColor;

void main() {
	float ndl = max(dot(normalize(vNormal), normalize(lightDir)), 0.0);
	vec4 base = texture(tex0, vUV) * vTint;
	fragColor = vec4(base.rgb * lightColor * mix(0.3, 1.0, ndl), base.a);
}
`

func main() {
	gfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg := engine.DefaultEngineConfig()
	cfg.Window.Title = "RenderForge - Instanced Cubes"

	eng, err := engine.New(cfg)
	if err != nil {
		fmt.Printf("Failed to start engine: %v\n", err)
		return
	}
	defer eng.Shutdown()
	ctx := eng.Ctx

	// Shared geometry, built once on the CPU.
	cubeVerts, cubeIdx, err := model.Cube(gfx.PresetPositionNormalUV)
	if err != nil {
		fmt.Printf("Failed to build cube: %v\n", err)
		return
	}
	gridVerts, gridIdx, err := model.Grid(gfx.PresetPositionNormalUV, 8, 8)
	if err != nil {
		fmt.Printf("Failed to build grid: %v\n", err)
		return
	}

	baseLayout, err := gfx.PresetPositionNormalUV.Resolve()
	if err != nil {
		fmt.Printf("Failed to resolve base layout: %v\n", err)
		return
	}
	instLayout := gfx.MustVertexLayout(append(gfx.Mat4Attributes("model"),
		gfx.CustomAttribute("tint", 4, gfx.KindFloat))...)

	// The ground is one flat slab instance, stretched out of the grid mesh.
	groundShape := core.NewTransform()
	groundShape.Scale = mgl32.Vec3{60, 1, 60}
	groundModel := groundShape.Matrix()
	groundInst := make([]float32, 0, 20)
	groundInst = append(groundInst, groundModel[:]...)
	groundInst = append(groundInst, 0.88, 0.92, 0.98, 1)

	var (
		shader  *gfx.Shader
		checker *textures.Texture
		cubes   *gfx.InstancedMesh
		ground  *gfx.InstancedMesh
		cubesH  engine.Handle
		groundH engine.Handle
	)

	// buildScene compiles the instancing program and uploads all static
	// geometry and textures. Called again after a context loss, when the
	// previous handles are dead and the releases reduce to bookkeeping.
	buildScene := func() error {
		if !cubesH.Zero() {
			eng.Registry.Remove(cubesH)
			eng.Registry.Remove(groundH)
		}
		shader.Release()
		checker.Release()

		var err error
		shader, err = gfx.NewShader(ctx, instanceVertexSrc, instanceFragmentSrc)
		if err != nil {
			return err
		}
		checker, err = textures.Checker(ctx, 256,
			core.Color{R: 0.82, G: 0.84, B: 0.88, A: 1},
			core.Color{R: 0.58, G: 0.61, B: 0.67, A: 1})
		if err != nil {
			return err
		}
		eng.Textures.Put("checker", checker)

		layout := gfx.MeshLayout{Base: baseLayout, Instance: instLayout}
		cubes, err = gfx.NewInstancedMesh(ctx, layout, shader)
		if err != nil {
			return err
		}
		ground, err = gfx.NewInstancedMesh(ctx, layout, shader)
		if err != nil {
			return err
		}
		if err := cubes.SetBaseGeometry(cubeVerts, cubeIdx); err != nil {
			return err
		}
		if err := ground.SetBaseGeometry(gridVerts, gridIdx); err != nil {
			return err
		}
		if err := ground.SetInstances(groundInst, 1); err != nil {
			return err
		}
		if err := cubes.SetUniform("tex0", gfx.UniformInt(0)); err != nil {
			return err
		}
		cubesH = eng.Registry.AddMesh("cubes", cubes)
		groundH = eng.Registry.AddMesh("ground", ground)
		return nil
	}

	var (
		font    *text.Font
		overlay *gui.Overlay
	)
	buildHUD := func() error {
		overlay.Release()
		font.Release()
		var err error
		font, err = text.NewFont(ctx, text.FontConfig{})
		if err != nil {
			return err
		}
		overlay, err = gui.NewOverlay(ctx, font)
		return err
	}

	if err := buildScene(); err != nil {
		fmt.Printf("Failed to build scene: %v\n", err)
		return
	}
	if err := buildHUD(); err != nil {
		fmt.Printf("Failed to build HUD: %v\n", err)
		return
	}
	defer func() {
		overlay.Release()
		font.Release()
		shader.Release()
	}()

	eng.OnContextLoss(func() {
		if err := buildScene(); err != nil {
			fmt.Printf("Scene rebuild after context loss: %v\n", err)
		}
		if err := buildHUD(); err != nil {
			fmt.Printf("HUD rebuild after context loss: %v\n", err)
		}
	})

	camera := NewOrbitCamera(28)
	eng.Window.SetScrollCallback(func(xoff, yoff float64) {
		camera.Zoom(float32(yoff) * 2)
	})

	dayNight := NewDayNight()
	board := &statsBoard{}

	fmt.Println("RenderForge instancing demo")
	fmt.Printf("  %d cubes per draw call\n", instCols*instRows)
	fmt.Println("CONTROLS:")
	fmt.Println("  Right Mouse Drag - Orbit")
	fmt.Println("  Scroll           - Zoom")
	fmt.Println("  Space            - Pause cube spin")
	fmt.Println("  N                - Pause day/night cycle")
	fmt.Println("  L                - Simulate context loss (rebuild everything)")
	fmt.Println("  ESC              - Exit")

	instData := make([]float32, 0, instCols*instRows*20)
	stack := core.NewMatrixStack()
	spin := true
	spinTime := float32(0)
	spaceWasDown := false
	nWasDown := false
	lWasDown := false
	lossCount := 0

	frames := 0
	displayFPS := 0
	fpsTimer := 0.0

	err = eng.Run(func(dt float64) error {
		win := eng.Window
		if win.IsKeyPressed(core.KeyEscape) {
			win.SetShouldClose(true)
			return nil
		}

		spaceDown := win.IsKeyPressed(core.KeySpace)
		if spaceDown && !spaceWasDown {
			spin = !spin
		}
		spaceWasDown = spaceDown

		nDown := win.IsKeyPressed(core.KeyN)
		if nDown && !nWasDown {
			dayNight.Active = !dayNight.Active
		}
		nWasDown = nDown

		lDown := win.IsKeyPressed(core.KeyL)
		if lDown && !lWasDown {
			lossCount++
			eng.NotifyContextLoss()
		}
		lWasDown = lDown

		camera.Update(win, float32(dt))
		dayNight.Update(float32(dt))
		if spin {
			spinTime += float32(dt)
		}

		skyColor, sunDir, sunColor := dayNight.State()
		ctx.SetClearColor(skyColor)

		// Rebuild the instance stream: spin phase, bobbing height and a
		// palette ramp across the grid.
		instData = instData[:0]
		stack.Reset()
		for row := 0; row < instRows; row++ {
			for col := 0; col < instCols; col++ {
				x := float32(col-instCols/2) * 1.6
				z := float32(row-instRows/2) * 1.6
				angle := spinTime * (0.5 + float32(col+row)*0.03)
				y := 0.9 + 0.35*float32(stdmath.Sin(float64(spinTime+float32(col+row)*0.4)))
				stack.Push()
				stack.Translate(x, y, z)
				stack.Rotate(angle, mgl32.Vec3{0, 1, 0})
				m := stack.Peek()
				stack.Pop()
				instData = append(instData, m[:]...)

				f := float32(col+row) / float32(instCols+instRows-2)
				instData = append(instData, 0.25+0.65*f, 0.75-0.45*f, 0.85-0.4*f, 1)
			}
		}
		if err := cubes.SetInstances(instData, instCols*instRows); err != nil {
			return err
		}

		fbw, fbh := win.GetFramebufferSize()
		aspect := float32(1)
		if fbh > 0 {
			aspect = float32(fbw) / float32(fbh)
		}
		proj := mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 300)
		viewProj := proj.Mul4(camera.View())

		checker.Bind(0)
		for _, mesh := range []*gfx.InstancedMesh{ground, cubes} {
			if err := mesh.SetUniform("viewProj", gfx.UniformMat4(viewProj)); err != nil {
				return err
			}
			if err := mesh.SetUniform("lightDir", gfx.UniformVec3(sunDir)); err != nil {
				return err
			}
			if err := mesh.SetUniform("lightColor", gfx.UniformVec3{sunColor.R, sunColor.G, sunColor.B}); err != nil {
				return err
			}
			if err := mesh.Draw(); err != nil {
				return err
			}
		}

		if err := overlay.BeginFrame(fbw, fbh); err != nil {
			return err
		}
		board.reset()
		board.addf("FPS: %d   frame: %.2f ms", displayFPS, dt*1000)
		board.addf("cubes: %d in one draw call", cubes.InstanceCount())
		board.addf("clock: %s   spin: %s   losses: %d", dayNight.Clock(), onOff(spin), lossCount)
		board.addf("Space=spin  N=sky  L=context loss  ESC=quit")
		if err := board.draw(overlay, font.LineHeight()+2); err != nil {
			return err
		}
		if err := overlay.EndFrame(); err != nil {
			return err
		}

		frames++
		fpsTimer += dt
		if fpsTimer >= 1 {
			displayFPS = frames
			frames = 0
			fpsTimer -= 1
			win.SetTitle(fmt.Sprintf("RenderForge - Instanced Cubes | FPS: %d", displayFPS))
		}
		return nil
	})
	if err != nil {
		fmt.Printf("Frame failed: %v\n", err)
	}
	fmt.Println("Exiting...")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
