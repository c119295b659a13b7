// Package app wires the window, renderer, input and viewer session into
// the main frame loop.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/glbstage/internal/assets"
	"github.com/Faultbox/glbstage/internal/config"
	"github.com/Faultbox/glbstage/internal/engine/camera"
	"github.com/Faultbox/glbstage/internal/engine/debug"
	"github.com/Faultbox/glbstage/internal/engine/input"
	"github.com/Faultbox/glbstage/internal/engine/lighting"
	"github.com/Faultbox/glbstage/internal/engine/picking"
	"github.com/Faultbox/glbstage/internal/engine/renderer"
	"github.com/Faultbox/glbstage/internal/engine/texture"
	"github.com/Faultbox/glbstage/internal/engine/window"
	"github.com/Faultbox/glbstage/internal/loader"
	"github.com/Faultbox/glbstage/internal/logger"
	"github.com/Faultbox/glbstage/internal/viewer"
	"github.com/Faultbox/glbstage/internal/worker"
)

// App is the running viewer.
type App struct {
	config  *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	files    *assets.Manager

	session *viewer.Session
	loop    *viewer.RenderLoop
	pointer *pointer

	screenshots    *debug.ScreenshotCapture
	wantScreenshot bool

	// Load state. pending is nil once the outcome has been consumed.
	progress loader.Progress
	pending  <-chan loader.Outcome
	cancel   context.CancelFunc
	cleanup  func()

	title string
}

// New creates the window and renderer and starts loading the configured asset.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")
	log.Info("initializing viewer",
		zap.String("asset", cfg.Asset.Path),
		zap.String("worker", cfg.Asset.Worker),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	a := &App{config: cfg, cleanup: func() {}}

	rig, err := lighting.FromConfig(cfg.Lights)
	if err != nil {
		return nil, err
	}

	// Create window (this also creates OpenGL context)
	a.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.files = assets.NewManager()
	if err := a.files.AddDir(filepath.Dir(cfg.Asset.Path)); err != nil {
		log.Warn("asset directory unavailable", zap.Error(err))
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:       dw,
		Height:      dh,
		Background:  config.MustColor(cfg.Window.Background),
		Lights:      rig,
		Multisample: a.window.Samples() > 0,
	}, texture.NewResolver(cfg.Asset.Path, a.files))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.input = input.New()
	a.session = newSession(cfg)
	a.loop = viewer.NewRenderLoop(a.session, a.renderer)

	w, h := a.window.GetSize()
	a.pointer = &pointer{
		session: a.session,
		picker:  picking.NewPicker(cfg.Picking.Prefix, cfg.Picking.Messages),
		width:   w,
		height:  h,
	}
	a.screenshots = debug.NewScreenshotCapture(cfg.Screenshot.Dir, "glbstage", cfg.Screenshot.Format)

	if err := a.startLoad(); err != nil {
		a.Close()
		return nil, err
	}

	log.Info("viewer initialized")
	return a, nil
}

// newSession builds the camera and orbit controls from config.
func newSession(cfg *config.Config) *viewer.Session {
	c := cfg.Camera
	aspect := float32(cfg.Window.Width) / float32(cfg.Window.Height)
	cam := camera.New(c.FOV, aspect, c.Near, c.Far)
	cam.SetPosition(mgl32.Vec3(c.Position))
	cam.LookAt(mgl32.Vec3(c.Target))

	controls := camera.NewOrbitControls()
	controls.Damping = c.Damping
	controls.DampingFactor = c.DampingFactor
	if c.RotateSpeed > 0 {
		controls.DragSensitivity = c.RotateSpeed
	}
	if c.ZoomSpeed > 0 {
		controls.ZoomSensitivity = c.ZoomSpeed
	}
	return viewer.NewSession(cam, controls)
}

// startLoad begins the one-shot asset load.
func (a *App) startLoad() error {
	l, cleanup, err := newSceneLoader(a.config, worker.Dial)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	a.cleanup = cleanup

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.pending = loader.Async(ctx, l, a.config.Asset.Path, a.progress.Func())
	return nil
}

// pollLoad consumes the load outcome once it is available.
func (a *App) pollLoad() {
	if a.pending == nil {
		return
	}
	select {
	case out := <-a.pending:
		a.pending = nil
		log := logger.Named("app")
		switch {
		case out.Err != nil:
			log.Error("asset load failed", zap.Error(out.Err))
			a.session.Fail(out.Err)
		default:
			if err := a.session.Attach(out.Result); err != nil {
				log.Warn("scene attached without framing", zap.Error(err))
			}
		}
	default:
	}
}

// Run starts the main frame loop.
func (a *App) Run() error {
	a.running = true

	frameCount := 0
	fpsTimer := time.Now()
	log := logger.Named("app")
	log.Info("starting frame loop")

	for a.running {
		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		for _, ev := range a.input.Events() {
			a.handleEvent(ev)
		}

		// 2. Pick up the loaded scene
		a.pollLoad()

		// 3. Advance animations and render
		dt := a.loop.Frame()

		if a.wantScreenshot {
			a.wantScreenshot = false
			a.captureScreenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()
		a.updateTitle()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvent(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		a.pointer.width, a.pointer.height = ev.Width, ev.Height
		a.session.Camera.SetAspect(ev.Width, ev.Height)
		a.renderer.Resize(a.window.DrawableSize())
	case input.EventKeyDown:
		switch ev.Key {
		case sdl.SCANCODE_ESCAPE:
			a.running = false
		case sdl.SCANCODE_F12:
			a.wantScreenshot = true
		case sdl.SCANCODE_F3:
			a.renderer.ShowBounds = !a.renderer.ShowBounds
		}
	default:
		if _, changed := a.pointer.handle(ev); changed {
			a.highlight()
		}
	}
}

// highlight marks the node under the pointer for the bounds overlay.
func (a *App) highlight() {
	if a.pointer.picker.Message() == "" {
		a.renderer.Highlight = nil
		return
	}
	for _, n := range a.session.Graph().Nodes {
		if a.pointer.picker.Resolve(n.Name) == a.pointer.picker.Message() {
			a.renderer.Highlight = n
			return
		}
	}
}

func (a *App) updateTitle() {
	t := windowTitle(a.config.Window.Title, a.session, a.progress.Percent(), a.pointer.picker.Message())
	if t != a.title {
		a.title = t
		a.window.SetTitle(t)
	}
}

func (a *App) captureScreenshot() {
	log := logger.Named("app")
	pixels, w, h := a.renderer.ReadPixels()
	path, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		log.Error("screenshot failed", zap.Error(err))
		return
	}
	log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up viewer resources.
func (a *App) Close() {
	logger.Named("app").Info("closing viewer")

	if a.cancel != nil {
		a.cancel()
	}
	a.cleanup()
	if a.files != nil {
		a.files.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
