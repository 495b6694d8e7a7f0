package main

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/drops/internal/config"
	"github.com/Faultbox/drops/internal/engine/camera"
	"github.com/Faultbox/drops/internal/engine/debug"
	"github.com/Faultbox/drops/internal/engine/input"
	"github.com/Faultbox/drops/internal/engine/picking"
	"github.com/Faultbox/drops/internal/engine/renderer"
	"github.com/Faultbox/drops/internal/engine/window"
	"github.com/Faultbox/drops/internal/logger"
	"github.com/Faultbox/drops/internal/sim"
	"github.com/Faultbox/drops/pkg/math"
)

// pickDistance is how far a right click searches for an entity.
const pickDistance = 1000

// maxFrameTime bounds how much simulated time one rendered frame may
// catch up on.
const maxFrameTime = 0.25

type viewer struct {
	cfg  *config.Config
	log  *zap.Logger
	opts sim.Options

	win     *window.Window
	ren     *renderer.Renderer
	cam     *camera.OrbitCamera
	in      *input.Input
	shots   *debug.Screenshots
	watcher *config.Watcher

	world        *sim.World
	name         string
	files        []string
	trajectories map[string][]math.Vec3
	lines        debug.Lines

	paused           bool
	follow           bool
	followID         string
	showTrajectories bool
	dragging         bool
	capture          bool
	acc              float32
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		cfg: cfg,
		log: logger.Named("trajview"),
		opts: sim.Options{
			TickDt:  cfg.Simulation.TickDt(),
			Gravity: cfg.Simulation.Gravity,
			Logger:  logger.Named("sim"),
		},
		cam:              camera.NewOrbitCamera(),
		in:               input.New(),
		shots:            debug.NewScreenshots("screenshots", "trajview"),
		showTrajectories: cfg.Viewer.ShowTrajectories,
	}

	if err := v.load(); err != nil {
		return nil, err
	}

	var err error
	v.win, err = window.New(window.Config{
		Title:      "Drops: " + v.name,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	width, height := v.win.Size()
	v.ren, err = renderer.New(width, height, logger.Named("renderer"))
	if err != nil {
		v.win.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	v.cam.FitToBounds(sceneBounds(v.world))

	if cfg.Simulation.Watch {
		v.watcher, err = config.NewWatcher(v.files...)
		if err != nil {
			v.log.Warn("scenario watch disabled", zap.Error(err))
		}
	}
	return v, nil
}

// load (re)builds the world from the configured scenario. On error the
// current world is kept.
func (v *viewer) load() error {
	path := v.cfg.Simulation.Scenario
	s, err := config.LoadScenario(path)
	if err != nil {
		return fmt.Errorf("loading scenario: %w", err)
	}
	w, err := sim.Build(s, v.opts)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}
	v.world, v.name = w, s.Name
	v.files = append([]string{path}, s.ScriptFiles(path)...)
	v.trajectories = w.PredictTrajectories()
	v.acc = 0
	v.log.Info("scenario loaded",
		zap.String("scenario", s.Name),
		zap.Int("drops", len(w.Drops())),
		zap.Int("enemies", len(w.Enemies())),
		zap.Int("trajectories", len(v.trajectories)),
	)
	return nil
}

// Close releases the window, renderer and watcher.
func (v *viewer) Close() {
	if v.watcher != nil {
		_ = v.watcher.Close()
	}
	if v.ren != nil {
		v.ren.Close()
	}
	if v.win != nil {
		v.win.Close()
	}
}

// Run drives the frame loop until the window closes.
func (v *viewer) Run() error {
	last := time.Now()
	for {
		if v.in.Update() {
			return nil
		}
		if quit := v.handleEvents(); quit {
			return nil
		}
		v.pollWatcher()

		now := time.Now()
		frame := float32(now.Sub(last).Seconds())
		last = now

		v.handleMovement()
		v.advance(frame)
		if v.follow {
			if p, ok := v.followTarget(); ok {
				v.cam.Follow(p, frame)
			}
		}
		v.render()
	}
}

func (v *viewer) handleEvents() bool {
	for _, e := range v.in.Events() {
		switch e.Type {
		case input.EventWindowResize:
			width, height := v.win.Size()
			v.ren.Resize(width, height)
		case input.EventMouseDown:
			switch e.Button {
			case sdl.BUTTON_LEFT:
				v.dragging = true
			case sdl.BUTTON_RIGHT:
				v.pick(e.MouseX, e.MouseY)
			}
		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_LEFT {
				v.dragging = false
			}
		case input.EventMouseMove:
			if v.dragging {
				v.cam.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			}
		case input.EventMouseWheel:
			v.cam.HandleZoom(float32(e.DeltaY))
		case input.EventKeyDown:
			if v.handleKey(e.Key) {
				return true
			}
		}
	}
	return false
}

func (v *viewer) handleKey(key sdl.Scancode) bool {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		return true
	case sdl.SCANCODE_SPACE:
		v.paused = !v.paused
		v.log.Debug("pause toggled", zap.Bool("paused", v.paused))
	case sdl.SCANCODE_PERIOD:
		if v.paused {
			v.world.Step()
		}
	case sdl.SCANCODE_R:
		v.reload("manual")
	case sdl.SCANCODE_T:
		v.showTrajectories = !v.showTrajectories
	case sdl.SCANCODE_F:
		v.follow = !v.follow
	case sdl.SCANCODE_F12:
		v.capture = true
	}
	return false
}

// pick selects the drop or enemy under the cursor as the follow target.
func (v *viewer) pick(x, y int) {
	width, height := v.win.LogicalSize()
	inv := v.cam.ViewProjection(v.win.Aspect()).Inverse()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(width), float32(height), inv)

	var targets []picking.Target
	for _, d := range v.world.Drops() {
		if d.Alive() {
			targets = append(targets, picking.Target{ID: d.ID(), Box: d.Bounds()})
		}
	}
	for _, e := range v.world.Enemies() {
		targets = append(targets, picking.Target{ID: e.ID(), Box: e.Controller().Bounds()})
	}

	id, ok := picking.Pick(ray, pickDistance, targets)
	if !ok {
		return
	}
	v.followID, v.follow = id, true
	v.log.Info("following", zap.String("entity", id))
}

// followTarget resolves the followed entity, defaulting to the first drop.
func (v *viewer) followTarget() (math.Vec3, bool) {
	if d := v.world.Drop(v.followID); d != nil && d.Alive() {
		return d.Position(), true
	}
	if e := v.world.Enemy(v.followID); e != nil {
		return e.Position(), true
	}
	for _, d := range v.world.Drops() {
		if d.Alive() {
			return d.Position(), true
		}
	}
	return math.Vec3{}, false
}

func (v *viewer) handleMovement() {
	keys := sdl.GetKeyboardState()
	axis := func(neg, pos sdl.Scancode) float32 {
		var a float32
		if keys[pos] != 0 {
			a++
		}
		if keys[neg] != 0 {
			a--
		}
		return a
	}
	forward := axis(sdl.SCANCODE_S, sdl.SCANCODE_W)
	right := axis(sdl.SCANCODE_A, sdl.SCANCODE_D)
	up := axis(sdl.SCANCODE_Q, sdl.SCANCODE_E)
	if forward != 0 || right != 0 || up != 0 {
		v.follow = false
		v.cam.HandleMovement(forward, right, up)
	}
}

// advance runs as many fixed ticks as frame seconds allow.
func (v *viewer) advance(frame float32) {
	if v.paused {
		return
	}
	v.acc += min(frame, maxFrameTime)
	dt := v.world.TickDt()
	for v.acc >= dt {
		v.world.Step()
		v.acc -= dt
	}
}

func (v *viewer) pollWatcher() {
	if v.watcher == nil {
		return
	}
	select {
	case changed, ok := <-v.watcher.Events:
		if ok {
			v.reload(changed)
		}
	case err, ok := <-v.watcher.Errors:
		if ok {
			v.log.Warn("watch error", zap.Error(err))
		}
	default:
	}
}

func (v *viewer) reload(reason string) {
	if err := v.load(); err != nil {
		v.log.Warn("reload rejected", zap.String("reason", reason), zap.Error(err))
		return
	}
	v.win.SetTitle("Drops: " + v.name)
}

func (v *viewer) render() {
	v.lines.Reset()
	drawScene(&v.lines, v.world, v.trajectories, v.showTrajectories)

	v.ren.Begin()
	v.ren.DrawLines(v.cam.ViewProjection(v.win.Aspect()), &v.lines)
	if v.capture {
		v.capture = false
		v.screenshot()
	}
	v.win.SwapBuffers()
}

func (v *viewer) screenshot() {
	pixels, width, height := v.ren.ReadPixels()
	name, err := v.shots.CaptureRGBA(pixels, width, height)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}
