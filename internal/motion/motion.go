// Package motion turns keyboard and swipe input into a world-space heading
// and drives the active actor along it.
package motion

import (
	"math"
	"time"

	"github.com/stackyard/stackyard/internal/config"
	"github.com/stackyard/stackyard/internal/core/ecs"
	coresys "github.com/stackyard/stackyard/internal/core/system"
	"github.com/stackyard/stackyard/internal/vmath"
)

const minDirSq = 1e-4

// Options configure input mapping and actor speed.
type Options struct {
	MoveSpeed         float64 // units per second
	RotationSpeed     float64 // yaw blend per second
	MinSwipeDistance  float64 // screen units before a drag counts
	UseCameraRelative bool
	CameraYaw         float64
}

func OptionsFromConfig(cfg config.MotionConfig, cameraYaw float64) Options {
	return Options{
		MoveSpeed:         cfg.MoveSpeed,
		RotationSpeed:     cfg.RotationSpeed,
		MinSwipeDistance:  cfg.MinSwipeDistance,
		UseCameraRelative: cfg.UseCameraRelative,
		CameraYaw:         cameraYaw,
	}
}

// Controller holds the latest input state. Screen coordinates are y-up.
type Controller struct {
	opts Options

	axisX, axisY float64
	swiping      bool
	start, cur   [2]float64
}

func NewController(opts Options) *Controller {
	return &Controller{opts: opts}
}

// SetAxes sets keyboard axes, each in [-1, 1]; zero releases.
func (c *Controller) SetAxes(horizontal, vertical float64) {
	c.axisX, c.axisY = horizontal, vertical
}

// CameraYaw returns the yaw keyboard input is mapped relative to, or 0
// when input is not camera-relative.
func (c *Controller) CameraYaw() float64 {
	if !c.opts.UseCameraRelative {
		return 0
	}
	return c.opts.CameraYaw
}

func (c *Controller) PointerDown(x, y float64) {
	c.swiping = true
	c.start = [2]float64{x, y}
	c.cur = c.start
}

func (c *Controller) PointerMove(x, y float64) {
	if c.swiping {
		c.cur = [2]float64{x, y}
	}
}

func (c *Controller) PointerUp() { c.swiping = false }

// Direction returns the unit heading on the XZ plane, or Zero. A swipe past
// the minimum distance wins over the keyboard.
func (c *Controller) Direction() vmath.Vec3 {
	if c.swiping {
		dx, dy := c.cur[0]-c.start[0], c.cur[1]-c.start[1]
		if l := math.Hypot(dx, dy); l >= c.opts.MinSwipeDistance && l > 0 {
			return c.toWorld(dx/l, dy/l)
		}
	}
	kb := vmath.Vec3{X: c.axisX, Z: c.axisY}
	if kb.LenSq() < minDirSq {
		return vmath.Zero
	}
	kb = kb.Normalize()
	return c.toWorld(kb.X, kb.Z)
}

// toWorld maps a screen-space direction (x right, y up) onto the ground.
func (c *Controller) toWorld(x, y float64) vmath.Vec3 {
	if !c.opts.UseCameraRelative {
		return vmath.Vec3{X: x, Z: y}.Normalize()
	}
	fwd := vmath.RotateY(vmath.Forward, c.opts.CameraYaw)
	right := vmath.RotateY(vmath.Right, c.opts.CameraYaw)
	return right.Scale(x).Add(fwd.Scale(y)).Normalize()
}

// Scene is what the mover writes to.
type Scene interface {
	WorldPosition(id ecs.EntityID) vmath.Vec3
	SetWorldPosition(id ecs.EntityID, p vmath.Vec3)
	WorldYaw(id ecs.EntityID) float64
	SetWorldYaw(id ecs.EntityID, yaw float64)
}

// Mover applies the controller heading to whichever entity target returns.
// Phase 0 (Input).
type Mover struct {
	scene  Scene
	ctrl   *Controller
	target func() ecs.EntityID
	opts   Options
	moving bool
}

func NewMover(scene Scene, ctrl *Controller, target func() ecs.EntityID, opts Options) *Mover {
	return &Mover{scene: scene, ctrl: ctrl, target: target, opts: opts}
}

func (m *Mover) Phase() coresys.Phase { return coresys.PhaseInput }

// Moving reports whether the last update moved the actor.
func (m *Mover) Moving() bool { return m.moving }

func (m *Mover) Update(dt time.Duration) {
	id := m.target()
	dir := m.ctrl.Direction()
	m.moving = !id.IsZero() && dir.LenSq() >= minDirSq
	if !m.moving {
		return
	}
	sec := dt.Seconds()
	yaw := vmath.LerpAngle(m.scene.WorldYaw(id), vmath.YawOf(dir), m.opts.RotationSpeed*sec)
	m.scene.SetWorldYaw(id, yaw)
	m.scene.SetWorldPosition(id, m.scene.WorldPosition(id).Add(dir.Scale(m.opts.MoveSpeed*sec)))
}
