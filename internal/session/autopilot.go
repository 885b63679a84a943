package session

import (
	"time"

	"github.com/stackyard/stackyard/internal/carrier"
	"github.com/stackyard/stackyard/internal/vmath"
)

// arriveRadius is how close the autopilot gets to a waypoint before dwelling.
const arriveRadius = 0.3

type leg struct {
	name   string
	target vmath.Vec3
	done   func(waited time.Duration) bool
}

// Autopilot steers the carrier through generator and recycler pairs by
// feeding the input controller, so headless runs exercise the full loop.
type Autopilot struct {
	s      *Session
	legs   []leg
	i      int
	waited time.Duration
	laps   int
}

// NewAutopilot plans a lap visiting every generator that has a recycler of
// the same category: dwell at the generator, then stay at the recycler until
// the carrier has drained that category.
func NewAutopilot(s *Session, dwell time.Duration) *Autopilot {
	ap := &Autopilot{s: s}
	for _, g := range s.Generators {
		for _, r := range s.Recyclers {
			if r.Category() != g.Category() {
				continue
			}
			cat := g.Category()
			ap.legs = append(ap.legs,
				leg{
					name:   g.Name(),
					target: s.World.WorldPosition(g.ID()),
					done:   func(w time.Duration) bool { return w >= dwell },
				},
				leg{
					name:   r.Name(),
					target: s.World.WorldPosition(r.ID()),
					done: func(time.Duration) bool {
						return s.Carrier.HeldCount(cat) == 0 && s.Carrier.State() == carrier.Idle
					},
				},
			)
			break
		}
	}
	return ap
}

// Laps returns completed laps.
func (ap *Autopilot) Laps() int { return ap.laps }

// Target names the current waypoint.
func (ap *Autopilot) Target() string {
	if len(ap.legs) == 0 {
		return ""
	}
	return ap.legs[ap.i].name
}

// Step updates input for the next tick of length dt.
func (ap *Autopilot) Step(dt time.Duration) {
	if len(ap.legs) == 0 {
		return
	}
	cur := ap.legs[ap.i]
	pos := ap.s.World.WorldPosition(ap.s.Switcher.Current())
	d := cur.target.Sub(pos).Flat()
	if d.Len() > arriveRadius {
		ap.steer(d.Normalize())
		return
	}
	ap.s.Input.SetAxes(0, 0)
	ap.waited += dt
	if cur.done(ap.waited) {
		ap.waited = 0
		ap.i++
		if ap.i == len(ap.legs) {
			ap.i = 0
			ap.laps++
		}
	}
}

// steer converts a world heading back into camera-relative axes.
func (ap *Autopilot) steer(dir vmath.Vec3) {
	yaw := ap.s.Input.CameraYaw()
	right := vmath.RotateY(vmath.Right, yaw)
	fwd := vmath.RotateY(vmath.Forward, yaw)
	ap.s.Input.SetAxes(dir.X*right.X+dir.Z*right.Z, dir.X*fwd.X+dir.Z*fwd.Z)
}
