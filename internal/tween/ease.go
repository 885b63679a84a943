package tween

import "math"

// Ease maps normalized time t in [0,1] to progress.
type Ease func(t float64) float64

const backOvershoot = 1.70158

func Linear(t float64) float64 { return t }

func OutQuad(t float64) float64 { return 1 - (1-t)*(1-t) }

// OutBack overshoots the target slightly before settling.
func OutBack(t float64) float64 {
	c3 := backOvershoot + 1
	u := t - 1
	return 1 + c3*u*u*u + backOvershoot*u*u
}

func InOutSine(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }

// arc is the normalized jump height: 0 at both ends, 1 at the midpoint.
func arc(t float64) float64 { return 4 * t * (1 - t) }
