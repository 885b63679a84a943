package vmath

import "math"

// Vec3 is a float64 3D vector in scene units. Y is up, +Z is forward.
type Vec3 struct {
	X, Y, Z float64
}

var (
	Zero    = Vec3{}
	Up      = Vec3{0, 1, 0}
	Forward = Vec3{0, 0, 1}
	Back    = Vec3{0, 0, -1}
	Right   = Vec3{1, 0, 0}
)

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) LenSq() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

func (v Vec3) Len() float64 { return math.Sqrt(v.LenSq()) }

// Normalize returns the unit vector, or Zero for a zero-length input.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

// Flat drops the Y component.
func (v Vec3) Flat() Vec3 { return Vec3{v.X, 0, v.Z} }

func Dist(a, b Vec3) float64 { return b.Sub(a).Len() }

// Lerp interpolates unclamped between a and b.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// ApproxEqual compares component-wise within eps.
func ApproxEqual(a, b Vec3, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// RotateY rotates v around the Y axis by yaw degrees (clockwise seen from
// above, so yaw 90 maps Forward to Right).
func RotateY(v Vec3, yaw float64) Vec3 {
	if yaw == 0 {
		return v
	}
	r := yaw * math.Pi / 180
	s, c := math.Sincos(r)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// YawOf returns the yaw in degrees that faces dir on the XZ plane.
func YawOf(dir Vec3) float64 {
	return math.Atan2(dir.X, dir.Z) * 180 / math.Pi
}

// DeltaAngle returns the shortest signed difference b-a in degrees.
func DeltaAngle(a, b float64) float64 {
	d := math.Mod(b-a, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// LerpAngle interpolates between yaw angles along the shortest arc.
func LerpAngle(a, b, t float64) float64 {
	if t > 1 {
		t = 1
	}
	if t < 0 {
		t = 0
	}
	return a + DeltaAngle(a, b)*t
}

// Clamp01 clamps t to [0,1].
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
