package arena

import "math"

// Vec2 is a 2D position or displacement on the battlefield plane.
type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v scaled by k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{X: v.X * k, Y: v.Y * k} }

// Length returns the Euclidean magnitude of v.
//
// Postcondition: Returns >= 0.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Normalized returns v scaled to unit length, or the zero vector when v is zero.
func (v Vec2) Normalized() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// DistanceTo returns the Euclidean distance between v and o.
//
// Postcondition: Returns >= 0.
func (v Vec2) DistanceTo(o Vec2) float64 { return v.Sub(o).Length() }

// MoveToward returns v advanced toward target by at most step. When the
// remaining distance is smaller than step the target itself is returned,
// so callers never overshoot.
//
// Precondition: step >= 0.
func (v Vec2) MoveToward(target Vec2, step float64) Vec2 {
	delta := target.Sub(v)
	if delta.Length() <= step {
		return target
	}
	return v.Add(delta.Normalized().Scale(step))
}
