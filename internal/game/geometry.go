package game

import "math"

// Vec is a point or displacement in arena pixels.
type Vec struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v multiplied by f.
func (v Vec) Scale(f float64) Vec {
	return Vec{X: v.X * f, Y: v.Y * f}
}

// Rotate rotates v by deg degrees using the standard basis transform:
//
//	rx = cos(θ)·x − sin(θ)·y
//	ry = sin(θ)·x + cos(θ)·y
func (v Vec) Rotate(deg float64) Vec {
	sin, cos := math.Sincos(radians(deg))
	return Vec{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// Rect is an axis-aligned bounding box. X/Y is the top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of the box.
func (r Rect) Center() Vec {
	return Vec{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// BottomLeft returns the bottom-left corner.
func (r Rect) BottomLeft() Vec {
	return Vec{X: r.X, Y: r.Y + r.H}
}

// Overlaps reports whether r and o share interior area.
// Edge-touching boxes and empty boxes never overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.W <= 0 || r.H <= 0 || o.W <= 0 || o.H <= 0 {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
