// Package pulley derives the tooth-profile construction geometry of
// GT-2 and GT-3 timing-belt pulleys.
//
// A tooth profile is built from circular arcs of differing radii meeting
// at tangent transition points A, B, C and D. The geometry is expressed
// as a system of nonlinear constraints (tangency, mirror symmetry and
// positional fixings) over the transition points and arc centers, and
// solved in two dependency-ordered stages. A placeholder symbol decouples
// the second stage from the first: stage 2 is formulated against the
// placeholder and only becomes solvable once the placeholder is
// substituted with stage 1's result.
//
// Two anchoring schemes are supported: Cartesian (the BC arc center is
// placed a fixed offset d from the tooth centerline) and polar (the BC
// arc center is placed at an angular offset derived from the tooth
// half-angle and pitch diameter). Solving is numeric: each stage's
// residual system is polished from geometric seeds by the solve package,
// with solution branches enumerated in a fixed, documented order.
package pulley

import (
	"github.com/soypat/pulley/sym"
)

// placeholder is the dummy symbol standing in for a not-yet-known value
// during stage formulation: stage 1's solved BCY in the Cartesian
// scheme's second stage, and the derived anchor height in the polar
// scheme's first stage.
const placeholder = "L"

// Point is a named 2D location. Coordinates are symbolic: an unknown to
// be solved for, or a closed-form expression in parameters and other
// unknowns.
type Point struct {
	Name string
	X, Y sym.Expr
}

// unknownPoint returns a point whose coordinates are the unknowns
// <name>X and <name>Y.
func unknownPoint(name string) Point {
	return Point{Name: name, X: sym.Var(name + "X"), Y: sym.Var(name + "Y")}
}

// Arc is a named circular arc defined by its center and radius.
type Arc struct {
	Name   string
	Center Point
	R      sym.Expr
}

// dist2 returns the squared distance between two points.
func dist2(p, q Point) sym.Expr {
	return sym.Add(sym.Square(sym.Sub(p.X, q.X)), sym.Square(sym.Sub(p.Y, q.Y)))
}

// onArc returns the tangency residual placing p on the arc: the distance
// from p to the arc center equals the arc radius.
func onArc(p Point, a Arc) sym.Expr {
	return sym.Sub(dist2(p, a.Center), sym.Square(a.R))
}

// slopeYX returns the slope dy/dx of the line through p and q.
func slopeYX(p, q Point) sym.Expr {
	return sym.Div(sym.Sub(p.Y, q.Y), sym.Sub(p.X, q.X))
}

// slopeXY returns the inverse slope dx/dy of the line through p and q.
// Used where the shared line is near-vertical and dy/dx would blow up.
func slopeXY(p, q Point) sym.Expr {
	return sym.Div(sym.Sub(p.X, q.X), sym.Sub(p.Y, q.Y))
}

// sharedTangentYX constrains two arcs to share their tangent line at the
// transition point p: the center-to-center line and the center-to-p line
// have equal slope.
func sharedTangentYX(a, b Arc, p Point) sym.Expr {
	return sym.Sub(slopeYX(b.Center, a.Center), slopeYX(a.Center, p))
}
