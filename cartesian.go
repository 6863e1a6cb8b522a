package pulley

import (
	"errors"
	"math"

	"github.com/soypat/pulley/sym"
)

// CartesianParams are the design parameters of the Cartesian-anchored
// construction scheme: the AB arc center sits at the origin and the BC
// arc center is offset a fixed distance d along the X axis.
type CartesianParams struct {
	RAB float64 `yaml:"rab"` // radius of the A-B flank arc
	RBC float64 `yaml:"rbc"` // radius of the B-C root arc
	RCD float64 `yaml:"rcd"` // radius of the C-D tip arc
	D   float64 `yaml:"d"`   // X offset of the BC arc center from the origin
	H   float64 `yaml:"h"`   // construction height of the tooth
}

// Validate checks that the parameters describe a realizable tooth
// geometry.
func (p CartesianParams) Validate() error {
	switch {
	case p.RAB <= 0 || p.RBC <= 0 || p.RCD <= 0:
		return errors.New("pulley: arc radii must be positive")
	case p.D <= 0 || p.H <= 0:
		return errors.New("pulley: offset d and height h must be positive")
	case p.RBC <= p.RAB:
		return errors.New("pulley: root arc radius RBC must exceed flank arc radius RAB")
	case sq(p.RBC-p.RAB) <= sq(p.D):
		return errors.New("pulley: offset d too large for internal tangency of AB and BC arcs")
	}
	return nil
}

func (p CartesianParams) env() sym.Env {
	return sym.Env{"RAB": p.RAB, "RBC": p.RBC, "RCD": p.RCD, "d": p.D, "h": p.H}
}

// Cartesian solves the Cartesian-anchored scheme: stage 1 for the anchor
// geometry (A, B and the AB/BC arc centers), then stage 2 for the CD arc
// transition (C, D and the CD arc center) after the placeholder is
// substituted with stage 1's BCY, and returns the merged profile.
func Cartesian(p CartesianParams) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	env := p.env()

	sol1, err := cartesianStage1().run(env, [][]float64{cartesianStage1Seed(p)}, 1, 0)
	if err != nil {
		return nil, err
	}

	st2 := cartesianStage2().substitute(map[string]sym.Expr{
		"BCX":       sym.Num(sol1["BCX"]),
		placeholder: sym.Num(sol1["BCY"]),
	})
	sol2, err := st2.run(env, [][]float64{cartesianStage2Seed(p, sol1)}, 1, 0)
	if err != nil {
		return nil, err
	}

	coords, err := mergeSolutions("cartesian", sol1, sol2)
	if err != nil {
		return nil, err
	}
	return &Profile{Scheme: "cartesian", Coords: coords}, nil
}

// cartesianStage1 formulates the shared anchor geometry: A mirrored from
// B about the tooth centerline, the AB arc center at the origin, the BC
// arc center at -d on X, tangency of B on both arcs, the shared tangent
// line at B, and the closed-form placement of B.
func cartesianStage1() stage {
	var (
		RAB = sym.Var("RAB")
		RBC = sym.Var("RBC")
		d   = sym.Var("d")

		a     = unknownPoint("A")
		b     = unknownPoint("B")
		arcAB = Arc{Name: "AB", Center: unknownPoint("AB"), R: RAB}
		arcBC = Arc{Name: "BC", Center: unknownPoint("BC"), R: RBC}
	)
	eqs := []sym.Expr{
		sym.Add(a.X, b.X), // A mirrors B about the centerline
		sym.Sub(a.Y, b.Y),
		arcAB.Center.X, // AB arc center fixed at the origin
		arcAB.Center.Y,
		sym.Add(arcBC.Center.X, d), // BC arc center at -d
		onArc(b, arcAB),
		onArc(b, arcBC),
		sharedTangentYX(arcAB, arcBC, b),
		// Closed-form placement of B on the internal tangency line.
		sym.Sub(sym.Div(sym.Neg(sym.Mul(RAB, d)), sym.Sub(RAB, RBC)), b.X),
		sym.Sub(sym.Div(sym.Mul(RAB, sym.Sqrt(sym.Sub(sym.Square(sym.Sub(RAB, RBC)), sym.Square(d)))), sym.Sub(RAB, RBC)), b.Y),
	}
	return stage{
		scheme:       "cartesian",
		name:         "stage 1",
		eqs:          eqs,
		unknowns:     []string{"AX", "AY", "BX", "BY", "ABX", "ABY", "BCX", "BCY"},
		wantEqs:      10,
		wantUnknowns: 8,
	}
}

// cartesianStage1Seed builds the geometric starting point: B from the
// internal-tangency closed form, the BC center height from the center
// distance RBC-RAB.
func cartesianStage1Seed(p CartesianParams) []float64 {
	bx := -p.RAB * p.D / (p.RAB - p.RBC)
	by := p.RAB * math.Sqrt(sq(p.RAB-p.RBC)-sq(p.D)) / (p.RAB - p.RBC)
	bcy := math.Sqrt(sq(p.RBC-p.RAB) - sq(p.D))
	return []float64{
		-bx, by, // AX, AY
		bx, by, // BX, BY
		0, 0, // ABX, ABY
		-p.D, bcy, // BCX, BCY
	}
}

// cartesianStage2 formulates the CD arc transition given stage-1's BCX
// and the placeholder L standing in for stage-1's BCY: C re-derived from
// the tangent-circle-pair closed form, tangency of C on the BC and CD
// arcs, the shared tangent line at C, and the axis-aligned placement of
// D above the CD arc center.
func cartesianStage2() stage {
	var (
		RAB = sym.Var("RAB")
		RBC = sym.Var("RBC")
		RCD = sym.Var("RCD")
		d   = sym.Var("d")
		h   = sym.Var("h")
		L   = sym.Var(placeholder)

		c     = unknownPoint("C")
		dd    = unknownPoint("D")
		arcCD = Arc{Name: "CD", Center: unknownPoint("CD"), R: RCD}
		// Stage-1's BC arc: BCX carried over, BCY stands behind the
		// placeholder until substitution.
		arcBC = Arc{Name: "BC", Center: Point{Name: "BC", X: sym.Var("BCX"), Y: L}, R: RBC}
	)
	// Radicand of the tangent-circle-pair formula for C, parameterized
	// by the placeholder.
	radicand := sum(
		sym.Neg(sym.Square(L)),
		sym.Neg(sym.Mul(sym.Num(2), sym.Mul(L, RAB))),
		sym.Neg(sym.Mul(sym.Num(2), sym.Mul(L, RCD))),
		sym.Mul(sym.Num(2), sym.Mul(L, h)),
		sym.Neg(sym.Square(RAB)),
		sym.Neg(sym.Mul(sym.Num(2), sym.Mul(RAB, RCD))),
		sym.Mul(sym.Num(2), sym.Mul(RAB, h)),
		sym.Square(RBC),
		sym.Mul(sym.Num(2), sym.Mul(RBC, RCD)),
		sym.Mul(sym.Num(2), sym.Mul(RCD, h)),
		sym.Neg(sym.Square(h)),
	)
	eqs := []sym.Expr{
		// Closed-form re-derivation of C.
		sym.Sub(sym.Div(sum(
			sym.Neg(sym.Mul(RBC, d)),
			sym.Mul(RBC, sym.Sqrt(radicand)),
			sym.Neg(sym.Mul(RCD, d)),
		), sym.Add(RBC, RCD)), c.X),
		sym.Sub(sym.Div(sum(
			sym.Mul(L, RCD),
			sym.Neg(sym.Mul(RAB, RBC)),
			sym.Neg(sym.Mul(RBC, RCD)),
			sym.Mul(RBC, h),
		), sym.Add(RBC, RCD)), c.Y),
		onArc(c, arcBC),
		onArc(c, arcCD),
		sym.Sub(dd.X, arcCD.Center.X), // D vertically above the CD center
		sym.Sub(sym.Sub(h, RAB), dd.Y),
		// Shared tangent at C, in inverse-slope form: the B-C root arc
		// meets the C-D tip arc on the line through both centers.
		sym.Sub(slopeXY(arcBC.Center, c), slopeXY(c, arcCD.Center)),
		sym.Sub(sym.Sub(dd.Y, RCD), arcCD.Center.Y),
	}
	return stage{
		scheme:       "cartesian",
		name:         "stage 2",
		eqs:          eqs,
		unknowns:     []string{"CX", "CY", "CDX", "CDY", "DX", "DY"},
		wantEqs:      8,
		wantUnknowns: 6,
	}
}

// cartesianStage2Seed starts C on the tangent-circle-pair closed form
// evaluated at stage-1's BCY and pushes the CD center off the BC arc
// through C.
func cartesianStage2Seed(p CartesianParams, sol1 map[string]float64) []float64 {
	l := sol1["BCY"]
	radicand := -l*l - 2*l*p.RAB - 2*l*p.RCD + 2*l*p.H -
		p.RAB*p.RAB - 2*p.RAB*p.RCD + 2*p.RAB*p.H +
		p.RBC*p.RBC + 2*p.RBC*p.RCD + 2*p.RCD*p.H - p.H*p.H
	cx := (-p.RBC*p.D + p.RBC*math.Sqrt(radicand) - p.RCD*p.D) / (p.RBC + p.RCD)
	cy := (l*p.RCD - p.RAB*p.RBC - p.RBC*p.RCD + p.RBC*p.H) / (p.RBC + p.RCD)
	cdx := cx + p.RCD*(cx-sol1["BCX"])/p.RBC
	cdy := cy + p.RCD*(cy-l)/p.RBC
	return []float64{
		cx, cy, // CX, CY
		cdx, cdy, // CDX, CDY
		cdx, p.H - p.RAB, // DX, DY
	}
}

func sum(terms ...sym.Expr) sym.Expr {
	e := terms[0]
	for _, t := range terms[1:] {
		e = sym.Add(e, t)
	}
	return e
}

func sq(x float64) float64 { return x * x }
