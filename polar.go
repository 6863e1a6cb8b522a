package pulley

import (
	"errors"
	"math"

	"github.com/soypat/pulley/sym"
)

// PolarParams are the design parameters of the polar-anchored
// construction scheme: the AB arc center sits on the tooth centerline at
// a height derived from the pitch geometry, and the BC arc center is
// placed at an angular offset 2b/PD from the centerline.
type PolarParams struct {
	RAB   float64 `yaml:"rab"`   // radius of the A-B flank arc
	RBC   float64 `yaml:"rbc"`   // radius of the B-C root arc
	RCD   float64 `yaml:"rcd"`   // radius of the C-D tip arc (accepted for parity with the Cartesian scheme; the polar anchoring has no CD stage)
	B     float64 `yaml:"b"`     // tooth half-angle numerator
	H     float64 `yaml:"h"`     // construction height of the tooth
	PLD   float64 `yaml:"pld"`   // pitch line distance (belt pitch line above tooth)
	Teeth float64 `yaml:"teeth"` // tooth count of the pulley
	PD    float64 `yaml:"pd"`    // pitch diameter
}

// Validate checks that the parameters describe a realizable tooth
// geometry.
func (p PolarParams) Validate() error {
	switch {
	case p.RAB <= 0 || p.RBC <= 0 || p.RCD <= 0:
		return errors.New("pulley: arc radii must be positive")
	case p.B <= 0 || p.H <= 0 || p.PLD <= 0 || p.Teeth <= 0 || p.PD <= 0:
		return errors.New("pulley: pitch parameters must be positive")
	case p.RBC <= p.RAB:
		return errors.New("pulley: root arc radius RBC must exceed flank arc radius RAB")
	}
	l := p.anchorHeight()
	if l <= 0 {
		return errors.New("pulley: pitch diameter too small for the groove depth")
	}
	if sq(p.RBC-p.RAB) <= sq(l*math.Sin(p.toothAngle())) {
		return errors.New("pulley: tooth half-angle too large for internal tangency of AB and BC arcs")
	}
	return nil
}

// anchorHeight is the AB arc center height on the centerline: the pitch
// radius less the pitch line distance and the groove depth h-RAB.
func (p PolarParams) anchorHeight() float64 {
	return p.PD/2 - p.PLD - p.H + p.RAB
}

// toothAngle is the angular offset 2b/PD of the BC arc center from the
// centerline.
func (p PolarParams) toothAngle() float64 {
	return 2 * p.B / p.PD
}

func (p PolarParams) env() sym.Env {
	return sym.Env{
		"RAB": p.RAB, "RBC": p.RBC, "RCD": p.RCD,
		"b": p.B, "h": p.H, "PLD": p.PLD, "t": p.Teeth, "PD": p.PD,
	}
}

// Polar solves the polar-anchored scheme's anchor stage for A, B and the
// AB/BC arc centers. The placeholder resolves to the derived anchor
// height rather than a prior stage's result, and of the two tangency
// branches the outer-center branch (index 1) is selected: it is the one
// whose BC center sits radially outward of the AB center with the flank
// point inside the pitch line, matching the Cartesian scheme's geometry.
func Polar(p PolarParams) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	st := polarStage1().substitute(map[string]sym.Expr{
		placeholder: polarAnchorHeightExpr(),
	})
	sol, err := st.run(p.env(), polarStage1Seeds(p), 2, 1)
	if err != nil {
		return nil, err
	}
	coords, err := mergeSolutions("polar", sol)
	if err != nil {
		return nil, err
	}
	return &Profile{Scheme: "polar", Coords: coords}, nil
}

// polarAnchorHeightExpr is the derived offset substituted for the
// placeholder: PD/2 - PLD - h + RAB.
func polarAnchorHeightExpr() sym.Expr {
	return sym.Add(
		sym.Sub(sym.Sub(sym.Mul(sym.Num(0.5), sym.Var("PD")), sym.Var("PLD")), sym.Var("h")),
		sym.Var("RAB"),
	)
}

// polarStage1 formulates the anchor geometry with polar placement of the
// BC arc center: an auxiliary radius unknown RBXY positions the center
// at angle 2b/PD off the centerline and is pinned to that radius by the
// sqrt constraint.
func polarStage1() stage {
	var (
		RAB   = sym.Var("RAB")
		RBC   = sym.Var("RBC")
		RBXY  = sym.Var("RBXY")
		PD    = sym.Var("PD")
		bHalf = sym.Var("b")
		L     = sym.Var(placeholder)

		a     = unknownPoint("A")
		b     = unknownPoint("B")
		arcAB = Arc{Name: "AB", Center: unknownPoint("AB"), R: RAB}
		arcBC = Arc{Name: "BC", Center: unknownPoint("BC"), R: RBC}

		angle = sym.Div(sym.Mul(sym.Num(2), bHalf), PD)
	)
	eqs := []sym.Expr{
		sym.Add(a.X, b.X), // A mirrors B about the centerline
		sym.Sub(a.Y, b.Y),
		arcAB.Center.X,             // AB arc center on the centerline
		sym.Sub(L, arcAB.Center.Y), // at the derived anchor height
		sym.Add(sym.Mul(RBXY, sym.Sin(angle)), arcBC.Center.X),
		sym.Sub(sym.Mul(RBXY, sym.Cos(angle)), arcBC.Center.Y),
		sym.Sub(sym.Sqrt(sym.Add(sym.Square(arcBC.Center.X), sym.Square(arcBC.Center.Y))), RBXY),
		onArc(b, arcAB),
		onArc(b, arcBC),
		sharedTangentYX(arcAB, arcBC, b),
	}
	return stage{
		scheme:       "polar",
		name:         "stage 1",
		eqs:          eqs,
		unknowns:     []string{"AX", "AY", "BX", "BY", "ABX", "ABY", "BCX", "BCY", "RBXY"},
		wantEqs:      10,
		wantUnknowns: 9,
	}
}

// polarStage1Seeds builds one geometric seed per tangency branch. The
// internal tangency of the AB and BC arcs fixes the center distance to
// RBC-RAB, which admits two BC center radii
// R = L cos θ ± sqrt((RBC-RAB)² - L² sin² θ); the inner root is seeded
// first, the outer root second.
func polarStage1Seeds(p PolarParams) [][]float64 {
	l := p.anchorHeight()
	theta := p.toothAngle()
	disc := math.Sqrt(sq(p.RBC-p.RAB) - sq(l*math.Sin(theta)))
	seeds := make([][]float64, 0, 2)
	for _, root := range []float64{
		l*math.Cos(theta) - disc,
		l*math.Cos(theta) + disc,
	} {
		bcx := -root * math.Sin(theta)
		bcy := root * math.Cos(theta)
		// B sits on the center line, RBC away from the BC center.
		n := math.Hypot(-bcx, l-bcy)
		bx := bcx + p.RBC*-bcx/n
		by := bcy + p.RBC*(l-bcy)/n
		seeds = append(seeds, []float64{
			-bx, by, // AX, AY
			bx, by, // BX, BY
			0, l, // ABX, ABY
			bcx, bcy, // BCX, BCY
			root, // RBXY
		})
	}
	return seeds
}
