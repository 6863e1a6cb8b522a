package pulley

import (
	"errors"

	"github.com/soypat/pulley/solve"
	"github.com/soypat/pulley/sym"
)

// stage is one solve step of a construction scheme: an ordered residual
// list over an ordered unknown list, with the shape the formulator
// declared for it. Stages are formulated once and never mutated;
// substitution returns a new stage.
type stage struct {
	scheme   string
	name     string
	eqs      []sym.Expr
	unknowns []string
	// declared shape; consistent overdetermination is allowed, fewer
	// equations than unknowns is not.
	wantEqs, wantUnknowns int
}

// substitute replaces symbols across every residual, typically resolving
// the placeholder with a prior stage's result.
func (st stage) substitute(binds map[string]sym.Expr) stage {
	eqs := make([]sym.Expr, len(st.eqs))
	for i, eq := range st.eqs {
		for name, repl := range binds {
			eq = eq.Subs(name, repl)
		}
		eqs[i] = eq
	}
	st.eqs = eqs
	return st
}

// run binds the parameter environment into the stage's residuals, solves
// from the given branch seeds, and selects the branch at index pick out
// of an expected want branches.
func (st stage) run(env sym.Env, seeds [][]float64, want, pick int) (map[string]float64, error) {
	if len(st.eqs) != st.wantEqs || len(st.unknowns) != st.wantUnknowns {
		return nil, &FormulationError{
			Scheme: st.scheme, Stage: st.name,
			Msg: "equation/unknown count does not match declared shape",
		}
	}
	eqs := make([]sym.Expr, len(st.eqs))
	for i, eq := range st.eqs {
		for name, val := range env {
			eq = eq.Subs(name, sym.Num(val))
		}
		eqs[i] = eq
	}
	sys := solve.System{Residuals: eqs, Unknowns: st.unknowns, Seeds: seeds}
	roots, err := sys.Solve(solve.DefaultSettings())
	if err != nil {
		var unbound *sym.UnboundError
		if errors.As(err, &unbound) {
			return nil, &SubstitutionError{Symbol: unbound.Name}
		}
		return nil, &FormulationError{
			Scheme: st.scheme, Stage: st.name,
			Msg: "constraint system has no solution", Err: err,
		}
	}
	if len(roots) != want {
		return nil, &AmbiguityError{Scheme: st.scheme, Stage: st.name, Got: len(roots), Want: want}
	}
	root := roots[pick]
	sol := make(map[string]float64, len(st.unknowns))
	for i, name := range st.unknowns {
		sol[name] = root[i]
	}
	return sol, nil
}

// mergeSolutions joins per-stage solution maps. Stages own disjoint
// unknown sets; a key collision means two stages both claim a
// coordinate, which is a formulation bug.
func mergeSolutions(scheme string, sols ...map[string]float64) (map[string]float64, error) {
	merged := make(map[string]float64)
	for _, sol := range sols {
		for name, val := range sol {
			if _, exists := merged[name]; exists {
				return nil, &FormulationError{
					Scheme: scheme, Stage: "merge",
					Msg: "solution key " + name + " solved by more than one stage",
				}
			}
			merged[name] = val
		}
	}
	return merged, nil
}
