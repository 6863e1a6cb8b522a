// Package solve finds roots of nonlinear algebraic constraint systems
// formulated as sym residuals.
//
// Systems may be square or consistently overdetermined. Each seed is
// polished to a root with damped Gauss-Newton iteration; the step is the
// least-squares solution of the Jacobian system, computed with gonum/mat.
// Jacobians are analytic (sym differentiation), so non-polynomial
// residuals with square roots, quotients and trigonometric terms are
// handled without numeric differencing.
//
// Branch selection is the caller's concern: seeds are an ordered list,
// converged roots keep seed order, and duplicates fold onto the first
// occurrence. A caller expecting a fixed number of solution branches
// checks the returned count and indexes deterministically.
package solve

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/pulley/sym"
	"gonum.org/v1/gonum/mat"
)

// System is a nonlinear system of residual equations (each == 0) over an
// ordered list of unknowns, with one starting point per expected
// solution branch.
type System struct {
	Residuals []sym.Expr
	Unknowns  []string
	Seeds     [][]float64
}

// Settings bound the Gauss-Newton iteration.
type Settings struct {
	MaxIterations int     // iteration cap per seed
	Tolerance     float64 // residual infinity-norm declaring a root
	RootTolerance float64 // distance under which two roots are the same
}

// DefaultSettings returns the solver bounds used by the profile
// pipelines.
func DefaultSettings() Settings {
	return Settings{
		MaxIterations: 50,
		Tolerance:     1e-12,
		RootTolerance: 1e-8,
	}
}

// ConvergenceError reports a seed that could not be polished to a root,
// which for a well-formulated constraint system means the equations are
// inconsistent or the seed is on the wrong branch.
type ConvergenceError struct {
	Seed       int     // index of the failing seed
	Iterations int     // iterations spent
	Residual   float64 // residual infinity-norm at the last iterate
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("solve: seed %d did not converge after %d iterations (residual %g)",
		e.Seed, e.Iterations, e.Residual)
}

// Solve polishes every seed to a root and returns the distinct roots in
// seed order. Residuals must reference only the system's unknowns; a
// stray symbol (an unsubstituted placeholder or parameter) is returned
// as a sym.UnboundError.
func (sys *System) Solve(cfg Settings) ([][]float64, error) {
	m, n := len(sys.Residuals), len(sys.Unknowns)
	if m == 0 || n == 0 {
		return nil, errors.New("solve: empty system")
	}
	if m < n {
		return nil, fmt.Errorf("solve: underdetermined system: %d equations, %d unknowns", m, n)
	}
	if len(sys.Seeds) == 0 {
		return nil, errors.New("solve: no seeds")
	}
	for i, seed := range sys.Seeds {
		if len(seed) != n {
			return nil, fmt.Errorf("solve: seed %d has %d values, want %d", i, len(seed), n)
		}
	}
	if err := sys.checkSymbols(); err != nil {
		return nil, err
	}

	// Analytic Jacobian, one expression per matrix entry.
	jac := make([][]sym.Expr, m)
	for i, r := range sys.Residuals {
		jac[i] = make([]sym.Expr, n)
		for j, name := range sys.Unknowns {
			jac[i][j] = r.Diff(name)
		}
	}

	var roots [][]float64
	for i := range sys.Seeds {
		root, err := sys.polish(i, jac, cfg)
		if err != nil {
			return nil, err
		}
		if !containsRoot(roots, root, cfg.RootTolerance) {
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// checkSymbols verifies that every symbol in the residuals is a declared
// unknown and that every unknown is actually constrained.
func (sys *System) checkSymbols() error {
	known := make(map[string]bool, len(sys.Unknowns))
	for _, name := range sys.Unknowns {
		known[name] = true
	}
	used := make(map[string]bool)
	for _, r := range sys.Residuals {
		for _, name := range sym.Vars(r) {
			used[name] = true
		}
	}
	for name := range used {
		if !known[name] {
			return &sym.UnboundError{Name: name}
		}
	}
	for _, name := range sys.Unknowns {
		if !used[name] {
			return fmt.Errorf("solve: unknown %q appears in no residual", name)
		}
	}
	return nil
}

func (sys *System) polish(seed int, jac [][]sym.Expr, cfg Settings) ([]float64, error) {
	m, n := len(sys.Residuals), len(sys.Unknowns)
	x := append([]float64(nil), sys.Seeds[seed]...)
	env := make(sym.Env, n)
	r := make([]float64, m)

	norm, err := sys.residuals(x, env, r)
	if err != nil {
		return nil, err
	}
	if !isFinite(norm) {
		return nil, &ConvergenceError{Seed: seed, Residual: norm}
	}

	jd := mat.NewDense(m, n, nil)
	rhs := mat.NewVecDense(m, nil)
	xNew := make([]float64, n)
	rNew := make([]float64, m)
	for it := 0; it < cfg.MaxIterations; it++ {
		if norm <= cfg.Tolerance {
			return x, nil
		}
		for i := 0; i < m; i++ {
			rhs.SetVec(i, -r[i])
			for j := 0; j < n; j++ {
				v, err := jac[i][j].Eval(env)
				if err != nil {
					return nil, err
				}
				jd.Set(i, j, v)
			}
		}
		var dx mat.VecDense
		if err := dx.SolveVec(jd, rhs); err != nil {
			return nil, fmt.Errorf("solve: seed %d: singular Jacobian: %w", seed, err)
		}
		// Step halving until the residual actually shrinks.
		improved := false
		alpha := 1.0
		for half := 0; half < 30; half++ {
			for j := 0; j < n; j++ {
				xNew[j] = x[j] + alpha*dx.AtVec(j)
			}
			newNorm, err := sys.residuals(xNew, env, rNew)
			if err != nil {
				return nil, err
			}
			if isFinite(newNorm) && newNorm < norm {
				copy(x, xNew)
				copy(r, rNew)
				norm = newNorm
				improved = true
				break
			}
			alpha /= 2
		}
		if !improved {
			return nil, &ConvergenceError{Seed: seed, Iterations: it + 1, Residual: norm}
		}
		// env may be bound to a rejected trial iterate; rebind to x for
		// the next Jacobian evaluation.
		for j, name := range sys.Unknowns {
			env[name] = x[j]
		}
	}
	if norm <= cfg.Tolerance {
		return x, nil
	}
	return nil, &ConvergenceError{Seed: seed, Iterations: cfg.MaxIterations, Residual: norm}
}

// residuals evaluates the residual vector at x into r, reusing env, and
// returns the infinity norm.
func (sys *System) residuals(x []float64, env sym.Env, r []float64) (float64, error) {
	for j, name := range sys.Unknowns {
		env[name] = x[j]
	}
	norm := 0.0
	for i, res := range sys.Residuals {
		v, err := res.Eval(env)
		if err != nil {
			return 0, err
		}
		r[i] = v
		if a := math.Abs(v); a > norm || math.IsNaN(a) {
			norm = a
		}
	}
	return norm, nil
}

func containsRoot(roots [][]float64, cand []float64, tol float64) bool {
	for _, root := range roots {
		same := true
		for j := range root {
			if math.Abs(root[j]-cand[j]) > tol {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
