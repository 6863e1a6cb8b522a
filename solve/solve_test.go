package solve

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/pulley/sym"
)

// circleLine is x²+y²-4 = 0, x-y = 0: roots at ±(√2, √2).
func circleLine(seeds ...[]float64) *System {
	return &System{
		Residuals: []sym.Expr{
			sym.Sub(sym.Add(sym.Square(sym.Var("x")), sym.Square(sym.Var("y"))), sym.Num(4)),
			sym.Sub(sym.Var("x"), sym.Var("y")),
		},
		Unknowns: []string{"x", "y"},
		Seeds:    seeds,
	}
}

func TestSolveBranches(t *testing.T) {
	sys := circleLine([]float64{1, 1}, []float64{-1, -1})
	roots, err := sys.Solve(DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(roots))
	}
	r := math.Sqrt2
	want := [][]float64{{r, r}, {-r, -r}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(roots[i][j]-want[i][j]) > 1e-10 {
				t.Fatalf("root %d = %v, want %v", i, roots[i], want[i])
			}
		}
	}
}

func TestSolveFoldsDuplicateRoots(t *testing.T) {
	// Both seeds sit in the same basin; the second root folds away.
	sys := circleLine([]float64{1, 1}, []float64{2, 1.5})
	roots, err := sys.Solve(DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
}

func TestSolveOverdetermined(t *testing.T) {
	// Consistent 3-equation system over 2 unknowns.
	sys := circleLine([]float64{1, 1})
	sys.Residuals = append(sys.Residuals,
		sym.Sub(sym.Add(sym.Var("x"), sym.Var("y")), sym.Num(2*math.Sqrt2)))
	roots, err := sys.Solve(DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	if math.Abs(roots[0][0]-math.Sqrt2) > 1e-10 {
		t.Fatalf("x = %v, want %v", roots[0][0], math.Sqrt2)
	}
}

func TestSolveInconsistent(t *testing.T) {
	// x = 1 and x = 2 cannot both hold; least squares stalls at x = 1.5.
	sys := &System{
		Residuals: []sym.Expr{
			sym.Sub(sym.Var("x"), sym.Num(1)),
			sym.Sub(sym.Var("x"), sym.Num(2)),
		},
		Unknowns: []string{"x"},
		Seeds:    [][]float64{{0}},
	}
	_, err := sys.Solve(DefaultSettings())
	var conv *ConvergenceError
	if !errors.As(err, &conv) {
		t.Fatalf("want ConvergenceError, got %v", err)
	}
}

func TestSolveUnboundSymbol(t *testing.T) {
	// Residual references L, which is not an unknown: the caller forgot
	// a substitution.
	sys := &System{
		Residuals: []sym.Expr{sym.Sub(sym.Var("x"), sym.Var("L"))},
		Unknowns:  []string{"x"},
		Seeds:     [][]float64{{0}},
	}
	_, err := sys.Solve(DefaultSettings())
	var ub *sym.UnboundError
	if !errors.As(err, &ub) {
		t.Fatalf("want UnboundError, got %v", err)
	}
	if ub.Name != "L" {
		t.Fatalf("unbound symbol = %q, want %q", ub.Name, "L")
	}
}

func TestSolveShapeChecks(t *testing.T) {
	base := circleLine([]float64{1, 1})
	for name, mutate := range map[string]func(*System){
		"empty":           func(s *System) { s.Residuals = nil },
		"underdetermined": func(s *System) { s.Residuals = s.Residuals[:1] },
		"no seeds":        func(s *System) { s.Seeds = nil },
		"short seed":      func(s *System) { s.Seeds = [][]float64{{1}} },
		"unused unknown":  func(s *System) { s.Unknowns = []string{"x", "z"} },
	} {
		sys := *base
		mutate(&sys)
		if _, err := sys.Solve(DefaultSettings()); err == nil {
			t.Fatalf("%s: want error, got none", name)
		}
	}
}

func TestSolveDeterministic(t *testing.T) {
	sys := circleLine([]float64{1.3, 0.9}, []float64{-1.1, -0.8})
	a, err := sys.Solve(DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	b, err := sys.Solve(DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("run mismatch at root %d[%d]: %v != %v", i, j, a[i][j], b[i][j])
			}
		}
	}
}
