// Package sym implements immutable symbolic expression trees for
// formulating geometric constraint systems.
//
// Expressions are built from variables, constants and a small set of
// operations (arithmetic, integer powers, square root and the circular
// functions). They support substitution, numeric evaluation against a
// variable binding environment and analytic differentiation, which is
// what a staged nonlinear solve needs: residuals stay symbolic until
// every parameter and placeholder is bound, and Jacobians are exact.
package sym

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Env binds variable names to numeric values for evaluation.
type Env map[string]float64

// Expr is an immutable symbolic expression. Operations never mutate;
// Subs and Diff return new trees.
type Expr interface {
	// Eval computes the numeric value of the expression under env.
	// Referencing a variable absent from env returns an UnboundError.
	Eval(env Env) (float64, error)
	// Subs returns the expression with every occurrence of the named
	// variable replaced by repl.
	Subs(name string, repl Expr) Expr
	// Diff returns the partial derivative with respect to the named
	// variable.
	Diff(name string) Expr
	// String renders the expression for diagnostics.
	String() string

	freeVars(set map[string]bool)
}

// UnboundError reports evaluation of a variable with no binding.
type UnboundError struct {
	Name string
}

func (e *UnboundError) Error() string {
	return "sym: unbound variable " + strconv.Quote(e.Name)
}

// Vars returns the sorted names of all variables in e.
func Vars(e Expr) []string {
	set := make(map[string]bool)
	e.freeVars(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasVar reports whether the named variable occurs in e.
func HasVar(e Expr, name string) bool {
	set := make(map[string]bool)
	e.freeVars(set)
	return set[name]
}

// Constant.

type num float64

// Num returns a constant expression.
func Num(v float64) Expr { return num(v) }

func (n num) Eval(Env) (float64, error) { return float64(n), nil }
func (n num) Subs(string, Expr) Expr    { return n }
func (n num) Diff(string) Expr          { return num(0) }
func (n num) freeVars(map[string]bool)  {}
func (n num) String() string            { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

// Variable.

type variable string

// Var returns a variable expression.
func Var(name string) Expr {
	if name == "" {
		panic("sym: empty variable name")
	}
	return variable(name)
}

func (v variable) Eval(env Env) (float64, error) {
	val, ok := env[string(v)]
	if !ok {
		return 0, &UnboundError{Name: string(v)}
	}
	return val, nil
}

func (v variable) Subs(name string, repl Expr) Expr {
	if string(v) == name {
		return repl
	}
	return v
}

func (v variable) Diff(name string) Expr {
	if string(v) == name {
		return num(1)
	}
	return num(0)
}

func (v variable) freeVars(set map[string]bool) { set[string(v)] = true }
func (v variable) String() string               { return string(v) }

// Binary operations.

type binop struct {
	op   byte // '+', '-', '*', '/'
	a, b Expr
}

// Add returns a + b.
func Add(a, b Expr) Expr { return newBinop('+', a, b) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return newBinop('-', a, b) }

// Mul returns a * b.
func Mul(a, b Expr) Expr { return newBinop('*', a, b) }

// Div returns a / b.
func Div(a, b Expr) Expr { return newBinop('/', a, b) }

// Neg returns -a.
func Neg(a Expr) Expr { return newBinop('-', num(0), a) }

func newBinop(op byte, a, b Expr) Expr {
	an, aConst := a.(num)
	bn, bConst := b.(num)
	if aConst && bConst {
		switch op {
		case '+':
			return num(float64(an) + float64(bn))
		case '-':
			return num(float64(an) - float64(bn))
		case '*':
			return num(float64(an) * float64(bn))
		case '/':
			if bn != 0 {
				return num(float64(an) / float64(bn))
			}
		}
	}
	// Identity folds keep Diff trees from snowballing.
	switch op {
	case '+':
		if aConst && an == 0 {
			return b
		}
		if bConst && bn == 0 {
			return a
		}
	case '-':
		if bConst && bn == 0 {
			return a
		}
	case '*':
		if (aConst && an == 0) || (bConst && bn == 0) {
			return num(0)
		}
		if aConst && an == 1 {
			return b
		}
		if bConst && bn == 1 {
			return a
		}
	case '/':
		// 0/0 must stay symbolic so evaluation yields NaN, same as the
		// runtime division path.
		if aConst && an == 0 && !(bConst && bn == 0) {
			return num(0)
		}
		if bConst && bn == 1 {
			return a
		}
	}
	return &binop{op: op, a: a, b: b}
}

func (e *binop) Eval(env Env) (float64, error) {
	a, err := e.a.Eval(env)
	if err != nil {
		return 0, err
	}
	b, err := e.b.Eval(env)
	if err != nil {
		return 0, err
	}
	switch e.op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	default:
		return a / b, nil // IEEE semantics; solver rejects non-finite residuals.
	}
}

func (e *binop) Subs(name string, repl Expr) Expr {
	return newBinop(e.op, e.a.Subs(name, repl), e.b.Subs(name, repl))
}

func (e *binop) Diff(name string) Expr {
	da, db := e.a.Diff(name), e.b.Diff(name)
	switch e.op {
	case '+':
		return Add(da, db)
	case '-':
		return Sub(da, db)
	case '*':
		return Add(Mul(da, e.b), Mul(e.a, db))
	default:
		// (a/b)' = (a'b - ab') / b²
		return Div(Sub(Mul(da, e.b), Mul(e.a, db)), Mul(e.b, e.b))
	}
}

func (e *binop) freeVars(set map[string]bool) {
	e.a.freeVars(set)
	e.b.freeVars(set)
}

func (e *binop) String() string {
	return fmt.Sprintf("(%s %c %s)", e.a, e.op, e.b)
}

// Integer power.

type ipow struct {
	a Expr
	n int
}

// Pow returns a raised to the integer power n.
func Pow(a Expr, n int) Expr {
	switch n {
	case 0:
		return num(1)
	case 1:
		return a
	}
	if an, ok := a.(num); ok {
		return num(math.Pow(float64(an), float64(n)))
	}
	return &ipow{a: a, n: n}
}

// Square returns a².
func Square(a Expr) Expr { return Pow(a, 2) }

func (e *ipow) Eval(env Env) (float64, error) {
	a, err := e.a.Eval(env)
	if err != nil {
		return 0, err
	}
	return math.Pow(a, float64(e.n)), nil
}

func (e *ipow) Subs(name string, repl Expr) Expr {
	return Pow(e.a.Subs(name, repl), e.n)
}

func (e *ipow) Diff(name string) Expr {
	return Mul(Mul(num(float64(e.n)), Pow(e.a, e.n-1)), e.a.Diff(name))
}

func (e *ipow) freeVars(set map[string]bool) { e.a.freeVars(set) }

func (e *ipow) String() string {
	return fmt.Sprintf("%s^%d", e.a, e.n)
}

// Unary functions.

type fn struct {
	name string // "sqrt", "sin", "cos"
	a    Expr
}

// Sqrt returns the square root of a.
func Sqrt(a Expr) Expr { return newFn("sqrt", a) }

// Sin returns the sine of a (radians).
func Sin(a Expr) Expr { return newFn("sin", a) }

// Cos returns the cosine of a (radians).
func Cos(a Expr) Expr { return newFn("cos", a) }

func newFn(name string, a Expr) Expr {
	if _, ok := a.(num); ok {
		f := &fn{name: name, a: a}
		if v, _ := f.Eval(nil); !math.IsNaN(v) {
			return num(v)
		}
	}
	return &fn{name: name, a: a}
}

func (e *fn) Eval(env Env) (float64, error) {
	a, err := e.a.Eval(env)
	if err != nil {
		return 0, err
	}
	switch e.name {
	case "sqrt":
		return math.Sqrt(a), nil // NaN outside domain; solver rejects it.
	case "sin":
		return math.Sin(a), nil
	default:
		return math.Cos(a), nil
	}
}

func (e *fn) Subs(name string, repl Expr) Expr {
	return newFn(e.name, e.a.Subs(name, repl))
}

func (e *fn) Diff(name string) Expr {
	da := e.a.Diff(name)
	switch e.name {
	case "sqrt":
		return Div(da, Mul(num(2), Sqrt(e.a)))
	case "sin":
		return Mul(Cos(e.a), da)
	default:
		return Neg(Mul(Sin(e.a), da))
	}
}

func (e *fn) freeVars(set map[string]bool) { e.a.freeVars(set) }

func (e *fn) String() string {
	return e.name + "(" + e.a.String() + ")"
}
