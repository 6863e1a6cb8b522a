package pulley

import "fmt"

// FormulationError reports a constraint system that cannot yield the
// scheme's expected solution: an equation/unknown count that does not
// match the scheme's declared shape, a structurally inconsistent or
// geometrically unsatisfiable system, or colliding solution keys on
// merge. It signals a bug in the scheme's equations, not a runtime
// condition to recover from.
type FormulationError struct {
	Scheme string
	Stage  string
	Msg    string
	Err    error
}

func (e *FormulationError) Error() string {
	s := fmt.Sprintf("pulley: %s %s: %s", e.Scheme, e.Stage, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FormulationError) Unwrap() error { return e.Err }

// AmbiguityError reports a solve that produced a number of solution
// branches different from what the scheme's fixed selection policy
// expects. Branch indices are never applied to an unexpected count.
type AmbiguityError struct {
	Scheme string
	Stage  string
	Got    int
	Want   int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("pulley: %s %s: %d solution branches, want %d",
		e.Scheme, e.Stage, e.Got, e.Want)
}

// SubstitutionError reports a symbol left unresolved where a numeric
// value was required: a placeholder that was not substituted with its
// stage-1 result, or a parameter missing from the binding environment.
type SubstitutionError struct {
	Symbol string
}

func (e *SubstitutionError) Error() string {
	return fmt.Sprintf("pulley: symbol %q unresolved at evaluation", e.Symbol)
}
