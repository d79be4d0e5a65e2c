package flowkit

import (
	"github.com/flowkit/flowkit/internal/application/predicate"
	"github.com/flowkit/flowkit/internal/domain"
)

// Expr builds a 0-arg Condition from an expr-lang expression, evaluated
// against env on each call. It's an alternative to writing the closure
// by hand for a precondition or postcondition that's naturally a short
// boolean expression over run parameters, e.g. Expr("retries < 3", map[string]any{"retries": n}).
func Expr(expression string, env map[string]any) (domain.Condition, error) {
	fn, err := predicate.Compile0(expression, env)
	if err != nil {
		return domain.Condition{}, err
	}
	return domain.Cond0(fn), nil
}

// ExprAt builds an indexed Condition for an array job, re-deriving the
// evaluation environment from the array index via envFn.
func ExprAt(expression string, envFn func(index int) map[string]any) (domain.Condition, error) {
	fn, err := predicate.Compile1(expression, envFn)
	if err != nil {
		return domain.Condition{}, err
	}
	return domain.Cond1(fn), nil
}
