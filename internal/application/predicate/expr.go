// Package predicate compiles expression-language strings into the
// closures domain.Condition wraps, caching each compiled program keyed
// by its source text.
package predicate

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var (
	mu    sync.RWMutex
	cache = make(map[string]*vm.Program)
)

func compile(expression string, env map[string]any) (*vm.Program, error) {
	mu.RLock()
	program, ok := cache[expression]
	mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(expression, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("predicate: compiling %q: %w", expression, err)
	}

	mu.Lock()
	cache[expression] = program
	mu.Unlock()
	return program, nil
}

// Compile0 builds a 0-arg predicate evaluating expression against env on
// every call. Runtime evaluation errors make the predicate report false
// rather than panicking, since a condition is expected to return a bool.
func Compile0(expression string, env map[string]any) (func() bool, error) {
	program, err := compile(expression, env)
	if err != nil {
		return nil, err
	}
	return func() bool {
		out, err := expr.Run(program, env)
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}, nil
}

// Compile1 builds an indexed predicate, re-deriving the evaluation
// environment from index via envFn on every call (e.g. to embed the
// array index, or to re-read a file whose name depends on it).
func Compile1(expression string, envFn func(index int) map[string]any) (func(int) bool, error) {
	sample := envFn(0)
	program, err := compile(expression, sample)
	if err != nil {
		return nil, err
	}
	return func(index int) bool {
		out, err := expr.Run(program, envFn(index))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}, nil
}
