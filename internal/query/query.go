// Package query evaluates expr-lang expressions against parsed documents.
//
// The environment of an expression holds the top-level properties of an
// object document by name, and the whole document as "doc" for any kind of
// document:
//
//	servers[0].port == 80 && len(doc.servers) > 1
package query

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/dpotapov/go-jsode"
)

// Env builds the evaluation environment of a decoded document.
func Env(doc any) map[string]any {
	env := make(map[string]any)
	if m, ok := doc.(map[string]any); ok {
		for k, v := range m {
			env[k] = v
		}
	}
	env["doc"] = doc
	return env
}

func exprOptions(env map[string]any) []expr.Option {
	return []expr.Option{
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.DisableBuiltin("duration"),
		expr.Function("duration", durationFunction),
	}
}

// Compile compiles expression for documents shaped like doc. The program may
// be run against other documents of the same shape.
func Compile(expression string, doc any) (*vm.Program, error) {
	prog, err := expr.Compile(expression, exprOptions(Env(doc))...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expression, err)
	}
	return prog, nil
}

// Run runs a compiled program against doc.
func Run(prog *vm.Program, doc any) (any, error) {
	v, err := expr.Run(prog, Env(doc))
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return v, nil
}

// Eval decodes the value of out and evaluates expression against it.
func Eval(out jsode.Output, expression string) (any, error) {
	doc, err := out.Value()
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	prog, err := Compile(expression, doc)
	if err != nil {
		return nil, err
	}
	return Run(prog, doc)
}

// durationFunction converts a duration string such as "1m30s" to
// nanoseconds.
func durationFunction(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("duration expects 1 arg")
	}
	switch v := args[0].(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse duration: %w", err)
		}
		return int64(d), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return nil, fmt.Errorf("duration: unsupported type %T", v)
	}
}
