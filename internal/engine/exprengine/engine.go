// Package exprengine implements engine.Engine on top of expr-lang.
//
// Context items are map[string]any environments; textual sources are JSON
// objects decoded into such an environment. Free identifiers missing from the
// environment are looked up through the VariableResolver captured at compile
// time, and user function calls are bound through the FunctionResolver.
package exprengine

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	"github.com/aqilarik/xpcache/internal/engine"
)

type Engine struct {
	engine.Resolvers

	col collector
}

var _ engine.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{col: collector{seen: make(map[string]struct{}, 16)}}
}

func (e *Engine) Reset() { e.col.reset() }

func (e *Engine) Compile(text string) (engine.Expression, error) {
	tree, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}

	e.col.reset()
	e.col.walk(tree.Node)

	var opts []expr.Option
	if fr := e.FunctionResolver(); fr != nil {
		bound := make(map[string]struct{}, len(e.col.calls))
		for _, c := range e.col.calls {
			if _, ok := bound[c.name]; ok {
				continue
			}
			fn, ok := fr.ResolveFunction(c.name, c.arity)
			if !ok {
				continue
			}
			bound[c.name] = struct{}{}
			opts = append(opts, expr.Function(c.name, (func(...any) (any, error))(fn)))
		}
	}

	program, err := expr.Compile(text, opts...)
	if err != nil {
		return nil, err
	}
	return &Expression{
		program:   program,
		idents:    append([]string(nil), e.col.idents...),
		variables: e.VariableResolver(),
	}, nil
}

// Expression wraps a compiled program. Programs are safe to run
// concurrently; the environment is rebuilt on every evaluation.
type Expression struct {
	program   *vm.Program
	idents    []string
	variables engine.VariableResolver
}

func (x *Expression) Evaluate(item any, rt engine.ResultType) (any, error) {
	var env map[string]any
	switch v := item.(type) {
	case nil:
		env = make(map[string]any, len(x.idents))
	case map[string]any:
		env = maps.Clone(v)
		if env == nil {
			env = make(map[string]any, len(x.idents))
		}
	default:
		return nil, fmt.Errorf("%w: %T", engine.ErrUnsupportedContext, item)
	}
	return x.run(env, rt)
}

func (x *Expression) EvaluateSource(src io.Reader, rt engine.ResultType) (any, error) {
	env := make(map[string]any, len(x.idents))
	if err := json.NewDecoder(src).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMalformedSource, err)
	}
	return x.run(env, rt)
}

func (x *Expression) run(env map[string]any, rt engine.ResultType) (any, error) {
	if x.variables != nil {
		for _, name := range x.idents {
			if _, ok := env[name]; ok {
				continue
			}
			if v, ok := x.variables.ResolveVariable(name); ok {
				env[name] = v
			}
		}
	}
	out, err := expr.Run(x.program, env)
	if err != nil {
		return nil, err
	}
	return convert(out, rt)
}

func convert(v any, rt engine.ResultType) (any, error) {
	switch rt {
	case engine.ResultAny:
		return v, nil
	case engine.ResultString:
		if v == nil {
			return "", nil
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	case engine.ResultNumber:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		return nil, fmt.Errorf("%w: %T is not a number", engine.ErrTypeMismatch, v)
	case engine.ResultBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %T is not a boolean", engine.ErrTypeMismatch, v)
	default:
		return nil, fmt.Errorf("%w: %v", engine.ErrUnsupportedResult, rt)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
