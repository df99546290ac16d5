// Package engine defines the contract between the expression cache and a
// concrete query engine.
package engine

import (
	"errors"
	"fmt"
	"io"
	"iter"
)

// ResultType selects how an evaluation result is converted before it is
// returned to the caller.
type ResultType uint8

const (
	ResultAny ResultType = iota
	ResultString
	ResultNumber
	ResultBoolean
	ResultNode
	ResultNodeSet
)

var resultTypeNames = [...]string{"any", "string", "number", "boolean", "node", "nodeset"}

func (rt ResultType) String() string {
	if int(rt) >= len(resultTypeNames) {
		return fmt.Sprintf("ResultType(%d)", rt)
	}
	return resultTypeNames[rt]
}

var (
	// ErrTypeMismatch reports a result that cannot be converted to the requested type.
	ErrTypeMismatch = errors.New("result type mismatch")
	// ErrUnsupportedResult reports a result type the engine never produces.
	ErrUnsupportedResult = errors.New("unsupported result type")
	// ErrUnsupportedContext reports a context item the engine cannot evaluate against.
	ErrUnsupportedContext = errors.New("unsupported context item")
	// ErrMalformedSource reports a textual source that could not be parsed.
	ErrMalformedSource = errors.New("malformed source")
)

// Expression is a compiled, reusable handle. Implementations need not be
// safe for concurrent evaluation; callers serialize access per expression.
type Expression interface {
	Evaluate(item any, rt ResultType) (any, error)
	EvaluateSource(src io.Reader, rt ResultType) (any, error)
}

// Engine compiles expression text. Implementations are not safe for
// concurrent use.
type Engine interface {
	Compile(text string) (Expression, error)
	// Reset clears parser-internal state. Configured resolvers stay attached.
	Reset()

	SetVariableResolver(VariableResolver)
	VariableResolver() VariableResolver
	SetFunctionResolver(FunctionResolver)
	FunctionResolver() FunctionResolver
	SetNamespaceContext(NamespaceContext)
	NamespaceContext() NamespaceContext
}

// VariableResolver supplies values for free variables at evaluation time.
type VariableResolver interface {
	ResolveVariable(name string) (any, bool)
}

// Function is a user function callable from an expression.
type Function func(args ...any) (any, error)

// FunctionResolver supplies user functions at compile time.
type FunctionResolver interface {
	ResolveFunction(name string, arity int) (Function, bool)
}

// NamespaceContext maps namespace prefixes to URIs and back.
type NamespaceContext interface {
	NamespaceURI(prefix string) (string, bool)
	Prefix(uri string) (string, bool)
	Prefixes(uri string) iter.Seq[string]
}

// Resolvers holds the resolver callbacks of an engine. Engines embed it to
// satisfy the setter/getter half of Engine.
type Resolvers struct {
	variables  VariableResolver
	functions  FunctionResolver
	namespaces NamespaceContext
}

func (r *Resolvers) SetVariableResolver(v VariableResolver) { r.variables = v }
func (r *Resolvers) VariableResolver() VariableResolver     { return r.variables }
func (r *Resolvers) SetFunctionResolver(f FunctionResolver) { r.functions = f }
func (r *Resolvers) FunctionResolver() FunctionResolver     { return r.functions }
func (r *Resolvers) SetNamespaceContext(n NamespaceContext) { r.namespaces = n }
func (r *Resolvers) NamespaceContext() NamespaceContext     { return r.namespaces }

// VariableFunc adapts a plain function to VariableResolver.
type VariableFunc func(name string) (any, bool)

func (f VariableFunc) ResolveVariable(name string) (any, bool) { return f(name) }

// FunctionMap resolves functions by name regardless of arity.
type FunctionMap map[string]Function

func (m FunctionMap) ResolveFunction(name string, _ int) (Function, bool) {
	fn, ok := m[name]
	return fn, ok
}
