package xpcache

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aqilarik/xpcache/internal/engine"
	"github.com/aqilarik/xpcache/internal/eval"
)

// ResultType selects the conversion applied to an evaluation result.
type ResultType = engine.ResultType

const (
	ResultAny     = engine.ResultAny
	ResultString  = engine.ResultString
	ResultNumber  = engine.ResultNumber
	ResultBoolean = engine.ResultBoolean
	ResultNode    = engine.ResultNode
	ResultNodeSet = engine.ResultNodeSet
)

// Engine, Expression and the resolver callbacks are the engine contract.
// Any implementation can be plugged in with WithEngine.
type (
	Engine           = engine.Engine
	Expression       = engine.Expression
	VariableResolver = engine.VariableResolver
	FunctionResolver = engine.FunctionResolver
	NamespaceContext = engine.NamespaceContext
	Function         = engine.Function
	VariableFunc     = engine.VariableFunc
	FunctionMap      = engine.FunctionMap
)

// Cache compiles each distinct expression text at most once and evaluates
// the cached result.
//
// Compilation goes through a single lock per Cache because engines are not
// safe for concurrent use. Evaluation locks only the compiled expression
// being evaluated, so different expressions run in parallel while
// concurrent evaluations of the same expression are serialized. The cache
// is meant for a bounded vocabulary of expressions reused many times:
// entries are never evicted.
type Cache struct {
	engine Engine
	table  *eval.Table
	logger *slog.Logger

	// engine settings from options, applied once the engine is chosen
	pending []func(Engine)
}

// New creates a cache. Without options it uses the XPath engine.
func New(opts ...Option) *Cache {
	c := &Cache{
		table:  eval.NewTable(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o.apply(c)
	}
	if c.engine == nil {
		c.engine = newXPathEngine()
	}
	for _, fn := range c.pending {
		fn(c.engine)
	}
	c.pending = nil
	return c
}

func (c *Cache) SetVariableResolver(r VariableResolver) {
	c.table.Locked(func() { c.engine.SetVariableResolver(r) })
}

func (c *Cache) VariableResolver() (r VariableResolver) {
	c.table.Locked(func() { r = c.engine.VariableResolver() })
	return r
}

func (c *Cache) SetFunctionResolver(r FunctionResolver) {
	c.table.Locked(func() { c.engine.SetFunctionResolver(r) })
}

func (c *Cache) FunctionResolver() (r FunctionResolver) {
	c.table.Locked(func() { r = c.engine.FunctionResolver() })
	return r
}

// SetNamespaceContext installs the namespace context used by later
// compilations. Expressions already cached keep their bindings.
func (c *Cache) SetNamespaceContext(ns NamespaceContext) {
	c.table.Locked(func() { c.engine.SetNamespaceContext(ns) })
}

func (c *Cache) NamespaceContext() (ns NamespaceContext) {
	c.table.Locked(func() { ns = c.engine.NamespaceContext() })
	return ns
}

// Reset clears the engine's parser state. Resolvers stay attached and
// cached expressions are kept.
func (c *Cache) Reset() {
	c.table.Locked(c.engine.Reset)
}

// Compile compiles text without consulting or filling the cache.
func (c *Cache) Compile(text string) (Expression, error) {
	x, err := c.table.Compile(c.engine, text)
	if err != nil {
		compilations.WithLabelValues("error").Inc()
		return nil, &CompilationError{Expr: text, Err: err}
	}
	compilations.WithLabelValues("ok").Inc()
	return x, nil
}

// Evaluate evaluates text against a context item (for the XPath engine a
// *xmlquery.Node or xpath.NodeNavigator).
func (c *Cache) Evaluate(text string, item any, rt ResultType) (any, error) {
	e, err := c.entry(text)
	if err != nil {
		return nil, err
	}
	v, err := e.Evaluate(item, rt)
	return c.evaluated(text, v, err)
}

// EvaluateString evaluates text against a context item as a string.
func (c *Cache) EvaluateString(text string, item any) (string, error) {
	v, err := c.Evaluate(text, item, ResultString)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

// EvaluateSource parses src and evaluates text against it.
func (c *Cache) EvaluateSource(text string, src io.Reader, rt ResultType) (any, error) {
	e, err := c.entry(text)
	if err != nil {
		return nil, err
	}
	v, err := e.EvaluateSource(src, rt)
	return c.evaluated(text, v, err)
}

// EvaluateSourceString parses src and evaluates text against it as a string.
func (c *Cache) EvaluateSourceString(text string, src io.Reader) (string, error) {
	v, err := c.EvaluateSource(text, src, ResultString)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

// Len is the number of compiled expressions held by the cache.
func (c *Cache) Len() int { return c.table.Len() }

func (c *Cache) entry(text string) (*eval.Entry, error) {
	e, outcome, err := c.table.GetOrCompile(c.engine, text)
	switch outcome {
	case eval.Hit:
		lookups.WithLabelValues("hit").Inc()
		return e, nil
	case eval.Compiled:
		lookups.WithLabelValues("miss").Inc()
		if err != nil {
			compilations.WithLabelValues("error").Inc()
			c.logger.Debug("expression rejected",
				slog.String("fingerprint", Fingerprint(text)),
				slog.String("error", err.Error()))
		} else {
			compilations.WithLabelValues("ok").Inc()
			c.logger.Debug("expression compiled",
				slog.String("fingerprint", Fingerprint(text)),
				slog.Int("cached", c.table.Len()))
		}
	default:
		lookups.WithLabelValues("shared").Inc()
	}
	if err != nil {
		return nil, &CompilationError{Expr: text, Err: err}
	}
	return e, nil
}

func (c *Cache) evaluated(text string, v any, err error) (any, error) {
	if err != nil {
		evaluations.WithLabelValues("error").Inc()
		var ee *EvaluationError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, &EvaluationError{Expr: text, Err: err}
	}
	evaluations.WithLabelValues("ok").Inc()
	return v, nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
