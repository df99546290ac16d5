// Package xpathengine implements engine.Engine with XPath 1.0 over
// xmlquery documents.
//
// The underlying compiler has no hooks for variables or extension functions:
// resolvers set on the engine are kept and returned by the getters but do not
// take part in evaluation, and expressions referencing $variables are
// rejected at compile time. Namespace prefixes are resolved through the
// configured NamespaceContext when the expression is compiled.
package xpathengine

import (
	"fmt"
	"io"
	"maps"
	"regexp"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/aqilarik/xpcache/internal/engine"
)

// qnamePrefix matches the prefix of a prefixed name test. Axis separators
// ("::") are excluded because the character after the colon must start a
// local name or be a wildcard.
var qnamePrefix = regexp.MustCompile(`(?:^|[^\w.-])([A-Za-z_][\w.-]*):[A-Za-z_*]`)

type Engine struct {
	engine.Resolvers

	// bindings collected for the expression being compiled
	scratch map[string]string
}

var _ engine.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{scratch: make(map[string]string, 8)}
}

func (e *Engine) Reset() { clear(e.scratch) }

func (e *Engine) Compile(text string) (x engine.Expression, err error) {
	defer func() {
		if r := recover(); r != nil {
			x, err = nil, fmt.Errorf("xpath: %v", r)
		}
	}()

	clear(e.scratch)
	e.collectBindings(text)

	var compiled *xpath.Expr
	if len(e.scratch) == 0 {
		compiled, err = xpath.Compile(text)
	} else {
		compiled, err = xpath.CompileWithNS(text, maps.Clone(e.scratch))
	}
	if err != nil {
		return nil, err
	}
	return &Expression{expr: compiled}, nil
}

func (e *Engine) collectBindings(text string) {
	ns := e.NamespaceContext()
	if ns == nil {
		return
	}
	for _, m := range qnamePrefix.FindAllStringSubmatch(text, -1) {
		prefix := m[1]
		if _, seen := e.scratch[prefix]; seen {
			continue
		}
		if uri, ok := ns.NamespaceURI(prefix); ok {
			e.scratch[prefix] = uri
		}
	}
}

// Expression is a compiled XPath expression. Evaluation mutates the
// compiled query state, so callers must not evaluate one Expression from
// several goroutines at once.
type Expression struct {
	expr *xpath.Expr
}

func (x *Expression) String() string { return x.expr.String() }

// Evaluate accepts a *xmlquery.Node or any xpath.NodeNavigator as context item.
func (x *Expression) Evaluate(item any, rt engine.ResultType) (any, error) {
	nav, err := navigator(item)
	if err != nil {
		return nil, err
	}
	return x.eval(nav, rt)
}

func (x *Expression) EvaluateSource(src io.Reader, rt engine.ResultType) (any, error) {
	doc, err := xmlquery.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrMalformedSource, err)
	}
	return x.eval(xmlquery.CreateXPathNavigator(doc), rt)
}

func (x *Expression) eval(nav xpath.NodeNavigator, rt engine.ResultType) (res any, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("xpath: %v", r)
		}
	}()
	return convert(x.expr.Evaluate(nav), rt)
}

func navigator(item any) (xpath.NodeNavigator, error) {
	switch v := item.(type) {
	case *xmlquery.Node:
		if v == nil {
			return nil, fmt.Errorf("%w: nil node", engine.ErrUnsupportedContext)
		}
		return xmlquery.CreateXPathNavigator(v), nil
	case xpath.NodeNavigator:
		return v.Copy(), nil
	default:
		return nil, fmt.Errorf("%w: %T", engine.ErrUnsupportedContext, item)
	}
}
