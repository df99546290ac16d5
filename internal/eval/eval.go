package eval

import (
	"io"
	"sync"

	"github.com/aqilarik/xpcache/internal/engine"
)

// Entry is a cached expression with its own evaluation lock.
type Entry struct {
	mu   sync.Mutex
	expr engine.Expression
}

func (e *Entry) Expression() engine.Expression { return e.expr }

// Evaluate runs the expression against a context item. Evaluations of the
// same entry are serialized.
func (e *Entry) Evaluate(item any, rt engine.ResultType) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expr.Evaluate(item, rt)
}

// EvaluateSource runs the expression against a textual source.
func (e *Entry) EvaluateSource(src io.Reader, rt engine.ResultType) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expr.EvaluateSource(src, rt)
}
