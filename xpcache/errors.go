package xpcache

import (
	"fmt"

	"github.com/aqilarik/xpcache/internal/engine"
)

// Sentinel causes carried by EvaluationError.
var (
	ErrTypeMismatch       = engine.ErrTypeMismatch
	ErrUnsupportedResult  = engine.ErrUnsupportedResult
	ErrUnsupportedContext = engine.ErrUnsupportedContext
	ErrMalformedSource    = engine.ErrMalformedSource
)

// CompilationError reports an expression the engine rejected.
type CompilationError struct {
	Expr string
	Err  error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Expr, e.Err)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// EvaluationError reports a failed evaluation of a compiled expression.
type EvaluationError struct {
	Expr string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
