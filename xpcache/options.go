package xpcache

import (
	"log/slog"

	"github.com/aqilarik/xpcache/internal/engine/exprengine"
	"github.com/aqilarik/xpcache/internal/engine/xpathengine"
)

type Option interface{ apply(*Cache) }

type optFunc func(*Cache)

func (f optFunc) apply(c *Cache) { f(c) }

// WithEngine plugs in a custom engine. The cache takes ownership: the engine
// must not be used elsewhere afterwards.
func WithEngine(e Engine) Option { return optFunc(func(c *Cache) { c.engine = e }) }

// WithXPath selects the XPath 1.0 engine (the default).
func WithXPath() Option { return optFunc(func(c *Cache) { c.engine = newXPathEngine() }) }

// WithExpr selects the expr-lang engine.
func WithExpr() Option { return optFunc(func(c *Cache) { c.engine = exprengine.New() }) }

// WithLogger sets the logger used for compile events.
func WithLogger(l *slog.Logger) Option {
	return optFunc(func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithNamespaceContext installs a namespace context before any compilation.
// It is applied to whichever engine is selected, regardless of option order.
func WithNamespaceContext(ns NamespaceContext) Option {
	return optFunc(func(c *Cache) { c.pending = append(c.pending, func(e Engine) { e.SetNamespaceContext(ns) }) })
}

func newXPathEngine() Engine { return xpathengine.New() }
