package xpcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xpcache_lookups_total",
		Help: "Expression lookups by result (hit, miss, shared)",
	}, []string{"result"})

	compilations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xpcache_compilations_total",
		Help: "Engine compilations by outcome",
	}, []string{"outcome"})

	evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "xpcache_evaluations_total",
		Help: "Expression evaluations by outcome",
	}, []string{"outcome"})
)
