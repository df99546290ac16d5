package namespace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "namespace_reloads_total",
	Help: "Namespace table reload attempts by outcome",
}, []string{"outcome"})
