package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func provide() *Metrics {
	return New(prometheus.DefaultRegisterer)
}

var Module = fx.Module("metrics",
	fx.Provide(provide),
)
