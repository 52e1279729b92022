package panel

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var snapshotRefreshes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "unideck_panel_refreshes_total",
	Help: "Number of times the unified library snapshot was rebuilt.",
})
