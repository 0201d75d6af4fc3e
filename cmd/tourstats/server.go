package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tourstats/internal/app/dashboard"
	"tourstats/internal/config"
	"tourstats/internal/http/middleware"
	"tourstats/internal/httpapi"
	"tourstats/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store) http.Handler {
	dashboardSvc := dashboard.New(dataStore)
	api := httpapi.New(dashboardSvc).Routes()

	mux := http.NewServeMux()
	mux.Handle("/", api)

	if cfg.Metrics.Path != "" {
		reg := newMetricsRegistry(dataStore)
		mux.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	return middleware.Chain(mux,
		middleware.RequestLogging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}

func newMetricsRegistry(dataStore *store.Store) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "tourstats_dataset_rows",
			Help: "Tour dates in the currently loaded dataset",
		}, func() float64 {
			if ds := dataStore.Current(); ds != nil {
				return float64(ds.Len())
			}
			return 0
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "tourstats_dataset_loaded_timestamp_seconds",
			Help: "Unix time at which the current dataset was loaded",
		}, func() float64 {
			if ds := dataStore.Current(); ds != nil {
				return float64(ds.LoadedAt().UnixNano()) / 1e9
			}
			return 0
		}),
	)
	dashboard.RegisterMetrics(reg)
	return reg
}
