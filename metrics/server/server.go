package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alpacahq/gofilings/metrics"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
)

func pipelineMetricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.LastRun()
	if stats == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	json.NewEncoder(w).Encode(stats)
}

func performanceMetricsHandler(w http.ResponseWriter, r *http.Request) {
	perfMetrics, err := metrics.GetPerformanceMetrics()
	if err != nil {
		log.Error("failed to retrieve performance metrics", "error", err)
		return
	}

	json.NewEncoder(w).Encode(perfMetrics)
}

// Serve the pipeline metrics endpoint
func Serve() error {
	port := env.GetVar("FILINGS_METRICS_PORT")
	addr := ":" + port

	log.Info("start serving metrics endpoint")

	router := http.NewServeMux()
	router.HandleFunc("/metrics/pipeline", pipelineMetricsHandler)
	router.HandleFunc("/metrics/performance", performanceMetricsHandler)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	return server.ListenAndServe()
}
