package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/remotelatam/jobdigest/internal/app"
	"github.com/remotelatam/jobdigest/internal/config"
	"github.com/remotelatam/jobdigest/internal/logger"
	"github.com/remotelatam/jobdigest/internal/metrics"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Init(false)
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Debug)

	if cfg.EnableMonitoring {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	if err := app.Run(context.Background(), cfg); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func startMonitoringServer(port string) {
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
