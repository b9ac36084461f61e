// Package main provides a minimal HTTP server exposing debug endpoints.
package main

import (
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // register /debug/pprof
	"os"

	"github.com/joho/godotenv"

	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

func main() {
	_ = godotenv.Load()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "UCM server is running. See /healthz, /metrics, /debug/vars, /debug/pprof/")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "ok")
	})

	// Prometheus-compatible metrics endpoint (no external deps)
	mux.HandleFunc("/metrics", promMetricsHandler)
	mux.Handle("/debug/vars", expvar.Handler())

	addr := ":8080"
	if v := os.Getenv("UCM_ADDR"); v != "" {
		addr = v
	}
	log.Printf("Starting UCM server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// promMetricsHandler renders the published expvar counters in Prometheus
// text exposition format. All UCM metrics are scalar counters.
func promMetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	for _, name := range metrics.Names() {
		v := expvar.Get(name)
		iv, ok := v.(*expvar.Int)
		if !ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "# TYPE %s counter\n", name)
		_, _ = fmt.Fprintf(w, "%s %s\n", name, iv.String())
	}
}
