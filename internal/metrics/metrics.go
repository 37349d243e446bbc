package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ArchiveUploads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetlens_archive_uploads_total",
		Help: "Total archive uploads received",
	})
	ArchiveParseFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetlens_archive_parse_failures_total",
		Help: "Total uploads rejected as malformed archives",
	})
	ScrapeRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetlens_scrape_requests_total",
		Help: "Total username scrape requests",
	})
	ProcessingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "tweetlens_processing_duration_seconds",
		Help:    "Aggregation pipeline duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	LLMCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetlens_llm_calls_total",
		Help: "Total LLM completion calls",
	}, []string{"provider"})
	PaidSessions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetlens_paid_sessions_total",
		Help: "Total sessions marked paid via webhook",
	})
)

func init() {
	prometheus.MustRegister(ArchiveUploads, ArchiveParseFailures, ScrapeRequests, ProcessingDuration, LLMCalls, PaidSessions)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveProcessing records one pipeline run duration.
func ObserveProcessing(start time.Time) {
	ProcessingDuration.Observe(time.Since(start).Seconds())
}

// IncLLMCall increments the completion counter for a provider.
func IncLLMCall(provider string) { LLMCalls.WithLabelValues(provider).Inc() }
