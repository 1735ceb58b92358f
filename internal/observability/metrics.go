package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce      sync.Once
	apiRequestsTotal  *prometheus.CounterVec
	apiLatencySeconds *prometheus.HistogramVec
	apiErrorsTotal    *prometheus.CounterVec
	analysesTotal     *prometheus.CounterVec
	observationSaves  *prometheus.CounterVec
	weatherLookups    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudlab_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cloudlab_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudlab_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudlab_analyses_total",
			Help: "Photograph analyses by provenance and outcome.",
		}, []string{"provenance", "outcome"})

		observationSaves = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudlab_observation_saves_total",
			Help: "Observation save attempts by result.",
		}, []string{"result"})

		weatherLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudlab_weather_lookups_total",
			Help: "Weather lookups by source.",
		}, []string{"source"})

		prometheus.MustRegister(apiRequestsTotal, apiLatencySeconds, apiErrorsTotal, analysesTotal, observationSaves, weatherLookups)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Analyses exposes the counter of analysis outcomes.
func Analyses() *prometheus.CounterVec {
	RegisterMetrics()
	return analysesTotal
}

// ObservationSaves exposes the counter of observation saves.
func ObservationSaves() *prometheus.CounterVec {
	RegisterMetrics()
	return observationSaves
}

// WeatherLookups exposes the counter of weather lookups, labelled cache or provider.
func WeatherLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return weatherLookups
}
