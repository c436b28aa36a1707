package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	turnLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_turn_latency_ms",
		Help:    "Latency of one orchestrated turn in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 15000},
	}, []string{"intent"})

	turnsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_turns_total",
		Help: "Orchestrated turns by intent and outcome",
	}, []string{"intent", "outcome"})

	toolInvocations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_tool_invocations_total",
		Help: "Patient lookup tool invocations by outcome",
	}, []string{"outcome"})

	llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_llm_request_latency_ms",
		Help:    "Latency of chat completion calls in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
	}, []string{"provider", "outcome"})

	registryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_registry_fetch_latency_ms",
		Help:    "Latency of patient registry fetches in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"outcome"})

	registryResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_registry_fetch_results",
		Help:    "Number of patient records returned by a registry fetch",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	promptTokens = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assistant_prompt_tokens",
		Help:    "Estimated prompt size in tokens per chat completion",
		Buckets: []float64{256, 512, 1024, 2048, 3072, 4096, 6144, 8192},
	})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "assistant_active_sessions",
		Help: "Sessions currently held by the session store",
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(turnLatency, turnsTotal, toolInvocations, llmLatency, registryLatency, registryResults, promptTokens, activeSessions)
	})
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// ObserveTurn records latency and outcome for one orchestrated turn.
func ObserveTurn(intent string, start time.Time, ok bool) {
	ensureRegistered()
	dur := time.Since(start).Milliseconds()
	turnLatency.WithLabelValues(intent).Observe(float64(dur))
	turnsTotal.WithLabelValues(intent, outcome(ok)).Inc()
}

// ObserveToolInvocation counts one patient lookup by outcome.
func ObserveToolInvocation(ok bool) {
	ensureRegistered()
	toolInvocations.WithLabelValues(outcome(ok)).Inc()
}

// ObserveLLMRequest records latency and outcome for one chat completion call.
func ObserveLLMRequest(provider string, start time.Time, ok bool) {
	ensureRegistered()
	dur := time.Since(start).Milliseconds()
	llmLatency.WithLabelValues(provider, outcome(ok)).Observe(float64(dur))
}

// ObserveRegistryFetch records latency and result size for a registry fetch.
func ObserveRegistryFetch(start time.Time, results int, ok bool) {
	ensureRegistered()
	dur := time.Since(start).Milliseconds()
	registryLatency.WithLabelValues(outcome(ok)).Observe(float64(dur))
	if ok {
		registryResults.Observe(float64(results))
	}
}

// ObservePromptTokens records the estimated token size of one prompt.
func ObservePromptTokens(n int) {
	ensureRegistered()
	if n > 0 {
		promptTokens.Observe(float64(n))
	}
}

// SetActiveSessions publishes the session store's current size.
func SetActiveSessions(n int) {
	ensureRegistered()
	activeSessions.Set(float64(n))
}

// Collectors exposes all collectors for external registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		turnLatency, turnsTotal, toolInvocations, llmLatency, registryLatency, registryResults, promptTokens, activeSessions,
	}
}
