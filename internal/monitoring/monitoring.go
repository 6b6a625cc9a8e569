package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nuts "github.com/vaudience/go-nuts"
)

// Poll cycle results
const (
	PollStored    = "stored"
	PollNetwork   = "network_error"
	PollParse     = "parse_error"
	PollStorage   = "storage_error"
	PollSkipped   = "skipped"
	PollLockError = "lock_error"
)

// Config holds monitoring configuration
type Config struct {
	Namespace string
}

// Service provides monitoring functionality
type Service struct {
	config   Config
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	pollCycles   *prometheus.CounterVec
	readingsSeen prometheus.Gauge
	insertsTotal *prometheus.CounterVec
}

// NewService creates a new monitoring service with its own registry
func NewService(config Config) *Service {
	if config.Namespace == "" {
		config.Namespace = "coldrelay"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Service{
		config:   config,
		registry: registry,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "events_total",
			Help:      "Domain events recorded by the relay",
		}, []string{"event"}),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "poll_cycles_total",
			Help:      "Sensor poll cycles by result",
		}, []string{"result"}),
		readingsSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "readings_listed",
			Help:      "Row count seen by the last periodic refresh",
		}),
		insertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "reading_inserts_total",
			Help:      "Reading inserts by origin and outcome",
		}, []string{"origin", "outcome"}),
	}
	registry.MustRegister(s.events, s.pollCycles, s.readingsSeen, s.insertsTotal)
	return s
}

// RecordEvent records a monitored event with labels
func (s *Service) RecordEvent(eventName string, labels map[string]string) {
	s.events.WithLabelValues(eventName).Inc()
	nuts.L.Infof("[Monitoring] Event %s recorded with labels: %v", eventName, labels)
}

// RecordPoll counts one poll cycle outcome
func (s *Service) RecordPoll(result string) {
	s.pollCycles.WithLabelValues(result).Inc()
}

// RecordInsert counts one insert attempt
func (s *Service) RecordInsert(origin string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.insertsTotal.WithLabelValues(origin, outcome).Inc()
}

// RecordListed stores the row count observed by the refresher
func (s *Service) RecordListed(count int) {
	s.readingsSeen.Set(float64(count))
}

// Registry exposes the underlying registry, mostly for tests
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Handler serves the Prometheus exposition format
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
