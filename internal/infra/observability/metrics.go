package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"

	"github.com/boddenberg/beautypro-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the salon back office.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration     *prometheus.HistogramVec
	appointmentsCreated *prometheus.CounterVec
	statusTransitions   *prometheus.CounterVec
	ledgerPostings      *prometheus.CounterVec
	incomePosted        prometheus.Counter
	messagesSent        *prometheus.CounterVec
	externalErrors      *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "beautypro_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		appointmentsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_appointments_created_total",
				Help: "Appointments created, by channel.",
			},
			[]string{"channel"},
		),
		statusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_status_transitions_total",
				Help: "Appointment status changes, by target status.",
			},
			[]string{"status"},
		),
		ledgerPostings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_ledger_postings_total",
				Help: "Completion postings, by outcome.",
			},
			[]string{"outcome"},
		),
		incomePosted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "beautypro_income_posted_brl_total",
				Help: "Sum of service income posted by completions.",
			},
		),
		messagesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_messages_sent_total",
				Help: "WhatsApp messages sent, by campaign.",
			},
			[]string{"campaign"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "beautypro_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// The recorders below are no-ops on a nil *Metrics.

// RecordRequestDuration records the duration of an HTTP route.
func (m *Metrics) RecordRequestDuration(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// IncrAppointmentCreated counts a new appointment (admin or booking).
func (m *Metrics) IncrAppointmentCreated(channel string) {
	if m == nil {
		return
	}
	m.appointmentsCreated.WithLabelValues(channel).Inc()
}

// IncrStatusTransition counts a status change to the given status.
func (m *Metrics) IncrStatusTransition(to domain.AppointmentStatus) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(string(to)).Inc()
}

// RecordPosting counts a completion outcome and, when posted, its value.
func (m *Metrics) RecordPosting(outcome domain.PostingOutcome, value decimal.Decimal) {
	if m == nil {
		return
	}
	m.ledgerPostings.WithLabelValues(string(outcome)).Inc()
	if outcome == domain.OutcomePosted {
		m.incomePosted.Add(value.InexactFloat64())
	}
}

// IncrMessageSent counts a delivered WhatsApp message.
func (m *Metrics) IncrMessageSent(campaign string) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(campaign).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	if m == nil {
		return
	}
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetLedgerSnapshot returns the ledger counters for GET /v1/metrics/ledger.
func (m *Metrics) GetLedgerSnapshot() *domain.LedgerMetrics {
	transitions := make(map[string]int64, len(domain.AllStatuses))
	for _, st := range domain.AllStatuses {
		transitions[string(st)] = int64(getCounterValue(m.statusTransitions, string(st)))
	}

	postings := make(map[string]int64, 3)
	for _, o := range []domain.PostingOutcome{domain.OutcomePosted, domain.OutcomeSkippedNoClient, domain.OutcomeAlreadyPosted} {
		postings[string(o)] = int64(getCounterValue(m.ledgerPostings, string(o)))
	}

	hits := getCounterValue(m.cacheHits, "booking_catalog")
	misses := getCounterValue(m.cacheMisses, "booking_catalog")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.LedgerMetrics{
		AppointmentsCreated: int64(sumCounterVec(m.appointmentsCreated)),
		StatusTransitions:   transitions,
		Postings:            postings,
		IncomePosted:        decimal.NewFromFloat(readCounter(m.incomePosted)).Round(2),
		CacheHitRate:        hitRate,
		MessagesSent:        int64(sumCounterVec(m.messagesSent)),
		ExternalErrors:      int64(sumCounterVec(m.externalErrors)),
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every label combination of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
