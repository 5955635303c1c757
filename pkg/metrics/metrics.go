package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration     *prometheus.HistogramVec
	DBOpenConnections   *prometheus.GaugeVec
	DBInUseConnections  *prometheus.GaugeVec
	DBIdleConnections   *prometheus.GaugeVec
	DBWaitCount         *prometheus.GaugeVec
	DBTransactionsTotal *prometheus.CounterVec

	// Бизнес-метрики
	ReservationsTotal   *prometheus.CounterVec
	EnrolmentsTotal     *prometheus.CounterVec
	NoShowsMarked       *prometheus.CounterVec
	PeerRequestsTotal   *prometheus.CounterVec
	PeerDivergenceTotal *prometheus.CounterVec
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в указанном реестре (нужно для тестов)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration in seconds",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration in seconds",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DBOpenConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBInUseConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBIdleConnections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBWaitCount: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),

		DBTransactionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_transactions_total",
			Help:        "Total number of finished transactions",
			ConstLabels: constLabels,
		}, []string{"result"}),

		ReservationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "reservations_total",
			Help:        "Reservation attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		EnrolmentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "enrolments_total",
			Help:        "Enrolment attempts by outcome",
			ConstLabels: constLabels,
		}, []string{"outcome"}),

		NoShowsMarked: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "no_shows_marked_total",
			Help:        "Reservations marked as no-show",
			ConstLabels: constLabels,
		}, []string{"exam_kind"}),

		PeerRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "collaboration_peer_requests_total",
			Help:        "Requests to the collaborative exam peer by operation and result",
			ConstLabels: constLabels,
		}, []string{"operation", "result"}),

		PeerDivergenceTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name:        "collaboration_peer_divergence_total",
			Help:        "Peer reservations cancelled without a committed local change",
			ConstLabels: constLabels,
		}, []string{"operation"}),
	}
}

// ObserveReservation увеличивает счетчик попыток бронирования. Безопасен для nil.
func (m *Metrics) ObserveReservation(outcome string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(outcome).Inc()
}

// ObserveEnrolment увеличивает счетчик попыток записи на экзамен. Безопасен для nil.
func (m *Metrics) ObserveEnrolment(outcome string) {
	if m == nil {
		return
	}
	m.EnrolmentsTotal.WithLabelValues(outcome).Inc()
}

// ObserveNoShow увеличивает счетчик отмеченных неявок. Безопасен для nil.
func (m *Metrics) ObserveNoShow(examKind string) {
	if m == nil {
		return
	}
	m.NoShowsMarked.WithLabelValues(examKind).Inc()
}

// ObservePeerRequest увеличивает счетчик запросов к удаленному пиру. Безопасен для nil.
func (m *Metrics) ObservePeerRequest(operation, result string) {
	if m == nil {
		return
	}
	m.PeerRequestsTotal.WithLabelValues(operation, result).Inc()
}

// ObservePeerDivergence увеличивает счетчик расхождений с пиром, требующих сверки. Безопасен для nil.
func (m *Metrics) ObservePeerDivergence(operation string) {
	if m == nil {
		return
	}
	m.PeerDivergenceTotal.WithLabelValues(operation).Inc()
}
