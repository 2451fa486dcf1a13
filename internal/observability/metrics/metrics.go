package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment lifecycle.
type BookingMetrics struct {
	bookingsTotal      *prometheus.CounterVec
	cancellationsTotal *prometheus.CounterVec
	mailJobsTotal      *prometheus.CounterVec
	notifyFailures     prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotwise",
			Subsystem: "booking",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		cancellationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotwise",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Total cancellation attempts by outcome",
		}, []string{"outcome"}),
		mailJobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slotwise",
			Subsystem: "booking",
			Name:      "cancellation_mail_jobs_total",
			Help:      "Cancellation mail jobs by queue outcome",
		}, []string{"status"}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slotwise",
			Subsystem: "booking",
			Name:      "notification_failures_total",
			Help:      "Provider notifications that failed to persist",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.cancellationsTotal, m.mailJobsTotal, m.notifyFailures)
	return m
}

func (m *BookingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellationsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveMailJob(status string) {
	if m == nil {
		return
	}
	m.mailJobsTotal.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyFailures.Inc()
}
