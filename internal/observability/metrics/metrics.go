package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// SiteMetrics exposes counters and gauges for the public site flows.
type SiteMetrics struct {
	catalogLoads        *prometheus.CounterVec
	catalogSize         *prometheus.GaugeVec
	quotesTotal         *prometheus.CounterVec
	appointmentRequests *prometheus.CounterVec
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitaldent",
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Treatment catalog loads by source and success",
		}, []string{"source", "ok"}),
		catalogSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "vitaldent",
			Subsystem: "catalog",
			Name:      "treatments",
			Help:      "Treatments returned by the last successful load",
		}, []string{"source"}),
		quotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitaldent",
			Subsystem: "quote",
			Name:      "requests_total",
			Help:      "Quote calculations by price policy and outcome",
		}, []string{"policy", "outcome"}),
		appointmentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vitaldent",
			Subsystem: "appointments",
			Name:      "requests_total",
			Help:      "Appointment form submissions by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.catalogLoads, m.catalogSize, m.quotesTotal, m.appointmentRequests)
	return m
}

func (m *SiteMetrics) ObserveCatalogLoad(source string, ok bool, count int) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(source, strconv.FormatBool(ok)).Inc()
	if ok {
		m.catalogSize.WithLabelValues(source).Set(float64(count))
	}
}

func (m *SiteMetrics) ObserveQuote(policy, outcome string) {
	if m == nil {
		return
	}
	m.quotesTotal.WithLabelValues(policy, outcome).Inc()
}

func (m *SiteMetrics) ObserveAppointmentRequest(outcome string) {
	if m == nil {
		return
	}
	m.appointmentRequests.WithLabelValues(outcome).Inc()
}
