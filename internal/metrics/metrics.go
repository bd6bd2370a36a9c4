// Package metrics exposes a Prometheus registry for the daemon: connect
// attempt/outcome counters, scan cadence, per-interface traffic gauges
// (adapted from the legacy sysfs traffic sampler), and reachability-probe
// results. None of this feeds back into orchestrator decisions; it is
// observation only.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so the daemon's /metrics endpoint carries
// only its own series.
type Metrics struct {
	registry *prometheus.Registry

	connectAttempts  *prometheus.CounterVec
	connectOutcomes  *prometheus.CounterVec
	scansTotal       prometheus.Counter
	currentQuality   prometheus.Gauge
	rxBytes          *prometheus.GaugeVec
	txBytes          *prometheus.GaugeVec
	gatewayReachable prometheus.Gauge
	dnsResolvable    prometheus.Gauge
}

// New builds and registers every series.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.connectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snmd_connect_attempts_total",
		Help: "Connect attempts started, by setting kind.",
	}, []string{"kind"})

	m.connectOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snmd_connect_outcomes_total",
		Help: "Connect attempts completed, by outcome status.",
	}, []string{"status"})

	m.scansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "snmd_scans_total",
		Help: "Wi-Fi scans performed.",
	})

	m.currentQuality = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snmd_current_quality_percent",
		Help: "Signal quality of the active Wi-Fi connection, 0 when not on Wi-Fi.",
	})

	m.rxBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snmd_interface_rx_bytes",
		Help: "Cumulative bytes received, by interface.",
	}, []string{"iface"})

	m.txBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snmd_interface_tx_bytes",
		Help: "Cumulative bytes transmitted, by interface.",
	}, []string{"iface"})

	m.gatewayReachable = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snmd_gateway_reachable",
		Help: "1 if the last post-lease gateway ping succeeded, else 0.",
	})

	m.dnsResolvable = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snmd_dns_resolvable",
		Help: "1 if the last post-lease DNS query succeeded, else 0.",
	})

	m.registry.MustRegister(
		m.connectAttempts, m.connectOutcomes, m.scansTotal, m.currentQuality,
		m.rxBytes, m.txBytes, m.gatewayReachable, m.dnsResolvable,
	)
	return m
}

// Handler returns the HTTP handler to mount at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveConnectAttempt(kind string) {
	m.connectAttempts.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveConnectOutcome(status string) {
	m.connectOutcomes.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveScan() {
	m.scansTotal.Inc()
}

func (m *Metrics) SetCurrentQuality(q uint32) {
	m.currentQuality.Set(float64(q))
}

func (m *Metrics) SetInterfaceTraffic(iface string, rx, tx uint64) {
	m.rxBytes.WithLabelValues(iface).Set(float64(rx))
	m.txBytes.WithLabelValues(iface).Set(float64(tx))
}
