package kaffimetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "kaffi"
	subsystem = "auth"
)

const labelOrg = "org"

// Collector holds all kaffid Prometheus metrics and implements
// auth.Metrics: authorization outcomes, the MDB watchdog, and the serial
// transports.
type Collector struct {
	deniedAmpel  prometheus.Counter
	denied       prometheus.Counter
	dispensed    *prometheus.CounterVec
	notDispensed prometheus.Counter

	watchdogFired prometheus.Counter
	serialErrors  *prometheus.CounterVec
}

// NewCollector creates a Collector with all metrics registered against reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.deniedAmpel,
		c.denied,
		c.dispensed,
		c.notDispensed,
		c.watchdogFired,
		c.serialErrors,
	)

	return c
}

func newMetrics() *Collector {
	return &Collector{
		deniedAmpel: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "denied_ampel_total",
			Help:      "Total cards denied because the building ampel was red.",
		}),
		denied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "denied_total",
			Help:      "Total cards denied because no configured org entitled them.",
		}),
		dispensed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispensed_total",
			Help:      "Total successful dispenses, by authorizing org.",
		}, []string{labelOrg}),
		notDispensed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "not_dispensed_total",
			Help:      "Total authorizations granted but never completed by the vending controller.",
		}),
		watchdogFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mdb",
			Name:      "watchdog_fired_total",
			Help:      "Total MDB response watchdog timeouts.",
		}),
		serialErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "serial",
			Name:      "errors_total",
			Help:      "Total I/O errors on a serial link.",
		}, []string{"link"}),
	}
}

// DeniedAmpel implements auth.Metrics.
func (c *Collector) DeniedAmpel() { c.deniedAmpel.Inc() }

// Denied implements auth.Metrics.
func (c *Collector) Denied() { c.denied.Inc() }

// NotDispensed implements auth.Metrics.
func (c *Collector) NotDispensed() { c.notDispensed.Inc() }

// Dispensed implements auth.Metrics. Per-org breakdown is available via
// DispensedByOrg for callers that track the authorizing org themselves.
func (c *Collector) Dispensed() {
	c.dispensed.WithLabelValues("total").Inc()
}

// DispensedByOrg increments the per-org dispense counter directly.
func (c *Collector) DispensedByOrg(org string) {
	c.dispensed.WithLabelValues(org).Inc()
}

// IncSerialErrors increments the error counter for the named link ("mdb" or
// "rfid").
func (c *Collector) IncSerialErrors(link string) {
	c.serialErrors.WithLabelValues(link).Inc()
}

// IncWatchdogFired increments the MDB watchdog fire counter. Intended as
// the Watchdog alert hook.
func (c *Collector) IncWatchdogFired() {
	c.watchdogFired.Inc()
}
