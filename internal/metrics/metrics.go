// Package metrics exposes Prometheus counters and gauges over a running
// Machine, wrapping CycleOnce without touching its crash-free contract.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"seqstk"
)

// Collector wraps a private registry so a host can run several machines,
// each with its own metrics, without fighting over the default global
// registry.
type Collector struct {
	registry *prometheus.Registry

	cyclesTotal   prometheus.Counter
	decodeInvalid prometheus.Counter
	portPushTotal *prometheus.CounterVec
	stackDepth    prometheus.Gauge
	rtsDepth      prometheus.Gauge
	portDepth     *prometheus.GaugeVec
}

// NewCollector builds a Collector with every metric registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seqstk_cycles_total",
			Help: "CycleOnce calls, including no-op calls made with PC at or past the end of RAM.",
		}),
		decodeInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "seqstk_decode_invalid_total",
			Help: "Instruction bytes that decoded to an unrecognized family.",
		}),
		portPushTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "seqstk_port_push_total",
			Help: "Values pushed onto a port stack, by port index.",
		}, []string{"port"}),
		stackDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seqstk_data_stack_depth",
			Help: "Current depth of the data stack.",
		}),
		rtsDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seqstk_rts_stack_depth",
			Help: "Current depth of the call/return stack.",
		}),
		portDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "seqstk_port_depth",
			Help: "Current depth of each port stack.",
		}, []string{"port"}),
	}

	reg.MustRegister(
		c.cyclesTotal,
		c.decodeInvalid,
		c.portPushTotal,
		c.stackDepth,
		c.rtsDepth,
		c.portDepth,
	)
	return c
}

// Handler returns an http.Handler serving this collector's registry in the
// Prometheus text exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Observe runs one CycleOnce on m and records the resulting metrics. The
// byte at m.PC is inspected before the cycle so decode-invalid and
// port-push events can be attributed; CycleOnce itself is untouched.
func (c *Collector) Observe(m *seqstk.Machine) {
	pc := m.PC
	var d seqstk.DecodedOp
	portBefore := 0
	inBounds := pc >= 0 && pc < seqstk.RAMSize
	if inBounds {
		d = seqstk.DecodeOpcode(m.RAM[pc])
		if d.Family == seqstk.FamilyPort {
			portBefore = m.PortDepth(d.PortIndex())
		}
	}

	m.CycleOnce()
	c.cyclesTotal.Inc()

	if !inBounds {
		return
	}
	if d.Family == seqstk.FamilyInvalid {
		c.decodeInvalid.Inc()
	}
	if d.Family == seqstk.FamilyPort && m.PortDepth(d.PortIndex()) > portBefore {
		c.portPushTotal.WithLabelValues(portLabel(d.PortIndex())).Inc()
	}

	c.stackDepth.Set(float64(m.StackDepth()))
	c.rtsDepth.Set(float64(m.RtsDepth()))
	for i := 0; i < seqstk.NumPorts; i++ {
		c.portDepth.WithLabelValues(portLabel(i)).Set(float64(m.PortDepth(i)))
	}
}

func portLabel(i int) string {
	return [...]string{"0", "1", "2", "3", "4", "5", "6", "7"}[i]
}
