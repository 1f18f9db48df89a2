/*
Package metrics records knowledge base activity.

The knowledge base reports through the Recorder interface. NoOp discards
everything; Prometheus exports counters:

  - <ns>_statements_asserted_total{kind}: direct assertions that were stored
  - <ns>_statements_derived_total{kind}: facts and rules stored by inference
  - <ns>_statements_retracted_total{kind}: direct retractions
  - <ns>_statements_cascaded_total{kind}: dependents removed by truth maintenance
  - <ns>_statements_rejected_total{reason}: direct assertions/retractions refused
  - <ns>_depth_exceeded_total: derivations dropped by the depth guard
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Statement kinds used as label values.
const (
	KindFact = "fact"
	KindRule = "rule"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "deduce"

// Recorder receives knowledge base events.
type Recorder interface {
	Asserted(kind string)
	Derived(kind string)
	Retracted(kind string)
	Cascaded(kind string)
	Rejected(reason string)
	DepthExceeded()
}

// NoOp is a Recorder that discards every event.
type NoOp struct{}

func (NoOp) Asserted(string)  {}
func (NoOp) Derived(string)   {}
func (NoOp) Retracted(string) {}
func (NoOp) Cascaded(string)  {}
func (NoOp) Rejected(string)  {}
func (NoOp) DepthExceeded()   {}

// Prometheus is a Recorder backed by Prometheus counters.
type Prometheus struct {
	asserted      *prometheus.CounterVec
	derived       *prometheus.CounterVec
	retracted     *prometheus.CounterVec
	cascaded      *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	depthExceeded prometheus.Counter
}

// NewPrometheus creates the counters and registers them on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	statementVec := func(name, help, label string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "statements",
			Name:      name,
			Help:      help,
		}, []string{label})
	}

	p := &Prometheus{
		asserted:  statementVec("asserted_total", "Statements stored by direct assertion.", "kind"),
		derived:   statementVec("derived_total", "Statements stored by forward chaining.", "kind"),
		retracted: statementVec("retracted_total", "Statements removed by direct retraction.", "kind"),
		cascaded:  statementVec("cascaded_total", "Statements removed because a justification was removed.", "kind"),
		rejected:  statementVec("rejected_total", "Direct assertions or retractions that were refused.", "reason"),
		depthExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "depth_exceeded_total",
			Help:      "Derivations dropped because the chain exceeded the configured depth.",
		}),
	}

	for _, c := range []prometheus.Collector{p.asserted, p.derived, p.retracted, p.cascaded, p.rejected, p.depthExceeded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) Asserted(kind string)   { p.asserted.WithLabelValues(kind).Inc() }
func (p *Prometheus) Derived(kind string)    { p.derived.WithLabelValues(kind).Inc() }
func (p *Prometheus) Retracted(kind string)  { p.retracted.WithLabelValues(kind).Inc() }
func (p *Prometheus) Cascaded(kind string)   { p.cascaded.WithLabelValues(kind).Inc() }
func (p *Prometheus) Rejected(reason string) { p.rejected.WithLabelValues(reason).Inc() }
func (p *Prometheus) DepthExceeded()         { p.depthExceeded.Inc() }
