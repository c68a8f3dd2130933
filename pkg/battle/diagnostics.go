package battle

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// DiagnosticRecord is one logged script failure: a parse failure (spec.md
// §7: "logged once per effect identity") or a runtime failure during
// dispatch (type error, undefined-member access, integer overflow,
// division by zero — "abort the current program... dispatch treats this
// as if the callback returned nothing... logs the failure").
type DiagnosticRecord struct {
	Effect EffectID
	Event  string
	Err    error
}

// Diagnostics is the script-failure sink, distinct from the battle log
// (spec.md §7: "script failures are silent in the battle log by default
// and recorded in a diagnostic sink"). Parser failures are recorded once
// per effect identity; runtime failures are recorded on every occurrence
// since they can be context-dependent (the same program can fail on one
// dispatch and succeed on the next once `$effect_state` changes).
type Diagnostics struct {
	mu           sync.Mutex
	records      []DiagnosticRecord
	parseLogged  map[EffectID]bool
	metrics      *Metrics
}

// NewDiagnostics creates an empty sink. metrics may be nil.
func NewDiagnostics(metrics *Metrics) *Diagnostics {
	return &Diagnostics{parseLogged: make(map[EffectID]bool), metrics: metrics}
}

// RecordParseFailure logs a parse failure for identity, once only; later
// calls for the same identity are dropped without logging again, per
// spec.md §7.
func (d *Diagnostics) RecordParseFailure(identity EffectID, event string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.parseLogged[identity] {
		return
	}
	d.parseLogged[identity] = true
	d.record(identity, event, err)
}

// RecordRuntimeFailure logs a runtime failure; unlike parse failures,
// every occurrence is recorded since the same script may fail
// intermittently depending on state.
func (d *Diagnostics) RecordRuntimeFailure(identity EffectID, event string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(identity, event, err)
}

func (d *Diagnostics) record(identity EffectID, event string, err error) {
	d.records = append(d.records, DiagnosticRecord{Effect: identity, Event: event, Err: err})
	if d.metrics != nil {
		d.metrics.RecordScriptFailure(identity.Kind)
	}
	logrus.WithFields(logrus.Fields{
		"function": "Diagnostics.record",
		"package":  "battle",
		"effect":   identity.String(),
		"event":    event,
		"error":    err,
	}).Warn("script failure recorded to diagnostic sink")
}

// Records returns every recorded diagnostic, in order.
func (d *Diagnostics) Records() []DiagnosticRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DiagnosticRecord, len(d.records))
	copy(out, d.records)
	return out
}
