// Package invariant checks the properties that must hold after every tick
// (spec §8). A violation here is unreachable by construction and is always
// a fatal error (spec §7: "Invariant violation... fatal; emit diagnostic
// and terminate").
package invariant

import (
	"fmt"

	"github.com/pkg/errors"

	"rstdpnet/internal/params"
	"rstdpnet/internal/synapse"
)

// Violation is returned by CheckNeurons and CheckSynapses; it always wraps a stack trace via
// github.com/pkg/errors so a fatal diagnostic is distinguishable from an
// ordinary configuration or I/O error (see db47h-hwsim's use of the same
// library for its own static-invariant failures).
type Violation struct {
	cause error
}

func (v *Violation) Error() string { return v.cause.Error() }
func (v *Violation) Unwrap() error { return v.cause }

func violate(format string, args ...any) error {
	return &Violation{cause: errors.Wrap(fmt.Errorf(format, args...), "invariant violation")}
}

// Neurons describes the subset of neuron state CheckNeurons needs, so this
// package does not depend on package neuron.
type Neurons interface {
	Len() int
	Voltage(i int) int
	RefractoryTimer(i int) int
	InputBuffer(i int) int
}

// Synapses describes the subset of synapse/topology state CheckSynapses needs.
type Synapses interface {
	Len() int
	Outgoing(source int) []synapse.Synapse
}

// CheckSynapses verifies §8's per-synapse invariants: confidence bounds,
// the active/confidence correspondence, the sensor/motor targeting rules,
// and that each motor-fanin neuron (10, 11) has at least one incoming
// synapse. It does not check that non-plastic synapses kept their
// construction-time confidence.
func CheckSynapses(cfg params.Config, synapses Synapses) error {
	motorFaninIncoming := map[int]int{}

	for source := 0; source < synapses.Len(); source++ {
		for _, s := range synapses.Outgoing(source) {
			if s.Confidence < 0 || s.Confidence > cfg.ConfidenceMax {
				return violate("synapse %d: confidence %d out of range [0,%d]", source, s.Confidence, cfg.ConfidenceMax)
			}
			if want := s.Confidence >= cfg.ConfidenceThr; s.Active != want {
				return violate("synapse %d->%d: active=%v but confidence=%d", source, s.Target, s.Active, s.Confidence)
			}
			if synapse.IsSensor(s.Target) {
				return violate("synapse %d->%d: sensor neuron used as target", source, s.Target)
			}
			if synapse.IsMotor(s.Target) {
				wantSource := synapse.MotorFaninLow
				if s.Target == 5 {
					wantSource = synapse.MotorFaninHigh
				}
				if source != wantSource {
					return violate("synapse %d->%d: motor target reachable only from its dedicated fanin neuron %d", source, s.Target, wantSource)
				}
			}
			if synapse.IsMotorFanin(s.Target) {
				motorFaninIncoming[s.Target]++
			}
		}
	}

	for _, m := range []int{synapse.MotorFaninLow, synapse.MotorFaninHigh} {
		if motorFaninIncoming[m] < 1 {
			return violate("motor-fanin neuron %d has no incoming synapse", m)
		}
	}
	return nil
}

// CheckNeurons verifies §8's per-neuron invariants: refractory_timer >= 0,
// and refractory_timer>0 implies voltage=V_REST and input_buffer=0.
func CheckNeurons(cfg params.Config, neurons Neurons) error {
	for i := 0; i < neurons.Len(); i++ {
		if neurons.RefractoryTimer(i) < 0 {
			return violate("neuron %d: negative refractory timer", i)
		}
		if neurons.RefractoryTimer(i) > 0 {
			if neurons.Voltage(i) != cfg.VRest {
				return violate("neuron %d: refractory but voltage=%d != V_REST", i, neurons.Voltage(i))
			}
			if neurons.InputBuffer(i) != 0 {
				return violate("neuron %d: refractory but input_buffer=%d != 0", i, neurons.InputBuffer(i))
			}
		}
	}
	return nil
}
