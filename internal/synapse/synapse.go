// Package synapse implements per-synapse R-STDP state and the directional
// role constraints shared by topology construction and pruning (spec §3,
// §4.D, §4.E phase 2/3).
package synapse

import "rstdpnet/internal/params"

// Synapse is one entry in its source neuron's outgoing list; its index
// within that list is its identity for history and causal-trace purposes.
type Synapse struct {
	Target     int
	Confidence int
	Active     bool

	LTPTimer int
	LTDTimer int

	EligibleForLTP      bool
	EligibleForLTD      bool
	EligibilityLTPTimer int
	EligibilityLTDTimer int

	ConfidenceLeakTimer int

	RewardAcceptor        bool
	PenaltyAcceptor       bool
	RewardInertiaCounter  int
	PenaltyInertiaCounter int

	TicksSinceLTP int
	Highlighted   bool

	// Plastic is false for the fixed sensor->fanout and motor-fanin->motor
	// wires; such synapses are exempt from all plasticity, leak, and
	// pruning, and their Confidence never changes after construction.
	Plastic bool
}

// New constructs a synapse targeting dst with the given initial confidence.
// Plastic synapses start with both acceptors open and a full leak timer;
// non-plastic synapses never consult those fields but they are initialized
// identically for uniformity.
func New(cfg params.Config, dst, initConfidence int, plastic bool) Synapse {
	s := Synapse{
		Target:              dst,
		Confidence:          initConfidence,
		ConfidenceLeakTimer: cfg.ConfidenceLeakPeriod,
		RewardAcceptor:      true,
		PenaltyAcceptor:     true,
		Plastic:             plastic,
	}
	s.recomputeActive(cfg)
	return s
}

func (s *Synapse) recomputeActive(cfg params.Config) {
	s.Active = s.Confidence >= cfg.ConfidenceThr
}

// ResetForRewire clears learning state in place for a synapse that pruning
// has just re-targeted (spec §4.E phase 3). The synapse itself is never
// destroyed, only re-pointed and reset.
func (s *Synapse) ResetForRewire(cfg params.Config, newTarget int) {
	s.Target = newTarget
	s.Confidence = 1
	s.LTPTimer = 0
	s.LTDTimer = 0
	s.EligibleForLTP = false
	s.EligibleForLTD = false
	s.EligibilityLTPTimer = 0
	s.EligibilityLTDTimer = 0
	s.ConfidenceLeakTimer = cfg.ConfidenceLeakPeriod
	s.RewardAcceptor = true
	s.PenaltyAcceptor = true
	s.RewardInertiaCounter = 0
	s.PenaltyInertiaCounter = 0
	s.TicksSinceLTP = 0
	s.recomputeActive(cfg)
}

// Role constants for neuron index ranges (spec §3 "Roles by index").
const (
	NumSensors       = 4
	NumMotors        = 2
	SensorFaninStart = 4
	SensorFanoutLow  = 6
	SensorFanoutHigh = 9
	MotorFaninLow    = 10
	MotorFaninHigh   = 11
)

// IsSensor reports whether idx is one of the four external-input neurons.
func IsSensor(idx int) bool { return idx >= 0 && idx < NumSensors }

// IsMotor reports whether idx is one of the two motor-readout neurons.
func IsMotor(idx int) bool { return idx == 4 || idx == 5 }

// IsSensorFanout reports whether idx is a sensor-fanout neuron (6..9).
func IsSensorFanout(idx int) bool { return idx >= SensorFanoutLow && idx <= SensorFanoutHigh }

// IsMotorFanin reports whether idx is a motor-fanin neuron (10..11).
func IsMotorFanin(idx int) bool { return idx == MotorFaninLow || idx == MotorFaninHigh }

// MotorIndexFor returns the motor a motor-fanin neuron is wired to: 10->4,
// 11->5.
func MotorIndexFor(faninIdx int) int {
	if faninIdx == MotorFaninLow {
		return 4
	}
	return 5
}

// CanSource reports whether a synapse is permitted to originate at i under
// the directional constraints shared by topology construction (§4.D step 2)
// and pruning's permitted-target search (§4.E phase 3): motor-fanin neurons
// (10, 11) may only send to their dedicated motor, never into the
// hidden-hidden pool.
func CanSource(i int) bool { return !IsMotorFanin(i) }

// CanTarget reports whether a synapse is permitted to terminate at j under
// the same constraints: sensor-fanout neurons (6..9) may only receive from
// their dedicated sensor, never from the hidden-hidden pool.
func CanTarget(j int) bool { return !IsSensorFanout(j) }

// IsFirstLayer reports whether idx is in the fixed first layer (6..11:
// sensor-fanout plus motor-fanin), which must never be wired to itself
// (§4.D step 2's third constraint).
func IsFirstLayer(idx int) bool { return idx >= SensorFanoutLow && idx <= MotorFaninHigh }

// PermittedHiddenLink reports whether a hidden-hidden synapse from i to j is
// permitted under the full set of directional constraints shared by
// topology construction (§4.D step 2) and pruning's permitted-target search
// (§4.E phase 3). Both i and j are assumed to be in the 6..N-1 hidden range
// and i != j; callers additionally exclude self-loops and (for pruning)
// targets the source already has an outgoing synapse to.
func PermittedHiddenLink(i, j int) bool {
	if !CanTarget(j) {
		return false
	}
	if !CanSource(i) {
		return false
	}
	if IsFirstLayer(i) && IsFirstLayer(j) {
		return false
	}
	return true
}
