// Package neuron implements per-neuron integer LIF state (spec §3, §4.B).
package neuron

import "rstdpnet/internal/params"

// Contribution records a single conducting delivery into a neuron during one
// tick: the source neuron's index and the position of the delivering synapse
// within that source's outgoing list.
type Contribution struct {
	FromNeuron int
	SynIndex   int
}

// Neuron is one row of the dense neuron array. Indices, never back-pointers,
// are used to reference synapses and other neurons.
type Neuron struct {
	Voltage         int
	RefractoryTimer int
	SpikedThisStep  bool
	InputBuffer     int
	LeakTimer       int

	// nextContributors accumulates phase-2 deliveries for the tick in
	// progress; it is moved into ContribHistory[0] by the phase-5 shift.
	nextContributors []Contribution

	ContribHistory [][]Contribution
	SpikeHistory   []bool
}

// New constructs a neuron at rest with history buffers sized to MaxHist.
func New(cfg params.Config) Neuron {
	return Neuron{
		LeakTimer:      cfg.MembraneDecayPeriod,
		ContribHistory: make([][]Contribution, cfg.MaxHist),
		SpikeHistory:   make([]bool, cfg.MaxHist),
	}
}

// AddContribution records a conducting delivery for the history shift at the
// end of the current tick (phase 2 of the tick engine).
func (n *Neuron) AddContribution(c Contribution) {
	n.nextContributors = append(n.nextContributors, c)
}

// ShiftHistory performs phase 5: it rotates ContribHistory and SpikeHistory
// one slot towards higher indices, writes the tick just completed into slot
// 0, and clears the transient accumulator.
func (n *Neuron) ShiftHistory() {
	for i := len(n.ContribHistory) - 1; i > 0; i-- {
		n.ContribHistory[i] = n.ContribHistory[i-1]
		n.SpikeHistory[i] = n.SpikeHistory[i-1]
	}
	n.ContribHistory[0] = n.nextContributors
	n.SpikeHistory[0] = n.SpikedThisStep
	n.nextContributors = nil
}

// Integrate runs phase 1 for a single neuron: refractory decay, input
// integration, threshold crossing, and the leak rule. hasExternalInput is
// true only for a sensor neuron that received an external pulse this tick.
func (n *Neuron) Integrate(cfg params.Config, hasExternalInput bool) {
	n.SpikedThisStep = false

	if n.RefractoryTimer > 0 {
		n.RefractoryTimer--
		n.Voltage = cfg.VRest
		n.InputBuffer = 0
		n.LeakTimer = cfg.MembraneDecayPeriod
		return
	}

	hadInput := n.InputBuffer > 0 || hasExternalInput
	n.Voltage += n.InputBuffer
	if hasExternalInput {
		n.Voltage += cfg.VThresh
	}
	n.InputBuffer = 0

	activity := hadInput
	if n.Voltage >= cfg.VThresh {
		n.Voltage = cfg.VRest
		n.SpikedThisStep = true
		n.RefractoryTimer = cfg.RefractoryPeriod
		activity = true
	}

	switch {
	case activity:
		n.LeakTimer = cfg.MembraneDecayPeriod
	case n.Voltage > cfg.VRest:
		n.LeakTimer--
		if n.LeakTimer <= 0 {
			n.Voltage--
			n.LeakTimer = cfg.MembraneDecayPeriod
		}
	default:
		n.LeakTimer = cfg.MembraneDecayPeriod
	}
}
