// Package brain implements the tick-driven simulation engine: the LIF
// neuron update, R-STDP plasticity, pruning/rewiring, and causal tracing
// (spec §4.E). A single ordered call to Step performs phases 0 through 5;
// there is no intra-tick concurrency.
package brain

import (
	"math/rand"

	"rstdpnet/internal/neuron"
	"rstdpnet/internal/params"
	"rstdpnet/internal/synapse"
	"rstdpnet/internal/topology"
)

// MotorSpikes reports which motor neurons fired during the tick just
// completed.
type MotorSpikes struct {
	Motor4 bool
	Motor5 bool
}

// Brain is the dense neuron/synapse array plus the global tick counter.
// Neurons and synapses reference each other only by index (spec §9 DESIGN
// NOTES), never by pointer.
type Brain struct {
	cfg params.Config

	Neurons    []neuron.Neuron
	Synapses   [][]synapse.Synapse
	GlobalTick int

	rng *rand.Rand
}

// New constructs a brain of cfg.BrainSize neurons wired by topology.Build.
// rng must be explicitly seeded by the caller for reproducible construction
// and subsequent pruning/random-activity draws.
func New(cfg params.Config, rng *rand.Rand) *Brain {
	b := &Brain{
		cfg:      cfg,
		Neurons:  make([]neuron.Neuron, cfg.BrainSize),
		Synapses: make([][]synapse.Synapse, cfg.BrainSize),
		rng:      rng,
	}
	for i := range b.Neurons {
		b.Neurons[i] = neuron.New(cfg)
	}
	for _, w := range topology.Build(cfg, rng) {
		b.Synapses[w.Source] = append(b.Synapses[w.Source], synapse.New(cfg, w.Target, w.Confidence, w.Plastic))
	}
	return b
}

// Inject adds amount directly to a neuron's input buffer outside of normal
// synaptic delivery — used by the driver for the random-activity injector
// (spec §4.G point 4). It must be called before Step for the tick in which
// the pulse should take effect.
func (b *Brain) Inject(idx, amount int) {
	b.Neurons[idx].InputBuffer += amount
}

// Step performs one full tick: phases 0 (highlight clear) through 5 (history
// shift), in that fixed order. sensors[i] is the external pulse for sensor
// neuron i this tick (true means a pulse of one unit was received). reward
// and penalty are the signals latched from the previous tick's world update.
func (b *Brain) Step(sensors [synapse.NumSensors]bool, reward, penalty bool) MotorSpikes {
	b.phase0ClearHighlights()
	b.phase1Integrate(sensors)
	candidate := b.phase2PropagateAndLearn(reward, penalty)
	b.phase3Prune(candidate)
	b.phase4Trace()
	b.phase5ShiftHistory()

	b.GlobalTick++

	return MotorSpikes{
		Motor4: b.Neurons[4].SpikedThisStep,
		Motor5: b.Neurons[5].SpikedThisStep,
	}
}

func (b *Brain) phase0ClearHighlights() {
	for i := range b.Synapses {
		for j := range b.Synapses[i] {
			b.Synapses[i][j].Highlighted = false
		}
	}
}

func (b *Brain) phase1Integrate(sensors [synapse.NumSensors]bool) {
	for i := range b.Neurons {
		hasExternal := synapse.IsSensor(i) && sensors[i]
		b.Neurons[i].Integrate(b.cfg, hasExternal)
	}
}

// pruneCandidate identifies the plastic synapse with the largest
// ticks_since_ltp seen so far while walking phase 2 (spec §4.E phase 3);
// ties are broken by first encountered, i.e. it is only replaced on a
// strictly greater value.
type pruneCandidate struct {
	source    int
	synIndex  int
	ticks     int
	hasTarget bool
}

func (b *Brain) phase2PropagateAndLearn(reward, penalty bool) pruneCandidate {
	var best pruneCandidate
	best.ticks = -1

	for i := range b.Synapses {
		sourceSpiked := b.Neurons[i].SpikedThisStep
		for j := range b.Synapses[i] {
			s := &b.Synapses[i][j]

			if sourceSpiked && s.Active {
				b.Neurons[s.Target].InputBuffer++
				b.Neurons[s.Target].AddContribution(neuron.Contribution{FromNeuron: i, SynIndex: j})
			}

			if !s.Plastic {
				continue
			}

			s.TicksSinceLTP++
			b.decayTraceTimers(s)
			b.decayInertia(s)
			b.decayEligibilityTimers(s)
			b.createTraces(s, i, sourceSpiked)
			b.applyReinforcement(s, reward, penalty)
			b.applyConfidenceLeak(s)

			if s.TicksSinceLTP > best.ticks {
				best = pruneCandidate{source: i, synIndex: j, ticks: s.TicksSinceLTP, hasTarget: true}
			}
		}
	}
	return best
}

func (b *Brain) decayTraceTimers(s *synapse.Synapse) {
	if s.LTPTimer > 0 {
		s.LTPTimer--
	}
	if s.LTDTimer > 0 {
		s.LTDTimer--
	}
}

func (b *Brain) decayInertia(s *synapse.Synapse) {
	if s.RewardInertiaCounter > 0 {
		s.RewardInertiaCounter--
		if s.RewardInertiaCounter == 0 {
			s.RewardAcceptor = true
		}
	}
	if s.PenaltyInertiaCounter > 0 {
		s.PenaltyInertiaCounter--
		if s.PenaltyInertiaCounter == 0 {
			s.PenaltyAcceptor = true
		}
	}
}

func (b *Brain) decayEligibilityTimers(s *synapse.Synapse) {
	if s.EligibilityLTPTimer > 0 {
		s.EligibilityLTPTimer--
		if s.EligibilityLTPTimer == 0 {
			s.EligibleForLTP = false
		}
	}
	if s.EligibilityLTDTimer > 0 {
		s.EligibilityLTDTimer--
		if s.EligibilityLTDTimer == 0 {
			s.EligibleForLTD = false
		}
	}
}

func (b *Brain) createTraces(s *synapse.Synapse, source int, sourceSpiked bool) {
	if sourceSpiked {
		s.LTPTimer = b.cfg.SpikeTraceWindow
		if s.LTDTimer > 0 {
			s.EligibleForLTD = true
			s.EligibilityLTDTimer = b.cfg.EligibilityTraceWindow
		}
	}
	if b.Neurons[s.Target].SpikedThisStep {
		s.LTDTimer = b.cfg.SpikeTraceWindow
		if s.LTPTimer > 0 {
			s.EligibleForLTP = true
			s.EligibilityLTPTimer = b.cfg.EligibilityTraceWindow
		}
	}
}

func (b *Brain) applyReinforcement(s *synapse.Synapse, reward, penalty bool) {
	switch {
	case reward && s.RewardAcceptor:
		b.applyRewardArm(s)
	case penalty && s.PenaltyAcceptor:
		b.applyPenaltyArm(s)
	}
}

func (b *Brain) applyRewardArm(s *synapse.Synapse) {
	// ticks_since_ltp resets on any LTP-eligible reward attempt, whether or
	// not confidence was actually raised (e.g. already at ConfidenceMax).
	if s.EligibleForLTP {
		s.TicksSinceLTP = 0
	}

	modified := false
	switch {
	case s.EligibleForLTP && s.Confidence < b.cfg.ConfidenceMax:
		s.Confidence++
		s.EligibleForLTP = false
		s.EligibilityLTPTimer = 0
		s.ConfidenceLeakTimer = b.cfg.ConfidenceLeakPeriod
		modified = true
	case s.EligibleForLTD && s.Confidence > 0:
		s.Confidence--
		s.EligibleForLTD = false
		s.EligibilityLTDTimer = 0
		s.ConfidenceLeakTimer = b.cfg.ConfidenceLeakPeriod
		modified = true
	}
	if modified {
		s.PenaltyAcceptor = false
		s.PenaltyInertiaCounter = b.cfg.ReinforcementInertiaPeriod
	}
	b.recomputeActive(s)
}

func (b *Brain) applyPenaltyArm(s *synapse.Synapse) {
	modified := false
	if s.EligibleForLTP && s.Confidence > 0 {
		s.Confidence--
		s.EligibleForLTP = false
		s.EligibilityLTPTimer = 0
		s.ConfidenceLeakTimer = b.cfg.ConfidenceLeakPeriod
		modified = true
	}
	// LTD + penalty is intentionally ignored, but eligibility still clears.
	if s.EligibleForLTD {
		s.EligibleForLTD = false
		s.EligibilityLTDTimer = 0
	}
	if modified {
		s.RewardAcceptor = false
		s.RewardInertiaCounter = b.cfg.ReinforcementInertiaPeriod
	}
	b.recomputeActive(s)
}

func (b *Brain) applyConfidenceLeak(s *synapse.Synapse) {
	if s.ConfidenceLeakTimer > 0 {
		s.ConfidenceLeakTimer--
	}
	if s.ConfidenceLeakTimer == 0 {
		s.Confidence >>= 1
		s.ConfidenceLeakTimer = b.cfg.ConfidenceLeakPeriod
		b.recomputeActive(s)
	}
}

func (b *Brain) recomputeActive(s *synapse.Synapse) {
	s.Active = s.Confidence >= b.cfg.ConfidenceThr
}

// phase3Prune re-targets, once every cfg.PruningPeriod ticks, the plastic
// synapse with the largest ticks_since_ltp (spec §4.E phase 3). Pruning with
// no eligible candidate or no permitted target is not an error; the
// candidate is left untouched. GlobalTick is only incremented after phase 5,
// so the tick in progress is number GlobalTick+1: the first prune happens
// once PruningPeriod ticks have run, never on the very first tick.
func (b *Brain) phase3Prune(candidate pruneCandidate) {
	if b.cfg.PruningPeriod <= 0 || (b.GlobalTick+1)%b.cfg.PruningPeriod != 0 {
		return
	}
	if !candidate.hasTarget {
		return
	}

	s := &b.Synapses[candidate.source][candidate.synIndex]

	if synapse.IsMotorFanin(s.Target) && b.incomingCount(s.Target) <= 1 {
		s.ResetForRewire(b.cfg, s.Target)
		return
	}

	existing := map[int]bool{}
	for _, other := range b.Synapses[candidate.source] {
		existing[other.Target] = true
	}
	permitted := topology.PermittedRewireTargets(b.cfg, candidate.source, existing)
	if len(permitted) == 0 {
		return
	}
	newTarget := permitted[b.rng.Intn(len(permitted))]
	s.ResetForRewire(b.cfg, newTarget)
}

func (b *Brain) incomingCount(target int) int {
	count := 0
	for i := range b.Synapses {
		for j := range b.Synapses[i] {
			if b.Synapses[i][j].Target == target {
				count++
			}
		}
	}
	return count
}

// phase4Trace walks the depth-limited causal chain backward from every
// motor that spiked this tick, marking every synapse in the chain as
// highlighted (spec §4.E phase 4). It reads contrib/spike history before
// the phase-5 shift, so depth d means "d ticks ago".
func (b *Brain) phase4Trace() {
	for _, motor := range []int{4, 5} {
		if !b.Neurons[motor].SpikedThisStep {
			continue
		}
		visited := make([]map[int]bool, b.cfg.MaxTrace+2)
		b.traceFrom(motor, 0, visited)
	}
}

func (b *Brain) traceFrom(idx, depth int, visited []map[int]bool) {
	if depth > b.cfg.MaxTrace || depth >= len(b.Neurons[idx].ContribHistory) {
		return
	}
	for _, c := range b.Neurons[idx].ContribHistory[depth] {
		b.Synapses[c.FromNeuron][c.SynIndex].Highlighted = true

		nextDepth := depth + 1
		if nextDepth > b.cfg.MaxTrace {
			continue
		}
		if nextDepth >= len(b.Neurons[c.FromNeuron].SpikeHistory) || !b.Neurons[c.FromNeuron].SpikeHistory[depth] {
			continue
		}
		if visited[nextDepth] == nil {
			visited[nextDepth] = make(map[int]bool)
		}
		if visited[nextDepth][c.FromNeuron] {
			continue
		}
		visited[nextDepth][c.FromNeuron] = true
		b.traceFrom(c.FromNeuron, nextDepth, visited)
	}
}

func (b *Brain) phase5ShiftHistory() {
	for i := range b.Neurons {
		b.Neurons[i].ShiftHistory()
	}
}

// The methods below adapt Brain to the small read-only interfaces
// internal/invariant checks against, so that package depends on neither
// internal/brain nor internal/neuron (it does use synapse.Synapse).

func (b *Brain) Len() int                    { return len(b.Neurons) }
func (b *Brain) Voltage(i int) int           { return b.Neurons[i].Voltage }
func (b *Brain) RefractoryTimer(i int) int   { return b.Neurons[i].RefractoryTimer }
func (b *Brain) InputBuffer(i int) int       { return b.Neurons[i].InputBuffer }
func (b *Brain) Outgoing(source int) []synapse.Synapse { return b.Synapses[source] }
