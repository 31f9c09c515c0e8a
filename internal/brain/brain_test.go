package brain

import (
	"math/rand"
	"testing"

	"rstdpnet/internal/neuron"
	"rstdpnet/internal/params"
	"rstdpnet/internal/synapse"
)

func TestStepZeroInputIsNoOpModuloLeakTimer(t *testing.T) {
	cfg := params.Default()
	b := New(cfg, rand.New(rand.NewSource(1)))

	type snap struct {
		confidence int
		active     bool
		leakTimer  int
	}
	before := map[[2]int]snap{}
	for i := range b.Synapses {
		for j, s := range b.Synapses[i] {
			if s.Plastic {
				before[[2]int{i, j}] = snap{s.Confidence, s.Active, s.ConfidenceLeakTimer}
			}
		}
	}

	var sensors [synapse.NumSensors]bool
	b.Step(sensors, false, false)

	for i := range b.Neurons {
		n := b.Neurons[i]
		if n.Voltage != cfg.VRest || n.RefractoryTimer != 0 || n.SpikedThisStep {
			t.Fatalf("neuron %d: expected to stay at rest, got=%+v", i, n)
		}
	}
	for i := range b.Synapses {
		for j, s := range b.Synapses[i] {
			if !s.Plastic {
				continue
			}
			prev := before[[2]int{i, j}]
			if s.Confidence != prev.confidence || s.Active != prev.active {
				t.Fatalf("synapse %d->%d: expected confidence/active unchanged, got conf=%d active=%v", i, s.Target, s.Confidence, s.Active)
			}
			if s.ConfidenceLeakTimer != prev.leakTimer-1 {
				t.Fatalf("synapse %d->%d: expected leak timer decremented by exactly 1, got=%d want=%d", i, s.Target, s.ConfidenceLeakTimer, prev.leakTimer-1)
			}
		}
	}
}

func TestStepInactiveSynapseNeverDelivers(t *testing.T) {
	cfg := params.Default()
	cfg.BrainSize = 14
	b := &Brain{
		cfg:      cfg,
		Neurons:  make([]neuron.Neuron, cfg.BrainSize),
		Synapses: make([][]synapse.Synapse, cfg.BrainSize),
		rng:      rand.New(rand.NewSource(1)),
	}
	for i := range b.Neurons {
		b.Neurons[i] = neuron.New(cfg)
	}
	s := synapse.New(cfg, 13, 0, true) // confidence 0 => inactive
	b.Synapses[12] = []synapse.Synapse{s}

	b.Inject(12, cfg.VThresh)
	var sensors [synapse.NumSensors]bool
	b.Step(sensors, false, false)

	if !b.Neurons[12].SpikedThisStep {
		t.Fatalf("expected source neuron to spike")
	}
	if b.Neurons[13].InputBuffer != 0 {
		t.Fatalf("expected inactive synapse to never deliver, got target input_buffer=%d", b.Neurons[13].InputBuffer)
	}
	if len(b.Neurons[13].ContribHistory[0]) != 0 {
		t.Fatalf("expected no contribution recorded through an inactive synapse")
	}
}

func TestStepSensorInputSetsFanoutInputBufferNextTick(t *testing.T) {
	cfg := params.Default()
	b := New(cfg, rand.New(rand.NewSource(1)))

	var sensors [synapse.NumSensors]bool
	sensors[0] = true
	b.Step(sensors, false, false)

	if !b.Neurons[0].SpikedThisStep {
		t.Fatalf("expected sensor 0 to spike on external input")
	}
	if b.Neurons[6].InputBuffer != 1 {
		t.Fatalf("expected fanout neuron 6 input_buffer=1 at start of next tick, got=%d", b.Neurons[6].InputBuffer)
	}
}

func TestRewardArmPreBeforePostIncreasesConfidence(t *testing.T) {
	cfg := params.Default()
	cfg.BrainSize = 14
	b := &Brain{
		cfg:      cfg,
		Neurons:  make([]neuron.Neuron, cfg.BrainSize),
		Synapses: make([][]synapse.Synapse, cfg.BrainSize),
		rng:      rand.New(rand.NewSource(1)),
	}
	for i := range b.Neurons {
		b.Neurons[i] = neuron.New(cfg)
	}
	b.Synapses[12] = []synapse.Synapse{synapse.New(cfg, 13, 1, true)}

	var sensors [synapse.NumSensors]bool

	b.Step(sensors, false, false) // t=0
	b.Step(sensors, false, false) // t=1

	b.Inject(12, cfg.VThresh) // pre-spike this tick
	b.Step(sensors, false, false) // t=2

	b.Step(sensors, false, false) // t=3

	b.Inject(13, cfg.VThresh) // post-spike this tick
	b.Step(sensors, false, false) // t=4

	b.Step(sensors, true, false) // t=5: reward delivered

	s := b.Synapses[12][0]
	if s.Confidence != 2 {
		t.Fatalf("expected confidence incremented to 2, got=%d", s.Confidence)
	}
	if s.PenaltyAcceptor {
		t.Fatalf("expected penalty_acceptor locked false after LTP")
	}
	if s.PenaltyInertiaCounter != cfg.ReinforcementInertiaPeriod {
		t.Fatalf("expected penalty inertia counter set to %d, got=%d", cfg.ReinforcementInertiaPeriod, s.PenaltyInertiaCounter)
	}
}

func TestPenaltyArmPostBeforePreIsIgnored(t *testing.T) {
	cfg := params.Default()
	cfg.BrainSize = 14
	b := &Brain{
		cfg:      cfg,
		Neurons:  make([]neuron.Neuron, cfg.BrainSize),
		Synapses: make([][]synapse.Synapse, cfg.BrainSize),
		rng:      rand.New(rand.NewSource(1)),
	}
	for i := range b.Neurons {
		b.Neurons[i] = neuron.New(cfg)
	}
	b.Synapses[12] = []synapse.Synapse{synapse.New(cfg, 13, 1, true)}

	var sensors [synapse.NumSensors]bool

	b.Step(sensors, false, false) // t=0
	b.Step(sensors, false, false) // t=1

	b.Inject(13, cfg.VThresh) // post-spike this tick
	b.Step(sensors, false, false) // t=2

	b.Step(sensors, false, false) // t=3

	b.Inject(12, cfg.VThresh) // pre-spike this tick
	b.Step(sensors, false, false) // t=4

	b.Step(sensors, false, true) // t=5: penalty delivered

	s := b.Synapses[12][0]
	if s.Confidence != 1 {
		t.Fatalf("expected confidence unchanged at 1 (LTD+penalty ignored), got=%d", s.Confidence)
	}
	if s.EligibleForLTD {
		t.Fatalf("expected LTD eligibility cleared even though ignored")
	}
	if !s.RewardAcceptor {
		t.Fatalf("expected reward_acceptor untouched (still true)")
	}
}

func TestPrunePeriodRewiresIdleSynapse(t *testing.T) {
	cfg := params.Default()
	cfg.BrainSize = 14
	cfg.PruningPeriod = 1
	b := &Brain{
		cfg:      cfg,
		Neurons:  make([]neuron.Neuron, cfg.BrainSize),
		Synapses: make([][]synapse.Synapse, cfg.BrainSize),
		rng:      rand.New(rand.NewSource(2)),
	}
	for i := range b.Neurons {
		b.Neurons[i] = neuron.New(cfg)
	}
	b.Synapses[12] = []synapse.Synapse{synapse.New(cfg, 13, 1, true)}

	var sensors [synapse.NumSensors]bool
	b.Step(sensors, false, false)

	s := b.Synapses[12][0]
	if s.Confidence != 1 {
		t.Fatalf("expected confidence reset to 1 after rewire, got=%d", s.Confidence)
	}
	if s.TicksSinceLTP != 0 {
		t.Fatalf("expected ticks_since_ltp cleared after rewire, got=%d", s.TicksSinceLTP)
	}
	if s.Target == 13 {
		t.Fatalf("expected synapse to rewire away from its original target")
	}
	if s.Target != 10 && s.Target != 11 {
		t.Fatalf("expected rewire target to be one of the permitted hidden indices 10/11, got=%d", s.Target)
	}
}

func TestCausalTraceHighlightsFullChainToMotor(t *testing.T) {
	cfg := params.Default()
	cfg.BrainSize = 14
	b := &Brain{
		cfg:      cfg,
		Neurons:  make([]neuron.Neuron, cfg.BrainSize),
		Synapses: make([][]synapse.Synapse, cfg.BrainSize),
		rng:      rand.New(rand.NewSource(1)),
	}
	for i := range b.Neurons {
		b.Neurons[i] = neuron.New(cfg)
	}
	b.Synapses[12] = []synapse.Synapse{synapse.New(cfg, 10, cfg.ConfidenceMax, true)}
	b.Synapses[10] = []synapse.Synapse{synapse.New(cfg, 4, cfg.ConfidenceMax, false)}

	var sensors [synapse.NumSensors]bool

	b.Inject(12, cfg.VThresh)
	b.Step(sensors, false, false) // t=0: neuron 12 spikes, delivers +1 to neuron 10

	b.Inject(10, cfg.VThresh-1) // top up neuron 10's buffered +1 to reach threshold
	b.Step(sensors, false, false) // t=1: neuron 10 spikes, delivers +1 to neuron 4

	b.Inject(4, cfg.VThresh-1) // top up neuron 4's buffered +1 to reach threshold
	spikes := b.Step(sensors, false, false) // t=2: motor 4 spikes, trace runs

	if !spikes.Motor4 {
		t.Fatalf("expected motor 4 to spike at t=2")
	}
	if !b.Synapses[10][0].Highlighted {
		t.Fatalf("expected synapse 10->4 highlighted by the causal trace")
	}
	if !b.Synapses[12][0].Highlighted {
		t.Fatalf("expected synapse 12->10 highlighted by the causal trace")
	}
}
