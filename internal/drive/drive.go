// Package drive implements the outer/inner simulation loop (spec §4.G): it
// owns the atomic control record, rebuilds brain and world on reset, and
// drives one tick at a time through the injected logsink.Sink and
// snapshot.Sink boundaries. The package never opens a file or a socket
// itself — transport is the caller's concern (spec §1).
package drive

import (
	"math/rand"
	"time"

	"rstdpnet/internal/brain"
	"rstdpnet/internal/control"
	"rstdpnet/internal/invariant"
	"rstdpnet/internal/logsink"
	"rstdpnet/internal/params"
	"rstdpnet/internal/snapshot"
	"rstdpnet/internal/synapse"
	"rstdpnet/internal/world"
)

// pauseSpinInterval is the sleep between paused-state polls (spec §4.G
// step 2).
const pauseSpinInterval = 100 * time.Millisecond

// Config wires a Driver's external collaborators (grounded on
// internal/platform.Config's injected-dependency pattern).
type Config struct {
	Params params.Config
	Rng    *rand.Rand
	Log    logsink.Sink
	Snaps  snapshot.Sink
	State  *control.State

	// CheckInvariants, when true, runs internal/invariant after every tick
	// and treats a violation as fatal (spec §7). Tests typically leave this
	// on; long unattended runs may disable it to save the per-tick scan.
	CheckInvariants bool
}

// Counters accumulates the running totals reported in every snapshot and in
// the end-of-run report (spec §6, SPEC_FULL §"report").
type Counters struct {
	RewardSum  int
	PenaltySum int
	FoodTime   int
	DangerTime int
}

// Driver runs the simulation loop described in spec §4.G. It is not safe
// for concurrent use by more than one goroutine calling Run; the command
// reader goroutine communicates exclusively through the shared
// control.State atomics.
type Driver struct {
	cfg Config

	Counters Counters
	Tick     int
	brain    *brain.Brain
	world    *world.World
}

// ConfidenceHistogram counts every plastic synapse in the most recently
// built brain by confidence level, index 0..Params.ConfidenceMax
// inclusive. It reflects whatever brain Run last constructed (post-reset
// or at the point Run returned); callers building an end-of-run report
// should call it after Run returns.
func (d *Driver) ConfidenceHistogram() []int {
	hist := make([]int, d.cfg.Params.ConfidenceMax+1)
	if d.brain == nil {
		return hist
	}
	for i := range d.brain.Synapses {
		for _, s := range d.brain.Synapses[i] {
			if s.Plastic {
				hist[s.Confidence]++
			}
		}
	}
	return hist
}

// FoodEaten and DangerHit report the world's collision counters for the
// brain/world pair Run last built.
func (d *Driver) FoodEaten() int {
	if d.world == nil {
		return 0
	}
	return d.world.FoodEaten
}

func (d *Driver) DangerHit() int {
	if d.world == nil {
		return 0
	}
	return d.world.DangerHit
}

// New constructs a Driver. cfg.State must already exist; Run rebuilds brain
// and world internally on every (re)start, per the outer loop in spec §4.G.
func New(cfg Config) *Driver {
	return &Driver{cfg: cfg}
}

// Run executes the outer loop: construct brain and world, then run the
// inner per-tick loop until Stop is requested (State.Running() becomes
// false) or a Reset is requested, in which case it rebuilds and continues.
// Run returns nil when the driver is stopped and not reset, and returns the
// violation when a per-tick invariant check fails.
func (d *Driver) Run() error {
	for {
		b := brain.New(d.cfg.Params, d.cfg.Rng)
		w := world.New(d.cfg.Params, d.cfg.Rng)
		d.brain, d.world = b, w
		d.Tick = 0
		d.Counters = Counters{}

		stop, err := d.runInner(b, w)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
		// Reset was requested: clear it and rebuild.
		d.cfg.State.ClearReset()
	}
}

// runInner is the per-tick loop of spec §4.G steps 1-8. It returns
// stop=true when the driver should terminate for good (State.Running()
// false and no reset pending).
func (d *Driver) runInner(b *brain.Brain, w *world.World) (stop bool, err error) {
	var reward, penalty bool

	for {
		if err := d.emitSnapshot(b, w, reward, penalty); err != nil {
			d.cfg.Log.Warnf("snapshot sink: %v", err)
		}

		for d.cfg.State.Paused() && !d.cfg.State.Reset() && d.cfg.State.Running() {
			time.Sleep(pauseSpinInterval)
		}

		if d.cfg.State.Reset() {
			return false, nil
		}
		if !d.cfg.State.Running() {
			return true, nil
		}

		time.Sleep(time.Duration(d.cfg.State.DelayMs()) * time.Millisecond)

		sensors := d.gatherSensors(w)
		d.injectRandomActivity(b)

		spikes := b.Step(sensors, reward, penalty)

		if d.cfg.CheckInvariants {
			if err := d.checkInvariants(b); err != nil {
				d.cfg.Log.Fatalf("%v", err)
				return true, err
			}
		}

		moveLeft, moveRight := spikes.Motor4, spikes.Motor5
		if moveLeft && moveRight {
			moveLeft, moveRight = false, false
		}

		res := w.Update(moveLeft, moveRight)
		reward, penalty = res.Reward, res.Penalty

		if res.Reward {
			d.Counters.RewardSum++
		}
		if res.Penalty {
			d.Counters.PenaltySum++
		}
		switch w.TargetType {
		case world.TargetFood:
			d.Counters.FoodTime++
		case world.TargetDanger:
			d.Counters.DangerTime++
		}

		d.Tick++
	}
}

func (d *Driver) gatherSensors(w *world.World) [synapse.NumSensors]bool {
	s := w.ReadSensors()
	var out [synapse.NumSensors]bool
	out[0] = s.FoodLeft
	out[1] = s.FoodRight
	out[2] = s.DangerLeft
	out[3] = s.DangerRight
	return out
}

// injectRandomActivity delivers RANDOM_ACTIVITY_COUNT pulses into random
// hidden neurons every RANDOM_ACTIVITY_PERIOD ticks (spec §4.G step 4). The
// draw range starts at SensorFanoutLow, skipping sensors (0..3) and motors
// (4..5) up front so every pulse lands and the delivered count always
// equals RandomActivityCount, matching original_source/binary_rstdp.cpp's
// rand_neuron_dist(6, BRAIN_SIZE-1).
func (d *Driver) injectRandomActivity(b *brain.Brain) {
	if d.cfg.Params.RandomActivityPeriod <= 0 || d.Tick%d.cfg.Params.RandomActivityPeriod != 0 {
		return
	}
	for n := 0; n < d.cfg.Params.RandomActivityCount; n++ {
		idx := synapse.SensorFanoutLow + d.cfg.Rng.Intn(d.cfg.Params.BrainSize-synapse.SensorFanoutLow)
		b.Inject(idx, d.cfg.Params.VThresh)
	}
}

func (d *Driver) emitSnapshot(b *brain.Brain, w *world.World, reward, penalty bool) error {
	if d.cfg.Snaps == nil {
		return nil
	}
	return d.cfg.Snaps.Emit(buildSnapshot(d, b, w, reward, penalty))
}

func buildSnapshot(d *Driver, b *brain.Brain, w *world.World, reward, penalty bool) snapshot.Snapshot {
	neurons := make([]snapshot.Neuron, len(b.Neurons))
	for i, n := range b.Neurons {
		neurons[i] = snapshot.Neuron{ID: i, Voltage: n.Voltage, Spiked: n.SpikedThisStep}
	}

	var syns []snapshot.Synapse
	for i := range b.Synapses {
		for _, s := range b.Synapses[i] {
			syns = append(syns, snapshot.Synapse{
				Source:     i,
				Target:     s.Target,
				Confidence: s.Confidence,
				Active:     s.Active,
				Highlight:  s.Highlighted,
			})
		}
	}

	return snapshot.Snapshot{
		Tick:       d.Tick,
		Reward:     reward,
		Penalty:    penalty,
		RewardSum:  d.Counters.RewardSum,
		PenaltySum: d.Counters.PenaltySum,
		FoodTime:   d.Counters.FoodTime,
		DangerTime: d.Counters.DangerTime,
		World: snapshot.World{
			Agent:  w.AgentPos,
			Target: w.TargetPos,
			Type:   snapshot.TargetType(w.TargetType),
			Food:   w.FoodEaten,
			Danger: w.DangerHit,
			Dist:   w.Distance(),
		},
		Neurons:  neurons,
		Synapses: syns,
	}
}

func (d *Driver) checkInvariants(b *brain.Brain) error {
	if err := invariant.CheckNeurons(d.cfg.Params, b); err != nil {
		return err
	}
	return invariant.CheckSynapses(d.cfg.Params, b)
}
