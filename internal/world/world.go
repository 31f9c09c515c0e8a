// Package world implements the 1-D track, timed food/danger targets, and
// the reward/penalty gradient the brain is trained against (spec §4.F).
package world

import (
	"math/rand"

	"rstdpnet/internal/params"
)

// TargetType is the kind of target currently present on the track.
type TargetType int

const (
	TargetNone TargetType = iota
	TargetFood
	TargetDanger
)

const (
	minTargetLifetime = 3000
	maxTargetLifetime = 5000
)

// Sensors are the four binary sensory bits fed to the brain's sensor
// neurons. Exactly one is set whenever a target is present.
type Sensors struct {
	FoodLeft    bool
	FoodRight   bool
	DangerLeft  bool
	DangerRight bool
}

// UpdateResult is the reward/penalty signal produced by one call to Update.
type UpdateResult struct {
	Reward  bool
	Penalty bool
}

// World is the track state: agent position, current target, and running
// collision counters.
type World struct {
	cfg params.Config
	rng *rand.Rand

	Size int

	AgentPos    int
	TargetPos   int
	TargetType  TargetType
	targetTimer int

	FoodEaten int
	DangerHit int
}

// New constructs a world with no target present; the first call to Update
// spawns one.
func New(cfg params.Config, rng *rand.Rand) *World {
	w := &World{cfg: cfg, rng: rng, Size: cfg.WorldSize}
	w.AgentPos = w.center()
	return w
}

func (w *World) center() int { return w.Size / 2 }

// spawnTarget chooses a new target kind, lifetime, and (for FOOD/DANGER)
// side, and resets the agent to the centre (spec §4.F Spawn).
func (w *World) spawnTarget() {
	switch w.rng.Intn(3) {
	case 0:
		w.TargetType = TargetFood
	case 1:
		w.TargetType = TargetDanger
	default:
		w.TargetType = TargetNone
	}

	lifetime := minTargetLifetime + w.rng.Intn(maxTargetLifetime-minTargetLifetime+1)
	if w.TargetType == TargetNone {
		lifetime /= 3
	}
	w.targetTimer = lifetime

	w.AgentPos = w.center()

	if w.TargetType != TargetNone {
		if w.rng.Intn(2) == 0 {
			w.TargetPos = 0
		} else {
			w.TargetPos = w.Size - 1
		}
	}
}

// Distance returns the current |agent - target| distance, or 0 when no
// target is present.
func (w *World) Distance() int {
	if w.TargetType == TargetNone {
		return 0
	}
	return absInt(w.AgentPos - w.TargetPos)
}

// ReadSensors returns the four binary sensor bits; exactly one is set when a
// target is present, none when it is not (spec §4.F Sensors).
func (w *World) ReadSensors() Sensors {
	var s Sensors
	if w.TargetType == TargetNone {
		return s
	}
	isLeft := w.TargetPos < w.AgentPos
	switch w.TargetType {
	case TargetFood:
		s.FoodLeft = isLeft
		s.FoodRight = !isLeft
	case TargetDanger:
		s.DangerLeft = isLeft
		s.DangerRight = !isLeft
	}
	return s
}

// Update advances the world by one tick given the (already motor-conflict-
// resolved) movement this tick, and returns the reward/penalty signal for
// this tick (spec §4.F Update).
func (w *World) Update(moveLeft, moveRight bool) UpdateResult {
	if w.targetTimer <= 0 {
		w.spawnTarget()
	}

	if w.TargetType == TargetNone {
		w.driftToCentre()
	}

	prevDist := w.Distance()

	if moveLeft {
		w.AgentPos--
	}
	if moveRight {
		w.AgentPos++
	}

	var res UpdateResult
	if w.TargetType != TargetNone {
		currDist := w.Distance()
		switch w.TargetType {
		case TargetFood:
			res.Reward = currDist < prevDist
			res.Penalty = currDist > prevDist
		case TargetDanger:
			res.Reward = currDist > prevDist
			res.Penalty = currDist < prevDist
		}

		if currDist == 0 {
			switch w.TargetType {
			case TargetFood:
				w.FoodEaten++
				res.Reward = true
				res.Penalty = false
			case TargetDanger:
				w.DangerHit++
				res.Penalty = true
				res.Reward = false
			}
			w.AgentPos = w.center()
		}
	}

	if w.targetTimer > 0 {
		w.targetTimer--
		if w.targetTimer <= 0 {
			w.TargetType = TargetNone
		}
	}

	return res
}

func (w *World) driftToCentre() {
	mid := w.center()
	switch {
	case w.AgentPos < mid:
		w.AgentPos++
	case w.AgentPos > mid:
		w.AgentPos--
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
