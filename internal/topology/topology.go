// Package topology builds the deterministic and random wiring of a fresh
// brain (spec §4.D) and answers the permitted-rewire-target query the tick
// engine's pruning phase reuses (§4.E phase 3).
package topology

import (
	"math/rand"

	"rstdpnet/internal/params"
	"rstdpnet/internal/synapse"
)

// Wire is one synapse to add to a source neuron's outgoing list during
// construction.
type Wire struct {
	Source     int
	Target     int
	Confidence int
	Plastic    bool
}

// Build returns every wire a fresh brain of cfg.BrainSize neurons should
// start with: the deterministic sensor/motor wires, the random hidden-hidden
// wires drawn at cfg.ConnectionDensity, and the motor-fanin repair pass
// guaranteeing each motor-fanin neuron (10, 11) has at least one incoming
// synapse. rng must be an
// explicitly seeded source so construction is reproducible (spec.md's
// Randomness design note).
func Build(cfg params.Config, rng *rand.Rand) []Wire {
	wires := deterministicWires(cfg)
	wires = append(wires, randomHiddenWires(cfg, rng)...)
	wires = append(wires, repairMotorFanin(cfg, wires, rng)...)
	return wires
}

// deterministicWires returns the six fixed, non-plastic wires (§4.D step 1):
// each sensor to its dedicated fanout neuron, and each motor-fanin neuron to
// its dedicated motor.
func deterministicWires(cfg params.Config) []Wire {
	return []Wire{
		{Source: 0, Target: 6, Confidence: cfg.ConfidenceMax, Plastic: false},
		{Source: 1, Target: 7, Confidence: cfg.ConfidenceMax, Plastic: false},
		{Source: 2, Target: 8, Confidence: cfg.ConfidenceMax, Plastic: false},
		{Source: 3, Target: 9, Confidence: cfg.ConfidenceMax, Plastic: false},
		{Source: 10, Target: 4, Confidence: cfg.ConfidenceMax, Plastic: false},
		{Source: 11, Target: 5, Confidence: cfg.ConfidenceMax, Plastic: false},
	}
}

// randomHiddenWires draws every ordered pair (i, j) in 6..N-1 with
// i != j and, subject to the directional constraints in
// synapse.PermittedHiddenLink, includes it with probability
// cfg.ConnectionDensity (§4.D step 2). Initial confidence is uniform over
// [ConfidenceInitLow, ConfidenceInitHigh].
func randomHiddenWires(cfg params.Config, rng *rand.Rand) []Wire {
	var wires []Wire
	for i := synapse.SensorFanoutLow; i < cfg.BrainSize; i++ {
		for j := synapse.SensorFanoutLow; j < cfg.BrainSize; j++ {
			if i == j {
				continue
			}
			if !synapse.PermittedHiddenLink(i, j) {
				continue
			}
			if rng.Float64() >= cfg.ConnectionDensity {
				continue
			}
			wires = append(wires, Wire{
				Source:     i,
				Target:     j,
				Confidence: randomConfidence(cfg, rng),
				Plastic:    true,
			})
		}
	}
	return wires
}

// repairMotorFanin adds one plastic synapse at ConfidenceThr from a uniformly
// random hidden source (12..29) into each of 10 and 11 that, after the
// random pass, still has no incoming synapse (§4.D step 3).
func repairMotorFanin(cfg params.Config, existing []Wire, rng *rand.Rand) []Wire {
	hasIncoming := map[int]bool{}
	for _, w := range existing {
		hasIncoming[w.Target] = true
	}

	const hiddenLow, hiddenHigh = 12, 29

	var repairs []Wire
	for _, motorFanin := range []int{synapse.MotorFaninLow, synapse.MotorFaninHigh} {
		if hasIncoming[motorFanin] {
			continue
		}
		hi := hiddenHigh
		if hi >= cfg.BrainSize {
			hi = cfg.BrainSize - 1
		}
		source := hiddenLow + rng.Intn(hi-hiddenLow+1)
		repairs = append(repairs, Wire{
			Source:     source,
			Target:     motorFanin,
			Confidence: cfg.ConfidenceThr,
			Plastic:    true,
		})
	}
	return repairs
}

func randomConfidence(cfg params.Config, rng *rand.Rand) int {
	span := cfg.ConfidenceInitHigh - cfg.ConfidenceInitLow + 1
	return cfg.ConfidenceInitLow + rng.Intn(span)
}

// PermittedRewireTargets returns every hidden-range index pruning may
// re-target source's synapse to: indices 6..N-1 honoring
// synapse.PermittedHiddenLink, excluding source itself and any target
// already present in existingTargets (§4.E phase 3).
func PermittedRewireTargets(cfg params.Config, source int, existingTargets map[int]bool) []int {
	var permitted []int
	for j := synapse.SensorFanoutLow; j < cfg.BrainSize; j++ {
		if j == source {
			continue
		}
		if existingTargets[j] {
			continue
		}
		if !synapse.PermittedHiddenLink(source, j) {
			continue
		}
		permitted = append(permitted, j)
	}
	return permitted
}
