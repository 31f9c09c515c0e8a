package neuron

import (
	"testing"

	"rstdpnet/internal/params"
)

func TestIntegrateNoInputIsNoOp(t *testing.T) {
	cfg := params.Default()
	n := New(cfg)

	n.Integrate(cfg, false)

	if n.Voltage != cfg.VRest {
		t.Fatalf("expected voltage to stay at rest, got=%d", n.Voltage)
	}
	if n.SpikedThisStep {
		t.Fatalf("expected no spike with zero input")
	}
	if n.LeakTimer != cfg.MembraneDecayPeriod {
		t.Fatalf("expected leak timer held at decay period, got=%d", n.LeakTimer)
	}
}

func TestIntegrateExternalInputCrossesThreshold(t *testing.T) {
	cfg := params.Default()
	n := New(cfg)

	n.Integrate(cfg, true)

	if !n.SpikedThisStep {
		t.Fatalf("expected a sensor pulse of V_THRESH to cross threshold immediately")
	}
	if n.Voltage != cfg.VRest {
		t.Fatalf("expected voltage reset to rest after spike, got=%d", n.Voltage)
	}
	if n.RefractoryTimer != cfg.RefractoryPeriod {
		t.Fatalf("expected refractory timer set, got=%d", n.RefractoryTimer)
	}
}

func TestIntegrateRefractoryForcesRestAndClearsInput(t *testing.T) {
	cfg := params.Default()
	n := New(cfg)
	n.RefractoryTimer = 1
	n.InputBuffer = 3
	n.Voltage = 1

	n.Integrate(cfg, false)

	if n.RefractoryTimer != 0 {
		t.Fatalf("expected refractory timer to decrement to 0, got=%d", n.RefractoryTimer)
	}
	if n.Voltage != cfg.VRest || n.InputBuffer != 0 {
		t.Fatalf("expected voltage/input cleared during refractory, got v=%d buf=%d", n.Voltage, n.InputBuffer)
	}
	if n.SpikedThisStep {
		t.Fatalf("expected no spike while refractory")
	}
}

func TestIntegrateLeaksAfterDecayPeriodOfInactivity(t *testing.T) {
	cfg := params.Default()
	cfg.MembraneDecayPeriod = 2
	n := New(cfg)
	n.Voltage = 1
	n.LeakTimer = 1

	n.Integrate(cfg, false)

	if n.Voltage != 0 {
		t.Fatalf("expected voltage to decay by one once leak timer hits zero, got=%d", n.Voltage)
	}
	if n.LeakTimer != cfg.MembraneDecayPeriod {
		t.Fatalf("expected leak timer reset after decay, got=%d", n.LeakTimer)
	}
}

func TestAddContributionAndShiftHistory(t *testing.T) {
	cfg := params.Default()
	cfg.MaxHist = 3
	n := New(cfg)

	n.AddContribution(Contribution{FromNeuron: 2, SynIndex: 0})
	n.SpikedThisStep = true
	n.ShiftHistory()

	if len(n.ContribHistory[0]) != 1 || n.ContribHistory[0][0].FromNeuron != 2 {
		t.Fatalf("expected contribution recorded at history slot 0, got=%v", n.ContribHistory[0])
	}
	if !n.SpikeHistory[0] {
		t.Fatalf("expected spike history slot 0 to record the spike")
	}

	n.SpikedThisStep = false
	n.ShiftHistory()

	if len(n.ContribHistory[1]) != 1 {
		t.Fatalf("expected previous tick's contribution rotated into slot 1")
	}
	if !n.SpikeHistory[1] {
		t.Fatalf("expected previous tick's spike rotated into slot 1")
	}
	if len(n.ContribHistory[0]) != 0 || n.SpikeHistory[0] {
		t.Fatalf("expected slot 0 cleared for the no-contribution tick")
	}
}
