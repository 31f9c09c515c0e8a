package world

import (
	"math/rand"
	"testing"

	"rstdpnet/internal/params"
)

func TestNewStartsAgentAtCentreWithNoTarget(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))

	if w.AgentPos != cfg.WorldSize/2 {
		t.Fatalf("expected agent at centre, got=%d", w.AgentPos)
	}
	if w.TargetType != TargetNone {
		t.Fatalf("expected no target before the first Update")
	}
}

func TestReadSensorsSetsExactlyOneBitWhenTargetPresent(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))
	w.TargetType = TargetFood
	w.TargetPos = 0
	w.AgentPos = cfg.WorldSize / 2

	s := w.ReadSensors()
	set := 0
	for _, b := range []bool{s.FoodLeft, s.FoodRight, s.DangerLeft, s.DangerRight} {
		if b {
			set++
		}
	}
	if set != 1 {
		t.Fatalf("expected exactly one sensor bit set, got=%d (%+v)", set, s)
	}
	if !s.FoodLeft {
		t.Fatalf("expected food target to the left of centre to set FoodLeft")
	}
}

func TestReadSensorsAllClearWithNoTarget(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))

	s := w.ReadSensors()
	if s.FoodLeft || s.FoodRight || s.DangerLeft || s.DangerRight {
		t.Fatalf("expected all sensor bits clear with no target, got=%+v", s)
	}
}

func TestUpdateRewardsMovementTowardFood(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))
	w.TargetType = TargetFood
	w.TargetPos = 0
	w.AgentPos = 5
	w.targetTimer = 100

	res := w.Update(true, false)

	if !res.Reward || res.Penalty {
		t.Fatalf("expected moving toward food to reward, got=%+v", res)
	}
}

func TestUpdatePenalizesMovementAwayFromFood(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))
	w.TargetType = TargetFood
	w.TargetPos = 0
	w.AgentPos = 5
	w.targetTimer = 100

	res := w.Update(false, true)

	if res.Reward || !res.Penalty {
		t.Fatalf("expected moving away from food to penalize, got=%+v", res)
	}
}

func TestUpdateDangerRewardsMovingAway(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))
	w.TargetType = TargetDanger
	w.TargetPos = 0
	w.AgentPos = 5
	w.targetTimer = 100

	res := w.Update(false, true)

	if !res.Reward || res.Penalty {
		t.Fatalf("expected moving away from danger to reward, got=%+v", res)
	}
}

func TestUpdateCollisionWithFoodResetsAgentAndCounts(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))
	w.TargetType = TargetFood
	w.TargetPos = 4
	w.AgentPos = 5
	w.targetTimer = 100

	res := w.Update(true, false)

	if !res.Reward || res.Penalty {
		t.Fatalf("expected collision with food to force reward, got=%+v", res)
	}
	if w.FoodEaten != 1 {
		t.Fatalf("expected food_eaten incremented, got=%d", w.FoodEaten)
	}
	if w.AgentPos != cfg.WorldSize/2 {
		t.Fatalf("expected agent reset to centre after eating, got=%d", w.AgentPos)
	}
}

func TestUpdateTargetExpiresAfterLifetime(t *testing.T) {
	cfg := params.Default()
	w := New(cfg, rand.New(rand.NewSource(1)))
	w.TargetType = TargetFood
	w.TargetPos = 0
	w.AgentPos = 30
	w.targetTimer = 1

	w.Update(false, false)

	if w.TargetType != TargetNone {
		t.Fatalf("expected target to expire once its timer reaches zero")
	}
}
