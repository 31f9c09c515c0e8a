package control

import "testing"

func TestNewStateStartsRunningUnpaused(t *testing.T) {
	s := NewState(50)

	if !s.Running() {
		t.Fatalf("expected new state to be running")
	}
	if s.Paused() {
		t.Fatalf("expected new state to be unpaused")
	}
	if s.DelayMs() != 50 {
		t.Fatalf("expected initial delay 50, got=%d", s.DelayMs())
	}
}

func TestPauseResumeIsIdempotent(t *testing.T) {
	s := NewState(0)

	s.Pause()
	s.Pause()
	if !s.Paused() {
		t.Fatalf("expected state paused after two Pause calls")
	}

	s.Resume()
	s.Resume()
	if s.Paused() {
		t.Fatalf("expected state unpaused after two Resume calls")
	}
}

func TestSetDelayMsClampsNegative(t *testing.T) {
	s := NewState(0)
	s.SetDelayMs(-5)
	if s.DelayMs() != 0 {
		t.Fatalf("expected negative delay clamped to 0, got=%d", s.DelayMs())
	}
}

func TestRequestResetAndClear(t *testing.T) {
	s := NewState(0)
	s.RequestReset()
	if !s.Reset() {
		t.Fatalf("expected reset requested")
	}
	s.ClearReset()
	if s.Reset() {
		t.Fatalf("expected reset cleared")
	}
}

func TestStopClearsRunning(t *testing.T) {
	s := NewState(0)
	s.Stop()
	if s.Running() {
		t.Fatalf("expected state stopped")
	}
}
