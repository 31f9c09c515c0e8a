// Package control holds the small set of atomic flags shared between the
// simulation goroutine and the command-reader goroutine (spec §5, §9 DESIGN
// NOTES: "Model this as an explicit control record owned by the driver, with
// atomic fields"). No other state crosses the goroutine boundary.
package control

import "sync/atomic"

// State is the atomic control record. The simulation goroutine reads it at
// most once per tick boundary (and once per 100ms spin while paused); the
// command-reader goroutine only ever writes to it.
type State struct {
	running atomic.Bool
	paused  atomic.Bool
	reset   atomic.Bool
	delayMs atomic.Int64
}

// NewState returns a control record for a running, unpaused simulation at
// the given initial tick delay.
func NewState(initialDelayMs int64) *State {
	s := &State{}
	s.running.Store(true)
	s.delayMs.Store(initialDelayMs)
	return s
}

func (s *State) Running() bool { return s.running.Load() }
func (s *State) Paused() bool  { return s.paused.Load() }
func (s *State) Reset() bool   { return s.reset.Load() }
func (s *State) DelayMs() int64 { return s.delayMs.Load() }

func (s *State) Start()       { s.paused.Store(false) }
func (s *State) Resume()      { s.paused.Store(false) }
func (s *State) Pause()       { s.paused.Store(true) }
func (s *State) Stop()        { s.running.Store(false) }
func (s *State) RequestReset() { s.reset.Store(true) }
func (s *State) ClearReset()  { s.reset.Store(false) }

// SetDelayMs clamps negative values to zero, matching the command stream's
// "speed <N>" contract (spec §6).
func (s *State) SetDelayMs(ms int64) {
	if ms < 0 {
		ms = 0
	}
	s.delayMs.Store(ms)
}
