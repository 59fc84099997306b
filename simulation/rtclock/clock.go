// Package rtclock provides the real-time pacing abstraction (spec §4.9):
// a Clock maps virtual-time advances to wall-clock waits, optionally
// enforcing a jitter ceiling and/or injecting asynchronous interrupts into
// the top model.
package rtclock

import "github.com/SimulationEverywhere/cadmium-v2-sub000/devs"

// Clock is a pacing strategy with one blocking method, WaitUntil (spec
// §4.9/§6). Implementations track vTimeLast (last returned virtual time)
// and rTimeLast (last known wall time) and guarantee monotone virtual
// time: successive WaitUntil calls receive non-decreasing timeNext.
type Clock interface {
	// Start initializes the clock's wall/virtual time bookkeeping at the
	// simulation's starting virtual time.
	Start(timeLast float64)
	// Stop finalizes bookkeeping at the simulation's ending virtual time.
	Stop(timeLast float64)
	// WaitUntil blocks until wall time has advanced by at least
	// timeNext - vTimeLast (or an interrupt arrives first), then returns
	// the actual virtual time reached. Returns a *cerrors.JitterExceeded
	// error if a configured jitter ceiling is exceeded.
	WaitUntil(timeNext float64) (float64, error)
}

// InterruptHandler is a non-blocking poll/consume pair for asynchronous
// external events (spec §6 "Interrupt handler interface").
type InterruptHandler interface {
	// ISRReady reports whether a payload is pending; idempotent, safe to
	// call repeatedly while a payload is pending.
	ISRReady() bool
	// Decode consumes the pending payload and returns it along with the
	// id of the top-model input port it must be delivered to. Called at
	// most once per ready edge.
	Decode() (payload any, portID string)
}

// Base implements the default, no-op-wait Clock: WaitUntil immediately
// advances vTimeLast to timeNext and returns it, performing no actual
// wall-clock wait. It is the baseline every real pacer embeds and falls
// back to (grounded on include/cadmium/simulation/rt_clock/rt_clock.hpp's
// RealTimeClock base).
type Base struct {
	VTimeLast float64
}

func (b *Base) Start(timeLast float64) { b.VTimeLast = timeLast }
func (b *Base) Stop(timeLast float64)  { b.VTimeLast = timeLast }

func (b *Base) WaitUntil(timeNext float64) (float64, error) {
	b.VTimeLast = timeNext
	return timeNext, nil
}

var _ Clock = (*Base)(nil)

// deliverInterrupt builds a transient message on the named port of top from
// the decoded payload and propagates it in place, failing with
// cerrors.IncompatiblePort if the port doesn't exist or the payload type
// doesn't match (spec §4.9/§7).
func deliverInterrupt(top *devs.Coupled, portID string, payload any) error {
	return deliverInterruptPort(top, portID, payload)
}
