package simulation

import (
	"math"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/simulation/rtclock"
)

// RealTimeRootCoordinator composes the sequential RootCoordinator with a
// rtclock.Clock: before each tick it calls clock.WaitUntil(timeNext) and
// uses the returned value as the actual advance time (spec §4.9). The
// rest of the loop is unchanged from RootCoordinator.
type RealTimeRootCoordinator struct {
	*RootCoordinator
	clock rtclock.Clock
}

// NewRealTimeRootCoordinator builds a RealTimeRootCoordinator over model,
// paced by clock, starting at virtual time 0.
func NewRealTimeRootCoordinator(model *devs.Coupled, clock rtclock.Clock, cfg *Config) (*RealTimeRootCoordinator, error) {
	rc, err := NewRootCoordinator(model, cfg)
	if err != nil {
		return nil, err
	}
	return &RealTimeRootCoordinator{RootCoordinator: rc, clock: clock}, nil
}

// Start starts the wrapped RootCoordinator and the clock, in that order
// (spec §4.9).
func (r *RealTimeRootCoordinator) Start() {
	r.RootCoordinator.Start()
	r.clock.Start(r.top.TimeLast())
}

// Stop stops the clock, then the wrapped RootCoordinator (spec §4.9).
func (r *RealTimeRootCoordinator) Stop() {
	r.clock.Stop(r.top.TimeLast())
	r.RootCoordinator.Stop()
}

func (r *RealTimeRootCoordinator) advanceTo(t float64) error {
	actual, err := r.clock.WaitUntil(t)
	if err != nil {
		return err
	}
	return r.simulationAdvance(actual)
}

// SimulateIterations runs the real-time-paced loop for up to nIterations
// ticks.
func (r *RealTimeRootCoordinator) SimulateIterations(nIterations int) error {
	return r.loop(func() bool { return nIterations > 0 }, func() { nIterations-- }, r)
}

// SimulateTime runs the real-time-paced loop until timeNext reaches
// timeLast()+timeInterval. With timeInterval == +Inf, it runs until
// timeNext reaches +Inf, as the sequential driver does.
func (r *RealTimeRootCoordinator) SimulateTime(timeInterval float64) error {
	timeFinal := r.top.TimeLast() + timeInterval
	infinite := math.IsInf(timeInterval, 1)
	return r.loop(func() bool { return infinite || r.top.TimeNext() < timeFinal }, func() {}, r)
}
