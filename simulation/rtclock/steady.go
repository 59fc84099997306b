package rtclock

import (
	"math"
	"time"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
	"github.com/sirupsen/logrus"
)

// pollInterval is how often Steady polls for a pending interrupt while
// waiting; grounded on chrono.hpp's 1-microsecond sleep in the
// interrupts-enabled branch of the wait loop.
const pollInterval = time.Microsecond

// Steady is a wall-clock pacer grounded on
// include/cadmium/simulation/rt_clock/chrono.hpp's ChronoClock: it maps a
// virtual time advance to a real sleep, optionally polling an
// InterruptHandler and returning early when one fires, and optionally
// failing with cerrors.JitterExceeded when the wall overshoot is too
// large.
type Steady struct {
	Base

	// Top is the top coupled model, required only when Handler is set (an
	// interrupt must be delivered to one of its input ports).
	Top *devs.Coupled
	// Handler, if non-nil, is polled during WaitUntil; a ready interrupt
	// interrupts the wait and is delivered to the top model.
	Handler InterruptHandler
	// MaxJitter, if > 0, bounds the acceptable wall-time overshoot past
	// the computed deadline.
	MaxJitter time.Duration
	// Log receives Debug/Warn records around start/stop/jitter; nil is
	// safe and discards.
	Log *logrus.Entry

	rTimeLast time.Time
	startTime time.Time
	started   bool

	// now is overridable for tests; defaults to time.Now.
	now func() time.Time
}

func (c *Steady) clockNow() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Steady) Start(timeLast float64) {
	c.Base.Start(timeLast)
	c.rTimeLast = c.clockNow()
	c.startTime = c.rTimeLast
	c.started = true
	if c.Log != nil {
		c.Log.WithField("vTimeLast", timeLast).Debug("rtclock: start")
	}
}

func (c *Steady) Stop(timeLast float64) {
	c.Base.Stop(timeLast)
	if c.Log != nil {
		c.Log.WithField("vTimeLast", timeLast).Debug("rtclock: stop")
	}
}

// WaitUntil waits until wall time has advanced by timeNext - vTimeLast (or
// an interrupt fires first), delivers any fired interrupt, and returns the
// actual virtual time reached.
func (c *Steady) WaitUntil(timeNext float64) (float64, error) {
	if !c.started {
		c.Start(c.VTimeLast)
	}
	infinite := math.IsInf(timeNext, 1)
	rTimePrev := c.rTimeLast
	var deadline time.Time
	if infinite {
		deadline = time.Time{} // unused; loop condition handles infinity
	} else {
		duration := time.Duration((timeNext - c.VTimeLast) * float64(time.Second))
		c.rTimeLast = c.rTimeLast.Add(duration)
		deadline = c.rTimeLast
	}

	for infinite || c.clockNow().Before(deadline) {
		if c.Handler != nil && c.Handler.ISRReady() {
			payload, portID := c.Handler.Decode()
			if c.Top == nil {
				return c.VTimeLast, cerrors.NewIncompatiblePort(portID, "no top model attached to clock")
			}
			if err := deliverInterrupt(c.Top, portID, payload); err != nil {
				if c.Log != nil {
					c.Log.WithError(err).Warn("rtclock: interrupt delivery failed")
				}
				return c.VTimeLast, err
			}
			c.rTimeLast = c.clockNow()
			break
		}
		time.Sleep(pollInterval)
	}

	if c.MaxJitter > 0 {
		overshoot := c.clockNow().Sub(c.rTimeLast)
		if overshoot > c.MaxJitter {
			if c.Log != nil {
				c.Log.WithFields(logrus.Fields{
					"overshoot": overshoot, "max": c.MaxJitter,
				}).Warn("rtclock: jitter exceeded")
			}
			return c.VTimeLast, cerrors.NewJitterExceeded(overshoot.Seconds(), c.MaxJitter.Seconds())
		}
	}

	wallEquivalent := c.VTimeLast + c.clockNow().Sub(rTimePrev).Seconds()
	actual := timeNext
	if !infinite && wallEquivalent < actual {
		actual = wallEquivalent
	}
	c.VTimeLast = actual
	return actual, nil
}

var _ Clock = (*Steady)(nil)
