package rtclock

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
)

// sequenceClock returns each successive value in times on every call, then
// repeats the last value; it lets a test drive Steady's internal clock
// deterministically instead of sleeping on the wall clock.
func sequenceClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		if i < len(times) {
			t := times[i]
			i++
			return t
		}
		return times[len(times)-1]
	}
}

// TestSteadyWaitUntilMatchesDeadline checks the no-overshoot path: when wall
// time reaches the deadline exactly, WaitUntil returns timeNext and no
// error, without sleeping past it.
func TestSteadyWaitUntilMatchesDeadline(t *testing.T) {
	base := time.Unix(0, 0)
	c := &Steady{now: sequenceClock(base, base.Add(time.Second), base.Add(time.Second))}
	c.Start(0)

	actual, err := c.WaitUntil(1.0)
	require.NoError(t, err)
	require.Equal(t, 1.0, actual)
}

// TestSteadyJitterExceeded checks that an overshoot past MaxJitter returns
// cerrors.JitterExceeded rather than silently accepting the late wake-up.
func TestSteadyJitterExceeded(t *testing.T) {
	base := time.Unix(0, 0)
	overshotNow := base.Add(2 * time.Second)
	c := &Steady{
		MaxJitter: time.Millisecond,
		now:       sequenceClock(base, overshotNow, overshotNow, overshotNow),
	}
	c.Start(0)

	_, err := c.WaitUntil(1.0)
	require.Error(t, err)
	var jitterErr *cerrors.JitterExceeded
	require.True(t, errors.As(err, &jitterErr))
	require.Equal(t, 0.001, jitterErr.Max)
}

// TestSteadyInterruptDelivery checks that a ready InterruptHandler breaks
// the wait early and delivers its payload to the named top-model port.
func TestSteadyInterruptDelivery(t *testing.T) {
	top, err := newInterruptTestModel()
	require.NoError(t, err)

	handler := &fakeHandler{ready: true, payload: 0, port: "in"}
	base := time.Unix(0, 0)
	c := &Steady{
		Top:     top,
		Handler: handler,
		now:     sequenceClock(base, base, base.Add(time.Millisecond)),
	}
	c.Start(0)

	actual, err := c.WaitUntil(100.0)
	require.NoError(t, err)
	require.Less(t, actual, 100.0)

	port, err := top.GetInPort("in")
	require.NoError(t, err)
	require.False(t, port.Empty())
}

func newInterruptTestModel() (*devs.Coupled, error) {
	top := devs.NewCoupled("top")
	if _, err := devs.AddInTypedPort[int](top.Component, "in"); err != nil {
		return nil, err
	}
	return top, nil
}

type fakeHandler struct {
	ready   bool
	payload any
	port    string
	polled  bool
}

func (h *fakeHandler) ISRReady() bool {
	if h.polled {
		return false
	}
	h.polled = true
	return h.ready
}

func (h *fakeHandler) Decode() (any, string) { return h.payload, h.port }
