package rtclock

import (
	"fmt"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
)

// deliverInterruptPort looks up portID on top and appends payload to its
// bag, failing with cerrors.IncompatiblePort if the port doesn't exist or
// the payload's dynamic type doesn't match the port's payload type.
// Grounded on chrono.hpp's ChronoClock::waitUntil interrupt-delivery
// branch: it builds a one-off component with an output port matching the
// payload type and propagates it into the top model's port after a
// compatibility check; here AddAny plays that role directly.
func deliverInterruptPort(top *devs.Coupled, portID string, payload any) error {
	port, err := top.GetInPort(portID)
	if err != nil {
		return cerrors.NewIncompatiblePort(portID, fmt.Sprintf("%T", payload))
	}
	if addErr := port.AddAny(payload); addErr != nil {
		return cerrors.NewIncompatiblePort(portID, fmt.Sprintf("%T", payload))
	}
	return nil
}
