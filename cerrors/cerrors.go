// Package cerrors defines the error taxonomy raised by the devs and
// simulation packages: structural errors detected at model-build or
// flatten time, simulation errors detected during dispatch, and the two
// real-time pacing errors (jitter overshoot, incompatible interrupt port).
package cerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind discriminates the concrete structural/simulation failure. Two errors
// compare equal under errors.Is when their Kind matches, regardless of the
// offending component/detail text, mirroring how callers in the original
// source caught CadmiumModelException/CadmiumSimulationException by type.
type Kind int

const (
	KindDuplicatePort Kind = iota
	KindDuplicateChild
	KindPortAlreadyOwned
	KindPortNotFound
	KindChildNotFound
	KindDuplicateCoupling
	KindTypeMismatch
	KindInvalidCouplingEndpoint

	KindNoTopModel
	KindNoAtomicBehind
	KindInvalidNegativeElapsed
)

func (k Kind) String() string {
	switch k {
	case KindDuplicatePort:
		return "DuplicatePort"
	case KindDuplicateChild:
		return "DuplicateChild"
	case KindPortAlreadyOwned:
		return "PortAlreadyOwned"
	case KindPortNotFound:
		return "PortNotFound"
	case KindChildNotFound:
		return "ChildNotFound"
	case KindDuplicateCoupling:
		return "DuplicateCoupling"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindInvalidCouplingEndpoint:
		return "InvalidCouplingEndpoint"
	case KindNoTopModel:
		return "NoTopModel"
	case KindNoAtomicBehind:
		return "NoAtomicBehind"
	case KindInvalidNegativeElapsed:
		return "InvalidNegativeElapsed"
	default:
		return "Unknown"
	}
}

// ModelStructureError is raised during model construction and flattening.
type ModelStructureError struct {
	Kind      Kind
	Component string // id of the component/coupled under construction
	Detail    string
}

func (e *ModelStructureError) Error() string {
	return fmt.Sprintf("model structure error: %s in %q: %s", e.Kind, e.Component, e.Detail)
}

func (e *ModelStructureError) Is(target error) bool {
	t, ok := target.(*ModelStructureError)
	return ok && t.Kind == e.Kind
}

func newModelErr(kind Kind, component, detail string) error {
	return errors.WithStack(&ModelStructureError{Kind: kind, Component: component, Detail: detail})
}

func NewDuplicatePort(component, port string) error {
	return newModelErr(KindDuplicatePort, component, fmt.Sprintf("port id %q already defined", port))
}

func NewDuplicateChild(component, child string) error {
	return newModelErr(KindDuplicateChild, component, fmt.Sprintf("child id %q already defined", child))
}

func NewPortAlreadyOwned(component, port string) error {
	return newModelErr(KindPortAlreadyOwned, component, fmt.Sprintf("port %q already belongs to another component", port))
}

func NewPortNotFound(component, port string) error {
	return newModelErr(KindPortNotFound, component, fmt.Sprintf("port %q not found", port))
}

func NewChildNotFound(component, child string) error {
	return newModelErr(KindChildNotFound, component, fmt.Sprintf("child %q not found", child))
}

func NewDuplicateCoupling(component, from, to string) error {
	return newModelErr(KindDuplicateCoupling, component, fmt.Sprintf("coupling %s -> %s already defined", from, to))
}

func NewTypeMismatch(component, detail string) error {
	return newModelErr(KindTypeMismatch, component, detail)
}

func NewInvalidCouplingEndpoint(component, detail string) error {
	return newModelErr(KindInvalidCouplingEndpoint, component, detail)
}

// SimulationError is raised during start-up and per-tick dispatch.
type SimulationError struct {
	Kind   Kind
	Model  string
	Detail string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation error: %s in %q: %s", e.Kind, e.Model, e.Detail)
}

func (e *SimulationError) Is(target error) bool {
	t, ok := target.(*SimulationError)
	return ok && t.Kind == e.Kind
}

func NewNoTopModel() error {
	return errors.WithStack(&SimulationError{Kind: KindNoTopModel, Model: "", Detail: "root coordinator has no top model"})
}

func NewNoAtomicBehind(model string) error {
	return errors.WithStack(&SimulationError{Kind: KindNoAtomicBehind, Model: model, Detail: "simulator has no atomic model behind it"})
}

func NewInvalidNegativeElapsed(model string, elapsed float64) error {
	return errors.WithStack(&SimulationError{
		Kind: KindInvalidNegativeElapsed, Model: model,
		Detail: fmt.Sprintf("negative elapsed time %g", elapsed),
	})
}

// JitterExceeded is raised by a RealTimeClock when the measured wall-time
// overshoot is greater than the configured maximum jitter.
type JitterExceeded struct {
	Overshoot float64
	Max       float64
}

func (e *JitterExceeded) Error() string {
	return fmt.Sprintf("real-time clock jitter exceeded: overshoot %g > max %g", e.Overshoot, e.Max)
}

func (e *JitterExceeded) Is(target error) bool {
	_, ok := target.(*JitterExceeded)
	return ok
}

func NewJitterExceeded(overshoot, max float64) error {
	return errors.WithStack(&JitterExceeded{Overshoot: overshoot, Max: max})
}

// IncompatiblePort is raised during interrupt injection when the named
// port's payload type does not match the decoded interrupt payload.
type IncompatiblePort struct {
	Port    string
	Decoded string
}

func (e *IncompatiblePort) Error() string {
	return fmt.Sprintf("incompatible port: port %q cannot accept decoded payload of type %s", e.Port, e.Decoded)
}

func (e *IncompatiblePort) Is(target error) bool {
	_, ok := target.(*IncompatiblePort)
	return ok
}

func NewIncompatiblePort(port, decodedType string) error {
	return errors.WithStack(&IncompatiblePort{Port: port, Decoded: decodedType})
}
