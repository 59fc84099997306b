// Package simulation implements the hierarchical simulator/coordinator
// protocol (spec §4.4-§4.9): AtomicSimulator and Coordinator advance a
// devs.Component tree in lock step; RootCoordinator, ParallelRootCoordinator
// and RealTimeRootCoordinator drive that tree to completion.
package simulation

import (
	"math"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/simulation/logger"
)

// Simulator is the common runtime wrapper interface AtomicSimulator and
// Coordinator both satisfy (spec §3 "Simulator runtime objects",
// grounded on include/cadmium/simulation/core/abs_simulator.hpp's
// AbstractSimulator).
type Simulator interface {
	ModelID() int
	SetModelID(next int) int
	TimeLast() float64
	TimeNext() float64
	SetLogger(l logger.Logger)
	Start(t float64)
	Stop(t float64)
	Collection(t float64) error
	Transition(t float64) error
	Clear()
}

// AtomicSimulator is the per-atomic runtime wrapper (spec §4.4): it tracks
// timeLast/timeNext and mediates output + transition dispatch for a single
// devs.AtomicModel.
type AtomicSimulator struct {
	model    devs.AtomicModel
	modelID  int
	timeLast float64
	timeNext float64
	log      logger.Logger
}

// NewAtomicSimulator wraps model. The caller must still call Start before
// Collection/Transition are meaningful.
func NewAtomicSimulator(model devs.AtomicModel) (*AtomicSimulator, error) {
	if model == nil {
		return nil, cerrors.NewNoAtomicBehind("")
	}
	return &AtomicSimulator{model: model, timeNext: math.Inf(1), log: logger.Nop{}}, nil
}

func (s *AtomicSimulator) ModelID() int     { return s.modelID }
func (s *AtomicSimulator) TimeLast() float64 { return s.timeLast }
func (s *AtomicSimulator) TimeNext() float64 { return s.timeNext }

func (s *AtomicSimulator) SetModelID(next int) int {
	s.modelID = next
	return next + 1
}

func (s *AtomicSimulator) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.Nop{}
	}
	s.log = l
}

// Start sets timeLast=t, timeNext=t+TimeAdvance(state), and logs the
// initial state (spec §4.4).
func (s *AtomicSimulator) Start(t float64) {
	s.timeLast = t
	s.timeNext = t + s.model.TimeAdvance()
	s.log.LogState(t, s.modelID, s.model.ID(), s.model.LogState())
}

// Stop logs the final state (spec §4.4).
func (s *AtomicSimulator) Stop(t float64) {
	s.log.LogState(t, s.modelID, s.model.ID(), s.model.LogState())
}

// Collection invokes Output if t >= timeNext, else it is a no-op (spec
// §4.4).
func (s *AtomicSimulator) Collection(t float64) error {
	if t >= s.timeNext {
		s.model.Output()
	}
	return nil
}

// Transition dispatches internal/external/confluent per the predicate
// table in spec §4.4, updates (timeLast, timeNext), and logs outputs (if
// an event fired) and the resulting state. Outputs are logged here, during
// the transition phase (see DESIGN.md's open-question decision).
func (s *AtomicSimulator) Transition(t float64) error {
	inEmpty := s.model.InEmpty()
	eventFired := true
	switch {
	case inEmpty && t < s.timeNext:
		eventFired = false
	case inEmpty:
		s.model.InternalTransition()
	default:
		e := t - s.timeLast
		if e < 0 {
			return cerrors.NewInvalidNegativeElapsed(s.model.ID(), e)
		}
		if t < s.timeNext {
			s.model.ExternalTransition(e)
		} else {
			s.model.ConfluentTransition(e)
		}
	}

	if eventFired {
		if t >= s.timeNext {
			for _, p := range s.model.OutPorts() {
				for i := 0; i < p.Size(); i++ {
					s.log.LogOutput(t, s.modelID, s.model.ID(), p.ID(), p.LogMessage(i))
				}
			}
		}
		s.timeLast = t
		s.timeNext = t + s.model.TimeAdvance()
	}
	s.log.LogState(t, s.modelID, s.model.ID(), s.model.LogState())
	return nil
}

// Clear clears the wrapped atomic's ports.
func (s *AtomicSimulator) Clear() {
	s.model.ClearPorts()
}

var _ Simulator = (*AtomicSimulator)(nil)
