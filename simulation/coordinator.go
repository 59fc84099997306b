package simulation

import (
	"math"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/simulation/logger"
)

// Coordinator is the per-coupled runtime wrapper (spec §4.5): it
// recursively drives its children's Simulators and routes messages along
// its couplings. Grounded on include/cadmium/simulation/core/coordinator.hpp.
type Coordinator struct {
	model      *devs.Coupled
	children   []Simulator
	modelID    int
	timeLast   float64
	timeNext   float64
	log        logger.Logger
}

// NewCoordinator builds a Coordinator for model, recursively constructing
// an AtomicSimulator or Coordinator for each child depending on its
// concrete kind.
func NewCoordinator(model *devs.Coupled) (*Coordinator, error) {
	if model == nil {
		return nil, cerrors.NewNoTopModel()
	}
	c := &Coordinator{model: model, timeNext: math.Inf(1), log: logger.Nop{}}
	for _, child := range model.Children() {
		switch m := child.(type) {
		case devs.AtomicModel:
			atomicSim, err := NewAtomicSimulator(m)
			if err != nil {
				return nil, err
			}
			c.children = append(c.children, atomicSim)
		case *devs.Coupled:
			childCoord, err := NewCoordinator(m)
			if err != nil {
				return nil, err
			}
			c.children = append(c.children, childCoord)
		default:
			return nil, cerrors.NewInvalidCouplingEndpoint(model.ID(), "component is not a coupled nor atomic model")
		}
	}
	for _, child := range c.children {
		if child.TimeNext() < c.timeNext {
			c.timeNext = child.TimeNext()
		}
	}
	return c, nil
}

func (c *Coordinator) Model() *devs.Coupled { return c.model }
func (c *Coordinator) ModelID() int          { return c.modelID }
func (c *Coordinator) TimeLast() float64     { return c.timeLast }
func (c *Coordinator) TimeNext() float64     { return c.timeNext }

// SetModelID assigns ids depth-first: self first, then children in order
// (spec §4.5).
func (c *Coordinator) SetModelID(next int) int {
	c.modelID = next
	next++
	for _, child := range c.children {
		next = child.SetModelID(next)
	}
	return next
}

// SetLogger forwards the logger to every descendant simulator.
func (c *Coordinator) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.Nop{}
	}
	c.log = l
	for _, child := range c.children {
		child.SetLogger(l)
	}
}

func (c *Coordinator) Start(t float64) {
	c.timeLast = t
	c.timeNext = math.Inf(1)
	for _, child := range c.children {
		child.Start(t)
		if child.TimeNext() < c.timeNext {
			c.timeNext = child.TimeNext()
		}
	}
}

func (c *Coordinator) Stop(t float64) {
	for _, child := range c.children {
		child.Stop(t)
	}
}

// Collection runs each child's Collection in insertion order when t >=
// timeNext, then propagates IC couplings and finally EOC couplings, both
// in insertion order (spec §4.5; this ordering makes the output pass
// top-down-deterministic, P-PropagationOrder).
func (c *Coordinator) Collection(t float64) error {
	if t < c.timeNext {
		return nil
	}
	for _, child := range c.children {
		if err := child.Collection(t); err != nil {
			return err
		}
	}
	for _, cpl := range c.model.IC() {
		if err := cpl.To.Propagate(cpl.From); err != nil {
			return err
		}
	}
	for _, cpl := range c.model.EOC() {
		if err := cpl.To.Propagate(cpl.From); err != nil {
			return err
		}
	}
	return nil
}

// Transition propagates EIC couplings, recursively transitions every
// child, and recomputes timeNext as the min of child timeNexts (spec
// §4.5).
func (c *Coordinator) Transition(t float64) error {
	for _, cpl := range c.model.EIC() {
		if err := cpl.To.Propagate(cpl.From); err != nil {
			return err
		}
	}
	c.timeLast = t
	c.timeNext = math.Inf(1)
	for _, child := range c.children {
		if err := child.Transition(t); err != nil {
			return err
		}
		if child.TimeNext() < c.timeNext {
			c.timeNext = child.TimeNext()
		}
	}
	return nil
}

// Clear recursively clears every child simulator, then this coupled's own
// ports (spec §4.5).
func (c *Coordinator) Clear() {
	for _, child := range c.children {
		child.Clear()
	}
	c.model.ClearPorts()
}

var _ Simulator = (*Coordinator)(nil)
