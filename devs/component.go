package devs

import "github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"

// ComponentInterface is the polymorphic view of a Component shared by
// atomics and coupleds: named node owning input/output port sets and a
// parent back-reference. Both Atomic[S] (via an embedded *Component) and
// *Coupled satisfy it, which is how the simulation package treats both
// uniformly wherever the spec's "Component" operations apply.
type ComponentInterface interface {
	ComponentRef
	Parent() *Coupled
	SetParent(*Coupled)
	InPorts() []Port
	OutPorts() []Port
	GetInPort(id string) (Port, error)
	GetOutPort(id string) (Port, error)
	ContainsInPort(p Port) bool
	ContainsOutPort(p Port) bool
	InEmpty() bool
	OutEmpty() bool
	ClearPorts()
}

// Component is the base node type: id, port maps, and a parent link
// (spec §3 Component, invariants I-C1..I-C3).
type Component struct {
	id     string
	parent *Coupled

	inPorts  map[string]Port
	outPorts map[string]Port

	serialIn  []Port
	serialOut []Port
}

// NewComponent creates a fresh, unattached component with no ports.
func NewComponent(id string) *Component {
	return &Component{
		id:       id,
		inPorts:  map[string]Port{},
		outPorts: map[string]Port{},
	}
}

func (c *Component) ID() string         { return c.id }
func (c *Component) Parent() *Coupled    { return c.parent }
func (c *Component) SetParent(p *Coupled) { c.parent = p }

func (c *Component) InPorts() []Port  { return c.serialIn }
func (c *Component) OutPorts() []Port { return c.serialOut }

func (c *Component) ContainsInPort(p Port) bool {
	existing, ok := c.inPorts[p.ID()]
	return ok && existing == p
}

func (c *Component) ContainsOutPort(p Port) bool {
	existing, ok := c.outPorts[p.ID()]
	return ok && existing == p
}

func (c *Component) GetInPort(id string) (Port, error) {
	p, ok := c.inPorts[id]
	if !ok {
		return nil, cerrors.NewPortNotFound(c.id, id)
	}
	return p, nil
}

func (c *Component) GetOutPort(id string) (Port, error) {
	p, ok := c.outPorts[id]
	if !ok {
		return nil, cerrors.NewPortNotFound(c.id, id)
	}
	return p, nil
}

// AddInPort attaches port to the component's input interface.
func (c *Component) AddInPort(p Port) error {
	if p.Parent() != nil {
		return cerrors.NewPortAlreadyOwned(c.id, p.ID())
	}
	if _, ok := c.inPorts[p.ID()]; ok {
		return cerrors.NewDuplicatePort(c.id, p.ID())
	}
	p.SetParent(c)
	c.serialIn = append(c.serialIn, p)
	c.inPorts[p.ID()] = p
	return nil
}

// AddOutPort attaches port to the component's output interface.
func (c *Component) AddOutPort(p Port) error {
	if p.Parent() != nil {
		return cerrors.NewPortAlreadyOwned(c.id, p.ID())
	}
	if _, ok := c.outPorts[p.ID()]; ok {
		return cerrors.NewDuplicatePort(c.id, p.ID())
	}
	p.SetParent(c)
	c.serialOut = append(c.serialOut, p)
	c.outPorts[p.ID()] = p
	return nil
}

// AddInTypedPort creates, attaches, and returns a new typed input port.
func AddInTypedPort[T any](c *Component, id string) (*TypedPort[T], error) {
	p := NewPort[T](id)
	if err := c.AddInPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddOutTypedPort creates, attaches, and returns a new typed output port.
func AddOutTypedPort[T any](c *Component, id string) (*TypedPort[T], error) {
	p := NewPort[T](id)
	if err := c.AddOutPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddInBigPort creates, attaches, and returns a new big input port.
func AddInBigPort[T any](c *Component, id string) (*BigPort[T], error) {
	p := NewBigPort[T](id)
	if err := c.AddInPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AddOutBigPort creates, attaches, and returns a new big output port.
func AddOutBigPort[T any](c *Component, id string) (*BigPort[T], error) {
	p := NewBigPort[T](id)
	if err := c.AddOutPort(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Component) InEmpty() bool {
	for _, p := range c.serialIn {
		if !p.Empty() {
			return false
		}
	}
	return true
}

func (c *Component) OutEmpty() bool {
	for _, p := range c.serialOut {
		if !p.Empty() {
			return false
		}
	}
	return true
}

// ClearPorts clears every input and output port's bag.
func (c *Component) ClearPorts() {
	for _, p := range c.serialIn {
		p.Clear()
	}
	for _, p := range c.serialOut {
		p.Clear()
	}
}
