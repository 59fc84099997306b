package devs

import "github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"

// Model is the polymorphic view of a coupled's child: either an AtomicModel
// or another *Coupled. Both satisfy ComponentInterface; the simulation
// package distinguishes them with a type assertion against AtomicModel.
type Model interface {
	ComponentInterface
}

// Coupling is a directed edge between two compatible ports (spec §3, §4.7
// glossary "Coupling").
type Coupling struct {
	From Port
	To   Port
}

// Coupled owns a set of child components and three coupling classes: EIC
// (parent in -> child in), IC (child out -> child in), EOC (child out ->
// parent out). Spec §3 CoupledComponent, invariants I-K1..I-K4.
type Coupled struct {
	*Component

	children   map[string]Model
	childOrder []string

	// serial lists preserve insertion order; used for sequential
	// propagation and as the rewrite source during flattening.
	eic []Coupling
	ic  []Coupling
	eoc []Coupling

	// destination-indexed maps; used by flattening and parallel fan-in.
	eicMap map[Port][]Port
	icMap  map[Port][]Port
	eocMap map[Port][]Port
}

// NewCoupled constructs an empty coupled component.
func NewCoupled(id string) *Coupled {
	return &Coupled{
		Component: NewComponent(id),
		children:  map[string]Model{},
		eicMap:    map[Port][]Port{},
		icMap:     map[Port][]Port{},
		eocMap:    map[Port][]Port{},
	}
}

// Children returns the coupled's children in insertion order.
func (c *Coupled) Children() []Model {
	out := make([]Model, 0, len(c.childOrder))
	for _, id := range c.childOrder {
		out = append(out, c.children[id])
	}
	return out
}

func (c *Coupled) GetChild(id string) (Model, error) {
	m, ok := c.children[id]
	if !ok {
		return nil, cerrors.NewChildNotFound(c.ID(), id)
	}
	return m, nil
}

// EIC, IC, EOC return the serialized coupling lists, in the order
// propagation must use (spec §4.5).
func (c *Coupled) EIC() []Coupling { return c.eic }
func (c *Coupled) IC() []Coupling  { return c.ic }
func (c *Coupled) EOC() []Coupling { return c.eoc }

// ICByDestination returns the IC list grouped by destination port, in
// insertion order of destinations first seen, each with its sources in
// registration order. This is the precomputed structure the parallel
// coordinator partitions over (spec §4.8).
func (c *Coupled) ICByDestination() []struct {
	To   Port
	From []Port
} {
	return bucketByDestination(c.ic, c.icMap)
}

func bucketByDestination(serial []Coupling, byDest map[Port][]Port) []struct {
	To   Port
	From []Port
} {
	var order []Port
	seen := map[Port]bool{}
	for _, cpl := range serial {
		if !seen[cpl.To] {
			seen[cpl.To] = true
			order = append(order, cpl.To)
		}
	}
	out := make([]struct {
		To   Port
		From []Port
	}, 0, len(order))
	for _, to := range order {
		out = append(out, struct {
			To   Port
			From []Port
		}{To: to, From: byDest[to]})
	}
	return out
}

// AddComponent adds a child component (atomic or coupled) to this coupled.
func (c *Coupled) AddComponent(m Model) error {
	if _, ok := c.children[m.ID()]; ok {
		return cerrors.NewDuplicateChild(c.ID(), m.ID())
	}
	m.SetParent(c)
	c.children[m.ID()] = m
	c.childOrder = append(c.childOrder, m.ID())
	return nil
}

// AddCoupling routes (from, to) into EIC, IC or EOC depending on which
// side owns the in/out interface relative to c, mirroring the original
// addCoupling dispatch (spec §4.2/§3).
func (c *Coupled) AddCoupling(from, to Port) error {
	if !from.Compatible(to) {
		return cerrors.NewTypeMismatch(c.ID(), "coupling endpoints have incompatible payload types")
	}
	switch {
	case c.ContainsInPort(from):
		if !c.childOwnsInPort(to) {
			return cerrors.NewInvalidCouplingEndpoint(c.ID(), "EIC destination must be a child's input port")
		}
		return c.addEIC(from, to)
	case c.ContainsOutPort(to):
		if !c.childOwnsOutPort(from) {
			return cerrors.NewInvalidCouplingEndpoint(c.ID(), "EOC source must be a child's output port")
		}
		return c.addEOC(from, to)
	default:
		if !c.childOwnsOutPort(from) {
			return cerrors.NewInvalidCouplingEndpoint(c.ID(), "IC source must be a child's output port")
		}
		if !c.childOwnsInPort(to) {
			return cerrors.NewInvalidCouplingEndpoint(c.ID(), "IC destination must be a child's input port")
		}
		return c.addIC(from, to)
	}
}

func (c *Coupled) childOwnsInPort(p Port) bool {
	for _, m := range c.children {
		if m.ContainsInPort(p) {
			return true
		}
	}
	return false
}

func (c *Coupled) childOwnsOutPort(p Port) bool {
	for _, m := range c.children {
		if m.ContainsOutPort(p) {
			return true
		}
	}
	return false
}

func addCouplingToList(serial *[]Coupling, byDest map[Port][]Port, component string, from, to Port) error {
	for _, existing := range *serial {
		if existing.From == from && existing.To == to {
			return cerrors.NewDuplicateCoupling(component, from.ID(), to.ID())
		}
	}
	*serial = append(*serial, Coupling{From: from, To: to})
	byDest[to] = append(byDest[to], from)
	return nil
}

func (c *Coupled) addEIC(from, to Port) error {
	return addCouplingToList(&c.eic, c.eicMap, c.ID(), from, to)
}

func (c *Coupled) addIC(from, to Port) error {
	return addCouplingToList(&c.ic, c.icMap, c.ID(), from, to)
}

func (c *Coupled) addEOC(from, to Port) error {
	return addCouplingToList(&c.eoc, c.eocMap, c.ID(), from, to)
}

// AddEICByID is a convenience overload that looks up c's own in-port and
// the named child's in-port by id before coupling them.
func (c *Coupled) AddEICByID(ownPortID, childID, childPortID string) error {
	from, err := c.GetInPort(ownPortID)
	if err != nil {
		return err
	}
	child, err := c.GetChild(childID)
	if err != nil {
		return err
	}
	to, err := child.GetInPort(childPortID)
	if err != nil {
		return err
	}
	return c.AddCoupling(from, to)
}

// AddICByID couples fromChildID's output port to toChildID's input port.
func (c *Coupled) AddICByID(fromChildID, fromPortID, toChildID, toPortID string) error {
	fromChild, err := c.GetChild(fromChildID)
	if err != nil {
		return err
	}
	from, err := fromChild.GetOutPort(fromPortID)
	if err != nil {
		return err
	}
	toChild, err := c.GetChild(toChildID)
	if err != nil {
		return err
	}
	to, err := toChild.GetInPort(toPortID)
	if err != nil {
		return err
	}
	return c.AddCoupling(from, to)
}

// AddEOCByID couples childID's output port to c's own output port.
func (c *Coupled) AddEOCByID(childID, childPortID, ownPortID string) error {
	child, err := c.GetChild(childID)
	if err != nil {
		return err
	}
	from, err := child.GetOutPort(childPortID)
	if err != nil {
		return err
	}
	to, err := c.GetOutPort(ownPortID)
	if err != nil {
		return err
	}
	return c.AddCoupling(from, to)
}

// Flatten hoists all transitive atomic descendants to become direct
// children of c, rewriting couplings so the induced (srcAtomicOutPort,
// dstAtomicInPort) pairs are preserved (spec §4.7, P-FlattenEquivalence).
// After Flatten, c has no coupled children.
func (c *Coupled) Flatten() error {
	return c.flattenInto(nil)
}

func (c *Coupled) flattenInto(parent *Coupled) error {
	var coupledChildren []*Coupled
	for _, id := range c.childOrder {
		if cc, ok := c.children[id].(*Coupled); ok {
			coupledChildren = append(coupledChildren, cc)
		}
	}

	for _, child := range coupledChildren {
		if err := child.flattenInto(c); err != nil {
			return err
		}
		c.removeFlattenedCouplings(child)
		c.removeChild(child.ID())
	}

	if err := c.rebuildMaps(); err != nil {
		return err
	}

	if parent == nil {
		return nil
	}

	// Hoist c's now atomic-only children into parent.
	for _, id := range c.childOrder {
		child := c.children[id]
		child.SetParent(parent)
		parent.children[id] = child
		parent.childOrder = append(parent.childOrder, id)
	}
	c.children = map[string]Model{}
	c.childOrder = nil

	// Left rewrite: parent couplings that feed into one of c's in-ports,
	// bridged through c's own (already-flat) EIC, become new parent-level
	// couplings directly to the deeper destination.
	newEIC := leftCouplings(c.eic, parent.eic, c)
	newIC := leftCouplings(c.eic, parent.ic, c)
	parent.eic = append(parent.eic, newEIC...)
	parent.ic = append(parent.ic, newIC...)
	// c's own surviving IC couplings (now both endpoints live in parent)
	// transfer unchanged.
	parent.ic = append(parent.ic, c.ic...)

	// Right rewrite: parent couplings sourced from one of c's out-ports,
	// bridged through c's own EOC, become new parent-level couplings
	// directly from the deeper source. Note the topology of right bridges
	// is the mirror image of left bridges.
	newICFromEOC := rightCouplings(c.eoc, parent.ic, c)
	newEOC := rightCouplings(c.eoc, parent.eoc, c)
	parent.ic = append(parent.ic, newICFromEOC...)
	parent.eoc = append(parent.eoc, newEOC...)

	return nil
}

func leftCouplings(childEIC []Coupling, bridge []Coupling, child *Coupled) []Coupling {
	var out []Coupling
	for _, br := range bridge {
		if !child.ContainsInPort(br.To) {
			continue
		}
		for _, ec := range childEIC {
			if ec.From == br.To {
				out = append(out, Coupling{From: br.From, To: ec.To})
			}
		}
	}
	return out
}

func rightCouplings(childEOC []Coupling, bridge []Coupling, child *Coupled) []Coupling {
	var out []Coupling
	for _, br := range bridge {
		if !child.ContainsOutPort(br.From) {
			continue
		}
		for _, ec := range childEOC {
			if ec.To == br.From {
				out = append(out, Coupling{From: ec.From, To: br.To})
			}
		}
	}
	return out
}

// removeFlattenedCouplings strips from c's own serial lists every coupling
// that touches child's boundary ports; these are the "bridge" couplings
// already consumed (and replaced) by leftCouplings/rightCouplings above.
func (c *Coupled) removeFlattenedCouplings(child *Coupled) {
	c.eic = filterCouplings(c.eic, func(cp Coupling) bool {
		return !child.ContainsInPort(cp.To)
	})
	c.ic = filterCouplings(c.ic, func(cp Coupling) bool {
		return !child.ContainsOutPort(cp.From) && !child.ContainsInPort(cp.To)
	})
	c.eoc = filterCouplings(c.eoc, func(cp Coupling) bool {
		return !child.ContainsOutPort(cp.From)
	})
}

func filterCouplings(in []Coupling, keep func(Coupling) bool) []Coupling {
	out := in[:0:0]
	for _, cp := range in {
		if keep(cp) {
			out = append(out, cp)
		}
	}
	return out
}

func (c *Coupled) removeChild(id string) {
	delete(c.children, id)
	for i, cid := range c.childOrder {
		if cid == id {
			c.childOrder = append(c.childOrder[:i], c.childOrder[i+1:]...)
			break
		}
	}
}

// rebuildMaps reconstructs the destination-indexed coupling maps from the
// current serial lists, failing on any duplicate (from, to) pair (spec
// §4.7.3).
func (c *Coupled) rebuildMaps() error {
	eicMap, err := deserialize(c.eic, c.ID())
	if err != nil {
		return err
	}
	icMap, err := deserialize(c.ic, c.ID())
	if err != nil {
		return err
	}
	eocMap, err := deserialize(c.eoc, c.ID())
	if err != nil {
		return err
	}
	c.eicMap, c.icMap, c.eocMap = eicMap, icMap, eocMap
	return nil
}

func deserialize(serial []Coupling, component string) (map[Port][]Port, error) {
	out := map[Port][]Port{}
	seen := map[Coupling]bool{}
	for _, cp := range serial {
		if seen[cp] {
			return nil, cerrors.NewDuplicateCoupling(component, cp.From.ID(), cp.To.ID())
		}
		seen[cp] = true
		out[cp.To] = append(out[cp.To], cp.From)
	}
	return out, nil
}
