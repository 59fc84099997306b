package devs

import (
	"fmt"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
)

// ComponentRef is the minimal view of a Component a Port needs: its id, for
// error messages and logging. Ports hold a non-owning back-reference to
// their parent (§9 "cyclic back-references... not ownership").
type ComponentRef interface {
	ID() string
}

// Port is the type-erased view of a typed port that the rest of the kernel
// (Component, Coupled, the simulators, and loggers) operates on without
// knowing the payload type T. Concrete ports are *TypedPort[T] / *BigPort[T].
type Port interface {
	ID() string
	Parent() ComponentRef
	SetParent(ComponentRef)
	Clear()
	Empty() bool
	Size() int
	Compatible(other Port) bool
	NewCompatiblePort(id string) Port
	Propagate(from Port) error
	LogMessage(i int) string
	// AddAny appends msg to the bag after a dynamic type assertion against
	// the port's payload type T, failing with cerrors.TypeMismatch if msg
	// is not a T. Used by the real-time clock's interrupt injection path,
	// which only knows the decoded payload as an any (spec §4.9/§9
	// "Dynamic port typing").
	AddAny(msg any) error
}

// TypedPort[T] is a typed port holding an ordered bag of messages of
// payload type T. Order is preserved for determinism; duplicates are
// allowed (§3 Port).
type TypedPort[T any] struct {
	id     string
	parent ComponentRef
	bag    []T
}

// NewPort creates a fresh, unattached typed port.
func NewPort[T any](id string) *TypedPort[T] {
	return &TypedPort[T]{id: id}
}

func (p *TypedPort[T]) ID() string              { return p.id }
func (p *TypedPort[T]) Parent() ComponentRef     { return p.parent }
func (p *TypedPort[T]) SetParent(c ComponentRef) { p.parent = c }
func (p *TypedPort[T]) Clear()                   { p.bag = p.bag[:0] }
func (p *TypedPort[T]) Empty() bool              { return len(p.bag) == 0 }
func (p *TypedPort[T]) Size() int                { return len(p.bag) }

// Bag returns the port's message bag. Callers (loggers, atomic models) must
// not mutate the returned slice.
func (p *TypedPort[T]) Bag() []T { return p.bag }

// AddMessage appends a message to the bag.
func (p *TypedPort[T]) AddMessage(msg T) { p.bag = append(p.bag, msg) }

func (p *TypedPort[T]) Compatible(other Port) bool {
	_, ok := other.(*TypedPort[T])
	return ok
}

func (p *TypedPort[T]) NewCompatiblePort(id string) Port {
	return NewPort[T](id)
}

func (p *TypedPort[T]) Propagate(from Port) error {
	o, ok := from.(*TypedPort[T])
	if !ok {
		return cerrors.NewTypeMismatch(p.id, fmt.Sprintf("propagate: incompatible port type on %q", p.id))
	}
	p.bag = append(p.bag, o.bag...)
	return nil
}

func (p *TypedPort[T]) LogMessage(i int) string {
	return fmt.Sprintf("%v", p.bag[i])
}

func (p *TypedPort[T]) AddAny(msg any) error {
	v, ok := msg.(T)
	if !ok {
		return cerrors.NewTypeMismatch(p.id, fmt.Sprintf("AddAny: value is not assignable to port %q's payload type", p.id))
	}
	p.AddMessage(v)
	return nil
}

// BigPort is a typed port whose messages are stored as shared-ownership
// handles (*T) to immutable payloads, so that Propagate copies only the
// pointer, not the payload, regardless of payload size (§3, §9 "Big
// ports").
type BigPort[T any] struct {
	id     string
	parent ComponentRef
	bag    []*T
}

func NewBigPort[T any](id string) *BigPort[T] {
	return &BigPort[T]{id: id}
}

func (p *BigPort[T]) ID() string              { return p.id }
func (p *BigPort[T]) Parent() ComponentRef     { return p.parent }
func (p *BigPort[T]) SetParent(c ComponentRef) { p.parent = c }
func (p *BigPort[T]) Clear()                   { p.bag = p.bag[:0] }
func (p *BigPort[T]) Empty() bool              { return len(p.bag) == 0 }
func (p *BigPort[T]) Size() int                { return len(p.bag) }

// Bag returns the port's bag of shared-ownership handles.
func (p *BigPort[T]) Bag() []*T { return p.bag }

// AddMessage wraps msg in a new handle and appends it to the bag.
func (p *BigPort[T]) AddMessage(msg T) { p.bag = append(p.bag, &msg) }

// AddHandle appends an existing handle directly, without copying the
// payload it points to.
func (p *BigPort[T]) AddHandle(msg *T) { p.bag = append(p.bag, msg) }

func (p *BigPort[T]) Compatible(other Port) bool {
	_, ok := other.(*BigPort[T])
	return ok
}

func (p *BigPort[T]) NewCompatiblePort(id string) Port {
	return NewBigPort[T](id)
}

func (p *BigPort[T]) Propagate(from Port) error {
	o, ok := from.(*BigPort[T])
	if !ok {
		return cerrors.NewTypeMismatch(p.id, fmt.Sprintf("propagate: incompatible port type on %q", p.id))
	}
	p.bag = append(p.bag, o.bag...)
	return nil
}

func (p *BigPort[T]) LogMessage(i int) string {
	return fmt.Sprintf("%v", *p.bag[i])
}

func (p *BigPort[T]) AddAny(msg any) error {
	v, ok := msg.(T)
	if !ok {
		return cerrors.NewTypeMismatch(p.id, fmt.Sprintf("AddAny: value is not assignable to port %q's payload type", p.id))
	}
	p.AddMessage(v)
	return nil
}
