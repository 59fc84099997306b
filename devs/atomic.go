package devs

// AtomicBehavior is the four-function contract a concrete DEVS atomic
// model provides over its own state type S (spec §4.3). The kernel never
// calls these directly; it calls the non-generic AtomicModel methods of
// Atomic[S], which dispatch here.
type AtomicBehavior[S any] interface {
	// InternalTransition is invoked when elapsed time equals TimeAdvance(S)
	// and no input is present.
	InternalTransition(state *S)
	// ExternalTransition is invoked when input is present and elapsed time
	// e < TimeAdvance(S).
	ExternalTransition(state *S, e float64)
	// Output is invoked immediately before an internal or confluent
	// transition and must fill the model's output port bags from state.
	Output(state S)
	// TimeAdvance returns the time until the next internal event from the
	// current state; math.Inf(1) means passivated.
	TimeAdvance(state S) float64
	// LogState renders state for the logger.
	LogState(state S) string
}

// ConfluentBehavior is an optional extension of AtomicBehavior for models
// that need a confluent transition other than the default composition of
// InternalTransition then ExternalTransition with e=0 (spec §4.3).
type ConfluentBehavior[S any] interface {
	ConfluentTransition(state *S, e float64)
}

// AtomicModel is the type-erased view of an atomic component that the
// simulation package drives: Component operations plus the four DEVS
// functions. Concrete models satisfy it via *Atomic[S].
type AtomicModel interface {
	ComponentInterface
	InternalTransition()
	ExternalTransition(e float64)
	ConfluentTransition(e float64)
	Output()
	TimeAdvance() float64
	LogState() string
}

// Atomic is the generic holder of a DEVS atomic model's state (spec
// §3/§4.3 AtomicComponent<S>). The kernel operates on it only through the
// AtomicModel interface; it never inspects S (spec §9 "Polymorphism
// without inheritance").
type Atomic[S any] struct {
	*Component
	State    S
	Behavior AtomicBehavior[S]
}

// NewAtomic constructs an atomic model with the given id, initial state,
// and behavior.
func NewAtomic[S any](id string, initial S, behavior AtomicBehavior[S]) *Atomic[S] {
	return &Atomic[S]{
		Component: NewComponent(id),
		State:     initial,
		Behavior:  behavior,
	}
}

func (a *Atomic[S]) InternalTransition() { a.Behavior.InternalTransition(&a.State) }
func (a *Atomic[S]) ExternalTransition(e float64) {
	a.Behavior.ExternalTransition(&a.State, e)
}

func (a *Atomic[S]) ConfluentTransition(e float64) {
	if custom, ok := a.Behavior.(ConfluentBehavior[S]); ok {
		custom.ConfluentTransition(&a.State, e)
		return
	}
	a.Behavior.InternalTransition(&a.State)
	a.Behavior.ExternalTransition(&a.State, 0)
}

func (a *Atomic[S]) Output()                { a.Behavior.Output(a.State) }
func (a *Atomic[S]) TimeAdvance() float64   { return a.Behavior.TimeAdvance(a.State) }
func (a *Atomic[S]) LogState() string       { return a.Behavior.LogState(a.State) }

var _ AtomicModel = (*Atomic[struct{}])(nil)
