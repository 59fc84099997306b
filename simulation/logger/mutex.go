package logger

import "sync"

// Mutex wraps any Logger so it can be shared safely across the parallel
// coordinator's workers. It serializes the five Logger operations but adds
// no ordering guarantee beyond what the phase barriers already impose
// (spec §5, grounded on include/cadmium/simulation/logger/mutex.hpp's
// MutexLogger<T>).
type Mutex[T Logger] struct {
	mu     sync.Mutex
	Logger T
}

// NewMutex wraps inner in a Mutex-guarded Logger.
func NewMutex[T Logger](inner T) *Mutex[T] {
	return &Mutex[T]{Logger: inner}
}

func (m *Mutex[T]) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logger.Start()
}

func (m *Mutex[T]) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logger.Stop()
}

func (m *Mutex[T]) LogTime(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logger.LogTime(t)
}

func (m *Mutex[T]) LogOutput(t float64, modelID int, modelName, portName, rendered string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logger.LogOutput(t, modelID, modelName, portName, rendered)
}

func (m *Mutex[T]) LogState(t float64, modelID int, modelName, rendered string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logger.LogState(t, modelID, modelName, rendered)
}

var _ Logger = (*Mutex[Nop])(nil)
