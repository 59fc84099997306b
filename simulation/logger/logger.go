// Package logger defines the simulation-data logging contract (spec §6)
// and ships three reference implementations grounded on the original
// source's CSVLogger, STDOUTLogger and MutexLogger: none of them are part
// of the simulation kernel's core contract, only the Logger interface is
// (spec §1 "Out of scope: Loggers... only the logging interface is
// specified").
package logger

// Logger receives simulation-data events. Implementations MUST NOT mutate
// the simulation (spec §6). The interface is not required to be
// thread-safe (spec §5); Mutex wraps any Logger to make it safe for
// concurrent use by the parallel coordinator.
type Logger interface {
	Start()
	Stop()
	LogTime(t float64)
	LogOutput(t float64, modelID int, modelName, portName, rendered string)
	LogState(t float64, modelID int, modelName, rendered string)
}

// Nop is a Logger that discards everything; the constructors of every
// RootCoordinator variant use it when no logger is configured.
type Nop struct{}

func (Nop) Start()                                                          {}
func (Nop) Stop()                                                           {}
func (Nop) LogTime(float64)                                                 {}
func (Nop) LogOutput(float64, int, string, string, string)                  {}
func (Nop) LogState(float64, int, string, string)                           {}

var _ Logger = Nop{}
