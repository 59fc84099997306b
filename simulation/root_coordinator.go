package simulation

import (
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/simulation/logger"
)

// Config configures a RootCoordinator, following the teacher's
// Config/DefaultConfig convention (packages/simulation/engine/engine.go)
// rather than functional options, since this kernel exposes no CLI to
// parse flags for (spec §1 scopes command-line wrappers out).
type Config struct {
	// Logger receives simulation-data events; nil means no logging.
	Logger logger.Logger
	// Log receives operational records (construction, run start/stop); nil
	// is safe and discards.
	Log *logrus.Entry
}

// DefaultConfig returns the zero-value configuration: no simulation
// logger, discarded operational logs.
func DefaultConfig() *Config {
	return &Config{}
}

// RootCoordinator is the sequential simulation driver (spec §4.6): it
// wraps the top Coordinator and repeatedly advances time by
// collection/transition/clear at the next scheduled event.
type RootCoordinator struct {
	top    *Coordinator
	log    logger.Logger
	opLog  *logrus.Entry
	runID  string
}

// NewRootCoordinator builds a RootCoordinator over model, starting at
// virtual time 0, per cfg (nil selects DefaultConfig()).
func NewRootCoordinator(model *devs.Coupled, cfg *Config) (*RootCoordinator, error) {
	return NewRootCoordinatorAt(model, 0, cfg)
}

// NewRootCoordinatorAt builds a RootCoordinator starting at the given
// virtual time.
func NewRootCoordinatorAt(model *devs.Coupled, startTime float64, cfg *Config) (*RootCoordinator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	top, err := NewCoordinator(model)
	if err != nil {
		return nil, err
	}
	simLogger := cfg.Logger
	if simLogger == nil {
		simLogger = logger.Nop{}
	}
	rc := &RootCoordinator{
		top:   top,
		log:   simLogger,
		opLog: cfg.Log,
		runID: uuid.NewString(),
	}
	top.SetLogger(simLogger)
	top.SetModelID(0)
	top.Start(startTime)
	if rc.opLog != nil {
		rc.opLog.WithFields(logrus.Fields{"runID": rc.runID, "startTime": startTime}).Debug("root coordinator: built")
	}
	return rc, nil
}

// RunID returns the UUID identifying this RootCoordinator's run, so
// concurrent or successive runs in one process can be told apart in
// operational and simulation logs.
func (r *RootCoordinator) RunID() string { return r.runID }

// Top returns the wrapped top-level Coordinator.
func (r *RootCoordinator) Top() *Coordinator { return r.top }

// TimeNext returns the next scheduled event time.
func (r *RootCoordinator) TimeNext() float64 { return r.top.TimeNext() }

// Start begins the run by starting the simulation logger. Model ids are
// assigned and every simulator is started by NewRootCoordinatorAt, before
// Start is called.
func (r *RootCoordinator) Start() {
	r.log.Start()
	if r.opLog != nil {
		r.opLog.WithField("runID", r.runID).Debug("root coordinator: start")
	}
}

// Stop finalizes the run.
func (r *RootCoordinator) Stop() {
	r.top.Stop(r.top.TimeLast())
	r.log.Stop()
	if r.opLog != nil {
		r.opLog.WithField("runID", r.runID).Debug("root coordinator: stop")
	}
}

// simulationAdvance performs one tick at virtual time t: log_time, then
// collection, transition, clear (spec §4.6). RealTimeRootCoordinator
// interposes clock pacing before it through its own advanceTo.
func (r *RootCoordinator) simulationAdvance(t float64) error {
	r.log.LogTime(t)
	if err := r.top.Collection(t); err != nil {
		return err
	}
	if err := r.top.Transition(t); err != nil {
		return err
	}
	r.top.Clear()
	return nil
}

// advancer is the hook RealTimeRootCoordinator overrides to interpose a
// clock between scheduling and execution.
type advancer interface {
	advanceTo(t float64) error
}

func (r *RootCoordinator) advanceTo(t float64) error {
	return r.simulationAdvance(t)
}

// SimulateIterations runs the loop until either nIterations ticks have
// executed or timeNext reaches +Inf, whichever comes first (spec §4.6).
func (r *RootCoordinator) SimulateIterations(nIterations int) error {
	return r.loop(func() bool { return nIterations > 0 }, func() { nIterations-- }, r)
}

// SimulateTime runs the loop until timeNext reaches timeFinal (spec
// §4.6).
func (r *RootCoordinator) SimulateTime(timeInterval float64) error {
	timeFinal := r.top.TimeLast() + timeInterval
	return r.loop(func() bool { return r.top.TimeNext() < timeFinal }, func() {}, r)
}

func (r *RootCoordinator) loop(cond func() bool, step func(), a advancer) error {
	for cond() && !math.IsInf(r.top.TimeNext(), 1) {
		t := r.top.TimeNext()
		if err := a.advanceTo(t); err != nil {
			return err
		}
		step()
	}
	return nil
}
