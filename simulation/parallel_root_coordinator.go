package simulation

import (
	"math"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/SimulationEverywhere/cadmium-v2-sub000/cerrors"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/devs"
	"github.com/SimulationEverywhere/cadmium-v2-sub000/simulation/logger"
)

func errNotFlat(component string) error {
	return cerrors.NewInvalidCouplingEndpoint(component, "model is not flat: a direct child is still a coupled model")
}

// ParallelRootCoordinator is the root variant that requires a flattened
// model and executes four barrier-separated phases per tick across worker
// goroutines (spec §4.8/§5), grounded on
// include/cadmium/core/simulation/parallel_root_coordinator.hpp.
type ParallelRootCoordinator struct {
	model    *devs.Coupled
	children []*AtomicSimulator
	icBy     []destBucket

	timeLast float64
	timeNext float64

	log   logger.Logger
	opLog *logrus.Entry
	runID string

	workers int
}

type destBucket struct {
	To   devs.Port
	From []devs.Port
}

// NewParallelRootCoordinator flattens model in place (spec §4.8
// precondition), builds one AtomicSimulator per (now direct) child, and
// precomputes the destination-indexed IC partitioning. workers <= 0
// selects runtime.GOMAXPROCS(0).
func NewParallelRootCoordinator(model *devs.Coupled, workers int, cfg *Config) (*ParallelRootCoordinator, error) {
	if err := model.Flatten(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	simLogger := cfg.Logger
	if simLogger == nil {
		simLogger = logger.Nop{}
	}
	// The logger interface is not required to be thread-safe (spec §5);
	// wrap it so concurrent workers can log safely.
	mutexLog := logger.NewMutex(simLogger)

	pc := &ParallelRootCoordinator{
		model:   model,
		log:     mutexLog,
		opLog:   cfg.Log,
		workers: workers,
	}

	for _, child := range model.Children() {
		atomic, ok := child.(devs.AtomicModel)
		if !ok {
			return nil, errNotFlat(model.ID())
		}
		atomicSim, err := NewAtomicSimulator(atomic)
		if err != nil {
			return nil, err
		}
		pc.children = append(pc.children, atomicSim)
	}

	for _, bucket := range model.ICByDestination() {
		pc.icBy = append(pc.icBy, destBucket{To: bucket.To, From: bucket.From})
	}

	id := 0
	for _, child := range pc.children {
		id = child.SetModelID(id)
	}
	for _, child := range pc.children {
		child.SetLogger(mutexLog)
	}

	pc.timeNext = math.Inf(1)
	for _, child := range pc.children {
		child.Start(0)
		if child.TimeNext() < pc.timeNext {
			pc.timeNext = child.TimeNext()
		}
	}

	if pc.opLog != nil {
		pc.opLog.WithFields(logrus.Fields{"workers": workers, "children": len(pc.children)}).Debug("parallel root coordinator: built")
	}
	return pc, nil
}

// TimeNext returns the next scheduled event time.
func (p *ParallelRootCoordinator) TimeNext() float64 { return p.timeNext }

// Start begins the run.
func (p *ParallelRootCoordinator) Start() {
	p.log.Start()
}

// Stop finalizes the run.
func (p *ParallelRootCoordinator) Stop() {
	for _, child := range p.children {
		child.Stop(p.timeLast)
	}
	p.log.Stop()
}

// partitions splits n items into up to p.workers contiguous ranges
// (static range partitioning, spec §4.8).
func (p *ParallelRootCoordinator) partitions(n int) [][2]int {
	workers := p.workers
	if workers > n {
		workers = n
	}
	if workers <= 0 {
		return nil
	}
	base := n / workers
	rem := n % workers
	ranges := make([][2]int, 0, workers)
	start := 0
	for i := 0; i < workers; i++ {
		size := base
		if i < rem {
			size++
		}
		ranges = append(ranges, [2]int{start, start + size})
		start += size
	}
	return ranges
}

// tick executes the four barrier-separated phases at virtual time t (spec
// §4.8).
func (p *ParallelRootCoordinator) tick(t float64) error {
	p.log.LogTime(t)

	// Phase 1: output, parallel over children.
	if err := p.forEachRange(len(p.children), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := p.children[i].Collection(t); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	// Phase 2: routing, parallel over destination ports. Destinations are
	// disjoint and sources are read-only here, so no locking is needed.
	if err := p.forEachRange(len(p.icBy), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			bucket := p.icBy[i]
			for _, from := range bucket.From {
				if err := bucket.To.Propagate(from); err != nil {
					return err
				}
			}
		}
		return nil
	}); err != nil {
		return err
	}

	// Phase 3: transition + clear, parallel over children.
	if err := p.forEachRange(len(p.children), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if err := p.children[i].Transition(t); err != nil {
				return err
			}
			p.children[i].Clear()
		}
		return nil
	}); err != nil {
		return err
	}

	// Phase 4: time-next reduction. Each worker computes a local min over
	// its range; a single writer then merges into the shared timeNext
	// (spec §4.8/§5 "one-writer region").
	var mu sync.Mutex
	globalNext := math.Inf(1)
	if err := p.forEachRange(len(p.children), func(lo, hi int) error {
		localNext := math.Inf(1)
		for i := lo; i < hi; i++ {
			if p.children[i].TimeNext() < localNext {
				localNext = p.children[i].TimeNext()
			}
		}
		mu.Lock()
		if localNext < globalNext {
			globalNext = localNext
		}
		mu.Unlock()
		return nil
	}); err != nil {
		return err
	}
	p.timeLast = t
	p.timeNext = globalNext
	return nil
}

// forEachRange runs fn over disjoint [lo,hi) ranges partitioning n items
// across p.workers goroutines, and is itself a full barrier: it returns
// only once every worker has returned (errgroup.Wait), propagating the
// first worker error to the caller.
func (p *ParallelRootCoordinator) forEachRange(n int, fn func(lo, hi int) error) error {
	ranges := p.partitions(n)
	if len(ranges) == 0 {
		return nil
	}
	var g errgroup.Group
	for _, r := range ranges {
		r := r
		g.Go(func() error {
			return fn(r[0], r[1])
		})
	}
	return g.Wait()
}

// SimulateIterations runs up to nIterations ticks, or until timeNext
// reaches +Inf, whichever comes first (spec §4.8, matching the sequential
// driver's iteration-bounded entry point).
func (p *ParallelRootCoordinator) SimulateIterations(nIterations int) error {
	for nIterations > 0 && !math.IsInf(p.timeNext, 1) {
		if err := p.tick(p.timeNext); err != nil {
			return err
		}
		nIterations--
	}
	return nil
}

// SimulateTime runs ticks until timeNext reaches timeFinal (spec §4.8).
func (p *ParallelRootCoordinator) SimulateTime(timeInterval float64) error {
	timeFinal := p.timeLast + timeInterval
	for p.timeNext < timeFinal && !math.IsInf(p.timeNext, 1) {
		if err := p.tick(p.timeNext); err != nil {
			return err
		}
	}
	return nil
}
