package optimize

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/cpu"
	log "github.com/sirupsen/logrus"
)

// MinGraphSizeForPool and MinPopulationSizeForPool gate when spreading fitness
// evaluation across the worker pool pays off at all: below this problem
// size, the goroutine dispatch overhead outweighs the saved CPU time, so the
// population is better evaluated inline. The six optimizers in this package
// evaluate their populations inline regardless of size.
const (
	MinGraphSizeForPool      = 500
	MinPopulationSizeForPool = 200
)

// ShouldParallelize reports whether a population of the given size on a
// graph of the given node count crosses the pool-worthy threshold.
func ShouldParallelize(numNodes, populationSize int) bool {
	return numNodes >= MinGraphSizeForPool && populationSize >= MinPopulationSizeForPool
}

// PoolConfig mirrors the teacher's common.PoolConfig. Leaving MaxWorkers at
// zero selects CPU-aware sizing via gopsutil.
type PoolConfig struct {
	MaxWorkers int
}

// NewPool creates a bounded ants worker pool. If config.MaxWorkers is zero,
// the pool is sized from the host's logical CPU count (gopsutil), falling
// back to 4 workers if the CPU count cannot be determined.
func NewPool(config PoolConfig) (*ants.Pool, error) {
	workers := config.MaxWorkers
	if workers <= 0 {
		workers = detectWorkerCount()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		log.WithError(err).Error("failed to create fitness-evaluation worker pool")
		return nil, err
	}
	return pool, nil
}

var (
	cpuCountOnce sync.Once
	cpuCountVal  int
)

func detectWorkerCount() int {
	cpuCountOnce.Do(func() {
		n, err := cpu.Counts(true)
		if err != nil || n <= 0 {
			log.WithError(err).Warn("could not detect CPU count, defaulting worker pool to 4")
			cpuCountVal = 4
			return
		}
		cpuCountVal = n
	})
	return cpuCountVal
}

// EvalFunc is one fitness evaluation submitted to the pool.
type EvalFunc func(index int)

// ParallelEval runs fn(i) for i in [0, n) across pool, blocking until all
// complete. If pool is nil, it runs inline on the calling goroutine —
// callers use this path when ShouldParallelize reports false.
func ParallelEval(pool *ants.Pool, n int, fn EvalFunc) {
	if pool == nil {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		idx := i
		err := pool.Submit(func() {
			defer wg.Done()
			fn(idx)
		})
		if err != nil {
			log.WithError(err).Warn("pool submit failed, running evaluation inline")
			wg.Done()
			fn(idx)
		}
	}
	wg.Wait()
}
