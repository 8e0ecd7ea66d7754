package sim

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum population size for parallel
// integration. Below it, single-threaded is faster than the dispatch
// overhead.
const parallelThreshold = 64

// workChunk is a range of snapshot indices for one worker.
type workChunk struct {
	start, end int
}

// parallelState holds the persistent worker pool for per-host integration.
// Workers are pure: they read snapshots and write disjoint result slots, so
// scheduling order never touches the random stream.
type parallelState struct {
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	return &parallelState{numWorkers: runtime.GOMAXPROCS(0)}
}

// startWorkers launches the persistent worker goroutines.
func (p *parallelState) startWorkers(s *Simulation) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(s)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker(s *Simulation) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			s.integrateChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// integrateAll advances every snapshot by one tick, in parallel when the
// population is large enough. All results are collected before returning;
// the environment update and survival draws run strictly after.
func (s *Simulation) integrateAll() {
	n := len(s.snapshots)
	if n == 0 {
		return
	}

	if n < parallelThreshold {
		s.integrateChunk(0, n)
		return
	}

	if !s.parallel.running {
		s.parallel.startWorkers(s)
	}

	numWorkers := s.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		s.parallel.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-s.parallel.doneChan
	}
}

// integrateChunk advances a range of snapshots. No shared mutable state:
// the environment is read-only during integration and each index owns its
// result slot.
func (s *Simulation) integrateChunk(i0, i1 int) {
	food := s.env.F
	dt := s.cfg.Transmission.Step
	for i := i0; i < i1; i++ {
		snap := &s.snapshots[i]
		s.results[i] = s.integ.Step(snap.State, food, snap.Hazard, &s.cfg.DEB, dt)
	}
}
