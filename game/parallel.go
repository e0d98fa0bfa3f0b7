package game

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/pthm-cable/psiscout/systems"
)

const defaultChunkSize = 256

// scoutChunk is a fixed range of scouts with its own jitter stream.
// Chunk boundaries and seeds are fixed at construction, so results do not
// depend on worker count or scheduling.
type scoutChunk struct {
	start, end int
	rng        *rand.Rand
}

// parallelState holds resources for the parallel per-scout phase.
type parallelState struct {
	chunks     []scoutChunk
	threshold  int
	numWorkers int

	// Worker pool channels
	workChan chan int      // chunk indices
	doneChan chan struct{} // workers signal completion
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

// newParallelState splits n scouts into chunks and seeds one RNG per chunk
// from master.
func newParallelState(workers, chunkSize, threshold, n int, master *rand.Rand) *parallelState {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	p := &parallelState{
		threshold:  threshold,
		numWorkers: workers,
	}
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		p.chunks = append(p.chunks, scoutChunk{
			start: start,
			end:   end,
			rng:   rand.New(rand.NewSource(master.Int63())),
		})
	}
	return p
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(g *Game) {
	if p.running {
		return
	}

	p.workChan = make(chan int, len(p.chunks))
	p.doneChan = make(chan struct{}, len(p.chunks))
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(g)
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

// worker processes chunks until stopped.
func (p *parallelState) worker(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case idx, ok := <-p.workChan:
			if !ok {
				return
			}
			g.computeChunk(&p.chunks[idx])
			p.doneChan <- struct{}{}
		}
	}
}

// updateScouts runs UpdateScout over the snapshot slice. Small populations
// and single-worker configs stay on the calling goroutine; both paths walk
// the same chunks with the same RNGs.
func (g *Game) updateScouts() {
	p := g.parallel
	if len(g.scouts) < p.threshold || p.numWorkers == 1 || len(p.chunks) == 1 {
		for i := range p.chunks {
			g.computeChunk(&p.chunks[i])
		}
		return
	}

	if !p.running {
		p.startWorkers(g)
	}
	for i := range p.chunks {
		p.workChan <- i
	}
	// Barrier
	for range p.chunks {
		<-p.doneChan
	}
}

// computeChunk updates one chunk. Each scout reads the shared field and
// writes only its own slot.
func (g *Game) computeChunk(c *scoutChunk) {
	for i := c.start; i < c.end; i++ {
		systems.UpdateScout(&g.scouts[i], g.field, &g.params, c.rng)
	}
}
