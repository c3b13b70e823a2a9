// Package lockpool implements the bounded, adaptively-resized cache of
// per-cell write permits described in spec.md §4.2. A permit is a
// *sync.RWMutex: Set acquires it exclusively, Get acquires it shared, and
// the pool bounds how many such mutexes are resident at once, evicting
// ones with no outside holder when the working set must shrink.
package lockpool

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// Config carries the tunables loaded from the JSON configuration file
// named in spec.md §6.
type Config struct {
	Interval              time.Duration
	Min                    int
	Max                    int
	ExpansionThreshold     float64
	ExpansionMultiplier    float64
	ContractionThreshold   float64
	ContractionMultiplier  float64
}

type entry struct {
	permit *sync.RWMutex
	refs   int
}

// Pool is the shared structure described in spec.md §4.2: one mutex
// protects its bookkeeping, one condition variable wakes blocked acquirers.
type Pool struct {
	cfg Config

	mu   sync.Mutex
	cond *sync.Cond

	used     int
	capacity int

	wait  int
	visit int

	resident map[string]*entry
	free     *simplelru.LRU[string, struct{}] // FIFO of evictable ids

	stop chan struct{}
}

// New constructs a Pool starting at capacity = cfg.Min and starts its
// background motion ticker.
func New(cfg Config) *Pool {
	free, _ := simplelru.NewLRU[string, struct{}](1<<30, nil)
	p := &Pool{
		cfg:      cfg,
		capacity: cfg.Min,
		resident: make(map[string]*entry),
		free:     free,
		stop:     make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	if cfg.Interval > 0 {
		go p.runMotion()
	}
	return p
}

// Close stops the background motion ticker.
func (p *Pool) Close() { close(p.stop) }

func (p *Pool) runMotion() {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.motion()
		}
	}
}

// Handle is a checked-out reference to a cell's permit. Exactly one of
// Lock/RLock was taken on acquisition; Release both unlocks it and returns
// the residency slot to the pool's bookkeeping.
type Handle struct {
	pool   *Pool
	id     string
	permit *sync.RWMutex
	write  bool
}

// Release unlocks the permit and, if this was the last outstanding handle
// for its id, marks the permit reclaimable.
func (h *Handle) Release() {
	if h.write {
		h.permit.Unlock()
	} else {
		h.permit.RUnlock()
	}
	h.pool.release(h.id)
}

// AcquireWrite blocks until it can hand out id's permit, then locks it
// exclusively (step 4 of the set pipeline, spec §4.5).
func (p *Pool) AcquireWrite(id string) *Handle {
	e := p.acquireResident(id)
	e.permit.Lock()
	return &Handle{pool: p, id: id, permit: e.permit, write: true}
}

// AcquireRead blocks until it can hand out id's permit, then locks it
// shared (the get pipeline, spec §4.6).
func (p *Pool) AcquireRead(id string) *Handle {
	e := p.acquireResident(id)
	e.permit.RLock()
	return &Handle{pool: p, id: id, permit: e.permit, write: false}
}

// acquireResident implements the Acquire protocol of spec §4.2 steps 1–4.
func (p *Pool) acquireResident(id string) *entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if e, ok := p.resident[id]; ok {
			p.free.Remove(id)
			e.refs++
			p.visit++
			return e
		}
		if p.used < p.capacity {
			e := &entry{permit: &sync.RWMutex{}, refs: 1}
			p.resident[id] = e
			p.used++
			p.visit++
			return e
		}
		if p.free.Len() > 0 {
			oldID, _, _ := p.free.RemoveOldest()
			delete(p.resident, oldID)
			e := &entry{permit: &sync.RWMutex{}, refs: 1}
			p.resident[id] = e
			p.visit++
			return e
		}
		p.wait++
		p.cond.Wait()
	}
}

// release implements the Release protocol of spec §4.2.
func (p *Pool) release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.resident[id]
	if !ok {
		return
	}
	e.refs--
	if e.refs == 0 {
		p.free.Add(id, struct{}{})
		p.cond.Signal()
	}
}

// motion performs one tick of the adaptive resize described in spec §4.2.
func (p *Pool) motion() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacity == 0 {
		return
	}

	waitRatio := float64(p.wait) / float64(p.capacity)
	if waitRatio > p.cfg.ExpansionThreshold {
		target := int(float64(p.capacity) * p.cfg.ExpansionMultiplier)
		if target > p.cfg.Max {
			target = p.cfg.Max
		}
		p.capacity = target
	} else if p.wait == 0 {
		visitRatio := float64(p.visit) / float64(p.capacity)
		headroom := p.free.Len() + (p.capacity - p.used)
		shrinkGate := int(float64(p.capacity) * (1 - p.cfg.ContractionMultiplier) * 2)
		if visitRatio < p.cfg.ContractionThreshold && headroom > shrinkGate {
			target := int(float64(p.capacity) * p.cfg.ContractionMultiplier)
			if target >= p.cfg.Min {
				for p.used > target {
					oldID, _, ok := p.free.RemoveOldest()
					if !ok {
						break
					}
					delete(p.resident, oldID)
					p.used--
				}
				p.capacity = target
			}
		}
	}

	p.wait = 0
	p.visit = 0
	p.cond.Broadcast()
}

// Stats snapshots the pool's bookkeeping for tests and diagnostics.
type Stats struct {
	Used     int
	Capacity int
	Min      int
	Max      int
	FreeLen  int
}

func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Used: p.used, Capacity: p.capacity, Min: p.cfg.Min, Max: p.cfg.Max, FreeLen: p.free.Len()}
}
