package tablebase

import (
	"sync"

	"github.com/kraktus/helpmate-tb/internal/board"
)

// cacheKey identifies one cached outcome: the position's Zobrist hash plus
// which color is trying to win (the same position can have a different
// outcome depending on who is probing for a win).
type cacheKey struct {
	hash   uint64
	winner board.Color
}

// CachedProber wraps a TablebaseProber with an in-memory cache, grounded on
// the teacher's CachedProber (internal/tablebase/cached.go) but adapted to
// cache Outcome lookups keyed by (position hash, winner) instead of WDL
// scores: repeated probing during search/analysis of the same endgame tends
// to revisit positions, and each cache hit skips a block decompression.
type CachedProber struct {
	inner   *TablebaseProber
	cache   map[cacheKey]Outcome
	mu      sync.RWMutex
	maxSize int
	hits    uint64
	misses  uint64
}

// NewCachedProber wraps inner with a cache holding up to cacheSize entries.
func NewCachedProber(inner *TablebaseProber, cacheSize int) *CachedProber {
	return &CachedProber{
		inner:   inner,
		cache:   make(map[cacheKey]Outcome, cacheSize),
		maxSize: cacheSize,
	}
}

// RetrieveOutcome answers from the cache when possible, otherwise delegates
// to the wrapped prober and remembers the result.
func (cp *CachedProber) RetrieveOutcome(pos *board.Position, winner board.Color) (Outcome, error) {
	key := cacheKey{hash: pos.Hash, winner: winner}

	cp.mu.RLock()
	if out, ok := cp.cache[key]; ok {
		cp.mu.RUnlock()
		cp.mu.Lock()
		cp.hits++
		cp.mu.Unlock()
		return out, nil
	}
	cp.mu.RUnlock()

	out, err := cp.inner.RetrieveOutcome(pos, winner)
	if err != nil {
		return Outcome{}, err
	}

	cp.mu.Lock()
	cp.misses++
	if len(cp.cache) >= cp.maxSize {
		// Simple eviction: clear half the cache.
		i := 0
		for k := range cp.cache {
			if i >= cp.maxSize/2 {
				break
			}
			delete(cp.cache, k)
			i++
		}
	}
	cp.cache[key] = out
	cp.mu.Unlock()

	return out, nil
}

// Probe delegates to the wrapped TablebaseProber without caching: a full
// line probe touches many distinct positions, so per-position caching buys
// little and the underlying prober already holds every table decompressed
// lazily by block.
func (cp *CachedProber) Probe(rootPos *board.Position, winner board.Color) (*board.MoveList, error) {
	return cp.inner.Probe(rootPos, winner)
}

// Close releases the wrapped prober's file handles.
func (cp *CachedProber) Close() { cp.inner.Close() }

// HitRate returns the cache hit rate as a percentage.
func (cp *CachedProber) HitRate() float64 {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	total := cp.hits + cp.misses
	if total == 0 {
		return 0
	}
	return float64(cp.hits) / float64(total) * 100
}

// CacheSize returns the current number of cached entries.
func (cp *CachedProber) CacheSize() int {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return len(cp.cache)
}

// Clear empties the cache and resets hit/miss counters.
func (cp *CachedProber) Clear() {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	cp.cache = make(map[cacheKey]Outcome, cp.maxSize)
	cp.hits = 0
	cp.misses = 0
}
