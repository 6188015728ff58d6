// Package sampler exercises a finished lookup array the way the data plane
// would: many concurrent readers doing one array load per request, no
// mutation. It tallies per-real hit counts so internal/report can print
// fragmentation numbers against a realistic request mix rather than just
// the construction-time cell counts.
package sampler

import (
	"encoding/binary"
	"hash/crc32"
	"runtime"
	"sync"
)

// Sampler fires synthetic request keys at a populated lookup array and
// tallies which real each key lands on.
type Sampler struct {
	workers int
	lookup  []uint32
}

// New creates a Sampler reading from lookup. If workers is 0, it defaults
// to NumCPU * 2.
func New(workers int, lookup []uint32) *Sampler {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}
	return &Sampler{workers: workers, lookup: lookup}
}

// syntheticKey derives a request hash from a sample index. Stands in for a
// real client 5-tuple; any avalanching 32-bit hash works here the same way
// hashBytes treats its CRC as a black box.
func syntheticKey(i uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], i)
	return crc32.ChecksumIEEE(buf[:])
}

// Sample fires n synthetic requests split evenly across the worker pool and
// returns the merged per-RealId hit tally. Safe to call while other readers
// are also indexing lookup, since Sample never writes to it.
func (s *Sampler) Sample(n int) map[uint32]int {
	if n <= 0 || len(s.lookup) == 0 {
		return map[uint32]int{}
	}

	partials := make([]map[uint32]int, s.workers)
	chunk := (n + s.workers - 1) / s.workers

	var wg sync.WaitGroup
	for w := range s.workers {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			partials[w] = s.sampleRange(start, end)
		}(w, start, end)
	}
	wg.Wait()

	merged := make(map[uint32]int, len(s.lookup))
	for _, p := range partials {
		for id, count := range p {
			merged[id] += count
		}
	}
	return merged
}

func (s *Sampler) sampleRange(start, end int) map[uint32]int {
	local := make(map[uint32]int)
	size := uint64(len(s.lookup))
	for i := start; i < end; i++ {
		key := syntheticKey(uint64(i))
		id := s.lookup[uint64(key)%size]
		local[id]++
	}
	return local
}
