package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /api/athletes" or "SELECT athlete"
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer of timing entries.
// When full, the oldest entries are overwritten. Aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// A non-positive size uses DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{entries: make([]Entry, size)}
}

// Record appends an entry, overwriting the oldest when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % len(c.entries)
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Snapshot holds aggregated timings for the admin perf endpoint.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRecorded  int64      `json:"totalRecorded"`
	Requests       int        `json:"requests"`
	ServerErrors   int        `json:"serverErrors"`
	RequestP50Ms   float64    `json:"requestP50Ms"`
	RequestP95Ms   float64    `json:"requestP95Ms"`
	RequestP99Ms   float64    `json:"requestP99Ms"`
	SlowestPaths   []PathStat `json:"slowestPaths"`
	SlowestQueries []PathStat `json:"slowestQueries"`
}

// PathStat aggregates timing for one route or query label.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"-"`
}

func (s *PathStat) add(ms float64) {
	s.Count++
	s.TotalMs += ms
	if ms > s.MaxMs {
		s.MaxMs = ms
	}
}

// Snapshot aggregates entries recorded at or after since, keeping the topN
// slowest routes and queries by average duration.
// POST: the ring buffer is not modified
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.entries))
	copy(buf, c.entries)
	c.mu.Unlock()

	snap := Snapshot{Since: since, TotalRecorded: c.TotalRecorded()}
	var durations []float64
	requests := map[string]*PathStat{}
	queries := map[string]*PathStat{}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats := queries
		if e.Kind == KindRequest {
			stats = requests
			durations = append(durations, e.DurationMs)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
		}
		s, ok := stats[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			stats[e.Path] = s
		}
		s.add(e.DurationMs)
	}

	snap.Requests = len(durations)
	snap.SlowestPaths = topByAvg(requests, topN)
	snap.SlowestQueries = topByAvg(queries, topN)
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
