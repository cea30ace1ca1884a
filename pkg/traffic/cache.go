package traffic

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slices"
)

// DefaultCacheTTLMinutes default snapshot freshness window.
const DefaultCacheTTLMinutes = 15

var ErrCacheStale = errors.New("traffic cache is stale or unreadable")

// EdgeKey identifies an undirected edge by its node indices, normalized to
// U < V.
type EdgeKey struct {
	U int32
	V int32
}

func NewEdgeKey(u, v int32) EdgeKey {
	if u > v {
		u, v = v, u
	}
	return EdgeKey{U: u, V: v}
}

// Cache persists traffic multipliers across process invocations. The snapshot
// is a single timestamp line followed by one "u v factor" row per
// upper-triangular edge; the whole cache shares that one timestamp.
type Cache struct {
	path string
	now  func() time.Time
}

func NewCache(path string) *Cache {
	return &Cache{path: path, now: time.Now}
}

// IsFresh reads only the snapshot timestamp: fresh iff its age is
// non-negative and within ttlMinutes. A timestamp in the future is invalid.
func (c *Cache) IsFresh(ttlMinutes int) bool {
	f, err := os.Open(c.path)
	if err != nil {
		return false
	}
	defer f.Close()

	var ts int64
	if _, err := fmt.Fscanf(f, "%d", &ts); err != nil {
		return false
	}
	age := c.now().Unix() - ts
	if age < 0 {
		return false
	}
	return age <= int64(ttlMinutes)*60
}

// Load reads the snapshot's multipliers, clamped into the valid range.
// Returns ErrCacheStale when the file is missing or has no parsable
// timestamp.
func (c *Cache) Load() (map[EdgeKey]float64, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, ErrCacheStale
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, ErrCacheStale
	}
	var ts int64
	if _, err := fmt.Sscanf(scanner.Text(), "%d", &ts); err != nil {
		return nil, ErrCacheStale
	}

	factors := make(map[EdgeKey]float64)
	for scanner.Scan() {
		var u, v int32
		var fac float64
		if _, err := fmt.Sscanf(scanner.Text(), "%d %d %f", &u, &v, &fac); err != nil {
			continue
		}
		factors[NewEdgeKey(u, v)] = ClampFactor(fac)
	}
	return factors, nil
}

// Save atomically replaces the snapshot: the new file is written next to the
// old one and renamed over it, so a concurrent reader never observes a
// half-written cache.
func (c *Cache) Save(factors map[EdgeKey]float64) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), "traffic-cache-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	fmt.Fprintf(w, "%d\n", c.now().Unix())

	keys := make([]EdgeKey, 0, len(factors))
	for k := range factors {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b EdgeKey) int {
		if a.U != b.U {
			return int(a.U - b.U)
		}
		return int(a.V - b.V)
	})
	for _, k := range keys {
		fmt.Fprintf(w, "%d %d %.6f\n", k.U, k.V, factors[k])
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}
