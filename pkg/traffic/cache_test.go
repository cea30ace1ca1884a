package traffic_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecoroute/pkg/traffic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, path string, ts int64, rows string) {
	t.Helper()
	err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n%s", ts, rows)), 0644)
	require.NoError(t, err)
}

func TestCacheFreshness(t *testing.T) {
	t.Run("success fresh within ttl", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		writeSnapshot(t, path, time.Now().Unix()-60, "")
		cache := traffic.NewCache(path)
		assert.True(t, cache.IsFresh(traffic.DefaultCacheTTLMinutes))
	})

	t.Run("success stale after ttl", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		writeSnapshot(t, path, time.Now().Unix()-16*60, "")
		cache := traffic.NewCache(path)
		assert.False(t, cache.IsFresh(traffic.DefaultCacheTTLMinutes))
	})

	t.Run("failed future timestamp is invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		writeSnapshot(t, path, time.Now().Unix()+300, "")
		cache := traffic.NewCache(path)
		assert.False(t, cache.IsFresh(traffic.DefaultCacheTTLMinutes))
	})

	t.Run("failed missing file", func(t *testing.T) {
		cache := traffic.NewCache(filepath.Join(t.TempDir(), "nope.txt"))
		assert.False(t, cache.IsFresh(traffic.DefaultCacheTTLMinutes))
	})

	t.Run("failed garbage header", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		require.NoError(t, os.WriteFile(path, []byte("not-a-timestamp\n"), 0644))
		cache := traffic.NewCache(path)
		assert.False(t, cache.IsFresh(traffic.DefaultCacheTTLMinutes))
	})
}

func TestCacheLoadSave(t *testing.T) {
	t.Run("success save then load round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		cache := traffic.NewCache(path)

		in := map[traffic.EdgeKey]float64{
			traffic.NewEdgeKey(0, 1): 1.5,
			traffic.NewEdgeKey(2, 0): 2.25,
		}
		require.NoError(t, cache.Save(in))
		require.True(t, cache.IsFresh(traffic.DefaultCacheTTLMinutes))

		out, err := cache.Load()
		require.NoError(t, err)
		assert.Equal(t, 1.5, out[traffic.NewEdgeKey(0, 1)])
		assert.Equal(t, 2.25, out[traffic.NewEdgeKey(0, 2)])
	})

	t.Run("success load clamps out of range factors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		writeSnapshot(t, path, time.Now().Unix(), "0 1 0.200000\n0 2 9.000000\n")
		cache := traffic.NewCache(path)

		out, err := cache.Load()
		require.NoError(t, err)
		assert.Equal(t, traffic.MinFactor, out[traffic.NewEdgeKey(0, 1)])
		assert.Equal(t, traffic.MaxFactor, out[traffic.NewEdgeKey(0, 2)])
	})

	t.Run("success malformed rows skipped", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traffic_cache.txt")
		writeSnapshot(t, path, time.Now().Unix(), "0 1 1.500000\nbogus row\n1 2 2.000000\n")
		cache := traffic.NewCache(path)

		out, err := cache.Load()
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("failed load on missing file", func(t *testing.T) {
		cache := traffic.NewCache(filepath.Join(t.TempDir(), "nope.txt"))
		_, err := cache.Load()
		assert.ErrorIs(t, err, traffic.ErrCacheStale)
	})
}

func TestEdgeKeyNormalization(t *testing.T) {
	t.Run("success key is order independent", func(t *testing.T) {
		assert.Equal(t, traffic.NewEdgeKey(3, 7), traffic.NewEdgeKey(7, 3))
	})
}
