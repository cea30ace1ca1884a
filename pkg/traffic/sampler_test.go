package traffic_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/traffic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu     sync.Mutex
	calls  int
	factor float64
	err    error
}

func (p *fakeProvider) SampleFactor(ctx context.Context, lat, lon float64) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.factor, p.err
}

func testDenseGraph(t *testing.T) *datastructure.DenseGraph {
	t.Helper()
	nodes := []datastructure.Node{
		{Name: "Solo", Lat: -7.57, Lon: 110.82, IDx: 0},
		{Name: "Jogja", Lat: -7.8, Lon: 110.36, IDx: 1},
		{Name: "Semarang", Lat: -6.97, Lon: 110.42, IDx: 2},
		{Name: "Salatiga", Lat: -7.33, Lon: 110.5, IDx: 3},
	}
	g, err := datastructure.NewDenseGraph(nodes)
	require.NoError(t, err)
	return g
}

func TestApplyTrafficFactors(t *testing.T) {
	t.Run("success sampling every stride-th edge", func(t *testing.T) {
		g := testDenseGraph(t)
		provider := &fakeProvider{factor: 2.0}
		cache := traffic.NewCache(filepath.Join(t.TempDir(), "cache.txt"))
		sampler := traffic.NewSampler(provider, cache, 3)

		cacheHit := sampler.ApplyTrafficFactors(context.Background(), g, false, traffic.DefaultCacheTTLMinutes)
		assert.False(t, cacheHit)

		// 4 nodes -> 6 undirected edges, stride 3 samples edges 0 and 3
		assert.Equal(t, 2, provider.calls)
		assert.Equal(t, 2.0, g.GetEdge(0, 1).TrafficFactor)
		assert.Equal(t, 2.0, g.GetEdge(1, 0).TrafficFactor)
		assert.Equal(t, 1.0, g.GetEdge(0, 2).TrafficFactor)
	})

	t.Run("success provider failure degrades edge to free flow", func(t *testing.T) {
		g := testDenseGraph(t)
		provider := &fakeProvider{factor: 0, err: errors.New("flow api down")}
		cache := traffic.NewCache(filepath.Join(t.TempDir(), "cache.txt"))
		sampler := traffic.NewSampler(provider, cache, 1)

		sampler.ApplyTrafficFactors(context.Background(), g, false, traffic.DefaultCacheTTLMinutes)

		n := int32(g.NumNodes())
		for i := int32(0); i < n; i++ {
			for j := i + 1; j < n; j++ {
				assert.Equal(t, traffic.MinFactor, g.GetEdge(i, j).TrafficFactor)
			}
		}
	})

	t.Run("success fresh cache skips the provider", func(t *testing.T) {
		g := testDenseGraph(t)
		path := filepath.Join(t.TempDir(), "cache.txt")
		warmCache := traffic.NewCache(path)
		require.NoError(t, warmCache.Save(map[traffic.EdgeKey]float64{
			traffic.NewEdgeKey(0, 1): 3.0,
		}))

		provider := &fakeProvider{factor: 2.0}
		sampler := traffic.NewSampler(provider, traffic.NewCache(path), 1)

		cacheHit := sampler.ApplyTrafficFactors(context.Background(), g, false, traffic.DefaultCacheTTLMinutes)
		assert.True(t, cacheHit)
		assert.Equal(t, 0, provider.calls)
		assert.Equal(t, 3.0, g.GetEdge(0, 1).TrafficFactor)
	})

	t.Run("success force refresh bypasses fresh cache", func(t *testing.T) {
		g := testDenseGraph(t)
		path := filepath.Join(t.TempDir(), "cache.txt")
		require.NoError(t, traffic.NewCache(path).Save(map[traffic.EdgeKey]float64{
			traffic.NewEdgeKey(0, 1): 3.0,
		}))

		provider := &fakeProvider{factor: 1.8}
		sampler := traffic.NewSampler(provider, traffic.NewCache(path), 1)

		cacheHit := sampler.ApplyTrafficFactors(context.Background(), g, true, traffic.DefaultCacheTTLMinutes)
		assert.False(t, cacheHit)
		assert.Equal(t, 6, provider.calls)
		assert.Equal(t, 1.8, g.GetEdge(0, 1).TrafficFactor)
	})

	t.Run("success resample persists a new snapshot", func(t *testing.T) {
		g := testDenseGraph(t)
		path := filepath.Join(t.TempDir(), "cache.txt")
		provider := &fakeProvider{factor: 2.0}
		sampler := traffic.NewSampler(provider, traffic.NewCache(path), 1)

		sampler.ApplyTrafficFactors(context.Background(), g, false, traffic.DefaultCacheTTLMinutes)

		loaded, err := traffic.NewCache(path).Load()
		require.NoError(t, err)
		assert.Len(t, loaded, 6)
		assert.Equal(t, 2.0, loaded[traffic.NewEdgeKey(0, 1)])
	})
}

func TestClampFactor(t *testing.T) {
	t.Run("success clamp into valid range", func(t *testing.T) {
		assert.Equal(t, traffic.MinFactor, traffic.ClampFactor(0.5))
		assert.Equal(t, traffic.MaxFactor, traffic.ClampFactor(10))
		assert.Equal(t, 2.0, traffic.ClampFactor(2.0))
	})
}

func TestNewTomTomClient(t *testing.T) {
	t.Run("success default timeout applied", func(t *testing.T) {
		client := traffic.NewTomTomClient("key", 0)
		assert.NotNil(t, client)
	})

	t.Run("failed sample against unroutable endpoint", func(t *testing.T) {
		client := traffic.NewTomTomClient("key", 50*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.SampleFactor(ctx, -7.57, 110.82)
		assert.Error(t, err)
	})
}
