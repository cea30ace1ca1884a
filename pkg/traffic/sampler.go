package traffic

import (
	"context"
	"log"

	"ecoroute/pkg/concurrent"
	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/geo"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

const (
	// DefaultSampleStride sample every Nth undirected edge.
	DefaultSampleStride  = 3
	defaultSampleWorkers = 4
)

type sampleResult struct {
	key    EdgeKey
	factor float64
}

// Sampler fills a dense graph's traffic factors, preferring a fresh cache
// snapshot and otherwise sampling the provider at edge midpoints.
type Sampler struct {
	provider Provider
	cache    *Cache
	stride   int
	workers  int
}

func NewSampler(provider Provider, cache *Cache, stride int) *Sampler {
	if stride < 1 {
		stride = DefaultSampleStride
	}
	return &Sampler{
		provider: provider,
		cache:    cache,
		stride:   stride,
		workers:  defaultSampleWorkers,
	}
}

// ApplyTrafficFactors loads multipliers from the cache when it is fresh,
// otherwise resamples and persists a new snapshot. Returns whether the cache
// served the request. Snapshot failures never fail the routing request: an
// unreadable fresh cache falls back to resampling, and a write failure is
// logged while the freshly sampled in-memory factors still stand.
func (s *Sampler) ApplyTrafficFactors(ctx context.Context, g *datastructure.DenseGraph, forceRefresh bool, ttlMinutes int) bool {
	if !forceRefresh && s.cache.IsFresh(ttlMinutes) {
		factors, err := s.cache.Load()
		if err == nil {
			g.ResetTrafficFactors()
			for key, fac := range factors {
				if int(key.U) < g.NumNodes() && int(key.V) < g.NumNodes() {
					g.SetTrafficFactor(key.U, key.V, fac)
				}
			}
			return true
		}
		log.Printf("fresh traffic cache is unreadable, resampling: %v", err)
	}

	s.sample(ctx, g)

	if err := s.cache.Save(s.upperTriangular(g)); err != nil {
		log.Printf("traffic cache write failed, continuing with in-memory factors: %v", err)
	}
	return false
}

// sample visits every undirected edge (i<j) in insertion order, querying the
// provider at the geographic midpoint of every stride-th edge. The samples
// are independent, so they run through the worker pool; a failed sample
// degrades that edge to factor 1.0 only.
func (s *Sampler) sample(ctx context.Context, g *datastructure.DenseGraph) {
	g.ResetTrafficFactors()

	jobs := []concurrent.EdgeSampleItem{}
	sampleCount := 0
	n := int32(g.NumNodes())
	for i := int32(0); i < n; i++ {
		for j := i + 1; j < n; j++ {
			if sampleCount%s.stride == 0 {
				a := g.GetNode(i)
				b := g.GetNode(j)
				midLat, midLon := geo.MidPoint(a.Lat, a.Lon, b.Lat, b.Lon)
				jobs = append(jobs, concurrent.EdgeSampleItem{U: i, V: j, MidLat: midLat, MidLon: midLon})
			}
			sampleCount++
		}
	}
	if len(jobs) == 0 {
		return
	}

	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan]sampling traffic factors...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	workers := concurrent.NewWorkerPool[concurrent.EdgeSampleItem, sampleResult](s.workers, len(jobs))
	for _, job := range jobs {
		workers.AddJob(job)
	}
	workers.Close()

	workers.Start(func(job concurrent.EdgeSampleItem) sampleResult {
		factor, err := s.provider.SampleFactor(ctx, job.MidLat, job.MidLon)
		if err != nil {
			factor = MinFactor
		}
		bar.Add(1)
		return sampleResult{key: NewEdgeKey(job.U, job.V), factor: ClampFactor(factor)}
	})
	workers.Wait()

	for res := range workers.CollectResults() {
		g.SetTrafficFactor(res.key.U, res.key.V, res.factor)
	}
}

// upperTriangular snapshots every i<j factor, sampled or defaulted.
func (s *Sampler) upperTriangular(g *datastructure.DenseGraph) map[EdgeKey]float64 {
	factors := make(map[EdgeKey]float64)
	n := int32(g.NumNodes())
	for i := int32(0); i < n; i++ {
		for j := i + 1; j < n; j++ {
			factors[EdgeKey{U: i, V: j}] = g.GetEdge(i, j).TrafficFactor
		}
	}
	return factors
}
