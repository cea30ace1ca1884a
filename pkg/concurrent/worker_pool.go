package concurrent

import (
	"sync"
)

// EdgeSampleItem one undirected edge whose traffic factor should be sampled
// at its geographic midpoint.
type EdgeSampleItem struct {
	U      int32
	V      int32
	MidLat float64
	MidLon float64
}

// SaveRecordItem one encoded route-history record to persist.
type SaveRecordItem struct {
	Key   []byte
	Value []byte
}

type JobI interface {
	EdgeSampleItem | SaveRecordItem
}

type Job[T JobI] struct {
	ID      int
	JobItem T
}

type JobFunc[T JobI, G any] func(job T) G

type WorkerPool[T JobI, G any] struct {
	numWorkers int
	jobQueue   chan T
	results    chan G
	wg         sync.WaitGroup
}

func NewWorkerPool[T JobI, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan T, jobQueueSize),
		results:    make(chan G, jobQueueSize),
	}
}

func (wp *WorkerPool[JobI, G]) worker(id int, jobFunc JobFunc[JobI, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		res := jobFunc(job)
		wp.results <- res
	}
}

func (wp *WorkerPool[JobI, G]) Start(jobFunc JobFunc[JobI, G]) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, jobFunc)
	}
}

func (wp *WorkerPool[JobI, G]) AddJob(job JobI) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[JobI, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[JobI, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[JobI, G]) CollectResults() chan G {
	return wp.results
}
