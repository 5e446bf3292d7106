package worker

import (
	"context"
	"sync"

	"fee-desk/internal/logger"

	"github.com/rs/zerolog"
)

type Job func(context.Context) error

// WorkerPool runs jobs on a fixed number of goroutines. Submit blocks while
// the job channel is full, so no job is ever dropped.
type WorkerPool struct {
	workerCount int
	jobChan     chan Job
	wg          sync.WaitGroup
	errMu       sync.Mutex
	errs        []error
	log         zerolog.Logger
}

func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerPool{
		workerCount: workerCount,
		jobChan:     make(chan Job, workerCount*2),
		log:         logger.Component("worker-pool"),
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	wp.log.Debug().Int("worker_count", wp.workerCount).Msg("Starting worker pool")

	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Stop closes the pool to new jobs, waits for queued ones and returns every
// job error in completion order.
func (wp *WorkerPool) Stop() []error {
	close(wp.jobChan)
	wp.wg.Wait()
	wp.log.Debug().Msg("Worker pool stopped")

	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return wp.errs
}

func (wp *WorkerPool) Submit(ctx context.Context, job Job) error {
	select {
	case wp.jobChan <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	log := wp.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for job := range wp.jobChan {
		if err := job(ctx); err != nil {
			log.Error().Err(err).Msg("Job execution failed")
			wp.errMu.Lock()
			wp.errs = append(wp.errs, err)
			wp.errMu.Unlock()
		}
	}
}
