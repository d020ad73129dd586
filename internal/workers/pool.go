package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pedro-fs-garcia/filmmash-api/internal/logger"
)

// ErrPoolStopped is returned by Do once Stop has been called.
var ErrPoolStopped = errors.New("worker pool is stopped")

// Pool executes submitted jobs on a fixed number of goroutines. Jobs wait in
// a bounded queue while all goroutines are busy.
type Pool struct {
	size   int
	jobs   chan func()
	quit   chan struct{}
	wg     sync.WaitGroup
	start  sync.Once
	stop   sync.Once
	logger *logger.Logger
}

// NewPool builds a pool of size goroutines with a queue of queueSize pending
// jobs. Non-positive sizes are raised to 1 and 0 respectively.
func NewPool(size, queueSize int, log *logger.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Pool{
		size:   size,
		jobs:   make(chan func(), queueSize),
		quit:   make(chan struct{}),
		logger: log,
	}
}

// Run starts the pool goroutines. Calling Run more than once has no effect.
func (p *Pool) Run() {
	p.start.Do(func() {
		p.logger.Info().Int("size", p.size).Int("queue", cap(p.jobs)).Msg("starting worker pool")
		for i := 0; i < p.size; i++ {
			p.wg.Add(1)
			go p.loop()
		}
	})
}

// Stop signals the goroutines to exit and waits for running jobs to finish.
// Queued jobs that have not started are dropped.
func (p *Pool) Stop() {
	p.stop.Do(func() {
		close(p.quit)
		p.wg.Wait()
		p.logger.Info().Msg("worker pool stopped")
	})
}

// Do submits fn and waits for it to complete. It returns ctx.Err() when ctx
// is done before fn finishes, ErrPoolStopped after Stop, and an error if fn
// panics.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	var jobErr error
	job := func() {
		defer func() {
			if r := recover(); r != nil {
				jobErr = fmt.Errorf("worker pool job panicked: %v", r)
			}
			close(done)
		}()
		fn()
	}

	select {
	case <-p.quit:
		return ErrPoolStopped
	default:
	}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return ErrPoolStopped
	}

	select {
	case <-done:
		return jobErr
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		// the job may still be running; wait for it unless it was dropped
		select {
		case <-done:
			return jobErr
		default:
			return ErrPoolStopped
		}
	}
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case job := <-p.jobs:
			job()
		}
	}
}
