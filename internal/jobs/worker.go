package jobs

import (
	"context"
	"log"
	"time"
)

// JobProcessor drains whatever embedding jobs are currently claimable.
// EmbeddingWorker is the production implementation.
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker drives a JobProcessor on a fixed poll interval. One worker runs per
// forged process; the queue's atomic claim keeps concurrent processes from
// embedding the same job twice.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

func NewWorker(processor JobProcessor, pollInterval time.Duration) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start polls until the context is cancelled or Stop is called. The first
// drain runs immediately so jobs queued before startup do not wait out a full
// interval.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("embedding worker polling every %v", w.pollInterval)

	w.drain(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Println("embedding worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("embedding worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	if err := w.processor.ProcessJobs(ctx); err != nil {
		log.Printf("embedding worker: %v", err)
	}
}

// Stop signals the poll loop and blocks until it exits.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}
