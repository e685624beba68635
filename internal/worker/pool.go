// Package worker provides background processing for stored audio.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/chorus/internal/core/ports"
)

// Job asks for a duration probe of one stored song.
type Job struct {
	SongID     string
	StorageKey string
}

// Pool manages background workers for audio analysis jobs.
type Pool struct {
	songs  ports.SongRepository
	blobs  ports.BlobStore
	logger *log.Logger
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewPool creates a worker pool with the given queue size.
func NewPool(songs ports.SongRepository, blobs ports.BlobStore, logger *log.Logger, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		songs:  songs,
		blobs:  blobs,
		logger: logger.With("component", "worker"),
		jobs:   make(chan Job, queueSize),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking. A full queue drops the job; the song
// simply keeps a zero duration until re-ingested.
func (p *Pool) Submit(job Job) {
	select {
	case p.jobs <- job:
	default:
		p.logger.Warn("dropping analysis job, queue full", "song", job.SongID)
	}
}

func (p *Pool) processJob(job Job) {
	if job.StorageKey == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seconds, err := AnalyzeDurationFunc(ctx, p.blobs, job.StorageKey)
	if err != nil {
		p.logger.Warn("duration probe failed", "song", job.SongID, "key", job.StorageKey, "err", err)
		return
	}

	if err := p.songs.SetDuration(ctx, job.SongID, seconds); err != nil {
		p.logger.Warn("failed to record duration", "song", job.SongID, "err", err)
		return
	}
	p.logger.Debug("recorded song duration", "song", job.SongID, "seconds", seconds)
}
