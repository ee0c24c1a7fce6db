package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/pipeline"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
	"github.com/dealmungchi/coursecrawler/services/publisher"
)

// Runner runs one crawl-and-ingest pass
type Runner interface {
	Ingest(ctx context.Context, platform course.Platform, start, end int) (pipeline.Summary, error)
}

// Job is one platform page range crawled on every tick
type Job struct {
	Platform  course.Platform
	StartPage int
	EndPage   int
}

// Worker runs the configured jobs on a cron schedule
type Worker struct {
	runner    Runner
	publisher publisher.Publisher
	schedule  string
	jobs      []Job
	log       *logger.Logger

	mu sync.Mutex
}

// NewWorker creates a new worker
func NewWorker(runner Runner, pub publisher.Publisher, schedule string, jobs []Job) *Worker {
	if pub == nil {
		pub = publisher.Nop{}
	}
	return &Worker{
		runner:    runner,
		publisher: pub,
		schedule:  schedule,
		jobs:      jobs,
		log:       logger.ForWorker(),
	}
}

// Start runs the jobs once, then on every schedule tick until ctx is done.
// A tick that fires while the previous one is still running is skipped.
func (w *Worker) Start(ctx context.Context) error {
	cl := cronLogger{log: w.log}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(ctx) }); err != nil {
		return cerrors.NewConfiguration(fmt.Sprintf("invalid CRAWL_SCHEDULE %q", w.schedule), err)
	}

	w.RunOnce(ctx)

	c.Start()
	w.log.Info().Str("schedule", w.schedule).Int("jobs", len(w.jobs)).Msg("Worker scheduled")

	<-ctx.Done()
	<-c.Stop().Done()
	w.log.Info().Msg("Worker stopped")
	return nil
}

// RunOnce runs every job in order. Platforms never run concurrently.
func (w *Worker) RunOnce(ctx context.Context) []pipeline.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	var summaries []pipeline.Summary
	for _, job := range w.jobs {
		if ctx.Err() != nil {
			break
		}

		summary, err := w.runner.Ingest(ctx, job.Platform, job.StartPage, job.EndPage)
		if err != nil {
			w.log.Error().Err(err).Str("platform", job.Platform.String()).Msg("Run failed")
		}
		summaries = append(summaries, summary)
	}

	// Trim the stream after every tick
	if err := w.publisher.TrimStreams(context.WithoutCancel(ctx)); err != nil {
		w.log.Error().Err(err).Msg("Failed to trim stream")
	}

	w.log.Info().Dur("elapsed", time.Since(start)).Int("runs", len(summaries)).Msg("Tick finished")
	return summaries
}

// cronLogger adapts the logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
