// Package pipeline runs one crawl of a platform page range through
// normalization and ingestion, then publishes the outcome.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/crawler"
	"github.com/dealmungchi/coursecrawler/internal/ingest"
	"github.com/dealmungchi/coursecrawler/internal/normalize"
	"github.com/dealmungchi/coursecrawler/logger"
	"github.com/dealmungchi/coursecrawler/services/publisher"
)

// Stage names where a record was dropped
const (
	StageNormalize = "normalize"
	StageIngest    = "ingest"
)

// Crawler collects raw records for a page range
type Crawler interface {
	Crawl(ctx context.Context, platform course.Platform, start, end int) (crawler.Result, error)
}

// Ingester persists validated records
type Ingester interface {
	Ingest(ctx context.Context, runID string, records []course.ValidatedRecord) ingest.Result
}

// Failure is a record dropped by the run
type Failure struct {
	SourceURL string `json:"source_url"`
	Reason    string `json:"reason"`
	Stage     string `json:"stage"`
}

// Summary is the outcome of one run
type Summary struct {
	RunID     string          `json:"run_id"`
	Platform  course.Platform `json:"platform"`
	StartPage int             `json:"start_page"`
	// EndPage is the end page after clamping to the platform's last page
	EndPage       int       `json:"end_page"`
	PagesSkipped  int       `json:"pages_skipped"`
	Extracted     int       `json:"extracted"`
	FieldFailures int       `json:"field_failures"`
	IngestedCount int       `json:"ingested_count"`
	Duplicates    int       `json:"duplicates"`
	Failures      []Failure `json:"failures"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// CourseIngested is published once per committed course
type CourseIngested struct {
	RunID    string          `json:"run_id"`
	Platform course.Platform `json:"platform"`
	CourseID int64           `json:"course_id"`
	Title    string          `json:"title"`
	URL      string          `json:"url"`
}

// Runner wires the crawl, normalize and ingest stages
type Runner struct {
	crawler   Crawler
	ingester  Ingester
	publisher publisher.Publisher
	timeout   time.Duration
	log       *logger.Logger
	newID     func() string
	now       func() time.Time
}

// NewRunner creates a runner. timeout bounds a whole run; zero disables it.
func NewRunner(c Crawler, i Ingester, p publisher.Publisher, timeout time.Duration) *Runner {
	if p == nil {
		p = publisher.Nop{}
	}
	return &Runner{
		crawler:   c,
		ingester:  i,
		publisher: p,
		timeout:   timeout,
		log:       logger.ForIngest(),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Ingest crawls pages start..end of platform and persists what it finds.
// Configuration errors are returned before anything is fetched. When the
// run is cancelled or times out during the crawl, the partial summary is
// returned with the context error and nothing is ingested.
func (r *Runner) Ingest(ctx context.Context, platform course.Platform, start, end int) (Summary, error) {
	summary := Summary{
		RunID:     r.newID(),
		Platform:  platform,
		StartPage: start,
		EndPage:   end,
		StartedAt: r.now(),
	}
	log := r.log.WithFields(logger.Fields{"run_id": summary.RunID, "platform": platform.String()})

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log.Info().Int("start_page", start).Int("end_page", end).Msg("Run started")

	crawled, err := r.crawler.Crawl(ctx, platform, start, end)
	summary.EndPage = crawled.EndPage
	summary.PagesSkipped = crawled.PagesSkipped()
	summary.Extracted = len(crawled.Records)
	summary.FieldFailures = crawled.FieldFailures
	if err != nil {
		summary.FinishedAt = r.now()
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn().Err(err).Int("extracted", summary.Extracted).Msg("Run interrupted during crawl")
		} else {
			log.Error().Err(err).Msg("Run rejected")
		}
		return summary, err
	}

	validated := make([]course.ValidatedRecord, 0, len(crawled.Records))
	for _, raw := range crawled.Records {
		rec, err := normalize.Record(raw)
		if err != nil {
			summary.Failures = append(summary.Failures, Failure{
				SourceURL: raw.SourceURL(),
				Reason:    err.Error(),
				Stage:     StageNormalize,
			})
			log.Warn().Err(err).Str("source_url", raw.SourceURL()).Msg("Record dropped")
			continue
		}
		validated = append(validated, rec)
	}

	ingested := r.ingester.Ingest(ctx, summary.RunID, validated)
	summary.IngestedCount = ingested.IngestedCount
	summary.Duplicates = ingested.Duplicates
	for _, f := range ingested.Failures {
		summary.Failures = append(summary.Failures, Failure{
			SourceURL: f.SourceURL,
			Reason:    f.Reason,
			Stage:     StageIngest,
		})
	}
	summary.FinishedAt = r.now()

	r.publish(ctx, log, summary, ingested.Courses)

	log.Info().
		Int("end_page", summary.EndPage).
		Int("pages_skipped", summary.PagesSkipped).
		Int("extracted", summary.Extracted).
		Int("ingested", summary.IngestedCount).
		Int("duplicates", summary.Duplicates).
		Int("failed", len(summary.Failures)).
		Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Run completed")

	return summary, ctx.Err()
}

// publish emits the run's events. Failures are logged only.
func (r *Runner) publish(ctx context.Context, log *logger.Logger, summary Summary, courses []ingest.Ingested) {
	ctx = context.WithoutCancel(ctx)

	for _, c := range courses {
		event := CourseIngested{
			RunID:    summary.RunID,
			Platform: summary.Platform,
			CourseID: c.CourseID,
			Title:    c.Record.Title,
			URL:      c.Record.TargetURL,
		}
		if err := publisher.PublishJSON(ctx, r.publisher, publisher.EventCourseIngested, event); err != nil {
			log.Warn().Err(err).Str("source_url", c.Record.TargetURL).Msg("Failed to publish course event")
		}
	}

	if err := publisher.PublishJSON(ctx, r.publisher, publisher.EventRunCompleted, summary); err != nil {
		log.Warn().Err(err).Msg("Failed to publish run summary")
	}
}
