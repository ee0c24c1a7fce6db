// Package ingest persists validated course records.
package ingest

import (
	"context"
	"errors"

	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/store"
	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// Session runs one unit of work in a transaction
type Session interface {
	InTx(ctx context.Context, fn func(*store.Tx) error) error
}

// Failure is a record that was not persisted
type Failure struct {
	SourceURL string
	Reason    string
	Err       error
}

// Ingested is a record that was committed
type Ingested struct {
	CourseID int64
	Record   course.ValidatedRecord
}

// Result summarizes one Ingest call
type Result struct {
	IngestedCount int
	// Duplicates counts records whose URL was already stored
	Duplicates int
	Failures   []Failure
	Courses    []Ingested
}

// Engine resolves reference entities and creates courses, one commit per
// record
type Engine struct {
	session Session
	log     *logger.Logger
}

// NewEngine creates an ingestion engine over session
func NewEngine(session Session) *Engine {
	return &Engine{session: session, log: logger.ForIngest()}
}

// Ingest persists records in order. A failing record is rolled back on its
// own and reported; records before and after it are unaffected. When ctx is
// cancelled the remaining records are reported as failures.
func (e *Engine) Ingest(ctx context.Context, runID string, records []course.ValidatedRecord) Result {
	var result Result
	log := e.log
	if runID != "" {
		log = log.WithField("run_id", runID)
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			for _, rest := range records[i:] {
				result.Failures = append(result.Failures, Failure{
					SourceURL: rest.TargetURL,
					Reason:    "not attempted: " + err.Error(),
					Err:       cerrors.NewIngestion(rest.TargetURL, err),
				})
			}
			log.Warn().Err(err).Int("remaining", len(records)-i).Msg("Ingestion interrupted")
			break
		}

		courseID, err := e.ingestOne(ctx, rec)
		switch {
		case err == nil:
			result.IngestedCount++
			result.Courses = append(result.Courses, Ingested{CourseID: courseID, Record: rec})
			log.Debug().Str("source_url", rec.TargetURL).Int64("course_id", courseID).Msg("Course ingested")
		case errors.Is(err, store.ErrDuplicateCourse):
			result.Duplicates++
			log.Debug().Str("source_url", rec.TargetURL).Msg("Course already stored")
		default:
			reason := store.Reason(err)
			result.Failures = append(result.Failures, Failure{
				SourceURL: rec.TargetURL,
				Reason:    reason,
				Err:       cerrors.NewIngestion(rec.TargetURL, err),
			})
			log.Error().Err(err).Str("source_url", rec.TargetURL).Str("reason", reason).Msg("Course not ingested")
		}
	}

	log.Info().
		Int("ingested", result.IngestedCount).
		Int("duplicates", result.Duplicates).
		Int("failed", len(result.Failures)).
		Msg("Ingestion finished")

	return result
}

func (e *Engine) ingestOne(ctx context.Context, rec course.ValidatedRecord) (int64, error) {
	var courseID int64
	err := e.session.InTx(ctx, func(tx *store.Tx) error {
		difficultyID, err := tx.ResolveDifficulty(ctx, rec.Difficulty)
		if err != nil {
			return err
		}

		courseID, err = tx.CreateCourse(ctx, rec, difficultyID)
		if err != nil {
			return err
		}

		for _, name := range rec.Authors {
			authorID, err := tx.ResolveAuthor(ctx, name)
			if err != nil {
				return err
			}
			if err := tx.LinkAuthor(ctx, authorID, courseID); err != nil {
				return err
			}
		}
		return nil
	})
	return courseID, err
}
