package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dealmungchi/coursecrawler/internal/course"
)

// maxResolveAttempts bounds resolve-or-create retries when a concurrent
// writer wins the insert and the row is gone again before the lookup.
const maxResolveAttempts = 3

// Tx is one unit of work. Writes become visible when the enclosing InTx
// commits.
type Tx struct {
	tx  *sqlx.Tx
	now func() time.Time
}

// ResolveDifficulty returns the id of the difficulty with label, creating
// it if needed
func (t *Tx) ResolveDifficulty(ctx context.Context, label string) (int64, error) {
	return t.resolve(ctx, "course_difficulties", "label", label)
}

// ResolveAuthor returns the id of the author with name, creating it if needed
func (t *Tx) ResolveAuthor(ctx context.Context, name string) (int64, error) {
	return t.resolve(ctx, "authors", "name", name)
}

// resolve looks key up in table and inserts it when absent. The unique
// constraint on column decides concurrent inserts: the loser's insert is a
// no-op and the next lookup finds the winner's row.
func (t *Tx) resolve(ctx context.Context, table, column, key string) (int64, error) {
	selectQuery := t.tx.Rebind(fmt.Sprintf(`SELECT id FROM %s WHERE %s = ?`, table, column))
	insertQuery := t.tx.Rebind(fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (?) ON CONFLICT (%s) DO NOTHING RETURNING id`, table, column, column))

	for attempt := 1; attempt <= maxResolveAttempts; attempt++ {
		var id int64
		err := t.tx.GetContext(ctx, &id, selectQuery, key)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to look up %s %q: %w", table, key, err)
		}

		err = t.tx.GetContext(ctx, &id, insertQuery, key)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("failed to create %s %q: %w", table, key, err)
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrResolveConflict, table, key)
}

// CreateCourse inserts a course for rec. A course whose URL is already
// stored yields ErrDuplicateCourse.
func (t *Tx) CreateCourse(ctx context.Context, rec course.ValidatedRecord, difficultyID int64) (int64, error) {
	var lectures *int64
	if n, ok := rec.LecturesCount.Get(); ok {
		v := int64(n)
		lectures = &v
	}

	query := t.tx.Rebind(`
		INSERT INTO courses (
			name, url, created_at, duration, total_lectures, rating,
			total_students, current_price, original_price, difficulty_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING
		RETURNING id`)

	var id int64
	err := t.tx.GetContext(ctx, &id, query,
		rec.Title, rec.TargetURL, t.now().UTC(), rec.HoursRequired, lectures, rec.Rating,
		rec.TotalStudents, rec.CurrentPrice.Ptr(), rec.OriginalPrice.Ptr(), difficultyID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrDuplicateCourse
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create course: %w", err)
	}
	return id, nil
}

// LinkAuthor associates an author with a course. Linking an existing pair
// is a no-op.
func (t *Tx) LinkAuthor(ctx context.Context, authorID, courseID int64) error {
	query := t.tx.Rebind(`
		INSERT INTO authors_courses (author_id, course_id) VALUES (?, ?)
		ON CONFLICT (author_id, course_id) DO NOTHING`)

	if _, err := t.tx.ExecContext(ctx, query, authorID, courseID); err != nil {
		return fmt.Errorf("failed to link author %d to course %d: %w", authorID, courseID, err)
	}
	return nil
}
