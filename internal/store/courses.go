package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dealmungchi/coursecrawler/internal/course"
)

const courseColumns = `
	c.id, c.name, c.url, c.created_at, c.duration, c.total_lectures, c.rating,
	c.total_students, c.current_price, c.original_price, c.difficulty_id`

// ListOptions pages through courses
type ListOptions struct {
	Limit  int
	Offset int
}

// Stats counts stored rows per table
type Stats struct {
	Courses      int `db:"courses"`
	Authors      int `db:"authors"`
	Difficulties int `db:"difficulties"`
	Links        int `db:"links"`
}

type authorRow struct {
	CourseID int64  `db:"course_id"`
	ID       int64  `db:"id"`
	Name     string `db:"name"`
}

// ListCourses returns courses ordered by id, with difficulty and authors
func (s *Store) ListCourses(ctx context.Context, opts ListOptions) ([]course.Course, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	var courses []course.Course
	query := s.db.Rebind(`SELECT ` + courseColumns + ` FROM courses c ORDER BY c.id LIMIT ? OFFSET ?`)
	if err := s.db.SelectContext(ctx, &courses, query, opts.Limit, opts.Offset); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if len(courses) == 0 {
		return courses, nil
	}

	if err := s.attachRelations(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourse returns one course with difficulty and authors
func (s *Store) GetCourse(ctx context.Context, id int64) (*course.Course, error) {
	var c course.Course
	query := s.db.Rebind(`SELECT ` + courseColumns + ` FROM courses c WHERE c.id = ?`)
	if err := s.db.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course %d: %w", id, err)
	}

	courses := []course.Course{c}
	if err := s.attachRelations(ctx, courses); err != nil {
		return nil, err
	}
	return &courses[0], nil
}

func (s *Store) attachRelations(ctx context.Context, courses []course.Course) error {
	ids := make([]int64, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	var difficulties []course.Difficulty
	if err := s.db.SelectContext(ctx, &difficulties, `SELECT id, label FROM course_difficulties`); err != nil {
		return fmt.Errorf("failed to load difficulties: %w", err)
	}
	byID := make(map[int64]course.Difficulty, len(difficulties))
	for _, d := range difficulties {
		byID[d.ID] = d
	}

	query, args, err := sqlx.In(`
		SELECT ac.course_id, a.id, a.name
		FROM authors_courses ac
		JOIN authors a ON a.id = ac.author_id
		WHERE ac.course_id IN (?)
		ORDER BY ac.course_id, ac.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to build author query: %w", err)
	}
	var rows []authorRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load authors: %w", err)
	}
	authors := make(map[int64][]course.Author)
	for _, r := range rows {
		authors[r.CourseID] = append(authors[r.CourseID], course.Author{ID: r.ID, Name: r.Name})
	}

	for i := range courses {
		if courses[i].DifficultyID != nil {
			if d, ok := byID[*courses[i].DifficultyID]; ok {
				courses[i].Difficulty = &d
			}
		}
		courses[i].Authors = authors[courses[i].ID]
	}
	return nil
}

// DeleteCourse removes a course; its author links go with it
func (s *Store) DeleteCourse(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "courses", id)
}

// DeleteDifficulty removes a difficulty; its courses keep existing without one
func (s *Store) DeleteDifficulty(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "course_difficulties", id)
}

// DeleteAuthor removes an author; its links stay, detached
func (s *Store) DeleteAuthor(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "authors", id)
}

func (s *Store) deleteByID(ctx context.Context, table string, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM `+table+` WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", table, id, ErrNotFound)
	}
	return nil
}

// Stats counts the stored rows
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.GetContext(ctx, &st, `
		SELECT
			(SELECT COUNT(*) FROM courses) AS courses,
			(SELECT COUNT(*) FROM authors) AS authors,
			(SELECT COUNT(*) FROM course_difficulties) AS difficulties,
			(SELECT COUNT(*) FROM authors_courses) AS links`)
	if err != nil {
		return st, fmt.Errorf("failed to count rows: %w", err)
	}
	return st, nil
}

// FindDifficulty returns the difficulty with label
func (s *Store) FindDifficulty(ctx context.Context, label string) (*course.Difficulty, error) {
	var d course.Difficulty
	err := s.db.GetContext(ctx, &d, s.db.Rebind(`SELECT id, label FROM course_difficulties WHERE label = ?`), label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("difficulty %q: %w", label, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulty %q: %w", label, err)
	}
	return &d, nil
}

// FindAuthor returns the author with name
func (s *Store) FindAuthor(ctx context.Context, name string) (*course.Author, error) {
	var a course.Author
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`SELECT id, name FROM authors WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("author %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author %q: %w", name, err)
	}
	return &a, nil
}
