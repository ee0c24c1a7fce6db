package course

import (
	"fmt"
	"time"
)

// Platform identifies a source catalog platform
type Platform string

const (
	PlatformUdemy       Platform = "udemy"
	PlatformPluralsight Platform = "pluralsight"
)

// ParsePlatform maps a user supplied identifier to a Platform. Unknown
// identifiers are returned as-is; the registry decides whether they exist.
func ParsePlatform(s string) Platform {
	return Platform(s)
}

func (p Platform) String() string {
	return string(p)
}

// Opt is a value that may be absent. Absent never means zero.
type Opt[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Opt holding v
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Valid: true}
}

// None returns an absent Opt
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present
func (o Opt[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Ptr returns a pointer to the value, or nil when absent
func (o Opt[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func (o Opt[T]) String() string {
	if !o.Valid {
		return "<absent>"
	}
	return fmt.Sprint(o.Value)
}

// RawRecord is the extractor output for one card. Every field is optional;
// Failures lists the per-field errors that left fields absent.
type RawRecord struct {
	Title         Opt[string]
	TargetURL     Opt[string]
	Authors       Opt[[]string]
	Rating        Opt[string]
	TotalStudents Opt[string]
	CurrentPrice  Opt[string]
	OriginalPrice Opt[string]
	HoursRequired Opt[string]
	LecturesCount Opt[string]
	Difficulty    Opt[string]

	Failures []error
}

// SourceURL returns the card URL when it was extracted, for correlation in logs
func (r RawRecord) SourceURL() string {
	return r.TargetURL.Value
}

// ValidatedRecord is the typed, normalized form of a RawRecord
type ValidatedRecord struct {
	Title         string
	TargetURL     string
	Authors       []string
	Rating        float64
	TotalStudents int
	CurrentPrice  Opt[float64]
	OriginalPrice Opt[float64]
	HoursRequired float64
	LecturesCount Opt[int]
	Difficulty    string
}

// Difficulty is a course level label, unique by label
type Difficulty struct {
	ID    int64  `db:"id" json:"id"`
	Label string `db:"label" json:"label"`
}

// Author is unique by name
type Author struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course is a persisted catalog item
type Course struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	URL           string    `db:"url" json:"url"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	Duration      float64   `db:"duration" json:"duration"`
	TotalLectures *int64    `db:"total_lectures" json:"total_lectures,omitempty"`
	Rating        float64   `db:"rating" json:"rating"`
	TotalStudents int64     `db:"total_students" json:"total_students"`
	CurrentPrice  *float64  `db:"current_price" json:"current_price,omitempty"`
	OriginalPrice *float64  `db:"original_price" json:"original_price,omitempty"`
	DifficultyID  *int64    `db:"difficulty_id" json:"difficulty_id,omitempty"`

	Difficulty *Difficulty `db:"-" json:"difficulty,omitempty"`
	Authors    []Author    `db:"-" json:"authors,omitempty"`
}
