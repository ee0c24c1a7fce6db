package errors

import "fmt"

// Field names one logical field of a course card.
type Field string

const (
	FieldTitle         Field = "title"
	FieldURL           Field = "url"
	FieldAuthor        Field = "author"
	FieldRating        Field = "rating"
	FieldTotalStudents Field = "total_students"
	// FieldDetails bundles duration, lecture count and difficulty when one
	// source block carries all three.
	FieldDetails       Field = "details"
	FieldPrice         Field = "price"
	FieldOriginalPrice Field = "original_price"

	// Normalized-only fields, used by FieldFormatError.
	FieldHours      Field = "hours_required"
	FieldLectures   Field = "lectures_count"
	FieldDifficulty Field = "difficulty"
)

// IsIdentity reports whether the field identifies the course. Failures on
// identity fields are escalated rather than treated as routine drift.
func (f Field) IsIdentity() bool {
	return f == FieldTitle || f == FieldURL
}

// ExtractionError is a per-field extraction failure. Every ExtractionError
// matches ErrCourseExtraction so page-level handlers can count them.
type ExtractionError struct {
	Field Field
	Err   error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Field, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrCourseExtraction
}

// NewExtraction creates an ExtractionError for field.
func NewExtraction(field Field, err error) *ExtractionError {
	return &ExtractionError{Field: field, Err: err}
}

// FieldFormatError reports a raw field that could not be normalized.
type FieldFormatError struct {
	Field Field
	Value string
	Err   error
}

func (e *FieldFormatError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldFormatError) Unwrap() error {
	return e.Err
}

func (e *FieldFormatError) Is(target error) bool {
	return target == ErrFieldFormat
}

// NewFieldFormat creates a FieldFormatError.
func NewFieldFormat(field Field, value string, err error) *FieldFormatError {
	return &FieldFormatError{Field: field, Value: value, Err: err}
}
