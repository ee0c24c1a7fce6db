package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateCourse is returned when a course URL is already stored
	ErrDuplicateCourse = errors.New("course already stored")
	// ErrResolveConflict is returned when resolve-or-create keeps losing races
	ErrResolveConflict = errors.New("could not resolve entity")
)

// Reason describes a write failure in terms of the violated rule, for
// run reports
func Reason(err error) string {
	if err == nil {
		return ""
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Constraint != "" {
			return fmt.Sprintf("%s: %s", pqErr.Code.Name(), pqErr.Constraint)
		}
		return fmt.Sprintf("%s: %s", pqErr.Code.Name(), pqErr.Message)
	}

	msg := err.Error()
	for _, marker := range []string{"CHECK constraint failed", "UNIQUE constraint failed", "FOREIGN KEY constraint failed", "NOT NULL constraint failed"} {
		if i := strings.Index(msg, marker); i >= 0 {
			return constraintReason(msg[i:])
		}
	}
	return msg
}

// constraintReason maps sqlite's "CHECK constraint failed: name" wording to
// the postgres condition names
func constraintReason(msg string) string {
	kind, detail, _ := strings.Cut(msg, ":")
	name := map[string]string{
		"CHECK constraint failed":       "check_violation",
		"UNIQUE constraint failed":      "unique_violation",
		"FOREIGN KEY constraint failed": "foreign_key_violation",
		"NOT NULL constraint failed":    "not_null_violation",
	}[kind]

	detail = strings.TrimSpace(detail)
	if i := strings.Index(detail, " ("); i >= 0 {
		detail = detail[:i]
	}
	if detail == "" {
		return name
	}
	return name + ": " + detail
}
