// Package normalize turns raw extracted strings into typed course records.
package normalize

import (
	"errors"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dealmungchi/coursecrawler/helpers"
	"github.com/dealmungchi/coursecrawler/internal/course"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

var (
	// ErrMissing is wrapped by FieldFormatError for absent required fields
	ErrMissing = errors.New("required field is missing")
	// ErrNotNumber is wrapped when a numeric field has no parseable number
	ErrNotNumber = errors.New("not a number")
	// ErrBadURL is wrapped when the course URL is not http(s)
	ErrBadURL = errors.New("not an http(s) URL")

	hoursPattern   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:total\s+)?h`)
	minutesPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:total\s+)?m(?:in(?:ute)?s?)?\b`)
	countPattern   = regexp.MustCompile(`(\d[\d,.]*)\s*([kKmM]\b)?`)
)

// Record validates raw and converts it to a ValidatedRecord. The first
// offending field is reported as a *errors.FieldFormatError.
func Record(raw course.RawRecord) (course.ValidatedRecord, error) {
	var rec course.ValidatedRecord

	title, ok := raw.Title.Get()
	if rec.Title = strings.TrimSpace(title); !ok || rec.Title == "" {
		return rec, missing(cerrors.FieldTitle)
	}

	target, ok := raw.TargetURL.Get()
	if !ok || strings.TrimSpace(target) == "" {
		return rec, missing(cerrors.FieldURL)
	}
	u, err := URL(target)
	if err != nil {
		return rec, cerrors.NewFieldFormat(cerrors.FieldURL, target, err)
	}
	rec.TargetURL = u

	rec.Authors = Authors(raw.Authors.Value)
	if len(rec.Authors) == 0 {
		return rec, missing(cerrors.FieldAuthor)
	}

	rating, ok := raw.Rating.Get()
	if !ok {
		return rec, missing(cerrors.FieldRating)
	}
	if rec.Rating, err = Rating(rating); err != nil {
		return rec, cerrors.NewFieldFormat(cerrors.FieldRating, rating, err)
	}

	students, ok := raw.TotalStudents.Get()
	if !ok {
		return rec, missing(cerrors.FieldTotalStudents)
	}
	if rec.TotalStudents, err = Count(students); err != nil {
		return rec, cerrors.NewFieldFormat(cerrors.FieldTotalStudents, students, err)
	}

	hoursText, ok := raw.HoursRequired.Get()
	if !ok {
		return rec, missing(cerrors.FieldHours)
	}
	hours := Hours(hoursText)
	if !hours.Valid {
		return rec, cerrors.NewFieldFormat(cerrors.FieldHours, hoursText, ErrNotNumber)
	}
	rec.HoursRequired = hours.Value

	difficulty, ok := raw.Difficulty.Get()
	if rec.Difficulty = strings.TrimSpace(difficulty); !ok || rec.Difficulty == "" {
		return rec, missing(cerrors.FieldDifficulty)
	}

	if rec.CurrentPrice, err = optional(raw.CurrentPrice, Price); err != nil {
		return rec, cerrors.NewFieldFormat(cerrors.FieldPrice, raw.CurrentPrice.Value, err)
	}
	if rec.OriginalPrice, err = optional(raw.OriginalPrice, Price); err != nil {
		return rec, cerrors.NewFieldFormat(cerrors.FieldOriginalPrice, raw.OriginalPrice.Value, err)
	}
	if rec.LecturesCount, err = optional(raw.LecturesCount, Count); err != nil {
		return rec, cerrors.NewFieldFormat(cerrors.FieldLectures, raw.LecturesCount.Value, err)
	}

	return rec, nil
}

func missing(field cerrors.Field) error {
	return cerrors.NewFieldFormat(field, "", ErrMissing)
}

func optional[T any](raw course.Opt[string], parse func(string) (T, error)) (course.Opt[T], error) {
	s, ok := raw.Get()
	if !ok {
		return course.None[T](), nil
	}
	v, err := parse(s)
	if err != nil {
		return course.None[T](), err
	}
	return course.Some(v), nil
}

// URL checks that s is an absolute http(s) URL
func URL(s string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrBadURL
	}
	return u.String(), nil
}

// Authors trims names and drops empty and repeated ones, keeping order
func Authors(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		name = helpers.CollapseSpaces(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Price parses a locale formatted price. Currency symbols and thousands
// separators are dropped; "Free" is 0. Text holding more than one number is
// rejected.
func Price(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "free") {
		return 0, nil
	}

	numbers := helpers.Numbers(s)
	if len(numbers) != 1 {
		return 0, ErrNotNumber
	}
	number := numbers[0]

	v, err := strconv.ParseFloat(canonicalDecimal(number), 64)
	if err != nil {
		return 0, ErrNotNumber
	}
	return math.Round(v*100) / 100, nil
}

// canonicalDecimal rewrites a number that uses ',' or '.' for grouping or
// decimals into Go's float syntax. The right-most separator is the decimal
// point unless it is followed by exactly three digits and is the only kind
// of separator present, or the only kind present and repeated.
func canonicalDecimal(number string) string {
	lastComma := strings.LastIndex(number, ",")
	lastDot := strings.LastIndex(number, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return strings.ReplaceAll(strings.ReplaceAll(number, ".", ""), ",", ".")
		}
		return strings.ReplaceAll(number, ",", "")
	case lastComma >= 0:
		if strings.Count(number, ",") > 1 || len(number)-lastComma-1 == 3 {
			return strings.ReplaceAll(number, ",", "")
		}
		return strings.Replace(number, ",", ".", 1)
	case lastDot >= 0:
		if strings.Count(number, ".") > 1 || len(number)-lastDot-1 == 3 {
			return strings.ReplaceAll(number, ".", "")
		}
	}
	return number
}

// Count parses an integer count such as "412,345", "(1,204)" or "1.2K"
func Count(s string) (int, error) {
	m := countPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrNotNumber
	}

	if m[2] != "" {
		v, err := strconv.ParseFloat(canonicalDecimal(strings.TrimRight(m[1], ",.")), 64)
		if err != nil {
			return 0, ErrNotNumber
		}
		switch strings.ToLower(m[2]) {
		case "k":
			v *= 1_000
		case "m":
			v *= 1_000_000
		}
		return int(math.Round(v)), nil
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m[1])
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, ErrNotNumber
	}
	return n, nil
}

// Rating parses a star rating such as "4.7" or "4,5"
func Rating(s string) (float64, error) {
	number, err := helpers.FirstNumber(s)
	if err != nil {
		return 0, ErrNotNumber
	}
	v, err := strconv.ParseFloat(strings.Replace(number, ",", ".", 1), 64)
	if err != nil {
		return 0, ErrNotNumber
	}
	return v, nil
}

// Hours converts a duration to hours. "2h 36m" is 2.6, "45m" is 0.75 and a
// bare number is taken as hours. Anything else is absent.
func Hours(s string) course.Opt[float64] {
	var total float64
	found := false

	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		if h, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64); err == nil {
			total += h
			found = true
		}
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		if mins, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64); err == nil {
			total += mins / 60
			found = true
		}
	}
	if found {
		return course.Some(total)
	}

	// a bare number is hours; anything else with an unknown unit is absent
	number, err := helpers.FirstNumber(s)
	if err != nil || number != strings.TrimSpace(s) {
		return course.None[float64]()
	}
	v, err := strconv.ParseFloat(strings.Replace(number, ",", ".", 1), 64)
	if err != nil {
		return course.None[float64]()
	}
	return course.Some(v)
}
