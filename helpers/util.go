package helpers

import (
	"errors"
	"regexp"
	"strings"
)

var numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)*`)

// ErrNoNumber is returned when a string carries no digits
var ErrNoNumber = errors.New("no number in text")

// FirstNumber returns the first run of digits (with grouping or decimal
// separators) in s, e.g. "12.5 total hours" -> "12.5".
func FirstNumber(s string) (string, error) {
	m := numberPattern.FindString(s)
	if m == "" {
		return "", ErrNoNumber
	}
	return m, nil
}

// Numbers returns every run of digits in s, separators included
func Numbers(s string) []string {
	return numberPattern.FindAllString(s, -1)
}

// CollapseSpaces trims s and reduces internal whitespace runs to one space
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
