package platform

import (
	"fmt"
	"strings"
	"time"

	"github.com/dealmungchi/coursecrawler/helpers"
	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/crawler"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// Udemy listing selectors
const (
	udemyCard          = `[class*="course-list_card__"]`
	udemyLink          = `a`
	udemyInstructors   = `div[class="course-card-instructors_instructor-list__helor"]`
	udemyRating        = `span[class*="ud-heading-sm star-rating_rating-number"]`
	udemyReviews       = `span[aria-label*="reviews"]`
	udemyMetaInfo      = `div[class*="course-meta-info"]`
	udemyPrice         = `div[data-purpose="course-price-text"]`
	udemyOriginalPrice = `div[data-purpose="course-old-price-text"]`
	udemyPagination    = `[data-page]`
)

type udemyDetails struct {
	hours      string
	lectures   string
	difficulty string
}

// Udemy returns the udemy adapter
func Udemy(urlTemplate string, wait time.Duration) crawler.Adapter {
	return crawler.Adapter{
		Platform:    course.PlatformUdemy,
		URLTemplate: urlTemplate,
		Page: &crawler.CardPage{
			Platform:     course.PlatformUdemy,
			CardSelector: udemyCard,
			WaitTimeout:  wait,
			Extract:      extractUdemyCard,
		},
		Pagination: &crawler.Pagination{
			Selector:      udemyPagination,
			Attr:          "data-page",
			ReadySelector: udemyCard,
			WaitTimeout:   wait,
		},
	}
}

func extractUdemyCard(c *crawler.Card) course.RawRecord {
	var rec course.RawRecord

	rec.TargetURL = crawler.Extract(c, cerrors.FieldURL, func() (string, error) {
		return c.Link(udemyLink)
	})
	rec.Title = crawler.Extract(c, cerrors.FieldTitle, func() (string, error) {
		return c.Text(udemyLink)
	})
	rec.Authors = crawler.Extract(c, cerrors.FieldAuthor, func() ([]string, error) {
		text, err := c.Text(udemyInstructors)
		if err != nil {
			return nil, err
		}
		return strings.Split(text, ", "), nil
	})
	rec.Rating = crawler.Extract(c, cerrors.FieldRating, func() (string, error) {
		return c.Text(udemyRating)
	})
	rec.TotalStudents = crawler.Extract(c, cerrors.FieldTotalStudents, func() (string, error) {
		text, err := c.Text(udemyReviews)
		if err != nil {
			return "", err
		}
		return strings.Trim(text, "() "), nil
	})

	details := crawler.Extract(c, cerrors.FieldDetails, func() (udemyDetails, error) {
		lines, err := c.Lines(udemyMetaInfo)
		if err != nil {
			return udemyDetails{}, err
		}
		if len(lines) < 3 {
			return udemyDetails{}, fmt.Errorf("expected hours, lectures and level, got %q", lines)
		}
		if _, err := helpers.FirstNumber(lines[0]); err != nil {
			return udemyDetails{}, fmt.Errorf("hours %q: %w", lines[0], err)
		}
		lectures, err := helpers.FirstNumber(lines[1])
		if err != nil {
			return udemyDetails{}, fmt.Errorf("lectures %q: %w", lines[1], err)
		}
		return udemyDetails{hours: lines[0], lectures: lectures, difficulty: lines[2]}, nil
	})
	if d, ok := details.Get(); ok {
		rec.HoursRequired = course.Some(d.hours)
		rec.LecturesCount = course.Some(d.lectures)
		rec.Difficulty = course.Some(d.difficulty)
	}

	rec.CurrentPrice = crawler.Extract(c, cerrors.FieldPrice, func() (string, error) {
		return lastLine(c, udemyPrice)
	})
	rec.OriginalPrice = crawler.Extract(c, cerrors.FieldOriginalPrice, func() (string, error) {
		return lastLine(c, udemyOriginalPrice)
	})
	// A course that is not discounted shows no old price. Fall back to the
	// current price only when that one was found.
	if !rec.OriginalPrice.Valid && rec.CurrentPrice.Valid {
		rec.OriginalPrice = rec.CurrentPrice
	}

	return rec
}

func lastLine(c *crawler.Card, selector string) (string, error) {
	lines, err := c.Lines(selector)
	if err != nil {
		return "", err
	}
	return lines[len(lines)-1], nil
}
