package platform

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dealmungchi/coursecrawler/internal/course"
	"github.com/dealmungchi/coursecrawler/internal/crawler"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// Pluralsight listing selectors
const (
	pluralsightCard       = `li[class*="browse-search-results-item"]`
	pluralsightLink       = `a`
	pluralsightTitle      = `div[class="course-details__title"]`
	pluralsightAuthor     = `div[class="course-details__author"]`
	pluralsightLevel      = `span#courseLevel`
	pluralsightDuration   = `span[class="duration course-details__level"]`
	pluralsightFullStar   = `i[class*="fa-star"]:not([class*="half"])`
	pluralsightHalfStar   = `i[class*="fa-star-half-o"]`
	pluralsightStudents   = `div[class="course-details__rating"] > span`
	pluralsightPagination = `[class*="change--position1"]`
)

var errNoStars = errors.New("no rating stars")

// Pluralsight returns the pluralsight adapter. Pluralsight lists no prices.
func Pluralsight(urlTemplate string, wait time.Duration) crawler.Adapter {
	return crawler.Adapter{
		Platform:    course.PlatformPluralsight,
		URLTemplate: urlTemplate,
		Page: &crawler.CardPage{
			Platform:     course.PlatformPluralsight,
			CardSelector: pluralsightCard,
			WaitTimeout:  wait,
			Extract:      extractPluralsightCard,
		},
		Pagination: &crawler.Pagination{
			Selector:      pluralsightPagination,
			ReadySelector: pluralsightCard,
			WaitTimeout:   wait,
		},
	}
}

func extractPluralsightCard(c *crawler.Card) course.RawRecord {
	var rec course.RawRecord

	rec.TargetURL = crawler.Extract(c, cerrors.FieldURL, func() (string, error) {
		return c.Link(pluralsightLink)
	})
	rec.Title = crawler.Extract(c, cerrors.FieldTitle, func() (string, error) {
		return c.Text(pluralsightTitle)
	})
	rec.Authors = crawler.Extract(c, cerrors.FieldAuthor, func() ([]string, error) {
		text, err := c.Text(pluralsightAuthor)
		if err != nil {
			return nil, err
		}
		return []string{strings.TrimPrefix(text, "by ")}, nil
	})
	rec.Difficulty = crawler.Extract(c, cerrors.FieldDetails, func() (string, error) {
		return c.Text(pluralsightLevel)
	})
	rec.HoursRequired = crawler.Extract(c, cerrors.FieldDetails, func() (string, error) {
		return c.Text(pluralsightDuration)
	})
	rec.Rating = crawler.Extract(c, cerrors.FieldRating, func() (string, error) {
		full := len(c.FindAll(pluralsightFullStar))
		half := len(c.FindAll(pluralsightHalfStar))
		if full == 0 && half == 0 {
			return "", errNoStars
		}
		return strconv.FormatFloat(float64(full)+0.5*float64(half), 'f', -1, 64), nil
	})
	rec.TotalStudents = crawler.Extract(c, cerrors.FieldTotalStudents, func() (string, error) {
		return c.Text(pluralsightStudents)
	})

	return rec
}
