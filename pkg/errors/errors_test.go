package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractionErrorMatchesCategory(t *testing.T) {
	cause := stderrors.New("element not found")
	fields := []Field{
		FieldTitle, FieldURL, FieldAuthor, FieldRating,
		FieldTotalStudents, FieldDetails, FieldPrice, FieldOriginalPrice,
	}

	for _, f := range fields {
		err := fmt.Errorf("card 3: %w", NewExtraction(f, cause))
		assert.ErrorIs(t, err, ErrCourseExtraction, f)
		assert.ErrorIs(t, err, cause, f)

		var extErr *ExtractionError
		if assert.ErrorAs(t, err, &extErr) {
			assert.Equal(t, f, extErr.Field)
		}
	}
}

func TestFieldIsIdentity(t *testing.T) {
	assert.True(t, FieldTitle.IsIdentity())
	assert.True(t, FieldURL.IsIdentity())
	assert.False(t, FieldRating.IsIdentity())
	assert.False(t, FieldOriginalPrice.IsIdentity())
}

func TestCrawlerErrorSentinels(t *testing.T) {
	pageErr := NewPageLoad("udemy", 4, stderrors.New("timeout"))
	assert.ErrorIs(t, pageErr, ErrPageLoad)
	assert.True(t, pageErr.IsRetryable())
	assert.Contains(t, pageErr.Error(), "page 4 did not load")

	rl := NewRateLimit("udemy", 0)
	assert.ErrorIs(t, rl, ErrRateLimited)
	assert.False(t, rl.IsRetryable())

	cfg := NewConfiguration("bad", nil)
	assert.NotErrorIs(t, cfg, ErrPageLoad)
}

func TestFieldFormatError(t *testing.T) {
	err := NewFieldFormat(FieldPrice, "abc", stderrors.New("not a number"))
	assert.ErrorIs(t, err, ErrFieldFormat)
	assert.Equal(t, `price "abc": not a number`, err.Error())
}
