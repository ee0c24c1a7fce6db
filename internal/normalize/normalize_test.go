package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealmungchi/coursecrawler/internal/course"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

func rawUdemy() course.RawRecord {
	return course.RawRecord{
		Title:         course.Some("  The Complete SQL Bootcamp "),
		TargetURL:     course.Some("https://www.udemy.com/course/the-complete-sql-bootcamp/"),
		Authors:       course.Some([]string{"Jose Portilla", " Pierian Training ", "", "Jose Portilla"}),
		Rating:        course.Some("4.7"),
		TotalStudents: course.Some("412,345"),
		CurrentPrice:  course.Some("$19.99"),
		OriginalPrice: course.Some("$1,234.00"),
		HoursRequired: course.Some("27 total hours"),
		LecturesCount: course.Some("83"),
		Difficulty:    course.Some("All Levels"),
	}
}

func TestRecord(t *testing.T) {
	rec, err := Record(rawUdemy())
	require.NoError(t, err)

	assert.Equal(t, "The Complete SQL Bootcamp", rec.Title)
	assert.Equal(t, []string{"Jose Portilla", "Pierian Training"}, rec.Authors)
	assert.Equal(t, 4.7, rec.Rating)
	assert.Equal(t, 412345, rec.TotalStudents)
	assert.Equal(t, course.Some(19.99), rec.CurrentPrice)
	assert.Equal(t, course.Some(1234.00), rec.OriginalPrice)
	assert.Equal(t, 27.0, rec.HoursRequired)
	assert.Equal(t, course.Some(83), rec.LecturesCount)
	assert.Equal(t, "All Levels", rec.Difficulty)
}

func TestRecordOptionalFieldsStayAbsent(t *testing.T) {
	raw := rawUdemy()
	raw.CurrentPrice = course.None[string]()
	raw.OriginalPrice = course.None[string]()
	raw.LecturesCount = course.None[string]()

	rec, err := Record(raw)
	require.NoError(t, err)
	assert.False(t, rec.CurrentPrice.Valid)
	assert.False(t, rec.OriginalPrice.Valid)
	assert.False(t, rec.LecturesCount.Valid)
}

func TestRecordRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*course.RawRecord)
		field  cerrors.Field
	}{
		{"missing title", func(r *course.RawRecord) { r.Title = course.None[string]() }, cerrors.FieldTitle},
		{"blank title", func(r *course.RawRecord) { r.Title = course.Some("  ") }, cerrors.FieldTitle},
		{"missing url", func(r *course.RawRecord) { r.TargetURL = course.None[string]() }, cerrors.FieldURL},
		{"ftp url", func(r *course.RawRecord) { r.TargetURL = course.Some("ftp://example.com/c") }, cerrors.FieldURL},
		{"relative url", func(r *course.RawRecord) { r.TargetURL = course.Some("/course/x/") }, cerrors.FieldURL},
		{"no authors", func(r *course.RawRecord) { r.Authors = course.Some([]string{" "}) }, cerrors.FieldAuthor},
		{"missing rating", func(r *course.RawRecord) { r.Rating = course.None[string]() }, cerrors.FieldRating},
		{"bad rating", func(r *course.RawRecord) { r.Rating = course.Some("New") }, cerrors.FieldRating},
		{"missing students", func(r *course.RawRecord) { r.TotalStudents = course.None[string]() }, cerrors.FieldTotalStudents},
		{"missing hours", func(r *course.RawRecord) { r.HoursRequired = course.None[string]() }, cerrors.FieldHours},
		{"unparseable hours", func(r *course.RawRecord) { r.HoursRequired = course.Some("soon") }, cerrors.FieldHours},
		{"missing difficulty", func(r *course.RawRecord) { r.Difficulty = course.None[string]() }, cerrors.FieldDifficulty},
		{"bad price", func(r *course.RawRecord) { r.CurrentPrice = course.Some("Subscribe") }, cerrors.FieldPrice},
		{"bad lectures", func(r *course.RawRecord) { r.LecturesCount = course.Some("many") }, cerrors.FieldLectures},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := rawUdemy()
			tt.mutate(&raw)

			_, err := Record(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, cerrors.ErrFieldFormat)

			var formatErr *cerrors.FieldFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, tt.field, formatErr.Field)
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234.00", 1234.00},
		{"$1,234.00", 1234.00},
		{"₹3,099", 3099},
		{"19,99 €", 19.99},
		{"1.234,56 €", 1234.56},
		{"R$ 27,90", 27.90},
		{"$12.99", 12.99},
		{"1.234", 1234},
		{"1,234", 1234},
		{"€1.234.567", 1234567},
		{"Free", 0},
		{"free", 0},
		{"0", 0},
	}
	for _, tt := range tests {
		got, err := Price(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Price("Subscribe")
	assert.ErrorIs(t, err, ErrNotNumber)
	_, err = Price("")
	assert.ErrorIs(t, err, ErrNotNumber)
	_, err = Price("$19.99 $84.99")
	assert.ErrorIs(t, err, ErrNotNumber)
}

func TestCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"412,345", 412345},
		{"(1,204)", 1204},
		{"83", 83},
		{"1.2K", 1200},
		{"3M students", 3000000},
		{"1,204 members", 1204},
	}
	for _, tt := range tests {
		got, err := Count(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Count("none yet")
	assert.ErrorIs(t, err, ErrNotNumber)
}

func TestHours(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2h 36m", 2.6},
		{"45m", 0.75},
		{"3h", 3.0},
		{"2h36m", 2.6},
		{"27 total hours", 27},
		{"45 total mins", 0.75},
		{"1.5 hours", 1.5},
		{"12.5", 12.5},
		{"1.5m", 0.025},
		{"1h 30 min", 1.5},
		{"90 minutes", 1.5},
	}
	for _, tt := range tests {
		got := Hours(tt.in)
		require.True(t, got.Valid, tt.in)
		assert.InDelta(t, tt.want, got.Value, 1e-9, tt.in)
	}

	assert.False(t, Hours("").Valid)
	assert.False(t, Hours("coming soon").Valid)
	assert.False(t, Hours("1 month").Valid)
}

func TestRating(t *testing.T) {
	v, err := Rating("4.7")
	require.NoError(t, err)
	assert.Equal(t, 4.7, v)

	v, err = Rating("4,5")
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	v, err = Rating("6.0")
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}
