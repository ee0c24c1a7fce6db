package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.5 total hours", "12.5"},
		{"120 lectures", "120"},
		{"(412,345)", "412,345"},
		{"Rated 4.6 out of 5", "4.6"},
	}
	for _, tt := range tests {
		got, err := FirstNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := FirstNumber("All Levels")
	assert.ErrorIs(t, err, ErrNoNumber)
}

func TestNumbers(t *testing.T) {
	assert.Equal(t, []string{"1,234.00"}, Numbers("$1,234.00"))
	assert.Equal(t, []string{"19.99", "84.99"}, Numbers("$19.99 $84.99"))
	assert.Empty(t, Numbers("Free"))
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "The Complete Go Course", CollapseSpaces("  The  Complete\n\tGo Course "))
}
