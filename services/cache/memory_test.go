package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set("blocked", []byte("1"), 10*time.Second))
	v, err := c.Get("blocked")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(10 * time.Second)
	_, err = c.Get("blocked")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set("forever", []byte("x"), 0))
	now = now.Add(time.Hour)
	_, err = c.Get("forever")
	assert.NoError(t, err)

	require.NoError(t, c.Delete("forever"))
	_, err = c.Get("forever")
	assert.ErrorIs(t, err, ErrMiss)
}
