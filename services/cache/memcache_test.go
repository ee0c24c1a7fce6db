package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211")
	if err := mc.Ping(); err != nil {
		t.Skip("Memcached is not available, skipping test")
	}

	err := mc.Set("render_blocked:test", []byte("500"), time.Second)
	require.NoError(t, err)

	value, err := mc.Get("render_blocked:test")
	require.NoError(t, err)
	assert.Equal(t, "500", string(value))

	require.NoError(t, mc.Delete("render_blocked:test"))
	require.NoError(t, mc.Delete("render_blocked:test"))

	_, err = mc.Get("render_blocked:test")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemcacheServiceUnreachable(t *testing.T) {
	mc := NewMemcacheService("127.0.0.1:1")

	_, err := mc.Get("render_blocked:test")
	var crawlerErr *cerrors.CrawlerError
	require.ErrorAs(t, err, &crawlerErr)
	assert.Equal(t, cerrors.ErrorTypeCache, crawlerErr.Type)
	assert.NotErrorIs(t, err, ErrMiss)

	err = mc.Set("render_blocked:test", []byte("500"), time.Second)
	require.ErrorAs(t, err, &crawlerErr)
	assert.Equal(t, cerrors.ErrorTypeCache, crawlerErr.Type)

	assert.Error(t, mc.Delete("render_blocked:test"))
}
