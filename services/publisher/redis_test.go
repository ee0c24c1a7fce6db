package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealmungchi/coursecrawler/logger"
	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

func init() {
	logger.Default = logger.Nop()
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewRedisPublisher("localhost:6379", 0, "test_stream_courses", 100)
	defer publisher.Close()

	// Test if Redis is available
	if err := publisher.Ping(ctx); err != nil {
		t.Skip("Redis is not available, skipping test")
	}

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 0})
	defer client.Close()
	require.NoError(t, client.Del(ctx, "test_stream_courses").Err())

	require.NoError(t, publisher.Publish(ctx, EventCourseIngested, []byte("test_message")))

	messages, err := client.XRange(ctx, "test_stream_courses", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, EventCourseIngested, messages[0].Values["event"])
	// base64 of "test_message"
	assert.Equal(t, "dGVzdF9tZXNzYWdl", messages[0].Values["b64_course.ingested"])

	require.NoError(t, publisher.TrimStreams(ctx))
}

type recordingPublisher struct {
	key     string
	message []byte
	err     error
}

func (r *recordingPublisher) Publish(_ context.Context, key string, message []byte) error {
	r.key = key
	r.message = message
	return r.err
}

func (r *recordingPublisher) TrimStreams(context.Context) error { return nil }
func (r *recordingPublisher) Close() error                      { return nil }

func TestPublishJSON(t *testing.T) {
	rec := &recordingPublisher{}
	err := PublishJSON(context.Background(), rec, EventRunCompleted, map[string]int{"ingested": 4})
	require.NoError(t, err)
	assert.Equal(t, EventRunCompleted, rec.key)
	assert.JSONEq(t, `{"ingested":4}`, string(rec.message))

	err = PublishJSON(context.Background(), rec, EventRunCompleted, make(chan int))
	var crawlerErr *cerrors.CrawlerError
	require.True(t, errors.As(err, &crawlerErr))
	assert.Equal(t, cerrors.ErrorTypePublisher, crawlerErr.Type)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), EventCourseIngested, []byte("x")))
	assert.NoError(t, p.TrimStreams(context.Background()))
	assert.NoError(t, p.Close())
}
