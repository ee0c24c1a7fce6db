package publisher

import (
	"context"
	"encoding/json"

	cerrors "github.com/dealmungchi/coursecrawler/pkg/errors"
)

// Event keys published by the pipeline
const (
	EventCourseIngested = "course.ingested"
	EventRunCompleted   = "run.completed"
)

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish publishes a message under key
	Publish(ctx context.Context, key string, message []byte) error

	// TrimStreams trims the stream to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// PublishJSON marshals v and publishes it under key
func PublishJSON(ctx context.Context, p Publisher, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return cerrors.NewPublisher(key, "failed to marshal event", err)
	}
	return p.Publish(ctx, key, data)
}

// Nop discards every message. Used when PUBLISH_EVENTS is off.
type Nop struct{}

func (Nop) Publish(context.Context, string, []byte) error { return nil }
func (Nop) TrimStreams(context.Context) error             { return nil }
func (Nop) Close() error                                  { return nil }
