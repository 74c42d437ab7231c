package repository

import (
	"context"

	"github.com/google/uuid"
)

// EnrichTask asks the worker to fetch external metadata for one title and
// populate the shared metadata cache.
type EnrichTask struct {
	TaskID     uuid.UUID `json:"task_id"`
	Title      string    `json:"title"`
	RetryCount int       `json:"retry_count"`
}

// MessageQueue defines the interface for the enrichment task queue.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type MessageQueue interface {
	// PublishEnrichTask sends an enrichment task to the queue.
	// Used by the API server to prewarm the metadata cache.
	PublishEnrichTask(ctx context.Context, task EnrichTask) error

	// ConsumeEnrichTasks starts consuming enrichment tasks from the queue.
	// The handler function is called for each received task.
	// Used by the worker service; blocks until ctx is cancelled.
	ConsumeEnrichTasks(ctx context.Context, handler func(task EnrichTask) error) error

	// Close gracefully closes the connection to the message queue.
	Close() error
}
