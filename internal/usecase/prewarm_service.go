package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hszk-dev/cinematch/internal/domain/repository"
	"github.com/hszk-dev/cinematch/internal/recommender"
)

const (
	// DefaultMaxRetries is the maximum number of redeliveries for an
	// enrichment task before it is dropped.
	DefaultMaxRetries = 3
)

// ErrPrewarmUnavailable is returned when no message queue is configured.
var ErrPrewarmUnavailable = errors.New("prewarm queue is not configured")

// PrewarmService enqueues metadata enrichment tasks for the whole catalog.
type PrewarmService interface {
	// PrewarmAll publishes one enrichment task per catalog title and returns
	// the number of tasks queued.
	PrewarmAll(ctx context.Context) (int, error)
}

type prewarmService struct {
	catalog *recommender.Catalog
	queue   repository.MessageQueue
}

// NewPrewarmService creates a new PrewarmService instance.
// queue may be nil when the broker is disabled; PrewarmAll then reports
// ErrPrewarmUnavailable.
func NewPrewarmService(catalog *recommender.Catalog, queue repository.MessageQueue) PrewarmService {
	return &prewarmService{
		catalog: catalog,
		queue:   queue,
	}
}

// PrewarmAll publishes one enrichment task per catalog title.
func (s *prewarmService) PrewarmAll(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, ErrPrewarmUnavailable
	}

	queued := 0
	for i := 0; i < s.catalog.Size(); i++ {
		task := repository.EnrichTask{
			TaskID: uuid.New(),
			Title:  s.catalog.At(i).Title,
		}
		if err := s.queue.PublishEnrichTask(ctx, task); err != nil {
			return queued, fmt.Errorf("publish enrich task for %q: %w", task.Title, err)
		}
		queued++
	}
	return queued, nil
}

// EnrichTaskServiceConfig holds configuration for EnrichTaskService.
type EnrichTaskServiceConfig struct {
	// MaxRetries is the redelivery budget before a task is dropped.
	MaxRetries int
}

// DefaultEnrichTaskServiceConfig returns the default configuration.
func DefaultEnrichTaskServiceConfig() EnrichTaskServiceConfig {
	return EnrichTaskServiceConfig{
		MaxRetries: DefaultMaxRetries,
	}
}

// MetadataWarmer resolves and caches metadata for a title, reporting
// failures so queue consumers can retry them.
type MetadataWarmer interface {
	Warm(ctx context.Context, title string) error
}

// EnrichTaskService handles enrichment tasks on the worker side.
type EnrichTaskService interface {
	// ProcessTask warms the metadata caches for the task's title.
	// Returns nil on success and on permanent failure (retry budget
	// exhausted); a non-nil error triggers a redelivery with an
	// incremented retry count.
	ProcessTask(ctx context.Context, task repository.EnrichTask) error
}

type enrichTaskService struct {
	warmer     MetadataWarmer
	maxRetries int
}

// NewEnrichTaskService creates a new EnrichTaskService instance.
func NewEnrichTaskService(warmer MetadataWarmer, cfg EnrichTaskServiceConfig) EnrichTaskService {
	return &enrichTaskService{
		warmer:     warmer,
		maxRetries: cfg.MaxRetries,
	}
}

// ProcessTask warms the metadata caches for a single title.
func (s *enrichTaskService) ProcessTask(ctx context.Context, task repository.EnrichTask) error {
	if task.RetryCount > s.maxRetries {
		slog.Warn("dropping enrich task, retry budget exhausted",
			"task_id", task.TaskID,
			"title", task.Title,
			"retry_count", task.RetryCount,
		)
		return nil
	}

	if err := s.warmer.Warm(ctx, task.Title); err != nil {
		return fmt.Errorf("warm metadata for %q: %w", task.Title, err)
	}

	slog.Debug("enrich task processed",
		"task_id", task.TaskID,
		"title", task.Title,
	)
	return nil
}
