package usecase

import (
	"context"
	"sync/atomic"

	"github.com/hszk-dev/cinematch/internal/domain/model"
	"github.com/hszk-dev/cinematch/internal/domain/repository"
)

// mockMetadataEnricher provides a configurable mock for MetadataEnricher.
type mockMetadataEnricher struct {
	enrichFn    func(ctx context.Context, title string) model.Metadata
	enrichCount atomic.Int64
}

func (m *mockMetadataEnricher) Enrich(ctx context.Context, title string) model.Metadata {
	m.enrichCount.Add(1)
	if m.enrichFn != nil {
		return m.enrichFn(ctx, title)
	}
	return model.Metadata{}
}

// mockMetadataWarmer provides a configurable mock for MetadataWarmer.
type mockMetadataWarmer struct {
	warmFn    func(ctx context.Context, title string) error
	warmCount atomic.Int64
}

func (m *mockMetadataWarmer) Warm(ctx context.Context, title string) error {
	m.warmCount.Add(1)
	if m.warmFn != nil {
		return m.warmFn(ctx, title)
	}
	return nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishFn    func(ctx context.Context, task repository.EnrichTask) error
	consumeFn    func(ctx context.Context, handler func(task repository.EnrichTask) error) error
	closeFn      func() error
	publishCount atomic.Int64
}

func (m *mockMessageQueue) PublishEnrichTask(ctx context.Context, task repository.EnrichTask) error {
	m.publishCount.Add(1)
	if m.publishFn != nil {
		return m.publishFn(ctx, task)
	}
	return nil
}

func (m *mockMessageQueue) ConsumeEnrichTasks(ctx context.Context, handler func(task repository.EnrichTask) error) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	if m.closeFn != nil {
		return m.closeFn()
	}
	return nil
}
