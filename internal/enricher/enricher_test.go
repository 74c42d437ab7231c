package enricher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hszk-dev/cinematch/internal/domain/model"
)

// mockMetadataClient provides a configurable mock for MetadataClient.
type mockMetadataClient struct {
	searchFn    func(ctx context.Context, query string) (model.Metadata, error)
	searchCount atomic.Int32
}

func (m *mockMetadataClient) Search(ctx context.Context, query string) (model.Metadata, error) {
	m.searchCount.Add(1)
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return model.Metadata{}, nil
}

// mockRemoteCache provides a configurable mock for cache.MetadataCache.
type mockRemoteCache struct {
	mu    sync.Mutex
	data  map[string]model.Metadata
	getFn func(ctx context.Context, title string) (*model.Metadata, error)
	setFn func(ctx context.Context, title string, meta model.Metadata, ttl time.Duration) error
}

func newMockRemoteCache() *mockRemoteCache {
	return &mockRemoteCache{data: make(map[string]model.Metadata)}
}

func (m *mockRemoteCache) Get(ctx context.Context, title string) (*model.Metadata, error) {
	if m.getFn != nil {
		return m.getFn(ctx, title)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if meta, ok := m.data[title]; ok {
		return &meta, nil
	}
	return nil, nil
}

func (m *mockRemoteCache) Set(ctx context.Context, title string, meta model.Metadata, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, title, meta, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[title] = meta
	return nil
}

func testMeta() model.Metadata {
	return model.Metadata{
		PosterPath:  "/poster.jpg",
		Overview:    "An overview.",
		ReleaseDate: "1995-11-22",
		VoteAverage: 8.0,
		Popularity:  42.0,
	}
}

func TestEnricher_SecondCallHitsCache(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first := e.Enrich(context.Background(), "Toy Story (1995)")
	second := e.Enrich(context.Background(), "Toy Story (1995)")

	if first != second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
	if count := client.searchCount.Load(); count != 1 {
		t.Errorf("external client called %d times, want 1", count)
	}
}

func TestEnricher_QueryIsNormalized(t *testing.T) {
	var gotQuery string
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			gotQuery = query
			return testMeta(), nil
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	e.Enrich(context.Background(), "Batman/Superman Movie, The (1998)")

	if gotQuery != "Batman Superman Movie" {
		t.Errorf("outbound query = %q, want %q", gotQuery, "Batman Superman Movie")
	}
}

func TestEnricher_FailuresDegradeToEmptyAndAreCached(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return model.Metadata{}, errors.New("api unreachable")
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	titles := []string{"Toy Story (1995)", "Heat (1995)", "Sting, The"}
	for _, title := range titles {
		if meta := e.Enrich(context.Background(), title); !meta.IsEmpty() {
			t.Errorf("Enrich(%q) = %+v, want empty on failure", title, meta)
		}
	}

	// Repeat lookups must come from the negative cache, not the network.
	before := client.searchCount.Load()
	for _, title := range titles {
		e.Enrich(context.Background(), title)
	}
	if after := client.searchCount.Load(); after != before {
		t.Errorf("failed lookups re-hit the network: %d -> %d calls", before, after)
	}
}

func TestEnricher_NoResultsCachedAsEmpty(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return model.Metadata{}, ErrNoResults
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if meta := e.Enrich(context.Background(), "Obscure Film (1931)"); !meta.IsEmpty() {
		t.Errorf("Enrich = %+v, want empty on no results", meta)
	}
	e.Enrich(context.Background(), "Obscure Film (1931)")

	if count := client.searchCount.Load(); count != 1 {
		t.Errorf("external client called %d times, want 1", count)
	}
}

func TestEnricher_CacheKeyIsOriginalTitle(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Both normalize to "Sting" but must be looked up and cached separately.
	e.Enrich(context.Background(), "Sting, The")
	e.Enrich(context.Background(), "Sting")

	if count := client.searchCount.Load(); count != 2 {
		t.Errorf("external client called %d times, want 2 (no cache sharing across originals)", count)
	}
}

func TestEnricher_LRUEvictionBoundsCache(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}

	e, err := New(client, nil, Config{CacheSize: 2, RemoteTTL: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	e.Enrich(ctx, "A")
	e.Enrich(ctx, "B")
	e.Enrich(ctx, "C") // evicts A
	e.Enrich(ctx, "A") // must re-fetch

	if count := client.searchCount.Load(); count != 4 {
		t.Errorf("external client called %d times, want 4 (A evicted and re-fetched)", count)
	}
}

func TestEnricher_RemoteTierHitSkipsClient(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			t.Error("external client should not be called on remote cache hit")
			return model.Metadata{}, nil
		},
	}
	remote := newMockRemoteCache()
	remote.data["Heat (1995)"] = testMeta()

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	meta := e.Enrich(context.Background(), "Heat (1995)")
	if meta != testMeta() {
		t.Errorf("Enrich = %+v, want remote-cached metadata", meta)
	}
}

func TestEnricher_SuccessWrittenToRemoteTier(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}
	remote := newMockRemoteCache()

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	e.Enrich(context.Background(), "Heat (1995)")

	remote.mu.Lock()
	_, ok := remote.data["Heat (1995)"]
	remote.mu.Unlock()
	if !ok {
		t.Error("successful lookup was not written to the remote tier")
	}
}

func TestEnricher_EmptyResultNotWrittenToRemoteTier(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return model.Metadata{}, errors.New("boom")
		},
	}
	remote := newMockRemoteCache()

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	e.Enrich(context.Background(), "Heat (1995)")

	remote.mu.Lock()
	_, ok := remote.data["Heat (1995)"]
	remote.mu.Unlock()
	if ok {
		t.Error("empty result must not be written to the shared remote tier")
	}
}

func TestEnricher_RemoteErrorFallsBackToClient(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}
	remote := &mockRemoteCache{
		getFn: func(ctx context.Context, title string) (*model.Metadata, error) {
			return nil, errors.New("redis connection error")
		},
		setFn: func(ctx context.Context, title string, meta model.Metadata, ttl time.Duration) error {
			return errors.New("redis connection error")
		},
	}

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	meta := e.Enrich(context.Background(), "Heat (1995)")
	if meta.IsEmpty() {
		t.Error("Enrich should fall back to the external client on remote cache errors")
	}
}

func TestEnricher_ConcurrentLookupsCoalesce(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			time.Sleep(50 * time.Millisecond)
			return testMeta(), nil
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Enrich(context.Background(), "Toy Story (1995)")
		}()
	}
	wg.Wait()

	if count := client.searchCount.Load(); count != 1 {
		t.Errorf("external client called %d times, want 1 (singleflight should coalesce)", count)
	}
}

func TestEnricher_CancelledCallerDoesNotPoisonCache(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			if err := ctx.Err(); err != nil {
				return model.Metadata{}, err
			}
			return testMeta(), nil
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// A client that disconnects mid-request cancels its context. The lookup
	// must be detached from it, so the title resolves anyway.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	abandoned := e.Enrich(ctx, "Heat (1995)")
	if abandoned.IsEmpty() {
		t.Fatal("lookup under a cancelled caller returned empty metadata")
	}

	healthy := e.Enrich(context.Background(), "Heat (1995)")
	if healthy.IsEmpty() {
		t.Fatal("healthy lookup returned empty metadata after a cancelled one")
	}
	if count := client.searchCount.Load(); count != 1 {
		t.Errorf("search count = %d, want 1 (second call served from cache)", count)
	}
}

func TestEnricher_Warm_FillsBothTiers(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}
	remote := newMockRemoteCache()

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Warm(context.Background(), "Toy Story (1995)"); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}

	remote.mu.Lock()
	_, inRemote := remote.data["Toy Story (1995)"]
	remote.mu.Unlock()
	if !inRemote {
		t.Error("warmed metadata missing from the remote tier")
	}

	if meta := e.Enrich(context.Background(), "Toy Story (1995)"); meta.IsEmpty() {
		t.Error("warmed title not served from the local cache")
	}
	if count := client.searchCount.Load(); count != 1 {
		t.Errorf("search count = %d, want 1", count)
	}
}

func TestEnricher_Warm_LookupFailureSurfaced(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return model.Metadata{}, errors.New("upstream down")
		},
	}

	e, err := New(client, nil, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Warm(context.Background(), "Heat (1995)"); err == nil {
		t.Fatal("Warm should surface a transient lookup failure")
	}

	// Failure must not be cached: the retry reaches the client again.
	if err := e.Warm(context.Background(), "Heat (1995)"); err == nil {
		t.Fatal("second Warm should also fail")
	}
	if count := client.searchCount.Load(); count != 2 {
		t.Errorf("search count = %d, want 2 (failures not cached)", count)
	}
}

func TestEnricher_Warm_NoResultsIsFinal(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return model.Metadata{}, ErrNoResults
		},
	}
	remote := newMockRemoteCache()

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Warm(context.Background(), "Obscure Title (1931)"); err != nil {
		t.Fatalf("no results is a definitive answer, not a retryable error: %v", err)
	}

	remote.mu.Lock()
	remoteLen := len(remote.data)
	remote.mu.Unlock()
	if remoteLen != 0 {
		t.Error("empty result must not be written to the remote tier")
	}

	if meta := e.Enrich(context.Background(), "Obscure Title (1931)"); !meta.IsEmpty() {
		t.Errorf("expected cached empty metadata, got %+v", meta)
	}
	if count := client.searchCount.Load(); count != 1 {
		t.Errorf("search count = %d, want 1 (no-results cached)", count)
	}
}

func TestEnricher_Warm_RemoteWriteFailureSurfaced(t *testing.T) {
	client := &mockMetadataClient{
		searchFn: func(ctx context.Context, query string) (model.Metadata, error) {
			return testMeta(), nil
		},
	}
	remote := newMockRemoteCache()
	remote.setFn = func(ctx context.Context, title string, meta model.Metadata, ttl time.Duration) error {
		return errors.New("redis down")
	}

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Warm(context.Background(), "Toy Story (1995)"); err == nil {
		t.Fatal("Warm should surface a remote-tier write failure")
	}
}

func TestEnricher_Warm_RemoteHitSkipsClient(t *testing.T) {
	remote := newMockRemoteCache()
	remote.data["Jumanji (1995)"] = testMeta()
	client := &mockMetadataClient{}

	e, err := New(client, remote, DefaultConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := e.Warm(context.Background(), "Jumanji (1995)"); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}
	if count := client.searchCount.Load(); count != 0 {
		t.Errorf("search count = %d, want 0 (served from remote tier)", count)
	}
}
