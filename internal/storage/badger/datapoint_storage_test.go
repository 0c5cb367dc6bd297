package badger

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/providers"
	"github.com/timshannon/badgerhold/v4"
)

// openTestDB opens a BadgerDB in a temp directory, closed on test cleanup.
func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func newPoint(id, sourceID, key string, fetchedAt time.Time, expiresAt *time.Time) *models.DataPoint {
	return &models.DataPoint{
		ID:        id,
		SourceID:  sourceID,
		Key:       key,
		Value:     map[string]interface{}{"v": id},
		FetchedAt: fetchedAt,
		ExpiresAt: expiresAt,
	}
}

func TestDataPointStorage_SaveAndLatestFresh(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	fresh := now.Add(time.Hour)
	stale := now.Add(-time.Minute)

	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_old", "src_1", "default", now.Add(-2*time.Hour), &stale)))
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_new", "src_1", "default", now, &fresh)))

	point, err := storage.LatestFresh(ctx, "src_1", "default")
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, "dp_new", point.ID)
}

func TestDataPointStorage_LatestFreshSkipsExpired(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	stale := time.Now().Add(-time.Minute)
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_1", "src_1", "default", stale.Add(-time.Hour), &stale)))

	point, err := storage.LatestFresh(ctx, "src_1", "default")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestDataPointStorage_NilExpirationNeverExpires(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_1", "src_1", "default", time.Now().Add(-24*time.Hour), nil)))

	point, err := storage.LatestFresh(ctx, "src_1", "default")
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, "dp_1", point.ID)
}

func TestDataPointStorage_LatestAcrossKeys(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_a", "src_1", "temp", now.Add(-time.Hour), nil)))
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_b", "src_1", "humidity", now, nil)))

	point, err := storage.Latest(ctx, "src_1")
	require.NoError(t, err)
	require.NotNil(t, point)
	assert.Equal(t, "dp_b", point.ID)

	// Unknown source yields nil, not an error
	point, err = storage.Latest(ctx, "src_missing")
	require.NoError(t, err)
	assert.Nil(t, point)
}

func TestDataPointStorage_NestedPayloadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	fetchedAt := time.Now().UTC()
	expires := fetchedAt.Add(time.Hour)
	point := &models.DataPoint{
		ID:       "dp_nested",
		SourceID: "src_1",
		Key:      "default",
		Value: map[string]interface{}{
			"main": map[string]interface{}{"temp": 18.5, "humidity": float64(70)},
			"articles": []interface{}{
				map[string]interface{}{"title": "First", "source_name": "Wire"},
				map[string]interface{}{"title": "Second", "tags": []interface{}{"markets", "energy"}},
			},
			"count": 2,
		},
		FetchedAt: fetchedAt,
		ExpiresAt: &expires,
		Metadata: map[string]interface{}{
			"status_code": 200,
			"fetched_at":  fetchedAt,
			"adapter":     "news",
		},
	}
	require.NoError(t, storage.SaveDataPoint(ctx, point))

	loaded, err := storage.LatestFresh(ctx, "src_1", "default")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, point.Value, loaded.Value)
	assert.Equal(t, point.Metadata, loaded.Metadata)
}

func TestDataPointStorage_SavesDispatcherResult(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"name":"alpha","levels":[1,2]},{"name":"beta"}]`)
	}))
	defer server.Close()

	dispatcher := providers.NewDispatcher(providers.Options{
		Timeout:   2 * time.Second,
		RateLimit: 100,
		Logger:    arbor.NewLogger(),
	})
	source := &models.DataSource{
		ID:       "src_1",
		UserID:   "user-1",
		Name:     "inventory",
		Type:     models.SourceTypeCustom,
		Endpoint: server.URL,
		Active:   true,
	}

	result, err := dispatcher.Fetch(ctx, source, nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	fetchedAt := time.Now().UTC()
	expires := fetchedAt.Add(time.Hour)
	point := &models.DataPoint{
		ID:        "dp_fetch",
		SourceID:  source.ID,
		Key:       "default",
		Value:     result.Data,
		FetchedAt: fetchedAt,
		ExpiresAt: &expires,
		Metadata:  result.Metadata,
	}
	require.NoError(t, storage.SaveDataPoint(ctx, point))

	loaded, err := storage.LatestFresh(ctx, source.ID, "default")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, result.Data, loaded.Value)
	assert.Equal(t, result.Metadata, loaded.Metadata)

	items, ok := loaded.Value["items"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 2)
}

func TestDataPointStorage_RejectsInvalid(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	point := newPoint("dp_bad", "src_1", "default", time.Now(), nil)
	point.Value = nil
	require.Error(t, storage.SaveDataPoint(ctx, point))
}

func TestDataPointStorage_DeleteBySource(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_1", "src_1", "default", time.Now(), nil)))
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_2", "src_1", "other", time.Now(), nil)))
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_3", "src_2", "default", time.Now(), nil)))

	require.NoError(t, storage.DeleteBySource(ctx, "src_1"))

	count, err := storage.CountBySource(ctx, "src_1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = storage.CountBySource(ctx, "src_2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDataPointStorage_PruneRevisions(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_"+id, "src_1", "default", now.Add(time.Duration(i)*time.Minute), nil)))
	}
	// A different key is untouched by pruning
	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_other", "src_1", "other", now, nil)))

	deleted, err := storage.PruneRevisions(ctx, "src_1", "default", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	points, err := storage.ListBySource(ctx, "src_1")
	require.NoError(t, err)
	require.Len(t, points, 3)

	// The newest revisions survive
	latest, err := storage.LatestFresh(ctx, "src_1", "default")
	require.NoError(t, err)
	assert.Equal(t, "dp_e", latest.ID)
}

func TestDataPointStorage_PruneNoopWhenUnderLimit(t *testing.T) {
	db := openTestDB(t)
	storage := NewDataPointStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.SaveDataPoint(ctx, newPoint("dp_1", "src_1", "default", time.Now(), nil)))

	deleted, err := storage.PruneRevisions(ctx, "src_1", "default", 5)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

var _ interfaces.DataPointStorage = (*DataPointStorage)(nil)
