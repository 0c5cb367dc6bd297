package sources

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

type memStorage struct {
	mu    sync.Mutex
	items map[string]*models.DataSource
}

func newMemStorage() *memStorage {
	return &memStorage{items: map[string]*models.DataSource{}}
}

func (m *memStorage) SaveSource(ctx context.Context, s *models.DataSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.UserID == s.UserID && existing.Name == s.Name && existing.ID != s.ID {
			return interfaces.ErrDuplicateName
		}
	}
	copied := *s
	m.items[s.ID] = &copied
	return nil
}

func (m *memStorage) GetSource(ctx context.Context, id string) (*models.DataSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return nil, interfaces.ErrSourceNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memStorage) GetSourceByName(ctx context.Context, userID, name string) (*models.DataSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if s.UserID == userID && s.Name == name {
			return s, nil
		}
	}
	return nil, interfaces.ErrSourceNotFound
}

func (m *memStorage) ListSources(ctx context.Context, userID string) ([]*models.DataSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.DataSource
	for _, s := range m.items {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStorage) ListActiveSources(ctx context.Context) ([]*models.DataSource, error) {
	return nil, nil
}

func (m *memStorage) DeleteSource(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return interfaces.ErrSourceNotFound
	}
	delete(m.items, id)
	return nil
}

var _ interfaces.DataSourceStorage = (*memStorage)(nil)

func payload(name string) *models.DataSource {
	return &models.DataSource{
		UserID:   "user-1",
		Name:     name,
		Type:     models.SourceTypeWeather,
		Endpoint: "https://api.openweathermap.org/data/2.5/weather",
		APIKey:   "key",
		Active:   true,
	}
}

func TestCreateSource_AssignsIDAndValidates(t *testing.T) {
	storage := newMemStorage()
	service := NewService(storage, arbor.NewLogger())
	ctx := context.Background()

	source := payload("weather")
	require.NoError(t, service.CreateSource(ctx, source))
	assert.True(t, strings.HasPrefix(source.ID, "src_"))

	bad := payload("other")
	bad.Type = "crypto"
	require.Error(t, service.CreateSource(ctx, bad))
}

func TestCreateSource_DuplicateName(t *testing.T) {
	storage := newMemStorage()
	service := NewService(storage, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, service.CreateSource(ctx, payload("weather")))
	err := service.CreateSource(ctx, payload("weather"))
	assert.ErrorIs(t, err, interfaces.ErrDuplicateName)
}

func TestUpdateSource_KeepsStoredKeyWhenEmpty(t *testing.T) {
	storage := newMemStorage()
	service := NewService(storage, arbor.NewLogger())
	ctx := context.Background()

	source := payload("weather")
	require.NoError(t, service.CreateSource(ctx, source))

	update := payload("weather-renamed")
	update.ID = source.ID
	update.APIKey = ""
	require.NoError(t, service.UpdateSource(ctx, update))

	loaded, err := service.GetSource(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "weather-renamed", loaded.Name)
	assert.Equal(t, "key", loaded.APIKey)
}

func TestUpdateSource_ReplacesKeyWhenProvided(t *testing.T) {
	storage := newMemStorage()
	service := NewService(storage, arbor.NewLogger())
	ctx := context.Background()

	source := payload("weather")
	require.NoError(t, service.CreateSource(ctx, source))

	update := payload("weather")
	update.ID = source.ID
	update.APIKey = "rotated"
	require.NoError(t, service.UpdateSource(ctx, update))

	loaded, err := service.GetSource(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated", loaded.APIKey)
}

func TestUpdateSource_MissingSource(t *testing.T) {
	service := NewService(newMemStorage(), arbor.NewLogger())

	update := payload("weather")
	update.ID = "src_missing"
	err := service.UpdateSource(context.Background(), update)
	assert.ErrorIs(t, err, interfaces.ErrSourceNotFound)
}
