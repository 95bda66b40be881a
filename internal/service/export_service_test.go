package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/storage"
)

type fakeObjectStorage struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	modified map[string]time.Time
	err      error
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{
		objects:  map[string][]byte{},
		types:    map[string]string{},
		modified: map[string]time.Time{},
	}
}

func (f *fakeObjectStorage) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []storage.ObjectInfo
	for key, data := range f.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: f.modified[key]})
		}
	}
	return out, nil
}

func (f *fakeObjectStorage) UploadObject(_ context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.objects[key] = data
	f.types[key] = contentType
	f.modified[key] = time.Unix(int64(len(f.modified)), 0).UTC()
	return nil
}

func TestExportShoppingList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objects := newFakeObjectStorage()
	exports := NewExportService(objects, f.recs, f.consumption, config.ExportConfig{Prefix: "exports", DecimalSeparator: ","}).
		WithClock(f.clock.Now)

	_, err := f.ledger.SeedRecord(ctx, tenant, property, f.domestos, 1, 2, 10)
	require.NoError(t, err)

	res, err := exports.ExportShoppingList(ctx, tenant, property, 0)
	require.NoError(t, err)
	assert.Equal(t, "exports/tenant-1/villa-7/shopping-list-20260601T090000Z.csv", res.Key)
	assert.Equal(t, 1, res.Rows)

	body := string(objects.objects[res.Key])
	assert.Contains(t, body, "Domestos")
	assert.Contains(t, body, ";high;")
	assert.Equal(t, csvContentType, objects.types[res.Key])

	listed, err := exports.ListExports(ctx, tenant, property)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, res.Key, listed[0].Key)
}

func TestListExportsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objects := newFakeObjectStorage()
	exports := NewExportService(objects, f.recs, f.consumption, config.ExportConfig{Prefix: "exports"}).
		WithClock(f.clock.Now)

	_, err := f.ledger.SeedRecord(ctx, tenant, property, f.domestos, 1, 2, 10)
	require.NoError(t, err)

	list, err := exports.ExportShoppingList(ctx, tenant, property, 0)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	usage, err := exports.ExportConsumption(ctx, tenant, property, f.clock.Now().Add(-24*time.Hour), f.clock.Now())
	require.NoError(t, err)

	listed, err := exports.ListExports(ctx, tenant, property)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, usage.Key, listed[0].Key)
	assert.Equal(t, list.Key, listed[1].Key)

	_, err = exports.ListExports(ctx, tenant, "")
	assert.True(t, domain.IsValidation(err))
}

func TestExportConsumption(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objects := newFakeObjectStorage()
	exports := NewExportService(objects, f.recs, f.consumption, config.ExportConfig{Prefix: "r", DecimalSeparator: "."}).
		WithClock(f.clock.Now)

	start := f.clock.Now()
	f.ledger.ApplyFromEvent(ctx, domain.OperationalEvent{ID: "e1", TenantID: tenant, PropertyID: property, Note: "3x savo, 2x domestos"})

	res, err := exports.ExportConsumption(ctx, tenant, property, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Rows)
	assert.Contains(t, string(objects.objects[res.Key]), "Domestos,ks,2,1,2")
}

func TestExportUploadFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	objects := newFakeObjectStorage()
	objects.err = errors.New("bucket gone")
	exports := NewExportService(objects, f.recs, f.consumption, config.ExportConfig{})

	_, err := exports.ExportShoppingList(ctx, tenant, property, 0)
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "bucket gone")
}
