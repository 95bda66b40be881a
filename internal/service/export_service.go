package service

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/cleanops/backend-go/internal/config"
	"github.com/andresuchdata/cleanops/backend-go/internal/domain"
	"github.com/andresuchdata/cleanops/backend-go/internal/export"
	"github.com/andresuchdata/cleanops/backend-go/internal/storage"
)

const csvContentType = "text/csv; charset=utf-8"

// ExportResult points at an uploaded report.
type ExportResult struct {
	Key  string `json:"key"`
	Rows int    `json:"rows"`
	Size int    `json:"size"`
}

// ExportService renders reports as CSV and uploads them to object storage.
type ExportService struct {
	storage         storage.ObjectStorage
	recommendations *RecommendationService
	consumption     *ConsumptionService
	prefix          string
	opts            export.Options
	now             func() time.Time
}

func NewExportService(store storage.ObjectStorage, recs *RecommendationService, consumption *ConsumptionService, cfg config.ExportConfig) *ExportService {
	return &ExportService{
		storage:         store,
		recommendations: recs,
		consumption:     consumption,
		prefix:          cfg.Prefix,
		opts:            export.Options{DecimalSeparator: cfg.DecimalSeparator},
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

func (s *ExportService) ExportShoppingList(ctx context.Context, tenantID, propertyID string, horizonDays int) (*ExportResult, error) {
	list, err := s.recommendations.GetShoppingList(ctx, tenantID, propertyID, horizonDays)
	if err != nil {
		return nil, err
	}
	data, err := export.ShoppingListCSV(list, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to render shopping list: %w", err)
	}
	return s.upload(ctx, s.key(tenantID, propertyID, "shopping-list"), data, len(list.Items))
}

func (s *ExportService) ExportConsumption(ctx context.Context, tenantID, propertyID string, from, to time.Time) (*ExportResult, error) {
	report, err := s.consumption.Calculate(ctx, tenantID, propertyID, from, to)
	if err != nil {
		return nil, err
	}
	data, err := export.ConsumptionCSV(report, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to render consumption report: %w", err)
	}
	return s.upload(ctx, s.key(tenantID, propertyID, "consumption"), data, len(report.Rows))
}

// ListExports lists the uploaded reports of a property, newest first.
func (s *ExportService) ListExports(ctx context.Context, tenantID, propertyID string) ([]storage.ObjectInfo, error) {
	if err := requireProperty(tenantID, propertyID); err != nil {
		return nil, err
	}
	objects, err := s.storage.ListObjects(ctx, path.Join(s.prefix, tenantID, propertyID)+"/")
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list exports", Err: err}
	}
	sort.SliceStable(objects, func(i, j int) bool {
		if !objects[i].LastModified.Equal(objects[j].LastModified) {
			return objects[i].LastModified.After(objects[j].LastModified)
		}
		return objects[i].Key > objects[j].Key
	})
	return objects, nil
}

// key is <prefix>/<tenant>/<property>/<kind>-<timestamp>.csv
func (s *ExportService) key(tenantID, propertyID, kind string) string {
	name := fmt.Sprintf("%s-%s.csv", kind, s.now().Format("20060102T150405Z"))
	return path.Join(s.prefix, tenantID, propertyID, name)
}

func (s *ExportService) upload(ctx context.Context, key string, data []byte, rows int) (*ExportResult, error) {
	if err := s.storage.UploadObject(ctx, key, data, csvContentType); err != nil {
		return nil, &domain.PersistenceError{Op: "upload export", Err: err}
	}
	log.Info().Str("key", key).Int("rows", rows).Msg("export uploaded")
	return &ExportResult{Key: key, Rows: rows, Size: len(data)}, nil
}
