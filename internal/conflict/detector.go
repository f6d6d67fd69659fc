// Package conflict finds entities edited on both sides since the last reconciliation
// and resolves them with a configurable policy.
package conflict

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iudanet/homesync/internal/models"
)

// WatermarkReader отдает watermark для (household, kind).
// storage.WatermarkStorage удовлетворяет этому интерфейсу.
type WatermarkReader interface {
	GetLastSyncTimestamp(ctx context.Context, householdID string, kind models.DataKind) (int64, error)
}

// DefaultTolerance поглощает рассинхронизацию часов и почти одновременные round-trip,
// которые не являются настоящими конфликтами.
const DefaultTolerance = time.Second

// Detector сравнивает локальный и серверный снимки относительно watermark.
type Detector struct {
	watermarks WatermarkReader
	perKind    map[models.DataKind]time.Duration
	tolerance  time.Duration
}

// Option настраивает Detector.
type Option func(*Detector)

// WithTolerance задает окно допуска по умолчанию.
func WithTolerance(d time.Duration) Option {
	return func(det *Detector) { det.tolerance = d }
}

// WithKindTolerance переопределяет окно допуска для одного вида данных.
func WithKindTolerance(kind models.DataKind, d time.Duration) Option {
	return func(det *Detector) { det.perKind[kind] = d }
}

// NewDetector creates a detector reading watermarks from w.
func NewDetector(w WatermarkReader, opts ...Option) *Detector {
	d := &Detector{
		watermarks: w,
		tolerance:  DefaultTolerance,
		perKind:    make(map[models.DataKind]time.Duration),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tolerance возвращает окно допуска для kind.
func (d *Detector) Tolerance(kind models.DataKind) time.Duration {
	if t, ok := d.perKind[kind]; ok {
		return t
	}
	return d.tolerance
}

// Detect returns conflicts ordered by entity id.
//
// An id is in conflict iff it is present on both sides, both sides were updated after
// the watermark of (householdID, kind) and the update times differ by more than the
// tolerance. Ids present only locally are pending creations and ids present only on
// the server are plain updates; neither is a conflict.
func (d *Detector) Detect(ctx context.Context, local, server []models.Record, householdID string, kind models.DataKind) ([]models.SyncConflict, error) {
	watermark, err := d.watermarks.GetLastSyncTimestamp(ctx, householdID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to read watermark: %w", err)
	}

	return Find(local, server, householdID, kind, watermark, d.Tolerance(kind)), nil
}

// Find is the storage-free core of Detect.
func Find(local, server []models.Record, householdID string, kind models.DataKind, watermark int64, tolerance time.Duration) []models.SyncConflict {
	serverByID := make(map[string]*models.Record, len(server))
	for i := range server {
		serverByID[server[i].ID] = &server[i]
	}

	toleranceMs := tolerance.Milliseconds()
	var conflicts []models.SyncConflict

	for i := range local {
		l := &local[i]
		s, ok := serverByID[l.ID]
		if !ok {
			continue
		}

		localTs := l.UpdatedAtMillis()
		serverTs := s.UpdatedAtMillis()
		if localTs <= watermark || serverTs <= watermark {
			continue
		}
		if abs(localTs-serverTs) <= toleranceMs {
			continue
		}

		conflicts = append(conflicts, models.SyncConflict{
			ID:                l.ID,
			HouseholdID:       householdID,
			Kind:              kind,
			LocalData:         *l.Clone(),
			ServerData:        *s.Clone(),
			LastSyncTimestamp: watermark,
			LocalTimestamp:    localTs,
			ServerTimestamp:   serverTs,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].ID < conflicts[j].ID })
	return conflicts
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
