// Package store es el único acceso a los datos persistidos. La tabla de
// fichajes es de solo inserción y cada alta publica un evento de cambio
// para que los lectores recalculen su vista.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"

	"fichaje/internal/model"
	"fichaje/storage/database"
)

type EventStore struct {
	db *gorm.DB
}

var (
	eventStore     *EventStore
	eventStoreOnce sync.Once
)

func Events() *EventStore {
	eventStoreOnce.Do(func() {
		eventStore = &EventStore{db: database.DB()}
	})
	return eventStore
}

// Insert añade un fichaje. Los eventos nunca se modifican después: las
// correcciones son inserciones nuevas con timestamp explícito hacia atrás
// y source auto_close.
func (s *EventStore) Insert(ctx context.Context, entry *model.TimeEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return err
	}

	// la notificación es mejor-esfuerzo: si falla, los lectores siguen
	// viendo el dato en la siguiente consulta
	if err := PublishChange(ctx, model.TimeEntry{}.TableName(), entry.UserID); err != nil {
		hlog.Warnf("failed to publish change event: table=%s user_id=%d err=%v",
			model.TimeEntry{}.TableName(), entry.UserID, err)
	}

	return nil
}

// QueryRange fichajes de un usuario en [from, to), ascendente.
func (s *EventStore) QueryRange(ctx context.Context, userID int64, from, to time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

// QueryRecent últimos n fichajes de un usuario, devueltos en orden
// ascendente. Es la ventana que se reconcilia: incluye la posible entrada
// olvidada de días anteriores.
func (s *EventStore) QueryRecent(ctx context.Context, userID int64, n int) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(n).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// QueryRangeAll fichajes de todos los usuarios en [from, to), con filtro
// opcional por usuario y tope de filas. Descendente, para listados de
// administración.
func (s *EventStore) QueryRangeAll(ctx context.Context, from, to time.Time, userID *int64, limit int) ([]model.TimeEntry, error) {
	q := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []model.TimeEntry
	err := q.Order("timestamp DESC").Find(&entries).Error
	return entries, err
}

// QueryRangeAllAsc variante ascendente sin tope, para la exportación.
func (s *EventStore) QueryRangeAllAsc(ctx context.Context, from, to time.Time, userID *int64) ([]model.TimeEntry, error) {
	q := s.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", from, to)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var entries []model.TimeEntry
	err := q.Order("timestamp ASC").Find(&entries).Error
	return entries, err
}
