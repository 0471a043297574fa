package localstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/citycare/storefront/pkg/db/models"
)

type sqlBackend interface {
	DB() *gorm.DB
	Ping(ctx context.Context) error
}

// SQL stores entries in the local_entries table (postgres or sqlite).
type SQL struct {
	client sqlBackend
	now    func() time.Time
}

func NewSQL(client sqlBackend) *SQL {
	return &SQL{client: client, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, namespace, key string) (string, error) {
	var entry models.LocalEntry
	err := s.client.DB().WithContext(ctx).
		Where(map[string]any{"namespace": namespace, "key": key}).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *SQL) Set(ctx context.Context, namespace, key, value string) error {
	entry := models.LocalEntry{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().UTC(),
	}
	return s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *SQL) Delete(ctx context.Context, namespace, key string) error {
	return s.client.DB().WithContext(ctx).
		Where(map[string]any{"namespace": namespace, "key": key}).
		Delete(&models.LocalEntry{}).Error
}

func (s *SQL) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
