package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"canvass/internal/model"
)

// RecordRepository defines record persistence operations. Every lookup and
// mutation of a single record matches on both the record id and the owner id.
type RecordRepository interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Record, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Record, error)
	Create(ctx context.Context, record *model.Record) error
	UpdateByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID, changes map[string]interface{}) (int64, error)
	DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error)
}

type recordRepository struct {
	db *gorm.DB
}

// NewRecordRepository builds a GORM-backed repository.
func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

// ListByOwner returns the owner's records, newest first.
func (r *recordRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Record, error) {
	records := make([]model.Record, 0)
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *recordRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Record, error) {
	var record model.Record
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// UpdateByIDAndOwner applies changes and reports how many rows matched.
// MySQL connections need clientFoundRows=true for matched rather than changed counts.
func (r *recordRepository) UpdateByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID, changes map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Record{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(changes)
	return res.RowsAffected, res.Error
}

func (r *recordRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Record{})
	return res.RowsAffected, res.Error
}
