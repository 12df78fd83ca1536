package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"canvass/internal/model"
)

// IdentityRepository defines identity persistence operations.
type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
}

type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository builds a GORM-backed repository.
func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	return r.db.WithContext(ctx).Create(identity).Error
}

// FindByID loads an identity without its password hash.
func (r *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	var identity model.Identity
	if err := r.db.WithContext(ctx).
		Select("id", "email", "first_name", "last_name", "created_at", "updated_at").
		Where("id = ?", id).
		First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}

// FindByEmail loads an identity including its password hash. The match is exact.
func (r *identityRepository) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}
