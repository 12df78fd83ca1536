package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"canvass/internal/cache"
	apperrors "canvass/internal/errors"
	"canvass/internal/model"
	"canvass/internal/repository"
)

const identityCacheTTL = 5 * time.Minute

// IdentityService looks identities up for the authentication gate and the CLI.
type IdentityService interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
}

type identityService struct {
	repo  repository.IdentityRepository
	cache *cache.Client
}

// NewIdentityService builds an IdentityService with repository and cache. cache may be nil.
func NewIdentityService(repo repository.IdentityRepository, cache *cache.Client) IdentityService {
	return &identityService{repo: repo, cache: cache}
}

func (s *identityService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("identity:%s", id.String())
}

// FindByID returns the identity without its password hash.
func (s *identityService) FindByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Identity
		if err := json.Unmarshal(data, &cached); err == nil && cached.ID == id {
			return &cached, nil
		}
		// stale or foreign payload under our key
		_ = s.cache.Delete(ctx, s.cacheKey(id))
	}

	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, apperrors.Storage("find identity", err)
	}
	public := identity.Public()

	if payload, err := json.Marshal(public); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, identityCacheTTL)
	}
	return &public, nil
}

// FindByEmail returns the identity including its password hash.
func (s *identityService) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, apperrors.Storage("find identity by email", err)
	}
	return identity, nil
}
