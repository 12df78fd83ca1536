package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"canvass/internal/auth"
	"canvass/internal/db"
	apperrors "canvass/internal/errors"
	"canvass/internal/model"
	"canvass/internal/repository"
)

// RegisterInput is the data needed to create an identity.
type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token    string
	Identity *model.Identity
}

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	identityRepo repository.IdentityRepository
	hasher       *auth.PasswordHasher
	jwtService   *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(identityRepo repository.IdentityRepository, hasher *auth.PasswordHasher, jwtService *auth.JWTService) AuthService {
	return &authService{
		identityRepo: identityRepo,
		hasher:       hasher,
		jwtService:   jwtService,
	}
}

// Register creates a new identity with a hashed password and issues its first token.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.FirstName, in.LastName = normalize(in.FirstName), normalize(in.LastName)
	if err := checkText(map[string]string{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
	}); err != nil {
		return nil, err
	}

	existing, err := s.identityRepo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Storage("check identity existence", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	identity := &model.Identity{
		Email:        in.Email,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	// the unique index settles races the pre-check cannot see
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, apperrors.ErrDuplicateEmail
		}
		return nil, apperrors.Storage("create identity", err)
	}

	return s.issue(identity)
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	identity, err := s.identityRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.hasher.CompareDummy(password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Storage("find identity by email", err)
	}

	if !s.hasher.Compare(identity.PasswordHash, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(identity)
}

func (s *authService) issue(identity *model.Identity) (*AuthResult, error) {
	token, err := s.jwtService.Issue(identity.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	public := identity.Public()
	return &AuthResult{Token: token, Identity: &public}, nil
}
