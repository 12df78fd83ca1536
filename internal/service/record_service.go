package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"canvass/internal/db"
	apperrors "canvass/internal/errors"
	"canvass/internal/export"
	"canvass/internal/model"
	"canvass/internal/repository"
)

// CreateRecordInput carries the fields of a new record. Email is optional.
type CreateRecordInput struct {
	FirstName string
	LastName  string
	Email     *string
	Notes     string
}

// UpdateRecordInput carries a partial update. A nil field is left unchanged;
// an empty Email clears the stored email.
type UpdateRecordInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Notes     *string
}

// IsEmpty reports whether no field was supplied.
func (in UpdateRecordInput) IsEmpty() bool {
	return in.FirstName == nil && in.LastName == nil && in.Email == nil && in.Notes == nil
}

// RecordService scopes every record operation to the calling owner. A record
// owned by someone else is reported exactly like a missing one.
type RecordService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Record, error)
	Get(ctx context.Context, ownerID, recordID uuid.UUID) (*model.Record, error)
	Create(ctx context.Context, ownerID uuid.UUID, in CreateRecordInput) (*model.Record, error)
	Update(ctx context.Context, ownerID, recordID uuid.UUID, in UpdateRecordInput) (*model.Record, error)
	Delete(ctx context.Context, ownerID, recordID uuid.UUID) (bool, error)
	Export(ctx context.Context, ownerID uuid.UUID, w io.Writer) error
}

type recordService struct {
	repo repository.RecordRepository
	now  func() time.Time
}

// NewRecordService creates a new record service.
func NewRecordService(repo repository.RecordRepository) RecordService {
	return &recordService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns the owner's records, newest first.
func (s *recordService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Record, error) {
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Storage("list records", err)
	}
	return records, nil
}

func (s *recordService) Get(ctx context.Context, ownerID, recordID uuid.UUID) (*model.Record, error) {
	record, err := s.repo.FindByIDAndOwner(ctx, recordID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Storage("find record", err)
	}
	return record, nil
}

func (s *recordService) Create(ctx context.Context, ownerID uuid.UUID, in CreateRecordInput) (*model.Record, error) {
	record := &model.Record{
		OwnerID:   ownerID,
		FirstName: normalize(in.FirstName),
		LastName:  normalize(in.LastName),
		Email:     normalizeEmail(in.Email),
		Notes:     normalize(in.Notes),
	}
	if err := checkText(map[string]string{
		"first_name": record.FirstName,
		"last_name":  record.LastName,
		"notes":      record.Notes,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrIdentityNotFound
		}
		return nil, apperrors.Storage("create record", err)
	}
	return record, nil
}

// Update overwrites only the supplied fields and refreshes updated_at.
func (s *recordService) Update(ctx context.Context, ownerID, recordID uuid.UUID, in UpdateRecordInput) (*model.Record, error) {
	if in.IsEmpty() {
		return nil, apperrors.NewValidationError("", "no fields to update")
	}

	changes := make(map[string]interface{}, 5)
	required := make(map[string]string, 3)
	if in.FirstName != nil {
		v := normalize(*in.FirstName)
		changes["first_name"], required["first_name"] = v, v
	}
	if in.LastName != nil {
		v := normalize(*in.LastName)
		changes["last_name"], required["last_name"] = v, v
	}
	if in.Notes != nil {
		v := normalize(*in.Notes)
		changes["notes"], required["notes"] = v, v
	}
	if in.Email != nil {
		changes["email"] = normalizeEmail(in.Email)
	}
	if err := checkText(required); err != nil {
		return nil, err
	}
	changes["updated_at"] = s.now()

	affected, err := s.repo.UpdateByIDAndOwner(ctx, recordID, ownerID, changes)
	if err != nil {
		return nil, apperrors.Storage("update record", err)
	}
	if affected == 0 {
		return nil, apperrors.ErrNotFound
	}
	return s.Get(ctx, ownerID, recordID)
}

// Delete reports false, without an error, when nothing matched.
func (s *recordService) Delete(ctx context.Context, ownerID, recordID uuid.UUID) (bool, error) {
	affected, err := s.repo.DeleteByIDAndOwner(ctx, recordID, ownerID)
	if err != nil {
		return false, apperrors.Storage("delete record", err)
	}
	return affected > 0, nil
}

// Export writes the owner's records as CSV, newest first.
func (s *recordService) Export(ctx context.Context, ownerID uuid.UUID, w io.Writer) error {
	records, err := s.List(ctx, ownerID)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, records)
}
