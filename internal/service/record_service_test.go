package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "canvass/internal/errors"
	"canvass/internal/model"
)

func strPtr(s string) *string { return &s }

func TestRecordService_Create(t *testing.T) {
	owner := uuid.New()
	mockRepo := new(MockRecordRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Record) bool {
		return r.OwnerID == owner && r.FirstName == "Jo" && r.LastName == "Ann" &&
			r.Notes == "met at door" && r.Email == nil
	})).Return(nil)

	svc := NewRecordService(mockRepo)
	rec, err := svc.Create(context.Background(), owner, CreateRecordInput{
		FirstName: "  Jo ",
		LastName:  "Ann",
		Email:     strPtr("   "),
		Notes:     "met at door",
	})
	require.NoError(t, err)
	assert.Equal(t, owner, rec.OwnerID)
	mockRepo.AssertExpectations(t)
}

func TestRecordService_CreateNormalizesToNFC(t *testing.T) {
	owner := uuid.New()
	mockRepo := new(MockRecordRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewRecordService(mockRepo)
	rec, err := svc.Create(context.Background(), owner, CreateRecordInput{FirstName: "Rene\u0301", LastName: "Ann", Notes: "n"})
	require.NoError(t, err)
	assert.Equal(t, "Ren\u00e9", rec.FirstName)
}

func TestRecordService_CreateRejectsBlankRequired(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := NewRecordService(mockRepo)

	_, err := svc.Create(context.Background(), uuid.New(), CreateRecordInput{FirstName: "Jo", LastName: "Ann", Notes: "  "})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notes", verr.Field)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordService_UpdateWithNoFieldsSkipsStorage(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	svc := NewRecordService(mockRepo)

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateRecordInput{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Contains(t, err.Error(), "no fields to update")
	mockRepo.AssertNotCalled(t, "UpdateByIDAndOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordService_Update(t *testing.T) {
	owner, recordID := uuid.New(), uuid.New()

	tests := []struct {
		name          string
		input         UpdateRecordInput
		setupMock     func(*MockRecordRepository)
		expectedError error
	}{
		{
			name:  "only supplied fields are written",
			input: UpdateRecordInput{Notes: strPtr("second visit")},
			setupMock: func(m *MockRecordRepository) {
				m.On("UpdateByIDAndOwner", mock.Anything, recordID, owner, mock.MatchedBy(func(c map[string]interface{}) bool {
					_, hasFirst := c["first_name"]
					_, hasStamp := c["updated_at"]
					return len(c) == 2 && c["notes"] == "second visit" && !hasFirst && hasStamp
				})).Return(int64(1), nil)
				m.On("FindByIDAndOwner", mock.Anything, recordID, owner).Return(&model.Record{ID: recordID, OwnerID: owner, Notes: "second visit"}, nil)
			},
		},
		{
			name:  "empty email clears it",
			input: UpdateRecordInput{Email: strPtr("")},
			setupMock: func(m *MockRecordRepository) {
				m.On("UpdateByIDAndOwner", mock.Anything, recordID, owner, mock.MatchedBy(func(c map[string]interface{}) bool {
					email, ok := c["email"].(*string)
					return ok && email == nil
				})).Return(int64(1), nil)
				m.On("FindByIDAndOwner", mock.Anything, recordID, owner).Return(&model.Record{ID: recordID, OwnerID: owner}, nil)
			},
		},
		{
			name:  "no matching row",
			input: UpdateRecordInput{FirstName: strPtr("Jo")},
			setupMock: func(m *MockRecordRepository) {
				m.On("UpdateByIDAndOwner", mock.Anything, recordID, owner, mock.Anything).Return(int64(0), nil)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name:          "blank required field",
			input:         UpdateRecordInput{LastName: strPtr(" ")},
			setupMock:     func(m *MockRecordRepository) {},
			expectedError: apperrors.ErrValidationFailed,
		},
		{
			name:  "storage down",
			input: UpdateRecordInput{FirstName: strPtr("Jo")},
			setupMock: func(m *MockRecordRepository) {
				m.On("UpdateByIDAndOwner", mock.Anything, recordID, owner, mock.Anything).Return(int64(0), errors.New("lock wait timeout"))
			},
			expectedError: apperrors.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRecordRepository)
			tt.setupMock(mockRepo)
			svc := NewRecordService(mockRepo)

			rec, err := svc.Update(context.Background(), owner, recordID, tt.input)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, rec)
			} else {
				require.NoError(t, err)
				assert.Equal(t, recordID, rec.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestRecordService_GetForeignRecordIsNotFound(t *testing.T) {
	owner, recordID := uuid.New(), uuid.New()
	mockRepo := new(MockRecordRepository)
	mockRepo.On("FindByIDAndOwner", mock.Anything, recordID, owner).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewRecordService(mockRepo).Get(context.Background(), owner, recordID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRecordService_Delete(t *testing.T) {
	owner, recordID := uuid.New(), uuid.New()
	mockRepo := new(MockRecordRepository)
	mockRepo.On("DeleteByIDAndOwner", mock.Anything, recordID, owner).Return(int64(1), nil).Once()
	mockRepo.On("DeleteByIDAndOwner", mock.Anything, recordID, owner).Return(int64(0), nil).Once()
	svc := NewRecordService(mockRepo)

	deleted, err := svc.Delete(context.Background(), owner, recordID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), owner, recordID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRecordService_StorageErrorsHideDetail(t *testing.T) {
	owner := uuid.New()
	mockRepo := new(MockRecordRepository)
	mockRepo.On("ListByOwner", mock.Anything, owner).Return(nil, errors.New("Error 1045: Access denied for user 'root'"))

	_, err := NewRecordService(mockRepo).List(context.Background(), owner)
	require.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	httpErr := apperrors.MapErrorToHTTP(err)
	assert.Equal(t, 500, httpErr.StatusCode)
	assert.NotContains(t, httpErr.Message, "root")
}

func TestRecordService_Export(t *testing.T) {
	owner := uuid.New()
	mockRepo := new(MockRecordRepository)
	mockRepo.On("ListByOwner", mock.Anything, owner).Return([]model.Record{
		{FirstName: "Jo", LastName: "Ann", Notes: "met at door"},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, NewRecordService(mockRepo).Export(context.Background(), owner, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Jo,Ann,,met at door,"))
}

func TestRecordService_NameLengthCountsTrimmedRunes(t *testing.T) {
	tests := []struct {
		name      string
		input     CreateRecordInput
		wantField string
	}{
		{name: "padded single letter", input: CreateRecordInput{FirstName: " J ", LastName: "Ann", Notes: "n"}, wantField: "first_name"},
		{name: "whitespace only", input: CreateRecordInput{FirstName: "Jo", LastName: "   ", Notes: "n"}, wantField: "last_name"},
		{name: "notes too long", input: CreateRecordInput{FirstName: "Jo", LastName: "Ann", Notes: strings.Repeat("é", 256)}, wantField: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRecordRepository)
			_, err := NewRecordService(mockRepo).Create(context.Background(), uuid.New(), tt.input)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRecordService_UpdateRejectsPaddedShortName(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	_, err := NewRecordService(mockRepo).Update(context.Background(), uuid.New(), uuid.New(), UpdateRecordInput{FirstName: strPtr("  J  ")})

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	mockRepo.AssertNotCalled(t, "UpdateByIDAndOwner", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordService_CreateForMissingOwner(t *testing.T) {
	mockRepo := new(MockRecordRepository)
	mockRepo.On("Create", mock.Anything, mock.Anything).
		Return(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey})

	_, err := NewRecordService(mockRepo).Create(context.Background(), uuid.New(),
		CreateRecordInput{FirstName: "Jo", LastName: "Ann", Notes: "n"})
	assert.ErrorIs(t, err, apperrors.ErrIdentityNotFound)
	assert.NotErrorIs(t, err, apperrors.ErrStorageUnavailable)
}
