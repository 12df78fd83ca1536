package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "canvass/internal/errors"
	"canvass/internal/export"
	"canvass/internal/logging"
	"canvass/internal/model"
	"canvass/internal/service"
)

// RecordHandler handles the caller's records. Every operation is scoped to
// the identity attached by the authentication gate.
type RecordHandler struct {
	recordService service.RecordService
	log           logging.Logger
	now           func() time.Time
}

// NewRecordHandler creates a new record handler.
func NewRecordHandler(recordService service.RecordService, log logging.Logger) *RecordHandler {
	return &RecordHandler{recordService: recordService, log: log, now: time.Now}
}

// CreateRecordRequest represents a new record.
type CreateRecordRequest struct {
	FirstName string  `json:"first_name" validate:"required,min=2,max=255"`
	LastName  string  `json:"last_name" validate:"required,min=2,max=255"`
	Email     *string `json:"email" validate:"omitempty,emptyoremail"`
	Notes     string  `json:"notes" validate:"required,max=255"`
}

// UpdateRecordRequest represents a partial update. Omitted fields are left
// unchanged; "email": "" removes the email.
type UpdateRecordRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=2,max=255"`
	LastName  *string `json:"last_name" validate:"omitempty,min=2,max=255"`
	Email     *string `json:"email" validate:"omitempty,emptyoremail"`
	Notes     *string `json:"notes" validate:"omitempty,max=255"`
}

// ListRecordsResponse is returned by List.
type ListRecordsResponse struct {
	Message string         `json:"message"`
	Records []model.Record `json:"records"`
	Count   int            `json:"count"`
}

// RecordResponse wraps a single record.
type RecordResponse struct {
	Message string        `json:"message,omitempty"`
	Record  *model.Record `json:"record"`
}

// MessageResponse carries only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// List godoc
// @Summary List the caller's records, newest first
// @Tags records
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ListRecordsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records [get]
func (h *RecordHandler) List(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	records, err := h.recordService.List(c.Request().Context(), s.IdentityID())
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusOK, ListRecordsResponse{
		Message: "Records retrieved successfully",
		Records: records,
		Count:   len(records),
	})
}

// Get godoc
// @Summary Get one of the caller's records
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} RecordResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /records/{id} [get]
func (h *RecordHandler) Get(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	record, err := h.recordService.Get(c.Request().Context(), s.IdentityID(), recordID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, RecordResponse{Record: record})
}

// Create godoc
// @Summary Create a record owned by the caller
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRecordRequest true "Record"
// @Success 201 {object} RecordResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records [post]
func (h *RecordHandler) Create(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req CreateRecordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.log, err)
	}

	record, err := h.recordService.Create(c.Request().Context(), s.IdentityID(), service.CreateRecordInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Notes:     req.Notes,
	})
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusCreated, RecordResponse{
		Message: "Record created successfully",
		Record:  record,
	})
}

// Update godoc
// @Summary Update fields of one of the caller's records
// @Tags records
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param request body UpdateRecordRequest true "Fields to change"
// @Success 200 {object} RecordResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /records/{id} [put]
func (h *RecordHandler) Update(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	var req UpdateRecordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return fail(c, h.log, err)
	}

	record, err := h.recordService.Update(c.Request().Context(), s.IdentityID(), recordID, service.UpdateRecordInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Notes:     req.Notes,
	})
	if err != nil {
		return fail(c, h.log, err)
	}

	return c.JSON(http.StatusOK, RecordResponse{
		Message: "Record updated successfully",
		Record:  record,
	})
}

// Delete godoc
// @Summary Delete one of the caller's records
// @Tags records
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /records/{id} [delete]
func (h *RecordHandler) Delete(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}
	recordID, err := recordIDParam(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	deleted, err := h.recordService.Delete(c.Request().Context(), s.IdentityID(), recordID)
	if err != nil {
		return fail(c, h.log, err)
	}
	if !deleted {
		return fail(c, h.log, apperrors.ErrNotFound)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Record deleted successfully"})
}

// Export godoc
// @Summary Download the caller's records as CSV
// @Tags records
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /records/export [get]
func (h *RecordHandler) Export(c echo.Context) error {
	s, err := caller(c)
	if err != nil {
		return fail(c, h.log, err)
	}

	var buf bytes.Buffer
	if err := h.recordService.Export(c.Request().Context(), s.IdentityID(), &buf); err != nil {
		return fail(c, h.log, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+export.Filename(h.now())+`"`)
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}
