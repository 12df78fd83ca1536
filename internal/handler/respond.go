package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "canvass/internal/errors"
	"canvass/internal/logging"
	"canvass/internal/session"
)

// fail maps err onto the shared error shape. Server-side faults are logged
// with their cause; the client only sees a generic message.
func fail(c echo.Context, log logging.Logger, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		log.Error(c.Request().Context(), "request failed",
			"error", err,
			"path", c.Path(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewValidationError("", "invalid request body")
	}
	return c.Validate(req)
}

func recordIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("id", "must be a valid UUID")
	}
	return id, nil
}

// caller returns the session attached by the authentication gate. A missing
// session means the route was registered without the gate.
func caller(c echo.Context) (*session.Session, error) {
	s, ok := session.FromContext(c)
	if !ok {
		return nil, apperrors.ErrMissingToken
	}
	return s, nil
}
