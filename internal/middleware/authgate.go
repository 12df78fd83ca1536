// Package middleware holds echo middleware specific to this service.
package middleware

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "canvass/internal/errors"
	"canvass/internal/logging"
	"canvass/internal/service"
	"canvass/internal/session"
)

// TokenVerifier resolves a bearer token to the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

// AuthGate rejects requests without a valid bearer token and attaches the
// caller's session to the rest.
//
//	no token or blank token         -> 401 TOKEN_REQUIRED
//	forged, malformed or expired    -> 403 INVALID_TOKEN
//	identity deleted since issuance -> 401 IDENTITY_NOT_FOUND
func AuthGate(tokens TokenVerifier, identities service.IdentityService, log logging.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			raw := strings.Trim(strings.TrimSpace(auth), `"`)
			if strings.TrimSpace(raw) == "" {
				return nil, apperrors.ErrMissingToken
			}

			identityID, err := tokens.Verify(raw)
			if err != nil {
				return nil, err
			}

			identity, err := identities.FindByID(c.Request().Context(), identityID)
			if err != nil {
				return nil, err
			}

			s := &session.Session{Identity: *identity}
			session.Attach(c, s)
			return s, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			switch {
			case errors.Is(err, apperrors.ErrStorageUnavailable):
				log.Error(c.Request().Context(), "identity lookup failed", "error", err)
			case errors.Is(err, apperrors.ErrInvalidToken),
				errors.Is(err, apperrors.ErrIdentityNotFound),
				errors.Is(err, apperrors.ErrMissingToken):
			default:
				// absent header or wrong scheme
				err = apperrors.ErrMissingToken
			}
			httpErr := apperrors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}
