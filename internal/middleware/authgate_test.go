package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvass/internal/auth"
	apperrors "canvass/internal/errors"
	"canvass/internal/logging"
	"canvass/internal/model"
	"canvass/internal/session"
)

type fakeIdentities struct {
	known map[uuid.UUID]model.Identity
	err   error
}

func (f *fakeIdentities) FindByID(_ context.Context, id uuid.UUID) (*model.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	identity, ok := f.known[id]
	if !ok {
		return nil, apperrors.ErrIdentityNotFound
	}
	return &identity, nil
}

func (f *fakeIdentities) FindByEmail(context.Context, string) (*model.Identity, error) {
	return nil, apperrors.ErrIdentityNotFound
}

func newGatedServer(identities *fakeIdentities, tokens *auth.JWTService) *echo.Echo {
	e := echo.New()
	e.GET("/whoami", func(c echo.Context) error {
		s, ok := session.FromContext(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.String(http.StatusOK, s.Identity.Email)
	}, AuthGate(tokens, identities, logging.Nop()))
	return e
}

func TestAuthGate(t *testing.T) {
	tokens := auth.NewJWTService("gate-secret", time.Hour)
	alice := model.Identity{ID: uuid.New(), Email: "alice@x.com"}
	identities := &fakeIdentities{known: map[uuid.UUID]model.Identity{alice.ID: alice}}

	valid, err := tokens.Issue(alice.ID)
	require.NoError(t, err)
	orphan, err := tokens.Issue(uuid.New())
	require.NoError(t, err)
	forged, err := auth.NewJWTService("other-secret", time.Hour).Issue(alice.ID)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
		wantBody   string
	}{
		{name: "valid token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "alice@x.com"},
		{name: "quoted token", header: `Bearer "` + valid + `"`, wantStatus: http.StatusOK, wantBody: "alice@x.com"},
		{name: "no header", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_REQUIRED"},
		{name: "missing scheme", header: valid, wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_REQUIRED"},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_REQUIRED"},
		{name: "blank token", header: "Bearer    ", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_REQUIRED"},
		{name: "garbage token", header: "Bearer not.a.jwt", wantStatus: http.StatusForbidden, wantCode: "INVALID_TOKEN"},
		{name: "forged token", header: "Bearer " + forged, wantStatus: http.StatusForbidden, wantCode: "INVALID_TOKEN"},
		{name: "identity gone", header: "Bearer " + orphan, wantStatus: http.StatusUnauthorized, wantCode: "IDENTITY_NOT_FOUND"},
	}

	e := newGatedServer(identities, tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAuthGate_StorageFailureIs500(t *testing.T) {
	tokens := auth.NewJWTService("gate-secret", time.Hour)
	token, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	identities := &fakeIdentities{err: apperrors.Storage("find identity", errors.New("connection refused"))}
	e := newGatedServer(identities, tokens)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
