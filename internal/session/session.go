// Package session carries the authenticated caller through a request.
package session

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"canvass/internal/model"
)

const contextKey = "canvass.session"

// Session is the caller resolved by the authentication gate.
type Session struct {
	Identity model.Identity
}

// IdentityID returns the caller's identity id.
func (s *Session) IdentityID() uuid.UUID {
	return s.Identity.ID
}

// Attach stores s on the request context.
func Attach(c echo.Context, s *Session) {
	c.Set(contextKey, s)
}

// FromContext returns the session attached by the gate, if any.
func FromContext(c echo.Context) (*Session, bool) {
	s, ok := c.Get(contextKey).(*Session)
	return s, ok && s != nil
}
