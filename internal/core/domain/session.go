package domain

import "time"

// Session is the authenticated caller of a single request.
type Session struct {
	UserID    string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

func (s Session) IsHost() bool {
	return s.Role == RoleHost
}

func (s Session) RequireHost() error {
	if s.UserID == "" {
		return ErrUnauthenticated
	}
	if !s.IsHost() {
		return ErrForbidden
	}
	return nil
}
