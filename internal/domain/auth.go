package domain

import "time"

// Session is a server-tracked login. The signed token handed to clients only
// carries its ID; revoking the Session invalidates the token.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its lifetime at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IssuedSession is a session together with the token representing it.
type IssuedSession struct {
	Session   *Session
	Token     string
	ExpiresAt time.Time
}
