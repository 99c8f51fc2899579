package domain

import "time"

// SessionKind tags which mechanism established a session.
type SessionKind string

const (
	SessionKindManual SessionKind = "manual"
	SessionKindOAuth  SessionKind = "oauth"
)

// Session is a resolved, currently valid session. It is either a *ManualSession
// (signed bearer token) or an *OAuthSession (provider-backed persisted session).
type Session interface {
	Kind() SessionKind
	SubjectID() string
	ExpiresAt() time.Time
}

// ManualSession is backed by a signed session token.
type ManualSession struct {
	UserID  string
	Email   string
	TokenID string
	Version int
	Expiry  time.Time
}

func (s *ManualSession) Kind() SessionKind    { return SessionKindManual }
func (s *ManualSession) SubjectID() string    { return s.UserID }
func (s *ManualSession) ExpiresAt() time.Time { return s.Expiry }

// OAuthSession is backed by a persisted OAuthSessionRecord.
type OAuthSession struct {
	Record OAuthSessionRecord
}

func (s *OAuthSession) Kind() SessionKind    { return SessionKindOAuth }
func (s *OAuthSession) SubjectID() string    { return s.Record.UserID }
func (s *OAuthSession) ExpiresAt() time.Time { return s.Record.Expires }

// OAuthSessionRecord is the stored side of an OAuth login. The SessionToken is
// the opaque value held in the client's session cookie.
type OAuthSessionRecord struct {
	SessionToken string       `json:"-"`
	UserID       string       `json:"userID"`
	Provider     AuthProvider `json:"provider"`
	Expires      time.Time    `json:"expires"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Expired reports whether the record is no longer usable at now.
func (r *OAuthSessionRecord) Expired(now time.Time) bool {
	return !now.Before(r.Expires)
}

// Principal is an authenticated caller: the session that proved identity and
// the user it resolved to.
type Principal struct {
	Session Session
	User    *User
}

// UserID is a nil-safe accessor used by handlers.
func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.UserID
}
