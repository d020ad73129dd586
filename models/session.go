package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a session.
//
// Only active sessions can be used. expired, invalid and revoked are terminal.
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusExpired SessionStatus = "expired"
	SessionStatusInvalid SessionStatus = "invalid"
	SessionStatusRevoked SessionStatus = "revoked"
)

// IsTerminal reports whether s can never transition back to active.
func (s SessionStatus) IsTerminal() bool {
	return s != SessionStatusActive
}

// DeviceType is the coarse form factor of the client.
type DeviceType string

const (
	DeviceTypeMobile  DeviceType = "mobile"
	DeviceTypeDesktop DeviceType = "desktop"
)

// DeviceInfo describes the client a session was opened from.
//
// Only DeviceType, OS and Browser take part in fingerprint comparison;
// the remaining fields are recorded for auditing.
type DeviceInfo struct {
	DeviceType DeviceType `json:"device_type,omitempty"`
	OS         string     `json:"os,omitempty"`
	Browser    string     `json:"browser,omitempty"`
	AppVersion string     `json:"app_version,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
}

// Fingerprint returns the comparable device signature.
func (d DeviceInfo) Fingerprint() string {
	return strings.Join([]string{string(d.DeviceType), d.OS, d.Browser}, "|")
}

// Value implements [driver.Valuer]; device info is stored as JSONB.
func (d DeviceInfo) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements [sql.Scanner].
func (d *DeviceInfo) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = DeviceInfo{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported device info type %T", src)
	}
}

// Session binds a user to one authenticated device lineage.
type Session struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// RefreshTokenHash is the encoded hash of the only refresh token that is
	// currently accepted for this session. The raw token is never stored.
	RefreshTokenHash string `json:"-"`

	Status     SessionStatus `json:"status"`
	DeviceInfo DeviceInfo    `json:"device_info"`

	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt time.Time  `json:"last_used_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// IsExpiredAt reports whether the absolute session window is over at now.
func (s Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsValidAt reports whether the session is active and not expired at now.
func (s Session) IsValidAt(now time.Time) bool {
	return s.Status == SessionStatusActive && !s.IsExpiredAt(now)
}

// IsValid is IsValidAt evaluated at the current time.
func (s Session) IsValid() bool {
	return s.IsValidAt(time.Now())
}

// IsActive reports whether the session status is active.
func (s Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// IsRevoked reports whether the session has been revoked.
func (s Session) IsRevoked() bool {
	return s.Status == SessionStatusRevoked
}

// TableName returns the name of the database table
// associated with the Session model.
func (s Session) TableName() string {
	return "sessions"
}

// SessionCreate is the statically typed input of SessionRepository.Create.
type SessionCreate struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	RefreshTokenHash string
	DeviceInfo       DeviceInfo
	ExpiresAt        time.Time
}

// SessionPatch describes a partial update of a session.
type SessionPatch struct {
	RefreshTokenHash Optional[string]
	Status           Optional[SessionStatus]
	ExpiresAt        Optional[time.Time]
	LastUsedAt       Optional[time.Time]
}

// IsEmpty reports whether the patch would not change anything.
func (p SessionPatch) IsEmpty() bool {
	return !p.RefreshTokenHash.IsSet() &&
		!p.Status.IsSet() &&
		!p.ExpiresAt.IsSet() &&
		!p.LastUsedAt.IsSet()
}

// Apply returns a copy of s with every set field of p written over it.
func (p SessionPatch) Apply(s Session) Session {
	if v, ok := p.RefreshTokenHash.Get(); ok {
		s.RefreshTokenHash = v
	}
	if v, ok := p.Status.Get(); ok {
		s.Status = v
	}
	if v, ok := p.ExpiresAt.Get(); ok {
		s.ExpiresAt = v
	}
	if v, ok := p.LastUsedAt.Get(); ok {
		s.LastUsedAt = v
	}
	return s
}

// SessionMutation inspects a locked session and returns the patch to apply.
//
// A mutation may return both a patch and an error: the patch is persisted and
// committed, then the error is handed back to the caller. This is how a failed
// refresh revokes the session before reporting the failure.
type SessionMutation func(current Session) (SessionPatch, error)

// SessionCreated is the outcome of creating a session under the per-user cap.
type SessionCreated struct {
	Session Session
	// Evicted lists the sessions revoked to make room for the new one.
	Evicted []uuid.UUID
}
