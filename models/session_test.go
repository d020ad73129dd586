package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Validity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		session     Session
		wantExpired bool
		wantValid   bool
	}{
		{name: "active", session: Session{Status: SessionStatusActive, ExpiresAt: now.Add(time.Hour)}, wantValid: true},
		{name: "expires exactly now", session: Session{Status: SessionStatusActive, ExpiresAt: now}, wantExpired: true},
		{name: "past expiry", session: Session{Status: SessionStatusActive, ExpiresAt: now.Add(-time.Second)}, wantExpired: true},
		{name: "revoked", session: Session{Status: SessionStatusRevoked, ExpiresAt: now.Add(time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantExpired, tt.session.IsExpiredAt(now))
			assert.Equal(t, tt.wantValid, tt.session.IsValidAt(now))
		})
	}
}

func TestSessionStatus_IsTerminal(t *testing.T) {
	assert.False(t, SessionStatusActive.IsTerminal())
	for _, s := range []SessionStatus{SessionStatusExpired, SessionStatusInvalid, SessionStatusRevoked} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestDeviceInfo_Fingerprint(t *testing.T) {
	a := DeviceInfo{DeviceType: DeviceTypeDesktop, OS: "Linux", Browser: "Chromium", AppVersion: "126", IPAddress: "10.0.0.1"}
	b := a
	b.AppVersion = "127"
	b.IPAddress = "10.0.0.2"
	b.UserAgent = "other"

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.OS = "Windows"
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDeviceInfo_ValueAndScan(t *testing.T) {
	in := DeviceInfo{DeviceType: DeviceTypeMobile, OS: "Android", Browser: "Chrome"}

	v, err := in.Value()
	require.NoError(t, err)

	var fromBytes DeviceInfo
	require.NoError(t, fromBytes.Scan(v))
	assert.Equal(t, in, fromBytes)

	var fromString DeviceInfo
	require.NoError(t, fromString.Scan(string(v.([]byte))))
	assert.Equal(t, in, fromString)

	var fromNil = in
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, DeviceInfo{}, fromNil)

	var bad DeviceInfo
	assert.Error(t, bad.Scan(42))
}

func TestSessionPatch_Apply(t *testing.T) {
	now := time.Now()
	s := Session{ID: uuid.New(), Status: SessionStatusActive, RefreshTokenHash: "old"}

	assert.True(t, SessionPatch{}.IsEmpty())

	got := SessionPatch{RefreshTokenHash: Some("new"), LastUsedAt: Some(now)}.Apply(s)

	assert.Equal(t, "new", got.RefreshTokenHash)
	assert.Equal(t, now, got.LastUsedAt)
	assert.Equal(t, SessionStatusActive, got.Status)
	assert.Equal(t, "old", s.RefreshTokenHash)
}

func TestNewSessionEvent(t *testing.T) {
	s := Session{ID: uuid.New(), UserID: uuid.New(), RefreshTokenHash: "secret", DeviceInfo: DeviceInfo{OS: "Linux"}}

	event := NewSessionEvent(SessionEventRevoked, s)

	assert.Equal(t, SessionEventRevoked, event.Type)
	assert.Equal(t, s.ID, event.SessionID)
	assert.Equal(t, s.UserID, event.UserID)
	require.NotNil(t, event.DeviceInfo)
	assert.Equal(t, "Linux", event.DeviceInfo.OS)
	assert.False(t, event.OccurredAt.IsZero())
}
