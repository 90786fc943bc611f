package store

import "errors"

// Lifecycle errors surfaced to callers. Every failed transition maps to
// exactly one of these; callers branch with errors.Is.
var (
	ErrCodeNotFound = errors.New("support code not found")
	ErrCodeExpired  = errors.New("support code expired")
	ErrCodeRedeemed = errors.New("support code already redeemed")
	ErrCodeTaken    = errors.New("support code collides with an active code")

	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceOffline  = errors.New("device is not online")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionConflict = errors.New("device already has an open session")
	ErrSessionExpired  = errors.New("session request expired")
	ErrSessionClosed   = errors.New("session is no longer open")
)
