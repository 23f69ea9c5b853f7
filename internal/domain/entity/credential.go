package entity

import (
	"strings"
	"time"
)

// placeholderPrefix marks a template token that was never replaced by the
// operator (the bootstrap config ships with "YOUR_ACCESS_TOKEN_HERE").
const placeholderPrefix = "YOUR_"

// Credential is an opaque bearer token for the remote platform. Its validity
// is determined only by the remote verification endpoint; the token is never
// decoded locally.
type Credential string

// IsPlaceholder reports whether the credential is empty or still holds the
// config template placeholder. A placeholder credential is fatal at bootstrap.
func (c Credential) IsPlaceholder() bool {
	s := strings.TrimSpace(string(c))
	return s == "" || strings.HasPrefix(s, placeholderPrefix)
}

// ExpiryInfo is an advisory local estimate of credential lifetime, computed
// from the expiry timestamp the remote reported at issuance. It is surfaced
// in logs only and never trusted at gate time.
type ExpiryInfo struct {
	Expired       bool
	DaysRemaining int
}

// ExpiryEstimate computes the advisory expiry state from an epoch-millisecond
// expiry timestamp. A zero timestamp means the expiry is unknown and the
// returned info reports not-expired with zero days remaining.
func ExpiryEstimate(expiresAtMillis int64, now time.Time) ExpiryInfo {
	if expiresAtMillis == 0 {
		return ExpiryInfo{}
	}
	remaining := expiresAtMillis - now.UnixMilli()
	if remaining <= 0 {
		return ExpiryInfo{Expired: true}
	}
	return ExpiryInfo{DaysRemaining: int(remaining / (1000 * 60 * 60 * 24))}
}
