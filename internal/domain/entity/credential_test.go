package entity

import (
	"testing"
	"time"
)

// TestCredential_IsPlaceholder verifies bootstrap detection of template tokens.
func TestCredential_IsPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		token Credential
		want  bool
	}{
		{name: "empty", token: "", want: true},
		{name: "whitespace only", token: "   ", want: true},
		{name: "config template value", token: "YOUR_ACCESS_TOKEN_HERE", want: true},
		{name: "real token", token: "eyJhbGciOiJIUzI1NiJ9.payload.sig", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.IsPlaceholder(); got != tt.want {
				t.Errorf("IsPlaceholder() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExpiryEstimate verifies the advisory expiry computation.
func TestExpiryEstimate(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt int64
		want      ExpiryInfo
	}{
		{
			name:      "unknown expiry",
			expiresAt: 0,
			want:      ExpiryInfo{},
		},
		{
			name:      "already expired",
			expiresAt: now.Add(-time.Hour).UnixMilli(),
			want:      ExpiryInfo{Expired: true},
		},
		{
			name:      "ten days remaining",
			expiresAt: now.Add(10*24*time.Hour + time.Hour).UnixMilli(),
			want:      ExpiryInfo{DaysRemaining: 10},
		},
		{
			name:      "less than a day remaining",
			expiresAt: now.Add(time.Hour).UnixMilli(),
			want:      ExpiryInfo{DaysRemaining: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpiryEstimate(tt.expiresAt, now); got != tt.want {
				t.Errorf("ExpiryEstimate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
