package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

// TestCircuitBreaker_OpensAfterFailureRatio verifies the circuit trips once
// the failure ratio crosses the configured threshold.
func TestCircuitBreaker_OpensAfterFailureRatio(t *testing.T) {
	cfg := Config{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      4,
	}
	cb := New(cfg)

	failing := func() (interface{}, error) { return nil, errors.New("remote down") }

	// Below MinRequests the circuit must stay closed.
	for i := 0; i < 3; i++ {
		if _, err := cb.Execute(failing); err == nil {
			t.Fatal("Execute() = nil, want error from wrapped call")
		}
	}
	if cb.IsOpen() {
		t.Fatal("circuit opened before MinRequests was reached")
	}

	// One more failure crosses both MinRequests and the failure ratio.
	if _, err := cb.Execute(failing); err == nil {
		t.Fatal("Execute() = nil, want error from wrapped call")
	}
	if !cb.IsOpen() {
		t.Error("circuit still closed after sustained failures")
	}

	// While open, calls are rejected without invoking the function.
	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Execute() error = %v, want gobreaker.ErrOpenState", err)
	}
	if called {
		t.Error("wrapped function was invoked while the circuit was open")
	}
}

// TestCircuitBreaker_SuccessKeepsClosed verifies successful calls pass through.
func TestCircuitBreaker_SuccessKeepsClosed(t *testing.T) {
	cb := New(DefaultConfig("test"))

	got, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if got != "ok" {
		t.Errorf("Execute() = %v, want %q", got, "ok")
	}
	if cb.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}

// TestConfigProfiles verifies the fetch profiles carry distinct names.
func TestConfigProfiles(t *testing.T) {
	if CatalogFetchConfig().Name == AnnouncementFetchConfig().Name {
		t.Error("catalog and announcement breaker profiles must not share a name")
	}
}
