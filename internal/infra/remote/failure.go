// Package remote implements the HTTP client for the learning platform API:
// credential verification, batch catalog listing and per-batch announcement
// listing. Every remote-call failure is caught at this boundary and converted
// into a single Failure shape; no raw transport error escapes a fetch.
package remote

import "fmt"

// FailureKind classifies a remote-call failure so the polling loop can decide
// fatal-vs-continue without inspecting raw error types.
type FailureKind int

const (
	// KindCredentialInvalid means the remote explicitly rejected the
	// credential (401/403 or a failed verification). Requires operator
	// action; fatal to the current run.
	KindCredentialInvalid FailureKind = iota

	// KindTransient covers transport-level problems: timeouts, connection
	// errors, 5xx responses and malformed bodies. Retryable on the next cycle.
	KindTransient

	// KindRemoteData means the remote answered with a well-formed error that
	// is neither an auth rejection nor a server fault. Treated as transient
	// unless it recurs.
	KindRemoteData
)

// String returns a human-readable kind label for logs.
func (k FailureKind) String() string {
	switch k {
	case KindCredentialInvalid:
		return "credential_invalid"
	case KindTransient:
		return "transient"
	case KindRemoteData:
		return "remote_data"
	default:
		return "unknown"
	}
}

// Failure is the uniform error shape returned by every remote-call wrapper.
// It carries the classification, a human-readable message and, when the
// remote supplied one, an HTTP-style status code.
type Failure struct {
	Kind    FailureKind
	Message string
	Status  int
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s (status %d): %s", f.Kind, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Retryable reports whether the caller should keep polling. Only credential
// rejections are non-retryable.
func (f *Failure) Retryable() bool {
	return f.Kind != KindCredentialInvalid
}

// AuthRejected reports whether the failure means the credential must be
// replaced by the operator.
func (f *Failure) AuthRejected() bool {
	if f.Kind == KindCredentialInvalid {
		return true
	}
	return f.Status == 401 || f.Status == 403
}

// transientFailure builds a Failure for transport-level problems.
func transientFailure(message string) *Failure {
	return &Failure{Kind: KindTransient, Message: message}
}

// Verdict is the outcome of a credential verification call.
type Verdict int

const (
	// VerdictValid means the remote explicitly confirmed verification.
	VerdictValid Verdict = iota

	// VerdictInvalid means the remote returned a structured non-confirming
	// response. The credential must be replaced.
	VerdictInvalid

	// VerdictUnknown means the verification call itself failed (timeout,
	// malformed response, connection error). Retryable, distinct from Invalid.
	VerdictUnknown
)

// String returns a human-readable verdict label for logs.
func (v Verdict) String() string {
	switch v {
	case VerdictValid:
		return "valid"
	case VerdictInvalid:
		return "invalid"
	case VerdictUnknown:
		return "unknown"
	default:
		return "unrecognized"
	}
}
