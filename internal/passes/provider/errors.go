package provider

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pass issuance failures.
//
// Callers decide visibility from the kind: configuration and validation errors
// are pre-flight, LookupDegraded never escapes CreateOrGetPass, and
// CreateFailed / MalformedResponse are the hard failures an end user sees.
type ErrorKind string

const (
	// KindConfigurationMissing means APIKey, TemplateID or APIURL is empty.
	KindConfigurationMissing ErrorKind = "configuration_missing"

	// KindValidation means the request's external ID is missing or blank.
	KindValidation ErrorKind = "validation"

	// KindLookupDegraded means the lookup failed for a reason other than a clean 404.
	KindLookupDegraded ErrorKind = "lookup_degraded"

	// KindCreateFailed means the create call failed in transport or returned non-2xx.
	KindCreateFailed ErrorKind = "create_failed"

	// KindMalformedResponse means a 2xx response carried no download URL.
	KindMalformedResponse ErrorKind = "malformed_response"

	// KindCanceled means the caller's context ended before the protocol finished.
	KindCanceled ErrorKind = "canceled"
)

// maxErrorBodyBytes caps the provider body text kept on an error.
const maxErrorBodyBytes = 4 << 10

// PassError carries a classified failure plus the provider's status and body
// text when one was received.
type PassError struct {
	Kind       ErrorKind
	Op         string // "config", "validate", "lookup" or "create"
	Message    string
	StatusCode int    // 0 when no response was received
	Body       string // provider body text, truncated
	Underlying error
}

func (e *PassError) Error() string {
	msg := fmt.Sprintf("passes %s [%s]: %s", e.Op, e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

func (e *PassError) Unwrap() error {
	return e.Underlying
}

// NewPassError builds a PassError without response details.
func NewPassError(kind ErrorKind, op, message string, underlying error) *PassError {
	return &PassError{
		Kind:       kind,
		Op:         op,
		Message:    message,
		Underlying: underlying,
	}
}

func newStatusError(kind ErrorKind, op, message string, status int, body []byte) *PassError {
	return &PassError{
		Kind:       kind,
		Op:         op,
		Message:    message,
		StatusCode: status,
		Body:       truncateBody(body),
	}
}

func truncateBody(body []byte) string {
	if len(body) > maxErrorBodyBytes {
		return string(body[:maxErrorBodyBytes])
	}
	return string(body)
}

// KindOf extracts the kind from an error chain, or "" when err is not a PassError.
func KindOf(err error) ErrorKind {
	var pe *PassError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
