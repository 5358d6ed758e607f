package service

import (
	"context"
	"errors"

	"passgate/internal/passes/provider"
	dErrors "passgate/pkg/domain-errors"
)

// toDomainError maps provider failures onto domain codes. Messages are safe
// to show to clients; provider detail stays in the wrapped error.
func toDomainError(err error) error {
	switch provider.KindOf(err) {
	case provider.KindConfigurationMissing:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "service unavailable")
	case provider.KindValidation:
		return dErrors.Wrap(err, dErrors.CodeValidation, "externalId is required")
	case provider.KindCreateFailed, provider.KindMalformedResponse:
		return dErrors.Wrap(err, dErrors.CodeUpstream, "unable to issue pass, try again")
	case provider.KindCanceled:
		return dErrors.Wrap(err, dErrors.CodeTimeout, "pass issuance timed out")
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "pass issuance timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create or retrieve pass")
}
