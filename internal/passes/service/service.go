package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"passgate/internal/passes/models"
	"passgate/internal/passes/provider"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/platform/circuit"
	"passgate/pkg/platform/privacy"
	"passgate/pkg/requestcontext"
)

// PassIssuer runs create-or-get against the pass provider.
type PassIssuer interface {
	CreateOrGetPass(ctx context.Context, req models.PassRequest) (*models.PassRecord, error)
}

// CollapseRecorder counts requests that shared another request's provider call.
type CollapseRecorder interface {
	IncrementCollapsed()
}

// Option configures the pass service.
type Option func(*Service)

// Service issues passes for the HTTP layer. Concurrent requests for the same
// external ID in this process share one provider round-trip.
type Service struct {
	issuer   PassIssuer
	logger   *slog.Logger
	metrics  CollapseRecorder
	breaker  *circuit.Breaker
	inflight singleflight.Group
}

// New creates a pass service around the provider client.
func New(issuer PassIssuer, opts ...Option) *Service {
	svc := &Service{
		issuer:  issuer,
		logger:  slog.New(slog.DiscardHandler),
		breaker: circuit.New("passentry"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithLogger configures a logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics configures the collapsed-request counter.
func WithMetrics(m CollapseRecorder) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithBreaker replaces the provider health breaker.
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) {
		if b != nil {
			s.breaker = b
		}
	}
}

type issueResult struct {
	record *models.PassRecord
	err    error
}

// Issue returns the pass for req.ExternalID, creating it if needed.
//
// The shared provider call is detached from any single caller's cancellation;
// each caller stops waiting when its own context ends.
func (s *Service) Issue(ctx context.Context, req models.PassRequest) (*models.PassRecord, error) {
	if s.issuer == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "pass issuer unavailable")
	}

	leader := false
	ch := s.inflight.DoChan(inflightKey(req), func() (any, error) {
		leader = true
		callCtx := context.WithoutCancel(ctx)
		record, err := s.issuer.CreateOrGetPass(callCtx, req)
		s.trackProvider(callCtx, err)
		return issueResult{record: record, err: err}, nil
	})

	select {
	case <-ctx.Done():
		s.logFailure(ctx, req, ctx.Err())
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "pass issuance timed out")
	case res := <-ch:
		if res.Shared && !leader && s.metrics != nil {
			s.metrics.IncrementCollapsed()
		}
		out := res.Val.(issueResult)
		if out.err != nil {
			s.logFailure(ctx, req, out.err)
			return nil, toDomainError(out.err)
		}
		return out.record, nil
	}
}

// inflightKey covers every request field sent to the provider, so only
// identical create payloads share a call.
func inflightKey(req models.PassRequest) string {
	return req.ExternalID + "\x00" + req.Email
}

// ProviderDegraded reports whether recent create attempts have kept failing upstream.
func (s *Service) ProviderDegraded() bool {
	return s.breaker.IsOpen()
}

func (s *Service) trackProvider(ctx context.Context, err error) {
	if err == nil {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "pass provider recovered", "breaker", s.breaker.Name())
		}
		return
	}
	switch provider.KindOf(err) {
	case provider.KindCreateFailed, provider.KindMalformedResponse:
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "pass provider degraded", "breaker", s.breaker.Name())
		}
	}
}

func (s *Service) logFailure(ctx context.Context, req models.PassRequest, err error) {
	attrs := []any{
		"external_id_hash", privacy.HashIdentifier(req.ExternalID),
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	var perr *provider.PassError
	if errors.As(err, &perr) {
		attrs = append(attrs, "kind", string(perr.Kind), "op", perr.Op)
		if perr.StatusCode != 0 {
			attrs = append(attrs, "status", perr.StatusCode)
		}
	}
	s.logger.ErrorContext(ctx, "pass issuance failed", attrs...)
}
