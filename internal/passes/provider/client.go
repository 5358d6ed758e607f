package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"passgate/internal/passes/models"
	"passgate/internal/passes/tracer"
	"passgate/pkg/platform/privacy"
	"passgate/pkg/requestcontext"
)

// HTTPDoer is the minimal interface needed from an HTTP client. Timeouts,
// TLS and pooling belong to the implementation; the client adds none.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder receives protocol outcomes, typically Prometheus counters.
type Recorder interface {
	RecordLookup(outcome string)
	RecordCreate(result string)
	ObserveProviderCall(operation string, durationSeconds float64)
}

// LookupOutcome is the named result of the lookup leg.
type LookupOutcome string

const (
	LookupFound    LookupOutcome = "found"
	LookupNotFound LookupOutcome = "not_found"
	// LookupDegraded covers every lookup failure other than a 404. It is
	// absorbed: the protocol proceeds to create.
	LookupDegraded LookupOutcome = "degraded"
)

// LookupResult is what the lookup leg produced. Err is set only for LookupDegraded.
type LookupResult struct {
	Outcome LookupOutcome
	Record  *models.PassRecord
	Err     *PassError
}

// Create results reported to the Recorder.
const (
	createCreated   = "created"
	createFailed    = "failed"
	createMalformed = "malformed"
	createCanceled  = "canceled"
)

const defaultMaxBodyBytes = 1 << 20

// Client implements create-or-get against the pass provider. It keeps no
// state between calls and is safe for concurrent use; concurrent calls for
// the same external ID are not serialized.
type Client struct {
	cfg          Config
	http         HTTPDoer
	logger       *slog.Logger
	tracer       tracer.Tracer
	recorder     Recorder
	shapes       []ShapeMatcher
	maxBodyBytes int64
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP capability used for both legs.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger sets the logger for degraded lookups and failed creates.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets the tracer that wraps each provider leg in a span.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithRecorder sets the sink for lookup, create and latency metrics.
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// WithShapes replaces the ordered list of response shape matchers.
func WithShapes(shapes ...ShapeMatcher) Option {
	return func(c *Client) {
		if len(shapes) > 0 {
			c.shapes = shapes
		}
	}
}

// WithMaxBodyBytes caps how much of a provider response is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

// New constructs a Client. The configuration is checked on every call to
// CreateOrGetPass, not here, so a misconfigured client fails per request.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:          cfg,
		http:         &http.Client{},
		logger:       slog.New(slog.DiscardHandler),
		tracer:       tracer.NewNoop(),
		shapes:       DefaultShapes(),
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateOrGetPass returns the pass for req.ExternalID, creating it when the
// provider has none. A degraded lookup falls through to create, so a lookup
// outage can produce a duplicate create attempt; the provider is expected to
// dedupe on extId.
func (c *Client) CreateOrGetPass(ctx context.Context, req models.PassRequest) (record *models.PassRecord, err error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ExternalID) == "" {
		return nil, NewPassError(KindValidation, "validate", "external id is required", nil)
	}

	idHash := privacy.HashIdentifier(req.ExternalID)
	ctx, span := c.tracer.Start(ctx, tracer.SpanCreateOrGet,
		tracer.String(tracer.AttrExternalID, idHash),
		tracer.Bool(tracer.AttrHasEmail, req.HasEmail()),
	)
	defer func() { span.End(err) }()

	lookup := c.lookup(ctx, req.ExternalID)
	span.SetAttributes(tracer.String(tracer.AttrLookupOutcome, string(lookup.Outcome)))

	switch lookup.Outcome {
	case LookupFound:
		span.SetAttributes(tracer.Bool(tracer.AttrCreated, false))
		return lookup.Record, nil
	case LookupDegraded:
		c.logger.WarnContext(ctx, "pass lookup degraded, attempting create",
			"external_id_hash", idHash,
			"status", lookup.Err.StatusCode,
			"error", lookup.Err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, NewPassError(KindCanceled, "lookup", "context ended before create", ctxErr)
	}

	record, err = c.create(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCreated, true))
	return record, nil
}

func (c *Client) lookup(ctx context.Context, externalID string) (result LookupResult) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanLookup)
	defer func() {
		span.SetAttributes(tracer.String(tracer.AttrLookupOutcome, string(result.Outcome)))
		if result.Err != nil {
			span.End(result.Err)
		} else {
			span.End(nil)
		}
		if c.recorder != nil {
			c.recorder.RecordLookup(string(result.Outcome))
		}
	}()

	endpoint := c.cfg.baseURL() + "/passes/" + url.PathEscape(externalID)
	resp, err := c.do(ctx, "lookup", http.MethodGet, endpoint, nil)
	if err != nil {
		return degraded(NewPassError(KindLookupDegraded, "lookup", "request failed", err))
	}
	span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(resp.status)))

	if resp.status == http.StatusNotFound {
		c.logger.DebugContext(ctx, "pass not found, will create", "request_id", requestcontext.RequestID(ctx))
		return LookupResult{Outcome: LookupNotFound}
	}
	if !isSuccess(resp.status) {
		return degraded(newStatusError(KindLookupDegraded, "lookup", "unexpected status", resp.status, resp.body))
	}
	if resp.readErr != nil {
		perr := newStatusError(KindLookupDegraded, "lookup", "failed to read response", resp.status, nil)
		perr.Underlying = resp.readErr
		return degraded(perr)
	}

	fields, shape, ok := normalize(resp.body, c.shapes)
	if !ok {
		return degraded(newStatusError(KindLookupDegraded, "lookup", "unrecognized response shape", resp.status, resp.body))
	}
	span.SetAttributes(tracer.String(tracer.AttrShape, shape))

	storedID := fields.ExternalID
	if storedID == "" {
		storedID = externalID
	}
	return LookupResult{
		Outcome: LookupFound,
		Record: &models.PassRecord{
			ID:         fields.ID,
			URL:        fields.URL,
			NFCEnabled: fields.NFCEnabled,
			ExternalID: storedID,
			CreatedAt:  fields.CreatedAt,
		},
	}
}

func degraded(err *PassError) LookupResult {
	return LookupResult{Outcome: LookupDegraded, Err: err}
}

func (c *Client) create(ctx context.Context, req models.PassRequest) (record *models.PassRecord, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanCreate)
	result := createFailed
	defer func() {
		span.End(err)
		if c.recorder != nil {
			c.recorder.RecordCreate(result)
		}
	}()

	resp, err := c.do(ctx, "create", http.MethodPost, c.createURL(), newCreatePayload(req.ExternalID, req.Email))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result = createCanceled
			return nil, NewPassError(KindCanceled, "create", "context ended during create", ctxErr)
		}
		return nil, NewPassError(KindCreateFailed, "create", "request failed", err)
	}
	span.SetAttributes(tracer.Int64(tracer.AttrStatusCode, int64(resp.status)))

	if !isSuccess(resp.status) {
		body := resp.body
		if resp.readErr != nil {
			body = []byte("unable to read error response")
		}
		perr := newStatusError(KindCreateFailed, "create", "provider rejected create", resp.status, body)
		c.logger.ErrorContext(ctx, "pass provider create error",
			"status", resp.status,
			"status_text", http.StatusText(resp.status),
			"error_text", perr.Body,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, perr
	}

	result = createMalformed
	if resp.readErr != nil {
		perr := newStatusError(KindMalformedResponse, "create", "failed to read response", resp.status, nil)
		perr.Underlying = resp.readErr
		return nil, perr
	}
	fields, shape, ok := normalize(resp.body, c.shapes)
	if !ok {
		return nil, newStatusError(KindMalformedResponse, "create", "response carries no download url", resp.status, resp.body)
	}
	span.SetAttributes(tracer.String(tracer.AttrShape, shape))

	createdAt := fields.CreatedAt
	if createdAt == "" {
		createdAt = requestcontext.Now(ctx).UTC().Format(time.RFC3339)
	}

	result = createCreated
	return &models.PassRecord{
		ID:         fields.ID,
		URL:        fields.URL,
		NFCEnabled: fields.NFCEnabled,
		ExternalID: req.ExternalID,
		CreatedAt:  createdAt,
	}, nil
}

func (c *Client) createURL() string {
	q := url.Values{"passTemplate": {c.cfg.TemplateID}}
	return c.cfg.baseURL() + "/passes?" + q.Encode()
}

// rawResponse is a provider reply. readErr is set when the status arrived
// but the body could not be read.
type rawResponse struct {
	status  int
	body    []byte
	readErr error
}

// do sends one authenticated request. The returned error is a transport
// failure; HTTP statuses are left for the caller to classify.
func (c *Client) do(ctx context.Context, op, method, endpoint string, payload any) (*rawResponse, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.recorder != nil {
		c.recorder.ObserveProviderCall(op, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	return &rawResponse{status: resp.StatusCode, body: body, readErr: readErr}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
