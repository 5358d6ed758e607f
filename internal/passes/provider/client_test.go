package provider

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks HTTPDoer,Recorder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"passgate/internal/passes/models"
	"passgate/internal/passes/provider/mocks"
	"passgate/pkg/requestcontext"
)

const (
	testAPIKey     = "test-key"
	testTemplateID = "tmpl-1"
)

// capturedRequest is what the fake provider saw.
type capturedRequest struct {
	method      string
	escapedPath string
	query       string
	auth        string
	contentType string
	body        []byte
}

// fakeProvider is an in-memory stand-in for the pass provider API.
type fakeProvider struct {
	mu           sync.Mutex
	lookupStatus int
	lookupBody   string
	createStatus int
	createBody   string
	lookups      []capturedRequest
	creates      []capturedRequest
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	captured := capturedRequest{
		method:      r.Method,
		escapedPath: r.URL.EscapedPath(),
		query:       r.URL.RawQuery,
		auth:        r.Header.Get("Authorization"),
		contentType: r.Header.Get("Content-Type"),
		body:        body,
	}

	f.mu.Lock()
	var status int
	var respBody string
	switch r.Method {
	case http.MethodGet:
		f.lookups = append(f.lookups, captured)
		status, respBody = f.lookupStatus, f.lookupBody
	case http.MethodPost:
		f.creates = append(f.creates, captured)
		status, respBody = f.createStatus, f.createBody
	default:
		status = http.StatusMethodNotAllowed
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(respBody))
}

func (f *fakeProvider) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func envelopeBody(id, extID string) string {
	return `{"data":{"id":"` + id + `","attributes":{"downloadUrl":"https://passes.test/d/` + id +
		`","nfc":true,"extId":"` + extID + `","createdAt":"2026-03-01T10:00:00Z"}}}`
}

type ClientSuite struct {
	suite.Suite
	fake   *fakeProvider
	server *httptest.Server
	client *Client
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.fake = &fakeProvider{
		lookupStatus: http.StatusNotFound,
		lookupBody:   `{"error":"not found"}`,
		createStatus: http.StatusCreated,
		createBody:   envelopeBody("pass-1", "user-42"),
	}
	s.server = httptest.NewServer(s.fake)
	s.client = New(Config{
		APIKey:     testAPIKey,
		TemplateID: testTemplateID,
		APIURL:     s.server.URL + "/",
	}, WithHTTPClient(s.server.Client()))
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) decodeCreateBody() map[string]any {
	s.Require().Len(s.fake.creates, 1)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(s.fake.creates[0].body, &body))
	return body
}

func (s *ClientSuite) TestCreatesPassWhenLookupMisses() {
	record, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{
		ExternalID: "user-42",
		Email:      "a@b.com",
	})
	s.Require().NoError(err)

	s.Require().Len(s.fake.lookups, 1)
	s.Equal("/passes/user-42", s.fake.lookups[0].escapedPath)
	s.Equal("Bearer "+testAPIKey, s.fake.lookups[0].auth)

	s.Require().Len(s.fake.creates, 1)
	create := s.fake.creates[0]
	s.Equal("/passes", create.escapedPath)
	s.Equal("passTemplate="+testTemplateID, create.query)
	s.Equal("Bearer "+testAPIKey, create.auth)
	s.Equal("application/json", create.contentType)

	body := s.decodeCreateBody()
	s.Equal("user-42", body["extId"])
	pass := body["pass"].(map[string]any)
	s.Equal(true, pass["nfc"].(map[string]any)["enabled"])
	barcode := pass["barcode"].(map[string]any)
	s.Equal(true, barcode["enabled"])
	s.Equal("qr", barcode["type"])
	s.Equal("extId", barcode["source"])
	s.Equal("a@b.com", pass["email"].(map[string]any)["value"])

	s.Equal("user-42", record.ExternalID)
	s.True(record.NFCEnabled)
	s.NotEmpty(record.URL)
	s.Equal("pass-1", record.ID)
}

func (s *ClientSuite) TestReturnsExistingPassWithoutCreating() {
	s.fake.lookupStatus = http.StatusOK
	s.fake.lookupBody = envelopeBody("pass-7", "user-42")

	first, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)
	second, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal("pass-7", first.ID)
	s.Equal("2026-03-01T10:00:00Z", first.CreatedAt)
	s.Zero(s.fake.createCount())
	s.Len(s.fake.lookups, 2)
}

func (s *ClientSuite) TestOmitsEmailKeyWhenAbsent() {
	_, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)

	pass := s.decodeCreateBody()["pass"].(map[string]any)
	_, present := pass["email"]
	s.False(present, "email key must be omitted, not null or empty")
	s.NotContains(string(s.fake.creates[0].body), "email")
}

func (s *ClientSuite) TestDoesNotSendReservedFields() {
	_, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{
		ExternalID:    "user-42",
		WalletAddress: "0xabc",
		Metadata:      map[string]any{"tier": "gold"},
	})
	s.Require().NoError(err)

	raw := string(s.fake.creates[0].body)
	s.NotContains(raw, "0xabc")
	s.NotContains(raw, "gold")
}

func (s *ClientSuite) TestEscapesExternalIDInLookupPath() {
	_, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "a b/c"})
	s.Require().NoError(err)

	s.Require().Len(s.fake.lookups, 1)
	s.Equal("/passes/a%20b%2Fc", s.fake.lookups[0].escapedPath)
}

func (s *ClientSuite) TestLookupFailureStatusFallsThroughToCreate() {
	for _, status := range []int{http.StatusInternalServerError, http.StatusUnauthorized, http.StatusBadGateway} {
		s.Run(http.StatusText(status), func() {
			fake := &fakeProvider{
				lookupStatus: status,
				lookupBody:   `{"error":"boom"}`,
				createStatus: http.StatusCreated,
				createBody:   envelopeBody("pass-1", "user-42"),
			}
			server := httptest.NewServer(fake)
			defer server.Close()
			client := New(Config{APIKey: testAPIKey, TemplateID: testTemplateID, APIURL: server.URL},
				WithHTTPClient(server.Client()))

			lookup := client.lookup(context.Background(), "user-42")
			s.Equal(LookupDegraded, lookup.Outcome)
			s.Require().NotNil(lookup.Err)
			s.Equal(KindLookupDegraded, lookup.Err.Kind)
			s.Equal(status, lookup.Err.StatusCode)
			s.Contains(lookup.Err.Body, "boom")

			record, err := client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
			s.Require().NoError(err)
			s.Equal("pass-1", record.ID)
			s.Equal(1, fake.createCount())
		})
	}
}

func (s *ClientSuite) TestNotFoundIsNotDegraded() {
	lookup := s.client.lookup(context.Background(), "user-42")
	s.Equal(LookupNotFound, lookup.Outcome)
	s.Nil(lookup.Err)
	s.Nil(lookup.Record)
}

func (s *ClientSuite) TestUnrecognizedLookupBodyDegrades() {
	s.fake.lookupStatus = http.StatusOK
	s.fake.lookupBody = `{"something":"else"}`

	lookup := s.client.lookup(context.Background(), "user-42")
	s.Equal(LookupDegraded, lookup.Outcome)

	_, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)
	s.Equal(1, s.fake.createCount())
}

func (s *ClientSuite) TestLookupKeepsProviderValues() {
	s.fake.lookupStatus = http.StatusOK
	s.fake.lookupBody = `{"id":"p-9","passUrl":"https://passes.test/p-9","extId":"stored-id"}`

	record, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)

	s.Equal("stored-id", record.ExternalID)
	s.Empty(record.CreatedAt, "lookup path must not invent a timestamp")
	s.False(record.NFCEnabled)
}

func (s *ClientSuite) TestCreateFailureIsSurfaced() {
	s.fake.createStatus = http.StatusInternalServerError
	s.fake.createBody = `{"error":"template disabled"}`

	record, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})

	s.Nil(record)
	s.Require().Error(err)
	var perr *PassError
	s.Require().True(errors.As(err, &perr))
	s.Equal(KindCreateFailed, perr.Kind)
	s.Equal(http.StatusInternalServerError, perr.StatusCode)
	s.Contains(perr.Body, "template disabled")
	s.Contains(err.Error(), "500")
}

func (s *ClientSuite) TestCreateSuccessWithoutURLIsMalformed() {
	s.fake.createStatus = http.StatusOK
	s.fake.createBody = `{"data":{"id":"pass-1","attributes":{"extId":"user-42"}}}`

	record, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})

	s.Nil(record)
	s.True(IsKind(err, KindMalformedResponse))
}

func (s *ClientSuite) TestCreateDefaultsCreatedAtToRequestTime() {
	s.fake.createBody = `{"id":"pass-2","url":"https://passes.test/pass-2","passContent":{"nfc":{"enabled":true}}}`
	pinned := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), pinned)

	record, err := s.client.CreateOrGetPass(ctx, models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)

	s.Equal("2026-10-14T09:30:00Z", record.CreatedAt)
	s.Equal("user-42", record.ExternalID)
	s.True(record.NFCEnabled)
}

func (s *ClientSuite) TestCreateEchoesRequestedExternalID() {
	s.fake.createBody = envelopeBody("pass-1", "provider-mangled")

	record, err := s.client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	s.Require().NoError(err)
	s.Equal("user-42", record.ExternalID)
}

func TestPreflightFailuresMakeNoNetworkCalls(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		req  models.PassRequest
		kind ErrorKind
	}{
		{
			name: "missing api key",
			cfg:  Config{TemplateID: testTemplateID, APIURL: "http://provider.test"},
			req:  models.PassRequest{ExternalID: "user-42"},
			kind: KindConfigurationMissing,
		},
		{
			name: "missing everything",
			cfg:  Config{},
			req:  models.PassRequest{ExternalID: "user-42"},
			kind: KindConfigurationMissing,
		},
		{
			name: "empty external id",
			cfg:  Config{APIKey: testAPIKey, TemplateID: testTemplateID, APIURL: "http://provider.test"},
			req:  models.PassRequest{},
			kind: KindValidation,
		},
		{
			name: "blank external id",
			cfg:  Config{APIKey: testAPIKey, TemplateID: testTemplateID, APIURL: "http://provider.test"},
			req:  models.PassRequest{ExternalID: "   "},
			kind: KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			doer := mocks.NewMockHTTPDoer(ctrl)
			doer.EXPECT().Do(gomock.Any()).Times(0)

			record, err := New(tt.cfg, WithHTTPClient(doer)).CreateOrGetPass(context.Background(), tt.req)

			if record != nil || !IsKind(err, tt.kind) {
				t.Fatalf("expected %s error and no record, got %v / %v", tt.kind, record, err)
			}
		})
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestLookupTransportErrorFallsThroughToCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockHTTPDoer(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)

	gomock.InOrder(
		doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodGet {
				t.Errorf("expected lookup first, got %s", req.Method)
			}
			return nil, errors.New("dial tcp: connection refused")
		}),
		doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
			if req.Method != http.MethodPost {
				t.Errorf("expected create second, got %s", req.Method)
			}
			return jsonResponse(http.StatusCreated, envelopeBody("pass-3", "user-42")), nil
		}),
	)
	recorder.EXPECT().ObserveProviderCall("lookup", gomock.Any())
	recorder.EXPECT().ObserveProviderCall("create", gomock.Any())
	recorder.EXPECT().RecordLookup(string(LookupDegraded))
	recorder.EXPECT().RecordCreate("created")

	client := New(Config{APIKey: testAPIKey, TemplateID: testTemplateID, APIURL: "http://provider.test"},
		WithHTTPClient(doer), WithRecorder(recorder))

	record, err := client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != "pass-3" {
		t.Fatalf("expected pass-3, got %s", record.ID)
	}
}

func TestCreateTransportErrorIsCreateFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockHTTPDoer(ctrl)
	gomock.InOrder(
		doer.EXPECT().Do(gomock.Any()).Return(jsonResponse(http.StatusNotFound, `{}`), nil),
		doer.EXPECT().Do(gomock.Any()).Return(nil, errors.New("connection reset by peer")),
	)

	client := New(Config{APIKey: testAPIKey, TemplateID: testTemplateID, APIURL: "http://provider.test"}, WithHTTPClient(doer))
	_, err := client.CreateOrGetPass(context.Background(), models.PassRequest{ExternalID: "user-42"})

	var perr *PassError
	if !errors.As(err, &perr) || perr.Kind != KindCreateFailed || perr.StatusCode != 0 {
		t.Fatalf("expected create_failed without status, got %v", err)
	}
}

func TestCancellationStopsBeforeCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	doer := mocks.NewMockHTTPDoer(ctrl)
	ctx, cancel := context.WithCancel(context.Background())

	doer.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
		cancel()
		<-req.Context().Done()
		return nil, req.Context().Err()
	}).Times(1)

	client := New(Config{APIKey: testAPIKey, TemplateID: testTemplateID, APIURL: "http://provider.test"}, WithHTTPClient(doer))
	record, err := client.CreateOrGetPass(ctx, models.PassRequest{ExternalID: "user-42"})

	if record != nil {
		t.Fatal("expected no record")
	}
	if !IsKind(err, KindCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error wrapping context.Canceled, got %v", err)
	}
}
