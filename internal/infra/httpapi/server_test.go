package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"lawn-irrigation/internal/application"
	"lawn-irrigation/internal/domain"
	"lawn-irrigation/internal/i18n"
	"lawn-irrigation/internal/infra/httpapi"
)

type recordingTransport struct {
	mu       sync.Mutex
	payloads []string
}

func (r *recordingTransport) Name() string { return "recording" }

func (r *recordingTransport) Publish(_ context.Context, _ string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, string(payload))
	return nil
}

func newServer(t *testing.T, rateLimit int) (*httpapi.Server, *recordingTransport) {
	t.Helper()
	return newServerWithConfig(t, httpapi.Config{Addr: "127.0.0.1:0", RateLimit: rateLimit})
}

func newServerWithConfig(t *testing.T, cfg httpapi.Config) (*httpapi.Server, *recordingTransport) {
	t.Helper()

	catalog, err := i18n.Load()
	require.NoError(t, err)

	logger := zap.NewNop()
	transport := &recordingTransport{}
	publisher := application.NewShadowPublisher(transport, domain.ShadowUpdateTopic("si-03"), 0, logger)
	skill, err := application.NewSkill(application.SkillConfig{
		Durations: domain.DefaultDurations(),
	}, publisher, catalog, logger)
	require.NoError(t, err)

	return httpapi.NewServer(cfg, skill, logger), transport
}

const sprinkleRequest = `{
	"version": "1.0",
	"request": {
		"type": "IntentRequest",
		"requestId": "amzn1.echo-api.request.1",
		"locale": "en-US",
		"intent": {"name": "WaterLawnIntent", "slots": {"d_action": {"name": "d_action", "value": "sprinkle"}}}
	}
}`

func TestServer_AlexaEndpoint(t *testing.T) {
	server, transport := newServer(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/alexa", strings.NewReader(sprinkleRequest))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp domain.ResponseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sprinkling the lawn", resp.Speech())

	require.Len(t, transport.payloads, 1)
	assert.JSONEq(t, `{"state":{"desired":{"relay_on_timer":10000}}}`, transport.payloads[0])
}

func TestServer_AlexaEndpointRejectsBadInput(t *testing.T) {
	server, transport := newServer(t, 0)

	tests := []struct {
		name       string
		body       []byte
		wantStatus int
	}{
		{"malformed json", []byte(`{"request":`), http.StatusBadRequest},
		{"missing type", []byte(`{"request":{"locale":"en-US"}}`), http.StatusBadRequest},
		{"too large", bytes.Repeat([]byte("a"), 64*1024+1), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/alexa", bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.Empty(t, transport.payloads)
}

func TestServer_AlexaEndpointMethodNotAllowed(t *testing.T) {
	server, _ := newServer(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/alexa", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	server, _ := newServer(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/alexa", strings.NewReader(sprinkleRequest))
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestServer_RateLimitIgnoresForwardedHeaderByDefault(t *testing.T) {
	server, transport := newServer(t, 2)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/alexa", strings.NewReader(sprinkleRequest))
		req.RemoteAddr = "198.51.100.9:40100"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusOK, http.StatusOK,
		http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
	assert.Len(t, transport.payloads, 2)
}

func TestServer_RateLimitBehindTrustedProxy(t *testing.T) {
	server, _ := newServerWithConfig(t, httpapi.Config{Addr: "127.0.0.1:0", RateLimit: 1, TrustProxy: true})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/alexa", strings.NewReader(sprinkleRequest))
		req.RemoteAddr = "10.0.0.2:40100"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"), "each forwarded client has its own bucket")
}

func TestServer_StartFailsWhenAddressInUse(t *testing.T) {
	defer goleak.VerifyNone(t)

	first, _ := newServer(t, 0)
	require.NoError(t, first.Start(context.Background()))
	defer first.Stop()

	second, _ := newServerWithConfig(t, httpapi.Config{Addr: first.Addr()})
	err := second.Start(context.Background())
	assert.ErrorContains(t, err, "listening on")

	rec := httptest.NewRecorder()
	second.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_HealthReflectsLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	server, _ := newServer(t, 0)

	health := func() int {
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusServiceUnavailable, health())

	require.NoError(t, server.Start(context.Background()))
	assert.Equal(t, http.StatusOK, health())

	require.NoError(t, server.Stop())
	assert.Equal(t, http.StatusServiceUnavailable, health())
}

func TestServer_Metrics(t *testing.T) {
	server, _ := newServer(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/alexa", strings.NewReader(sprinkleRequest))
	server.Handler().ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "irrigation_skill_requests_total")
	assert.Contains(t, rec.Body.String(), "irrigation_skill_shadow_publish_total")
}
