package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microauth/internal/callertoken"
	"microauth/internal/platform/health"
	httptransport "microauth/internal/transport/http"
	"microauth/internal/walletauth/handler"
	"microauth/internal/walletauth/metrics"
	"microauth/internal/walletauth/service"
	"microauth/internal/walletauth/store"
	"microauth/pkg/platform/middleware/request"
	"microauth/pkg/testutil"
)

// newServer wires the real stack over an in-memory store.
func newServer(t *testing.T) (*httptest.Server, *callertoken.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	st := store.NewInMemory()
	svc, err := service.Bootstrap(context.Background(), st, testutil.TestWallets.Admin, nil,
		service.WithLogger(logger),
		service.WithMetrics(metrics.NewWith(reg)),
	)
	require.NoError(t, err)

	tokens := callertoken.NewService("test-signing-key", "microauth", time.Minute)
	hc := health.New("test")
	hc.RegisterCheck("store", st.Health)

	srv := httptest.NewServer(httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         logger,
		RequestTimeout: 5 * time.Second,
		Tokens:         tokens,
		Health:         hc,
		Metrics:        request.NewMetricsWith(reg),
		Gatherer:       reg,
		Handlers:       []httptransport.Routes{handler.New(svc, logger)},
	}))
	t.Cleanup(srv.Close)
	return srv, tokens
}

func send(t *testing.T, srv *httptest.Server, method, path, body, token string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestRouter_RegistryFlow(t *testing.T) {
	srv, tokens := newServer(t)
	adminToken, _, err := tokens.Issue(testutil.TestWallets.Admin)
	require.NoError(t, err)
	aliceToken, _, err := tokens.Issue(testutil.TestWallets.Alice)
	require.NoError(t, err)

	statusPath := "/wallets/" + testutil.TestWallets.Bob + "/status"

	resp, body := send(t, srv, http.MethodPut, statusPath, `{"status":"ACTIVE","trust_score":70}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, body)

	resp, _ = send(t, srv, http.MethodPut, statusPath, `{"status":"ACTIVE","trust_score":70}`, aliceToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = send(t, srv, http.MethodPut, statusPath, `{"status":"ACTIVE","trust_score":70}`, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"applied":true}`, body)

	resp, body = send(t, srv, http.MethodPut, statusPath, `{"status":"ACTIVE","trust_score":170}`, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"applied":false}`, body)

	_, body = send(t, srv, http.MethodGet, "/wallets/"+testutil.TestWallets.Bob, "", "")
	assert.Contains(t, body, `"trust_score":70`)
	assert.Contains(t, body, `"registered":true`)

	resp, _ = send(t, srv, http.MethodPost, "/admin/transfer", `{"new_admin":"`+testutil.TestWallets.Alice+`"}`, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = send(t, srv, http.MethodPut, "/contract/next", `{"address":"`+testutil.TestWallets.Contract+`"}`, adminToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = send(t, srv, http.MethodPut, "/contract/next", `{"address":"`+testutil.TestWallets.Contract+`"}`, aliceToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"applied":true}`, body)
}

func TestRouter_RejectsBadToken(t *testing.T) {
	srv, _ := newServer(t)
	resp, _ := send(t, srv, http.MethodGet, "/admin", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
}

func TestRouter_ProbesAndMetrics(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := send(t, srv, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, _ = send(t, srv, http.MethodGet, "/wallets/"+testutil.TestWallets.Alice, "", "")
	resp, body := send(t, srv, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "microauth_registry_lookups_total")
	assert.Contains(t, body, `route="/wallets/{wallet}"`)
}

func TestRouter_RejectsNonJSONBody(t *testing.T) {
	srv, _ := newServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/wallets/status/batch", strings.NewReader("wallets=a"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}
