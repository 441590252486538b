package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "microauth/pkg/domain-errors"
)

type walletRequest struct {
	Wallet string `json:"wallet"`
}

func (r *walletRequest) Normalize() {
	r.Wallet = strings.TrimSpace(r.Wallet)
}

func (r *walletRequest) Validate() error {
	if r.Wallet == "" {
		return errors.New("wallet is required")
	}
	if len(r.Wallet) != 3 {
		return dErrors.New(dErrors.CodeInvalidInput, "wallet must be 3 letters")
	}
	return nil
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"wallet":"ABC"}`))
		w := httptest.NewRecorder()

		got, ok := DecodeJSON[walletRequest](w, req, logger, ctx, "req")

		require.True(t, ok)
		assert.Equal(t, "ABC", got.Wallet)
	})

	t.Run("malformed and unknown fields are bad requests", func(t *testing.T) {
		for _, body := range []string{`{nope}`, ``, `{"wallet":"ABC","extra":1}`} {
			w := httptest.NewRecorder()
			got, ok := DecodeJSON[walletRequest](w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), logger, ctx, "req")
			assert.False(t, ok, body)
			assert.Nil(t, got)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "bad_request", decodeErr(t, w)["error"])
		}
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		w := httptest.NewRecorder()
		got, ok := DecodeAndPrepare[walletRequest](w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"wallet":"  ABC "}`)), logger, ctx, "req")
		require.True(t, ok)
		assert.Equal(t, "ABC", got.Wallet)
	})

	t.Run("keeps domain error code", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[walletRequest](w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"wallet":"ABCD"}`)), logger, ctx, "req")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeErr(t, w)["error"])
	})

	t.Run("wraps plain error as validation error", func(t *testing.T) {
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[walletRequest](w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"wallet":""}`)), logger, ctx, "req")
		assert.False(t, ok)
		body := decodeErr(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "wallet is required", body["error_description"])
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "missing caller"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "caller is not admin"), http.StatusForbidden, "forbidden"},
		{"limit", dErrors.New(dErrors.CodeLimitExceeded, "too many wallets"), http.StatusBadRequest, "limit_exceeded"},
		{"unavailable", dErrors.New(dErrors.CodeUnavailable, "store down"), http.StatusServiceUnavailable, "unavailable"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeErr(t, w)["error"])
		})
	}

	t.Run("internal messages are not exposed", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "pq: relation missing"))
		assert.NotContains(t, w.Body.String(), "relation")
	})
}
