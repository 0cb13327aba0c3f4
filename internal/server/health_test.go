package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDB struct{ err error }

func (f fakeDB) PingContext(ctx context.Context) error { return f.err }

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(ctx context.Context) error { return f.err }

type fakeAuthority struct{ up bool }

func (f fakeAuthority) HealthCheck(ctx context.Context) bool { return f.up }

func healthz(t *testing.T, ctrl *HealthController) (*httptest.ResponseRecorder, healthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	ctrl.Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestHealthz_AllUp(t *testing.T) {
	ctrl := NewHealthController(fakeDB{}, fakeRedis{}, fakeAuthority{up: true}, zap.NewNop())

	w, resp := healthz(t, ctrl)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", resp.Status)
}

func TestHealthz_DatabaseDown(t *testing.T) {
	ctrl := NewHealthController(fakeDB{err: assert.AnError}, fakeRedis{}, fakeAuthority{up: true}, zap.NewNop())

	w, resp := healthz(t, ctrl)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "down", resp.Database)
	assert.Equal(t, "degraded", resp.Status)
}

func TestHealthz_AuthorityDownIsNotFatal(t *testing.T) {
	ctrl := NewHealthController(fakeDB{}, fakeRedis{}, fakeAuthority{up: false}, zap.NewNop())

	w, resp := healthz(t, ctrl)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "down", resp.Authority)
	assert.Equal(t, "degraded", resp.Status)
}
