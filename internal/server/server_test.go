package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelsim/duelsim/internal/app"
	"github.com/duelsim/duelsim/internal/config"
)

// bootServer assembles a full in-memory application: real bus, real
// catalog, real modules, no database.
func bootServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Static{Addr: ":0"}
	reg, cleanup, err := app.BuildRegistry(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := New(cfg, reg, app.NewModules())
	require.NoError(t, s.Bootstrap(ctx))
	t.Cleanup(func() {
		require.NoError(t, s.Shutdown(context.Background()))
	})
	return s
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := bootServer(t)

	rec := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_ModulesMounted(t *testing.T) {
	s := bootServer(t)

	// Codex catalog is live.
	rec := do(s, http.MethodGet, "/api/codex", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cards []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cards))
	assert.NotEmpty(t, cards)

	// Matches can be created end to end through the kernel.
	rec = do(s, http.MethodPost, "/api/match",
		`{"seed": 11, "deck_one": ["Kaeya"], "deck_two": ["Noelle"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		MatchID string `json:"match_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.MatchID)

	rec = do(s, http.MethodGet, "/api/match/"+created.MatchID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_BootstrapIsRepeatableAcrossInstances(t *testing.T) {
	// Two servers in one process must not collide on global state such
	// as topic registration.
	s1 := bootServer(t)
	s2 := bootServer(t)

	require.Equal(t, http.StatusOK, do(s1, http.MethodGet, "/health", "").Code)
	require.Equal(t, http.StatusOK, do(s2, http.MethodGet, "/health", "").Code)
}
