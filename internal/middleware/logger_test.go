package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingHandler collects every attribute seen on the logger chain.
type capturingHandler struct {
	attrs map[string]string
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	r.Attrs(func(a slog.Attr) bool {
		h.attrs[a.Key] = a.Value.String()
		return true
	})
	return nil
}

func (h *capturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	for _, a := range attrs {
		h.attrs[a.Key] = a.Value.String()
	}
	return h
}

func (h *capturingHandler) WithGroup(string) slog.Handler { return h }

func TestLogger_InjectsRequestScopedLogger(t *testing.T) {
	capture := &capturingHandler{attrs: map[string]string{}}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	defer slog.SetDefault(prev)

	e := echo.New()
	e.Use(echomw.RequestID(), Logger)
	e.POST("/matches/:id/actions", func(c echo.Context) error {
		FromContext(c.Request().Context()).Info("action received")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/matches/match:abc/actions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, capture.attrs["request_id"])
	assert.Equal(t, "match:abc", capture.attrs["match_id"])
}

func TestLogger_SkipsMatchIDOffMatchRoutes(t *testing.T) {
	capture := &capturingHandler{attrs: map[string]string{}}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	defer slog.SetDefault(prev)

	e := echo.New()
	e.Use(echomw.RequestID(), Logger)
	e.GET("/health", func(c echo.Context) error {
		FromContext(c.Request().Context()).Info("checked")
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, hasMatchID := capture.attrs["match_id"]
	assert.False(t, hasMatchID)
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
