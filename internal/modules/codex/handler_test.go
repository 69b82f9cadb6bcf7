package codex

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/handlers"
)

func testServer(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	e.Validator = handlers.NewValidator()
	NewHandler(testCodex(t)).RegisterRoutes(e.Group("/cards"))
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListCards(t *testing.T) {
	e := testServer(t)

	rec := doJSON(e, http.MethodGet, "/cards", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.NotEmpty(t, summaries)

	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "Kaeya")
	assert.Contains(t, names, "Fischl")
}

func TestHandler_GetCard(t *testing.T) {
	e := testServer(t)

	rec := doJSON(e, http.MethodGet, "/cards/Kaeya", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var card content.CharacterCard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, "Kaeya", card.Name)
	assert.Len(t, card.Skills, 3)

	rec = doJSON(e, http.MethodGet, "/cards/Nobody", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "card_not_found", errResp.Code)
}

// validateBody builds a JSON card for the validate endpoint, starting
// from a shipped template so costs and damage stay well-formed.
func validateBody(t *testing.T, requirements string) string {
	t.Helper()

	cards := content.NewRegistry()
	require.NoError(t, content.NewLoader().LoadDefaults(cards))
	card, err := cards.Card("Kaeya")
	require.NoError(t, err)

	card.Name = "Rosaria"
	card.Skills[0].Requirements = requirements

	body, err := json.Marshal(card)
	require.NoError(t, err)
	return string(body)
}

func TestHandler_ValidateCard(t *testing.T) {
	e := testServer(t)

	rec := doJSON(e, http.MethodPost, "/cards/validate", validateBody(t, "ok := user.alive"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "valid", resp["status"])
	assert.Equal(t, "rosaria", resp["slug"])

	// Broken descriptor source.
	rec = doJSON(e, http.MethodPost, "/cards/validate", validateBody(t, "ok := (("))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "invalid_card", errResp.Code)

	// Not JSON at all.
	rec = doJSON(e, http.MethodPost, "/cards/validate", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
