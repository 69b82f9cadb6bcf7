package match

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelsim/duelsim/internal/handlers"
)

func testServer(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()

	service, _ := testService(t)
	e := echo.New()
	e.Validator = handlers.NewValidator()
	NewHandler(service).RegisterRoutes(e.Group("/matches"))
	return e, service
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateMatch(t *testing.T) {
	e, _ := testServer(t)

	rec := doJSON(e, http.MethodPost, "/matches",
		`{"seed": 7, "deck_one": ["Kaeya"], "deck_two": ["Fischl"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateMatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.MatchID)
	assert.Equal(t, "select_active", resp.Snapshot.Phase)
	assert.Equal(t, "Kaeya", resp.Snapshot.Sides[0].Characters[0].Name)
}

func TestHandler_CreateMatchValidation(t *testing.T) {
	e, _ := testServer(t)

	// Missing decks.
	rec := doJSON(e, http.MethodPost, "/matches", `{"seed": 7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown card.
	rec = doJSON(e, http.MethodPost, "/matches",
		`{"seed": 7, "deck_one": ["Nobody"], "deck_two": ["Fischl"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "unknown_card", errResp.Code)
}

func TestHandler_SubmitAction(t *testing.T) {
	e, s := testServer(t)
	matchID := openMatch(t, s, []string{"Kaeya"}, []string{"Fischl"})

	rec := doJSON(e, http.MethodPost, "/matches/"+matchID+"/actions",
		`{"action": "use_skill", "player": "player1", "skill": "Frostgnaw"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot struct {
		Sides []struct {
			Characters []struct {
				HealthPoint int `json:"health_point"`
			} `json:"characters"`
		} `json:"sides"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, 7, snapshot.Sides[1].Characters[0].HealthPoint)
}

func TestHandler_SubmitActionErrors(t *testing.T) {
	e, s := testServer(t)
	matchID := openMatch(t, s, []string{"Kaeya"}, []string{"Fischl"})

	// Unknown action name fails validation.
	rec := doJSON(e, http.MethodPost, "/matches/"+matchID+"/actions",
		`{"action": "concede", "player": "player1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// use_skill without a skill name.
	rec = doJSON(e, http.MethodPost, "/matches/"+matchID+"/actions",
		`{"action": "use_skill", "player": "player1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown skill is a rules refusal, not a transport error.
	rec = doJSON(e, http.MethodPost, "/matches/"+matchID+"/actions",
		`{"action": "use_skill", "player": "player1", "skill": "Nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// Unknown match.
	rec = doJSON(e, http.MethodPost, "/matches/missing/actions",
		`{"action": "declare_end", "player": "player1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_GetAndRemove(t *testing.T) {
	e, s := testServer(t)
	matchID := openMatch(t, s, []string{"Kaeya"}, []string{"Fischl"})

	rec := doJSON(e, http.MethodGet, "/matches/"+matchID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/matches", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var summaries []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)

	rec = doJSON(e, http.MethodDelete, "/matches/"+matchID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/matches/"+matchID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
