package match

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/domain"
	"github.com/duelsim/duelsim/internal/engine"
	"github.com/duelsim/duelsim/internal/handlers"
	"github.com/duelsim/duelsim/internal/middleware"
)

// Handler exposes the match service over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the HTTP handler for matches.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateMatchRequest is the DTO for opening a match.
type CreateMatchRequest struct {
	Seed    int64    `json:"seed"`
	DeckOne []string `json:"deck_one" validate:"required,min=1,max=3,dive,required"`
	DeckTwo []string `json:"deck_two" validate:"required,min=1,max=3,dive,required"`
}

// CreateMatchResponse returns the new match and its opening snapshot.
type CreateMatchResponse struct {
	MatchID  string              `json:"match_id"`
	Snapshot engine.GameSnapshot `json:"snapshot"`
}

// ActionRequest is the DTO for submitting any player action.
type ActionRequest struct {
	Action   string          `json:"action" validate:"required,oneof=use_skill switch_character declare_end"`
	Player   string          `json:"player" validate:"required,oneof=player1 player2"`
	Skill    string          `json:"skill,omitempty"`
	Position int             `json:"position,omitempty" validate:"gte=0"`
	Targets  []domain.Target `json:"targets,omitempty"`
}

// RegisterRoutes mounts the match endpoints on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateMatch)
	g.GET("", h.ListMatches)
	g.GET("/:id", h.GetMatch)
	g.POST("/:id/actions", h.SubmitAction, middleware.RateLimiter(30))
	g.GET("/:id/transcript", h.GetTranscript)
	g.DELETE("/:id", h.RemoveMatch)
}

// CreateMatch opens a match from two decks.
func (h *Handler) CreateMatch(c echo.Context) error {
	var req CreateMatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
			Code: "bad_request", Message: "malformed request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
			Code: "validation_failed", Message: err.Error(),
		})
	}

	matchID, snapshot, err := h.service.Create(c.Request().Context(), req.Seed, req.DeckOne, req.DeckTwo)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
				Code: "unknown_card", Message: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, handlers.ErrorResponse{
			Code: "create_failed", Message: err.Error(),
		})
	}

	return c.JSON(http.StatusCreated, CreateMatchResponse{MatchID: matchID, Snapshot: snapshot})
}

// ListMatches summarizes running matches.
func (h *Handler) ListMatches(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List())
}

// GetMatch returns the observer snapshot of one match.
func (h *Handler) GetMatch(c echo.Context) error {
	snapshot, err := h.service.Snapshot(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code: "match_not_found", Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, snapshot)
}

// SubmitAction applies one player action and returns the new snapshot.
func (h *Handler) SubmitAction(c echo.Context) error {
	var req ActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
			Code: "bad_request", Message: "malformed request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
			Code: "validation_failed", Message: err.Error(),
		})
	}

	player, _ := domain.ParsePlayer(req.Player)
	matchID := c.Param("id")

	var (
		snapshot engine.GameSnapshot
		err      error
	)
	switch req.Action {
	case "use_skill":
		if req.Skill == "" {
			return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
				Code: "validation_failed", Message: "use_skill requires a skill name",
			})
		}
		snapshot, err = h.service.UseSkill(c.Request().Context(), matchID, player, req.Skill, req.Targets)
	case "switch_character":
		snapshot, err = h.service.SwitchCharacter(c.Request().Context(), matchID, player, domain.CharPos(req.Position))
	case "declare_end":
		snapshot, err = h.service.DeclareEnd(c.Request().Context(), matchID, player)
	}

	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			return c.JSON(http.StatusNotFound, handlers.ErrorResponse{
				Code: "match_not_found", Message: err.Error(),
			})
		case errors.Is(err, domain.ErrMatchFinished):
			return c.JSON(http.StatusConflict, handlers.ErrorResponse{
				Code: "match_finished", Message: err.Error(),
			})
		default:
			// Rules-level refusals (bad phase, bad position, unknown
			// skill) are client errors.
			return c.JSON(http.StatusUnprocessableEntity, handlers.ErrorResponse{
				Code: "action_rejected", Message: err.Error(),
			})
		}
	}

	return c.JSON(http.StatusOK, snapshot)
}

// GetTranscript returns the ordered event log of a match. Finished
// matches are read back from storage, running ones from memory.
func (h *Handler) GetTranscript(c echo.Context) error {
	entries, err := h.service.Transcript(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrTranscriptsDisabled):
			return c.JSON(http.StatusNotFound, handlers.ErrorResponse{
				Code: "transcripts_disabled", Message: err.Error(),
			})
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, handlers.ErrorResponse{
				Code: "transcript_not_found", Message: err.Error(),
			})
		default:
			return c.JSON(http.StatusInternalServerError, handlers.ErrorResponse{
				Code: "transcript_failed", Message: err.Error(),
			})
		}
	}
	return c.JSON(http.StatusOK, entries)
}

// RemoveMatch drops a match.
func (h *Handler) RemoveMatch(c echo.Context) error {
	h.service.Remove(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
