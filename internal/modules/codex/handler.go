package codex

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/handlers"
)

// Handler exposes the card catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the HTTP handler for the codex.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the codex endpoints on the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListCards)
	g.GET("/:name", h.GetCard)
	g.POST("/validate", h.ValidateCard)
}

// ListCards summarizes every loaded card.
func (h *Handler) ListCards(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List())
}

// GetCard returns the full card template by name.
func (h *Handler) GetCard(c echo.Context) error {
	card, err := h.service.Get(c.Param("name"))
	if err != nil {
		return c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code: "card_not_found", Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, card)
}

// ValidateCard runs the authoring check on a submitted card without
// loading it.
func (h *Handler) ValidateCard(c echo.Context) error {
	var card content.CharacterCard
	if err := c.Bind(&card); err != nil {
		return c.JSON(http.StatusBadRequest, handlers.ErrorResponse{
			Code: "bad_request", Message: "malformed card body",
		})
	}

	if err := h.service.Validate(card); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, handlers.ErrorResponse{
			Code: "invalid_card", Message: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "valid", "slug": Slugify(card.Name)})
}
