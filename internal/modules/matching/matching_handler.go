package matching

import (
	"errors"
	"net/http"
	"strconv"

	"foodbridge/internal/models"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for nearest-volunteer lookups.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new matching handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the matcher route on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/donations/:donationId/volunteers", h.NearestVolunteers)
}

func (h *Handler) NearestVolunteers(c echo.Context) error {
	donationID := c.Param("donationId")

	var radiusKm float64
	if v := c.QueryParam("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "radius_km must be a positive number"})
		}
		radiusKm = r
	}

	matches, err := h.svc.NearestVolunteers(c.Request().Context(), donationID, radiusKm)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Donation not found or has no pickup coordinates"})
		}
		c.Logger().Error("Handler.NearestVolunteers: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to find volunteers"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"volunteers": matches})
}
