package contribution

import (
	"net/http"

	"foodbridge/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for monetary contributions.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new contribution handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the contribution route on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/contributions", h.Contribute)
}

func (h *Handler) Contribute(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.CreateContributionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Amount and payment method are required"})
	}

	created, err := h.svc.Contribute(c.Request().Context(), userID, req)
	if err != nil {
		c.Logger().Error("Handler.Contribute: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to process contribution"})
	}

	return c.JSON(http.StatusCreated, created)
}
