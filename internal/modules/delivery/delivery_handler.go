package delivery

import (
	"errors"
	"net/http"

	"foodbridge/internal/middleware"
	"foodbridge/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the volunteer delivery surface.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new delivery handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the volunteer routes on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	volunteerOnly := middleware.RequireRoles(models.RoleVolunteer)
	g.POST("/requests/:requestId/accept", h.AcceptRequest, volunteerOnly)
	g.GET("/deliveries/mine", h.ListMyDeliveries, volunteerOnly)
	g.GET("/pickup-requests", h.ListOpenPickups, volunteerOnly)
	g.PUT("/deliveries/:deliveryId/status", h.UpdateStatus, volunteerOnly)
}

func (h *Handler) AcceptRequest(c echo.Context) error {
	volunteerID := c.Get("userID").(string)
	requestID := c.Param("requestId")

	d, err := h.svc.AcceptRequest(c.Request().Context(), requestID, volunteerID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Request not found"})
		case errors.Is(err, models.ErrDeliveryClaimed):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "This request has already been accepted by another volunteer"})
		case errors.Is(err, models.ErrRequestNotActionable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Request is no longer open"})
		case errors.Is(err, models.ErrDonationUnavailable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Donation not available or already ordered"})
		}
		c.Logger().Error("Handler.AcceptRequest: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to accept the request"})
	}

	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) ListMyDeliveries(c echo.Context) error {
	volunteerID := c.Get("userID").(string)

	deliveries, err := h.svc.ListMyDeliveries(c.Request().Context(), volunteerID)
	if err != nil {
		c.Logger().Error("Handler.ListMyDeliveries: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch deliveries"})
	}
	if deliveries == nil {
		deliveries = []*models.Delivery{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"deliveries": deliveries})
}

func (h *Handler) ListOpenPickups(c echo.Context) error {
	requests, err := h.svc.ListOpenPickups(c.Request().Context())
	if err != nil {
		c.Logger().Error("Handler.ListOpenPickups: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch pickup requests"})
	}
	if requests == nil {
		requests = []*models.FoodRequest{}
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	volunteerID := c.Get("userID").(string)
	deliveryID := c.Param("deliveryId")

	var req models.UpdateDeliveryStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Status must be PickedUp or Delivered"})
	}

	if err := h.svc.UpdateStatus(c.Request().Context(), deliveryID, volunteerID, req.Status); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Delivery not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "This delivery is assigned to another volunteer"})
		case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrRequestNotActionable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Delivery is not in a state that allows this transition"})
		}
		c.Logger().Error("Handler.UpdateStatus: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update delivery status"})
	}

	return c.NoContent(http.StatusNoContent)
}
