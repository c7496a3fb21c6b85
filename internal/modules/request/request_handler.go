package request

import (
	"errors"
	"net/http"

	"foodbridge/internal/middleware"
	"foodbridge/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for the request/approval/booking workflow.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new request handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the workflow routes on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/donations/:donationId/requests", h.CreateRequest,
		middleware.RequireRoles(models.RoleNGO, models.RoleNeedy))
	g.GET("/requests/mine", h.ListMyRequests,
		middleware.RequireRoles(models.RoleNGO, models.RoleNeedy))
	g.GET("/requests/incoming", h.ListIncoming, middleware.RequireRoles(models.RoleDonor))
	g.PUT("/requests/:requestId", h.ReviewRequest, middleware.RequireRoles(models.RoleDonor))
	g.POST("/requests/:requestId/book", h.BookDelivery,
		middleware.RequireRoles(models.RoleDonor, models.RoleNGO, models.RoleNeedy))
	g.PUT("/requests/:requestId/received", h.ConfirmReceived,
		middleware.RequireRoles(models.RoleNGO, models.RoleNeedy))
}

func (h *Handler) CreateRequest(c echo.Context) error {
	requesterID := c.Get("userID").(string)
	role := models.Role(c.Get("userRole").(string))
	donationID := c.Param("donationId")

	req, err := h.svc.CreateRequest(c.Request().Context(), donationID, requesterID, role)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDonationUnavailable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Donation not available or already ordered"})
		case errors.Is(err, models.ErrConflict):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "You already have an active request for this donation"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Only NGO or needy accounts may request donations"})
		}
		c.Logger().Error("Handler.CreateRequest: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to place request"})
	}

	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) ListMyRequests(c echo.Context) error {
	requesterID := c.Get("userID").(string)

	requests, err := h.svc.ListMyRequests(c.Request().Context(), requesterID)
	if err != nil {
		c.Logger().Error("Handler.ListMyRequests: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch your requests"})
	}
	if requests == nil {
		requests = []*models.FoodRequest{}
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *Handler) ListIncoming(c echo.Context) error {
	donorID := c.Get("userID").(string)

	requests, err := h.svc.ListIncoming(c.Request().Context(), donorID)
	if err != nil {
		c.Logger().Error("Handler.ListIncoming: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch incoming requests"})
	}
	if requests == nil {
		requests = []*models.FoodRequest{}
	}
	return c.JSON(http.StatusOK, requests)
}

func (h *Handler) ReviewRequest(c echo.Context) error {
	donorID := c.Get("userID").(string)
	requestID := c.Param("requestId")

	var req models.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Status must be Approved or Rejected"})
	}

	updated, err := h.svc.Review(c.Request().Context(), requestID, donorID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Request not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Only the donation owner may review this request"})
		case errors.Is(err, models.ErrRequestNotActionable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Request has already been reviewed"})
		}
		c.Logger().Error("Handler.ReviewRequest: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update request"})
	}

	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) BookDelivery(c echo.Context) error {
	callerID := c.Get("userID").(string)
	role := models.Role(c.Get("userRole").(string))
	requestID := c.Param("requestId")

	var req models.BookDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}

	delivery, err := h.svc.BookDelivery(c.Request().Context(), requestID, callerID, role, req.VolunteerID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Request not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "You may only book your own requests"})
		case errors.Is(err, models.ErrRequestNotActionable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Request is not in a bookable state"})
		case errors.Is(err, models.ErrDonationUnavailable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Donation not available or already ordered"})
		case errors.Is(err, models.ErrDeliveryClaimed):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "A delivery already exists for this request"})
		}
		c.Logger().Error("Handler.BookDelivery: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to book delivery"})
	}

	return c.JSON(http.StatusCreated, delivery)
}

func (h *Handler) ConfirmReceived(c echo.Context) error {
	callerID := c.Get("userID").(string)
	requestID := c.Param("requestId")

	if err := h.svc.ConfirmReceived(c.Request().Context(), requestID, callerID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Request not found"})
		case errors.Is(err, models.ErrForbidden):
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Only the requester may confirm receipt"})
		case errors.Is(err, models.ErrRequestNotActionable):
			return c.JSON(http.StatusConflict, models.ErrorResponse{Message: "Request is not awaiting receipt"})
		}
		c.Logger().Error("Handler.ConfirmReceived: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to confirm receipt"})
	}

	return c.NoContent(http.StatusNoContent)
}
