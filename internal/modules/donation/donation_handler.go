package donation

import (
	"errors"
	"net/http"
	"strconv"

	"foodbridge/internal/middleware"
	"foodbridge/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for donations.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate // For request body validation
}

// NewHandler creates a new donation handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the donation routes on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/donations", h.CreateDonation, middleware.RequireRoles(models.RoleDonor))
	g.GET("/donations", h.ListAvailable)
	g.GET("/donations/mine", h.ListMyDonations, middleware.RequireRoles(models.RoleDonor))
	g.GET("/donations/:donationId", h.GetDonation)
	g.POST("/donations/:donationId/need-volunteer", h.SetNeedsVolunteer,
		middleware.RequireRoles(models.RoleNGO, models.RoleNeedy))
}

func (h *Handler) CreateDonation(c echo.Context) error {
	donorID := c.Get("userID").(string)

	var req models.CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Food name, quantity, and expiry date are required"})
	}

	created, err := h.svc.CreateDonation(c.Request().Context(), donorID, req)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: ve.Message})
		}
		c.Logger().Error("Handler.CreateDonation: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create donation"})
	}

	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListAvailable(c echo.Context) error {
	filter := models.DonationFilter{
		FoodType:         c.QueryParam("food_type"),
		StorageCondition: c.QueryParam("storage_condition"),
		FoodName:         c.QueryParam("food_name"),
		City:             c.QueryParam("city"),
	}
	if lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64); err == nil {
		filter.Latitude = &lat
	}
	if lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64); err == nil {
		filter.Longitude = &lng
	}
	if radius, err := strconv.ParseFloat(c.QueryParam("radius_km"), 64); err == nil && radius > 0 {
		filter.RadiusKm = &radius
	}

	donations, err := h.svc.ListAvailable(c.Request().Context(), filter)
	if err != nil {
		c.Logger().Error("Handler.ListAvailable: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch donations"})
	}
	if donations == nil {
		donations = []*models.Donation{}
	}
	return c.JSON(http.StatusOK, donations)
}

func (h *Handler) GetDonation(c echo.Context) error {
	donationID := c.Param("donationId")

	d, err := h.svc.GetDonation(c.Request().Context(), donationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Donation not found"})
		}
		c.Logger().Error("Handler.GetDonation: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch donation"})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListMyDonations(c echo.Context) error {
	donorID := c.Get("userID").(string)

	donations, err := h.svc.ListMyDonations(c.Request().Context(), donorID)
	if err != nil {
		c.Logger().Error("Handler.ListMyDonations: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to fetch your donations"})
	}
	if donations == nil {
		donations = []*models.Donation{}
	}
	return c.JSON(http.StatusOK, donations)
}

func (h *Handler) SetNeedsVolunteer(c echo.Context) error {
	callerID := c.Get("userID").(string)
	donationID := c.Param("donationId")

	var req models.NeedVolunteerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}

	err := h.svc.SetNeedsVolunteer(c.Request().Context(), donationID, callerID, req.NeedsVolunteer)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Only an active requester may change this"})
		}
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Donation not found"})
		}
		c.Logger().Error("Handler.SetNeedsVolunteer: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update donation"})
	}
	return c.NoContent(http.StatusNoContent)
}
