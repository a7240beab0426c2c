package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haulbuddy/service-marketplace/internal/application"
	"github.com/haulbuddy/service-marketplace/internal/common/auth"
	"github.com/haulbuddy/service-marketplace/internal/common/middleware"
	"github.com/haulbuddy/service-marketplace/internal/common/response"
	"github.com/haulbuddy/service-marketplace/internal/domain/profile"
	"github.com/haulbuddy/service-marketplace/internal/domain/vehicle"
)

// ownerOnboardingPayload is the JSON body for owner onboarding. Photos come
// base64-encoded so the whole flow lands in one request.
type ownerOnboardingPayload struct {
	Vehicle            application.CreateVehicleRequest `json:"vehicle" binding:"required"`
	Photos             []onboardingPhotoPayload         `json:"photos" binding:"required"`
	AvailableDays      profile.WeekdayAvailability      `json:"available_days"`
	AvailableTimeSlots profile.TimeSlotAvailability     `json:"available_time_slots"`
}

type onboardingPhotoPayload struct {
	Slot        string `json:"slot" binding:"required"`
	Data        string `json:"data" binding:"required"`
	ContentType string `json:"content_type"`
}

// earningsEstimatePayload is the JSON body for the earnings preview.
type earningsEstimatePayload struct {
	HourlyRate      float64                     `json:"hourly_rate" binding:"required"`
	OfferAssistance bool                        `json:"offer_assistance"`
	AssistanceRate  float64                     `json:"assistance_rate"`
	AvailableDays   profile.WeekdayAvailability `json:"available_days"`
}

// OnboardingHandler handles HTTP requests for the onboarding flows.
type OnboardingHandler struct {
	service *application.OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(service *application.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

// RegisterRoutes registers all onboarding routes on the given router group.
func (h *OnboardingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	onboarding := r.Group("/api/v1/onboarding")
	onboarding.Use(middleware.AuthMiddleware(jwtManager))
	{
		onboarding.GET("/status", h.GetStatus)
		onboarding.POST("/owner", h.CompleteOwnerOnboarding)
		onboarding.POST("/customer", h.CompleteCustomerOnboarding)
		onboarding.POST("/earnings-estimate", h.EstimateEarnings)
	}
}

// GetStatus handles GET /api/v1/onboarding/status.
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	completed, err := h.service.HasCompletedOnboarding(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"has_completed_onboarding": completed})
}

// CompleteOwnerOnboarding handles POST /api/v1/onboarding/owner.
func (h *OnboardingHandler) CompleteOwnerOnboarding(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var payload ownerOnboardingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req := application.OwnerOnboardingRequest{
		Vehicle:            payload.Vehicle,
		AvailableDays:      payload.AvailableDays,
		AvailableTimeSlots: payload.AvailableTimeSlots,
	}
	for _, photo := range payload.Photos {
		data, err := base64.StdEncoding.DecodeString(photo.Data)
		if err != nil {
			response.BadRequest(c, "photo data is not valid base64")
			return
		}
		contentType := photo.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		req.Photos = append(req.Photos, application.PhotoUpload{
			Slot:        vehicle.PhotoSlot(photo.Slot),
			Data:        data,
			ContentType: contentType,
		})
	}

	vehicleID, err := h.service.CompleteOwnerOnboarding(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"vehicle_id": vehicleID})
}

// CompleteCustomerOnboarding handles POST /api/v1/onboarding/customer.
func (h *OnboardingHandler) CompleteCustomerOnboarding(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CustomerOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.CompleteCustomerOnboarding(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"has_completed_onboarding": true})
}

// EstimateEarnings handles POST /api/v1/onboarding/earnings-estimate.
func (h *OnboardingHandler) EstimateEarnings(c *gin.Context) {
	var payload earningsEstimatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	estimate := application.CalculatePotentialEarnings(
		vehicle.Pricing{
			HourlyRate:      payload.HourlyRate,
			OfferAssistance: payload.OfferAssistance,
			AssistanceRate:  payload.AssistanceRate,
		},
		payload.AvailableDays,
	)
	response.Success(c, estimate)
}
