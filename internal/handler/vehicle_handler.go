package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/haulbuddy/service-marketplace/internal/application"
	"github.com/haulbuddy/service-marketplace/internal/common/auth"
	"github.com/haulbuddy/service-marketplace/internal/common/middleware"
	"github.com/haulbuddy/service-marketplace/internal/common/response"
	"github.com/haulbuddy/service-marketplace/internal/domain/vehicle"
)

// maxPhotoBytes caps a single photo upload at 10 MiB.
const maxPhotoBytes = 10 << 20

// VehicleHandler handles HTTP requests for vehicle listings.
type VehicleHandler struct {
	service *application.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service *application.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// RegisterRoutes registers all vehicle routes on the given router group.
func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	vehicles := r.Group("/api/v1/vehicles")
	vehicles.Use(middleware.AuthMiddleware(jwtManager))
	{
		vehicles.POST("", middleware.RequireRole(auth.RoleOwner), h.CreateVehicle)
		vehicles.GET("", middleware.RequireRole(auth.RoleOwner), h.ListOwnerVehicles)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.POST("/:id/photos/:slot", middleware.RequireRole(auth.RoleOwner), h.UploadPhoto)
		vehicles.PUT("/:id/rates", middleware.RequireRole(auth.RoleOwner), h.UpdateRates)
		vehicles.POST("/:id/deactivate", middleware.RequireRole(auth.RoleOwner), h.DeactivateVehicle)
	}
}

// CreateVehicle handles POST /api/v1/vehicles.
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateVehicle(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListOwnerVehicles handles GET /api/v1/vehicles.
func (h *VehicleHandler) ListOwnerVehicles(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetOwnerVehicles(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetVehicle handles GET /api/v1/vehicles/:id.
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	result, err := h.service.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UploadPhoto handles POST /api/v1/vehicles/:id/photos/:slot. The request
// body is the raw image; Content-Type is recorded with the object.
func (h *VehicleHandler) UploadPhoto(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPhotoBytes+1))
	if err != nil {
		response.BadRequest(c, "failed to read photo body")
		return
	}
	if len(data) == 0 {
		response.BadRequest(c, "photo body is empty")
		return
	}
	if len(data) > maxPhotoBytes {
		response.BadRequest(c, "photo exceeds the 10MB limit")
		return
	}

	contentType := c.ContentType()
	if contentType == "" {
		contentType = "image/jpeg"
	}

	result, err := h.service.UploadVehiclePhoto(
		c.Request.Context(),
		c.Param("id"),
		userID,
		vehicle.PhotoSlot(c.Param("slot")),
		data,
		contentType,
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateRates handles PUT /api/v1/vehicles/:id/rates.
func (h *VehicleHandler) UpdateRates(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateRates(c.Request.Context(), c.Param("id"), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeactivateVehicle handles POST /api/v1/vehicles/:id/deactivate.
func (h *VehicleHandler) DeactivateVehicle(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.DeactivateVehicle(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
