package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barmor12/cakeshop-backend/middleware"
	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

// PushController handles HTTP requests for device tokens and broadcasts.
type PushController struct {
	pushService services.PushService
}

func NewPushController(pushService services.PushService) *PushController {
	return &PushController{pushService: pushService}
}

// RegisterDevice handles POST /push/devices.
func (pc *PushController) RegisterDevice(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RegisterDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := pc.pushService.RegisterDevice(ctx.Request.Context(), userID, &req); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
}

// UnregisterDevice handles DELETE /push/devices/:token.
func (pc *PushController) UnregisterDevice(ctx *gin.Context) {
	token := ctx.Param("token")
	if token == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Device token is required"})
		return
	}

	if svcErr := pc.pushService.UnregisterDevice(ctx.Request.Context(), token); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}

// Broadcast handles POST /push/broadcast (admin only).
func (pc *PushController) Broadcast(ctx *gin.Context) {
	var req models.BroadcastRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := pc.pushService.Broadcast(ctx.Request.Context(), req.Title, req.Body); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusAccepted, gin.H{"message": "Broadcast queued"})
}
