package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

// CakeController handles HTTP requests for the catalog.
type CakeController struct {
	cakeService services.CakeService
}

func NewCakeController(cakeService services.CakeService) *CakeController {
	return &CakeController{cakeService: cakeService}
}

// ListCakes handles GET /cakes.
func (cc *CakeController) ListCakes(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	cakes, total, svcErr := cc.cakeService.ListCakes(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"cakes": cakes,
		"meta":  paginationMeta(page, limit, total),
	})
}

// GetCake handles GET /cakes/:cakeId.
func (cc *CakeController) GetCake(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("cakeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cake id"})
		return
	}

	cake, svcErr := cc.cakeService.GetCake(ctx.Request.Context(), id)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"cake": cake})
}

// CreateCake handles POST /cakes (admin only).
func (cc *CakeController) CreateCake(ctx *gin.Context) {
	var req models.CreateCakeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cake, svcErr := cc.cakeService.CreateCake(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"cake": cake})
}

// UpdateCake handles PUT /cakes/:cakeId (admin only).
func (cc *CakeController) UpdateCake(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("cakeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cake id"})
		return
	}

	var req models.UpdateCakeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cake, svcErr := cc.cakeService.UpdateCake(ctx.Request.Context(), id, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"cake": cake})
}

// DeleteCake handles DELETE /cakes/:cakeId (admin only).
func (cc *CakeController) DeleteCake(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("cakeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cake id"})
		return
	}

	if svcErr := cc.cakeService.DeleteCake(ctx.Request.Context(), id); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Cake deleted"})
}

// PresignImageUpload handles POST /cakes/image-upload (admin only).
func (cc *CakeController) PresignImageUpload(ctx *gin.Context) {
	var req models.ImageUploadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	upload, svcErr := cc.cakeService.PresignImageUpload(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, upload)
}
