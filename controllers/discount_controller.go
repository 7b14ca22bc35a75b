package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

// DiscountController handles HTTP requests for discount-code management.
type DiscountController struct {
	discountService services.DiscountService
}

func NewDiscountController(discountService services.DiscountService) *DiscountController {
	return &DiscountController{discountService: discountService}
}

// CreateCode handles POST /discounts (admin only).
func (dc *DiscountController) CreateCode(ctx *gin.Context) {
	var req models.CreateDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	code, svcErr := dc.discountService.CreateCode(ctx.Request.Context(), &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"discount": code})
}

// ListCodes handles GET /discounts (admin only).
func (dc *DiscountController) ListCodes(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)

	codes, total, svcErr := dc.discountService.ListCodes(ctx.Request.Context(), page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"discounts": codes,
		"meta":      paginationMeta(page, limit, total),
	})
}

// DeleteCode handles DELETE /discounts/:code (admin only).
func (dc *DiscountController) DeleteCode(ctx *gin.Context) {
	code := ctx.Param("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Discount code is required"})
		return
	}

	if svcErr := dc.discountService.DeleteCode(ctx.Request.Context(), code); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Discount code deleted"})
}
