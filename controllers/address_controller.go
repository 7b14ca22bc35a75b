package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barmor12/cakeshop-backend/middleware"
	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

// AddressController handles HTTP requests for delivery addresses.
type AddressController struct {
	addressService services.AddressService
}

func NewAddressController(addressService services.AddressService) *AddressController {
	return &AddressController{addressService: addressService}
}

// ListAddresses handles GET /addresses.
func (ac *AddressController) ListAddresses(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addresses, svcErr := ac.addressService.ListAddresses(ctx.Request.Context(), userID)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// CreateAddress handles POST /addresses.
func (ac *AddressController) CreateAddress(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateAddressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	address, svcErr := ac.addressService.CreateAddress(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"address": address})
}

// UpdateAddress handles PUT /addresses/:addressId.
func (ac *AddressController) UpdateAddress(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addressID, err := uuid.Parse(ctx.Param("addressId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
		return
	}

	var req models.UpdateAddressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	address, svcErr := ac.addressService.UpdateAddress(ctx.Request.Context(), userID, addressID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"address": address})
}

// DeleteAddress handles DELETE /addresses/:addressId.
func (ac *AddressController) DeleteAddress(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addressID, err := uuid.Parse(ctx.Param("addressId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
		return
	}

	if svcErr := ac.addressService.DeleteAddress(ctx.Request.Context(), userID, addressID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

// SetDefaultAddress handles PUT /addresses/:addressId/default.
func (ac *AddressController) SetDefaultAddress(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	addressID, err := uuid.Parse(ctx.Param("addressId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid address id"})
		return
	}

	if svcErr := ac.addressService.SetDefaultAddress(ctx.Request.Context(), userID, addressID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Default address updated"})
}
