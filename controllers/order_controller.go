package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/barmor12/cakeshop-backend/middleware"
	"github.com/barmor12/cakeshop-backend/models"
	"github.com/barmor12/cakeshop-backend/services"
)

// OrderController handles HTTP requests for orders.
type OrderController struct {
	orderService    services.OrderService
	discountService services.DiscountService
}

func NewOrderController(orderService services.OrderService, discountService services.DiscountService) *OrderController {
	return &OrderController{orderService: orderService, discountService: discountService}
}

// PlaceOrder handles POST /order/new-order.
func (oc *OrderController) PlaceOrder(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.PlaceOrder(ctx.Request.Context(), userID, &req)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetOrder handles GET /order/:orderId. Users see their own orders; admins
// see any order.
func (oc *OrderController) GetOrder(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, svcErr := oc.orderService.GetOrder(ctx.Request.Context(), orderID, userID, middleware.IsAdmin(ctx))
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// ListMyOrders handles GET /order.
func (oc *OrderController) ListMyOrders(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	page, limit := parsePaginationParams(ctx)

	orders, total, svcErr := oc.orderService.GetUserOrders(ctx.Request.Context(), userID, page, limit)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   paginationMeta(page, limit, total),
	})
}

// ListAllOrders handles GET /order/all (admin only). An optional status query
// filters by order status.
func (oc *OrderController) ListAllOrders(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	status := ctx.Query("status")

	orders, total, svcErr := oc.orderService.GetAllOrders(ctx.Request.Context(), page, limit, status)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta":   paginationMeta(page, limit, total),
	})
}

// UpdateStatus handles PUT /order/:orderId (admin only).
func (oc *OrderController) UpdateStatus(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.UpdateStatus(ctx.Request.Context(), orderID, req.Status)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}

// DeleteOrder handles DELETE /order/:orderId (admin only). Stock consumed by
// the order is restored.
func (oc *OrderController) DeleteOrder(ctx *gin.Context) {
	orderID, err := uuid.Parse(ctx.Param("orderId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	if svcErr := oc.orderService.DeleteOrder(ctx.Request.Context(), orderID); svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Order deleted, stock restored"})
}

// ApplyDiscount handles POST /order/apply-discount.
func (oc *OrderController) ApplyDiscount(ctx *gin.Context) {
	userID, err := middleware.GetUserID(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ApplyDiscountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, svcErr := oc.discountService.ApplyToOrder(ctx.Request.Context(), userID, orderID, req.Code)
	if svcErr != nil {
		ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"order": order})
}
