package api

import (
	"net/http"

	"pharma-market/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) getCart(c *gin.Context) {
	view, err := h.svc.Cart.Cart(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// addToCart handles adding an offer to the cart. Quantities below one are
// raised to one.
func (h *Handler) addToCart(c *gin.Context) {
	var req service.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	view, err := h.svc.Cart.AddToCart(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) removeFromCart(c *gin.Context) {
	view, err := h.svc.Cart.RemoveFromCart(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// submitOrder sends the cart lines of one warehouse as an order
func (h *Handler) submitOrder(c *gin.Context) {
	order, err := h.svc.Orders.SubmitOrder(c.Request.Context(), currentUser(c), c.Param("warehouseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.svc.Orders.PharmacyOrders(c.Request.Context(), currentUser(c).ID, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) requestInvoice(c *gin.Context) {
	order, err := h.svc.Orders.RequestInvoice(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
