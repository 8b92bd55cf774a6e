package api

import (
	"net/http"

	"pharma-market/internal/models"

	"github.com/gin-gonic/gin"
)

// DecisionRequest carries an admin decision on a registration request
type DecisionRequest struct {
	Decision models.RegistrationStatus `json:"decision" binding:"required"`
}

func (h *Handler) listRequests(c *gin.Context) {
	queues, err := h.svc.Admin.Requests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, queues)
}

func (h *Handler) processRequest(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.svc.Admin.ProcessRequest(c.Request.Context(), c.Param("id"), req.Decision); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.svc.Admin.Users(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.svc.Admin.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
