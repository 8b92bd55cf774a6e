package api

import (
	"net/http"

	"pharma-market/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents a login form
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// login handles phone/password sign-in and issues a bearer token
func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := h.svc.Auth.Login(ctx, req.Phone, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.svc.Sessions.Create(ctx, user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// register handles self-service registration requests
func (h *Handler) register(c *gin.Context) {
	var req service.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	request, err := h.svc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// logout revokes the caller's token
func (h *Handler) logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if err := h.svc.Sessions.Revoke(c.Request.Context(), token); err != nil {
			respondError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}
