package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/api/auth"
	"github.com/sahelys/sahelys-backend/middleware"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type authHandlers struct {
	users      *mongosvc.UserService
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandlers) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("user registered", zap.String("email", user.Email))
	c.JSON(http.StatusCreated, user)
}

func (h *authHandlers) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Credential failures come back as 401 here, not the usual 403.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   int(h.jwtManager.TokenDuration().Seconds()),
		"user":         user,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *authHandlers) changePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.users.Authenticate(c.Request.Context(), user.Email, req.CurrentPassword); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), user.ID, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("password changed", zap.String("email", user.Email))
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (h *authHandlers) me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}
