package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sahelys/sahelys-backend/middleware"
	"github.com/sahelys/sahelys-backend/models"
	mongosvc "github.com/sahelys/sahelys-backend/services/mongo"
	"go.uber.org/zap"
)

type userHandlers struct {
	users  *mongosvc.UserService
	logger *zap.Logger
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Status   string `json:"status"`
}

type updateUserRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

func (h *userHandlers) create(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Status == "" {
		req.Status = string(models.UserStatusActive)
	}

	user, err := h.users.CreateUser(c.Request.Context(), actor, mongosvc.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     models.UserRole(req.Role),
		Status:   models.UserStatus(req.Status),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("user created", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, user)
}

func (h *userHandlers) list(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	limit, skip := pagination(c)

	users, err := h.users.ListUsers(c.Request.Context(), actor, c.Query("role"), c.Query("status"), limit, skip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *userHandlers) listEmployees(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	employees, err := h.users.ListActiveEmployees(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

func (h *userHandlers) get(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *userHandlers) update(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	input := mongosvc.UpdateUserInput{Name: req.Name}
	if req.Role != nil {
		role := models.UserRole(*req.Role)
		input.Role = &role
	}
	if req.Status != nil {
		status := models.UserStatus(*req.Status)
		input.Status = &status
	}

	user, err := h.users.UpdateUser(c.Request.Context(), actor, id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *userHandlers) delete(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("user deleted", zap.String("user_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
