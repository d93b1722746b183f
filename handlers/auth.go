package handlers

import (
	"net/http"

	"ambulink/models"
	"ambulink/services/user"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Users user.UserService
}

func NewAuthHandler(users user.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

// RegisterHandler handles POST /api/auth/register.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var input models.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	resp, err := h.Users.Register(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	getLogger(c).Info("account registered", zap.String("userId", resp.User.ID), zap.String("role", string(resp.User.Role)))
	c.JSON(http.StatusCreated, resp)
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	resp, err := h.Users.Login(c.Request.Context(), input)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateFCMTokenHandler handles PUT /api/users/fcm-token.
func (h *AuthHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Token string `json:"token"`
	}
	if !bindJSON(c, &input) {
		return
	}

	if err := h.Users.UpdateFCMToken(c.Request.Context(), actor, input.Token); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}
