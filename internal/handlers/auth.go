package handlers

import (
	"net/http"

	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthHandler gère l'authentification
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authentifie un utilisateur
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me renvoie l'utilisateur courant
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	utilisateur, err := h.authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	utilisateur.MotDePasse = ""
	c.JSON(http.StatusOK, utilisateur)
}
