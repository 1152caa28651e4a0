package utils

import (
	"errors"

	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
)

// ValidateJWTFromHeader valide le JWT du header Authorization et renvoie
// l'identifiant utilisateur. Utilisé par les routes hors middleware
// (websocket notamment, où le token peut aussi arriver en query).
func ValidateJWTFromHeader(c *gin.Context, authService *services.AuthService) (string, error) {
	authHeader := c.GetHeader("Authorization")
	token := ""
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		token = authHeader[7:]
	} else if q := c.Query("token"); q != "" {
		token = q
	}
	if token == "" {
		return "", errors.New("token requis")
	}

	claims, err := authService.ValidateToken(token)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}
