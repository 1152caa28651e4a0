package services

import (
	"errors"
	"time"

	"batiflow/internal/config"
	"batiflow/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	db     *gorm.DB
	redis  *redis.Client
	config *config.Config
}

type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	MotDePasse string `json:"motDePasse" binding:"required"`
}

type LoginResponse struct {
	Token       string             `json:"token"`
	Utilisateur models.Utilisateur `json:"utilisateur"`
}

func NewAuthService(db *gorm.DB, redis *redis.Client, config *config.Config) *AuthService {
	return &AuthService{
		db:     db,
		redis:  redis,
		config: config,
	}
}

// Login authentifie un utilisateur et renvoie un token JWT
func (s *AuthService) Login(req LoginRequest) (*LoginResponse, error) {
	var utilisateur models.Utilisateur

	if err := s.db.Where("email = ? AND actif = ?", req.Email, true).First(&utilisateur).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("identifiants invalides")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(utilisateur.MotDePasse), []byte(req.MotDePasse)); err != nil {
		return nil, errors.New("identifiants invalides")
	}

	token, err := s.generateJWT(utilisateur)
	if err != nil {
		return nil, err
	}

	utilisateur.MotDePasse = ""

	return &LoginResponse{
		Token:       token,
		Utilisateur: utilisateur,
	}, nil
}

func (s *AuthService) generateJWT(utilisateur models.Utilisateur) (string, error) {
	claims := JWTClaims{
		UserID: utilisateur.ID,
		Email:  utilisateur.Email,
		Role:   string(utilisateur.Type),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour * 7)), // 7 jours
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "batiflow",
			Subject:   utilisateur.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// ValidateToken valide un token JWT
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("token invalide")
}

// HashPassword calcule le hash bcrypt d'un mot de passe
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// GetUserByID charge un utilisateur actif par son ID
func (s *AuthService) GetUserByID(userID string) (*models.Utilisateur, error) {
	var utilisateur models.Utilisateur
	if err := s.db.Where("id = ? AND actif = ?", userID, true).First(&utilisateur).Error; err != nil {
		return nil, err
	}
	return &utilisateur, nil
}
