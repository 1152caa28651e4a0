package services

import (
	"batiflow/internal/config"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Container regroupe tous les services de l'application
type Container struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Config *config.Config

	// Services
	AuthService       *AuthService
	DevisService      *DevisService
	TransitionService *TransitionService
	SignatureService  *SignatureService
	AlerteService     *AlerteService
	KanbanService     *KanbanService
	EnvoiService      *EnvoiService
}

// NewContainer instancie le container de services
func NewContainer(db *gorm.DB, redis *redis.Client, cfg *config.Config) *Container {
	container := &Container{
		DB:     db,
		Redis:  redis,
		Config: cfg,
	}

	container.AuthService = NewAuthService(db, redis, cfg)
	container.DevisService = NewDevisService(db)
	container.TransitionService = NewTransitionService(db)
	container.SignatureService = NewSignatureService(db)
	container.AlerteService = NewAlerteService(db)
	container.KanbanService = NewKanbanService(db, container.TransitionService)
	container.EnvoiService = NewEnvoiService(db, container.TransitionService, cfg)

	return container
}
