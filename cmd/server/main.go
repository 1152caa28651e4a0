package main

import (
	"log"

	"batiflow/internal/config"
	"batiflow/internal/database"
	"batiflow/internal/router"
	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Variables d'environnement
	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Fichier .env introuvable, variables système utilisées")
		}
	}

	cfg := config.Load()

	// Base de données
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Échec de connexion à la base de données:", err)
	}

	// Migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Échec des migrations:", err)
	}

	// Redis (optionnel)
	redisClient := database.ConnectRedis(cfg.RedisURL)

	// Services
	serviceContainer := services.NewContainer(db, redisClient, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := router.Setup(serviceContainer)

	log.Printf("Serveur démarré sur le port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Échec du démarrage du serveur:", err)
	}
}
