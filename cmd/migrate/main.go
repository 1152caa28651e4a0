package main

import (
	"log"

	"batiflow/internal/config"
	"batiflow/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("Fichier .env introuvable, variables système utilisées")
		}
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Échec de connexion à la base de données:", err)
	}

	log.Println("[MIGRATION] Exécution des migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("[MIGRATION] Échec des migrations:", err)
	}
	log.Println("[MIGRATION] Migrations terminées")
}
