package main

import (
	"log"
	"time"

	"batiflow/internal/config"
	"batiflow/internal/database"
	"batiflow/internal/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
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

	if err := database.Migrate(db); err != nil {
		log.Fatal("Échec des migrations:", err)
	}

	log.Println("[SEED] Création des données de démonstration...")
	if err := seed(db); err != nil {
		log.Fatal("[SEED] Échec du seed:", err)
	}

	log.Println("[SEED] Terminé")
	log.Println("Compte de démonstration : demo@batiflow.fr / demo123")
}

func seed(db *gorm.DB) error {
	var existant models.Utilisateur
	if err := db.Where("email = ?", "demo@batiflow.fr").First(&existant).Error; err == nil {
		log.Println("[SEED] Utilisateur démo déjà présent, rien à faire")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	entreprise := "BatiFlow Démo"
	utilisateur := models.Utilisateur{
		Email:      "demo@batiflow.fr",
		Nom:        "Artisan Démo",
		Entreprise: &entreprise,
		Type:       models.TypeUtilisateurArtisan,
		Actif:      true,
		MotDePasse: string(hash),
	}
	if err := db.Create(&utilisateur).Error; err != nil {
		return err
	}

	email := "jean.dupont@example.fr"
	telephone := "+33612345678"
	ville := "Lyon"
	client := models.Client{
		Nom:       "Dupont",
		Email:     &email,
		Telephone: &telephone,
		Ville:     &ville,
		UserID:    utilisateur.ID,
	}
	if err := db.Create(&client).Error; err != nil {
		return err
	}

	dossier := models.Dossier{
		Numero:        "DOS-" + time.Now().Format("2006") + "-0001",
		Titre:         "Rénovation salle de bain",
		Statut:        models.StatutDossierVisiteRealisee,
		Priorite:      models.PrioriteNormale,
		MontantEstime: 8500,
		DateContact:   time.Now().AddDate(0, 0, -10),
		ClientID:      client.ID,
		UserID:        utilisateur.ID,
	}
	if err := db.Create(&dossier).Error; err != nil {
		return err
	}

	entree := models.JournalEntry{
		DossierID: dossier.ID,
		Type:      models.TypeJournalCreation,
		Titre:     "Dossier créé",
		Contenu:   "Dossier de démonstration",
		Auteur:    models.AuteurSysteme,
		UserID:    utilisateur.ID,
	}
	if err := db.Create(&entree).Error; err != nil {
		return err
	}

	lieu := "12 rue des Lilas, Lyon"
	rdv := models.RDV{
		Titre:        "Visite technique",
		TypeRDV:      models.TypeRDVVisiteTechnique,
		DateHeure:    time.Now().AddDate(0, 0, 2),
		DureeMinutes: 90,
		Statut:       models.StatutRDVConfirme,
		Lieu:         &lieu,
		DossierID:    &dossier.ID,
		ClientID:     &client.ID,
		UserID:       utilisateur.ID,
	}
	return db.Create(&rdv).Error
}
