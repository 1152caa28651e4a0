package database

import (
	"log"

	"batiflow/internal/models"

	"gorm.io/gorm"
)

// Migrate exécute les migrations du schéma
func Migrate(db *gorm.DB) error {
	log.Printf("[MIGRATION] Démarrage des migrations...")

	err := db.AutoMigrate(
		// Comptes
		&models.Utilisateur{},

		// CRM
		&models.Client{},
		&models.Dossier{},

		// Documents
		&models.Devis{},
		&models.LigneDevis{},
		&models.Facture{},
		&models.LigneFacture{},

		// Agenda
		&models.RDV{},

		// Audit
		&models.JournalEntry{},
	)
	if err != nil {
		log.Printf("[MIGRATION] Erreur AutoMigrate: %v", err)
		return err
	}

	// Index de consultation du journal (lecture chronologique par dossier)
	db.Exec("CREATE INDEX IF NOT EXISTS idx_journal_dossier_date ON journal(dossier_id, cree_le)")

	log.Printf("[MIGRATION] Migrations terminées")
	return nil
}
