package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"batiflow/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ouvrirDBTest ouvre une base sqlite en mémoire, isolée par test.
func ouvrirDBTest(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Utilisateur{},
		&models.Client{},
		&models.Dossier{},
		&models.Devis{},
		&models.LigneDevis{},
		&models.Facture{},
		&models.LigneFacture{},
		&models.RDV{},
		&models.JournalEntry{},
	)
	require.NoError(t, err)

	return db
}

func creerUtilisateurTest(t *testing.T, db *gorm.DB) *models.Utilisateur {
	t.Helper()

	utilisateur := models.Utilisateur{
		Email:      fmt.Sprintf("%s@test.fr", t.Name()),
		Nom:        "Artisan Test",
		Type:       models.TypeUtilisateurArtisan,
		Actif:      true,
		MotDePasse: "hash",
	}
	require.NoError(t, db.Create(&utilisateur).Error)
	return &utilisateur
}

func creerClientTest(t *testing.T, db *gorm.DB, userID string) *models.Client {
	t.Helper()

	email := "client@test.fr"
	client := models.Client{
		Nom:    "Durand",
		Email:  &email,
		UserID: userID,
	}
	require.NoError(t, db.Create(&client).Error)
	return &client
}

var compteurNumero int64

func creerDossierTest(t *testing.T, db *gorm.DB, userID, clientID string, statut models.StatutDossier) *models.Dossier {
	t.Helper()

	dossier := models.Dossier{
		Numero:      fmt.Sprintf("DOS-2026-%04d", atomic.AddInt64(&compteurNumero, 1)),
		Titre:       "Dossier test",
		Statut:      statut,
		Priorite:    models.PrioriteNormale,
		DateContact: time.Now(),
		ClientID:    clientID,
		UserID:      userID,
	}
	require.NoError(t, db.Create(&dossier).Error)
	return &dossier
}
