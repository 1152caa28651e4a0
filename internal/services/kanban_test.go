package services

import (
	"testing"

	"batiflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionnerDevisTotalite(t *testing.T) {
	devisList := []models.Devis{
		{BaseModel: models.BaseModel{ID: "d1"}, Numero: "DEV-1", Statut: models.StatutDevisBrouillon, MontantTTC: 100},
		{BaseModel: models.BaseModel{ID: "d2"}, Numero: "DEV-2", Statut: models.StatutDevisEnPreparation, MontantTTC: 200},
		{BaseModel: models.BaseModel{ID: "d3"}, Numero: "DEV-3", Statut: models.StatutDevisEnvoye, MontantTTC: 300},
		{BaseModel: models.BaseModel{ID: "d4"}, Numero: "DEV-4", Statut: models.StatutDevisRefuse, MontantTTC: 400},
		{BaseModel: models.BaseModel{ID: "d5"}, Numero: "DEV-5", Statut: models.StatutDevisExpire, MontantTTC: 500},
	}

	colonnes := PartitionnerDevis(devisList)

	require.Len(t, colonnes, len(ColonnesDevis))

	// Chaque carte atterrit dans exactement une colonne.
	total := 0
	for _, colonne := range colonnes {
		total += colonne.Nombre
		assert.Len(t, colonne.Cartes, colonne.Nombre)
	}
	assert.Equal(t, len(devisList), total)

	// brouillon et en_preparation partagent la colonne préparation.
	assert.Equal(t, 2, colonnes[0].Nombre)
	assert.Equal(t, 300.0, colonnes[0].MontantTotal)

	// refuse et expire tombent en sans suite.
	sansSuite := colonnes[len(colonnes)-1]
	assert.Equal(t, "sans_suite", sansSuite.ID)
	assert.Equal(t, 2, sansSuite.Nombre)
	assert.Equal(t, 900.0, sansSuite.MontantTotal)
}

func TestPartitionnerStatutInconnu(t *testing.T) {
	devisList := []models.Devis{
		{BaseModel: models.BaseModel{ID: "d1"}, Numero: "DEV-1", Statut: models.StatutDevis("statut_disparu")},
		{BaseModel: models.BaseModel{ID: "d2"}, Numero: "DEV-2", Statut: models.StatutDevis("")},
	}

	colonnes := PartitionnerDevis(devisList)

	// Statut inconnu ou vide : première colonne, jamais de carte perdue.
	assert.Equal(t, 2, colonnes[0].Nombre)
	total := 0
	for _, colonne := range colonnes {
		total += colonne.Nombre
	}
	assert.Equal(t, 2, total)
}

func TestPartitionnerColonnesVides(t *testing.T) {
	colonnes := PartitionnerDevis(nil)

	require.Len(t, colonnes, len(ColonnesDevis))
	for _, colonne := range colonnes {
		assert.Zero(t, colonne.Nombre)
		assert.NotNil(t, colonne.Cartes)
		assert.Empty(t, colonne.Cartes)
	}
}

func TestPartitionnerDossiers(t *testing.T) {
	dossiers := []models.Dossier{
		{BaseModel: models.BaseModel{ID: "do1"}, Numero: "DOS-1", Titre: "Salle de bain",
			Statut: models.StatutDossierRDVPlanifie, MontantEstime: 5000},
		{BaseModel: models.BaseModel{ID: "do2"}, Numero: "DOS-2", Titre: "Toiture",
			Statut: models.StatutDossierChantierTermine, MontantEstime: 20000},
	}

	colonnes := PartitionnerDossiers(dossiers)

	require.Len(t, colonnes, len(ColonnesDossier))
	assert.Equal(t, "rdv", colonnes[1].ID)
	assert.Equal(t, 1, colonnes[1].Nombre)
	assert.Equal(t, 5000.0, colonnes[1].MontantTotal)
	assert.Equal(t, "chantier", colonnes[6].ID)
	assert.Equal(t, 1, colonnes[6].Nombre)
}

func TestDeplacerDevisVersColonne(t *testing.T) {
	db := ouvrirDBTest(t)
	utilisateur := creerUtilisateurTest(t, db)
	client := creerClientTest(t, db, utilisateur.ID)

	devisService := NewDevisService(db)
	devis := models.Devis{ClientID: client.ID, Statut: models.StatutDevisPret}
	require.NoError(t, devisService.Creer(utilisateur.ID, &devis))

	service := NewKanbanService(db, NewTransitionService(db))

	// La colonne sans_suite regroupe refuse et expire : le déplacement
	// atterrit sur le premier statut, refuse.
	resultat, err := service.DeplacerDevis(utilisateur.ID, devis.ID, "sans_suite")
	require.NoError(t, err)
	assert.Equal(t, models.StatutDevisRefuse, resultat.Statut)
}

func TestDeplacerColonneInconnue(t *testing.T) {
	db := ouvrirDBTest(t)
	utilisateur := creerUtilisateurTest(t, db)
	client := creerClientTest(t, db, utilisateur.ID)

	devisService := NewDevisService(db)
	devis := models.Devis{ClientID: client.ID}
	require.NoError(t, devisService.Creer(utilisateur.ID, &devis))

	service := NewKanbanService(db, NewTransitionService(db))

	_, err := service.DeplacerDevis(utilisateur.ID, devis.ID, "colonne_fantome")
	assert.ErrorIs(t, err, ErrStatutInvalide)
}

func TestDeplacerDossier(t *testing.T) {
	db := ouvrirDBTest(t)
	utilisateur := creerUtilisateurTest(t, db)
	client := creerClientTest(t, db, utilisateur.ID)
	dossier := creerDossierTest(t, db, utilisateur.ID, client.ID, models.StatutDossierEnNegociation)

	service := NewKanbanService(db, NewTransitionService(db))

	resultat, err := service.DeplacerDossier(utilisateur.ID, dossier.ID, "signe")
	require.NoError(t, err)
	assert.Equal(t, models.StatutDossierSigne, resultat.Statut)

	// Le déplacement passe par le moteur de transition : trace au journal.
	var entrees []models.JournalEntry
	require.NoError(t, db.Where("dossier_id = ? AND type = ?", dossier.ID, models.TypeJournalStatut).Find(&entrees).Error)
	assert.Len(t, entrees, 1)
}

func TestTableauDevis(t *testing.T) {
	db := ouvrirDBTest(t)
	utilisateur := creerUtilisateurTest(t, db)
	client := creerClientTest(t, db, utilisateur.ID)

	devisService := NewDevisService(db)
	for _, statut := range []models.StatutDevis{models.StatutDevisBrouillon, models.StatutDevisEnvoye} {
		devis := models.Devis{ClientID: client.ID, Statut: statut,
			Lignes: []models.LigneDevis{{Description: "Lot", Quantite: 1, PrixUnitaireHT: 100, TVAPct: 20}}}
		require.NoError(t, devisService.Creer(utilisateur.ID, &devis))
	}

	// Un devis d'un autre tenant ne doit pas apparaître.
	autre := models.Utilisateur{Email: "autre-kanban@test.fr", Nom: "Autre", MotDePasse: "hash"}
	require.NoError(t, db.Create(&autre).Error)
	clientAutre := creerClientTest(t, db, autre.ID)
	devisAutre := models.Devis{ClientID: clientAutre.ID}
	require.NoError(t, devisService.Creer(autre.ID, &devisAutre))

	service := NewKanbanService(db, NewTransitionService(db))
	colonnes, err := service.TableauDevis(utilisateur.ID)
	require.NoError(t, err)

	total := 0
	for _, colonne := range colonnes {
		total += colonne.Nombre
	}
	assert.Equal(t, 2, total)
}
