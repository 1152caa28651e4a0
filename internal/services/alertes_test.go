package services

import (
	"testing"
	"time"

	"batiflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var maintenant = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func dossierVisite(misAJour time.Time) models.Dossier {
	return models.Dossier{
		BaseModel: models.BaseModel{ID: "dossier-1", MisAJourLe: misAJour},
		Numero:    "DOS-2026-0001",
		Statut:    models.StatutDossierVisiteRealisee,
	}
}

func TestAlerteDevisManquant(t *testing.T) {
	// Visite réalisée depuis 8 jours, aucun devis : urgence maximale.
	dossier := dossierVisite(maintenant.AddDate(0, 0, -8))

	resultat := DeriveAlertes(dossier, nil, nil, nil, maintenant)

	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, AlerteDevisManquant, resultat.Alertes[0].Type)
	assert.Equal(t, UrgenceUrgente, resultat.Alertes[0].Urgence)
}

func TestAlerteDevisManquantSeuils(t *testing.T) {
	// Sous 3 jours : rien. Entre 3 et 7 : haute.
	dossier := dossierVisite(maintenant.AddDate(0, 0, -2))
	resultat := DeriveAlertes(dossier, nil, nil, nil, maintenant)
	assert.Empty(t, resultat.Alertes)

	dossier = dossierVisite(maintenant.AddDate(0, 0, -4))
	resultat = DeriveAlertes(dossier, nil, nil, nil, maintenant)
	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, UrgenceHaute, resultat.Alertes[0].Urgence)
}

func TestAlerteDevisManquantEteinteParDevis(t *testing.T) {
	dossier := dossierVisite(maintenant.AddDate(0, 0, -10))
	devis := []models.Devis{{BaseModel: models.BaseModel{ID: "devis-1"}, Statut: models.StatutDevisBrouillon}}

	resultat := DeriveAlertes(dossier, devis, nil, nil, maintenant)
	assert.Empty(t, resultat.Alertes)
}

func TestAlerteDevisSansReponseEtRelance(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Numero: "DOS-2026-0001", Statut: models.StatutDossierDevisEnvoye}
	envoi := maintenant.AddDate(0, 0, -10)
	devis := []models.Devis{{
		BaseModel: models.BaseModel{ID: "devis-1"},
		Numero:    "DEV-2026-0001",
		Statut:    models.StatutDevisEnvoye,
		DateEnvoi: &envoi,
	}}

	resultat := DeriveAlertes(dossier, devis, nil, nil, maintenant)

	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, AlerteDevisSansReponse, resultat.Alertes[0].Type)
	assert.Equal(t, UrgenceNormale, resultat.Alertes[0].Urgence)

	// 10 jours d'attente : une relance, échéance posée à J+7 de l'envoi.
	require.Len(t, resultat.Relances, 1)
	assert.Equal(t, RelanceDevis, resultat.Relances[0].Type)
	assert.Equal(t, envoi.AddDate(0, 0, 7), resultat.Relances[0].Echeance)
}

func TestRelanceDevisHorsFenetre(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierDevisEnvoye}
	envoi := maintenant.AddDate(0, 0, -20)
	devis := []models.Devis{{
		BaseModel: models.BaseModel{ID: "devis-1"},
		Numero:    "DEV-2026-0001",
		Statut:    models.StatutDevisEnvoye,
		DateEnvoi: &envoi,
	}}

	resultat := DeriveAlertes(dossier, devis, nil, nil, maintenant)

	// Au-delà de 14 jours : l'alerte monte en urgence mais la relance
	// programmée a expiré.
	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, UrgenceUrgente, resultat.Alertes[0].Urgence)
	assert.Empty(t, resultat.Relances)
}

func TestAlerteDevisSansDateEnvoi(t *testing.T) {
	// Donnée absente : la règle saute, pas de panique.
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierDevisEnvoye}
	devis := []models.Devis{{BaseModel: models.BaseModel{ID: "devis-1"}, Statut: models.StatutDevisEnvoye}}

	resultat := DeriveAlertes(dossier, devis, nil, nil, maintenant)
	assert.Empty(t, resultat.Alertes)
}

func TestAlerteFactureACreer(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierSigne}
	devis := []models.Devis{{
		BaseModel: models.BaseModel{ID: "devis-1"},
		Numero:    "DEV-2026-0001",
		Statut:    models.StatutDevisAccepte,
	}}

	resultat := DeriveAlertes(dossier, devis, nil, nil, maintenant)
	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, AlerteFactureACreer, resultat.Alertes[0].Type)
	assert.Equal(t, UrgenceHaute, resultat.Alertes[0].Urgence)

	// Une facture existe : l'alerte s'éteint.
	factures := []models.Facture{{BaseModel: models.BaseModel{ID: "facture-1"}, Statut: models.StatutFactureBrouillon,
		DateEmission: maintenant, DateEcheance: maintenant.AddDate(0, 0, 30)}}
	resultat = DeriveAlertes(dossier, devis, factures, nil, maintenant)
	assert.Empty(t, resultat.Alertes)
}

func TestAlerteFactureRetard(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierChantierEnCours}
	factures := []models.Facture{{
		BaseModel:    models.BaseModel{ID: "facture-1"},
		Numero:       "FAC-2026-0001",
		Statut:       models.StatutFactureEnvoyee,
		DateEmission: maintenant.AddDate(0, 0, -50),
		DateEcheance: maintenant.AddDate(0, 0, -20),
	}}

	resultat := DeriveAlertes(dossier, nil, factures, nil, maintenant)

	// Échue depuis 20 jours : haute. La facture encore au statut envoyee
	// déclenche quand même, l'échéance fait foi.
	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, AlerteFactureRetard, resultat.Alertes[0].Type)
	assert.Equal(t, UrgenceHaute, resultat.Alertes[0].Urgence)
}

func TestAlerteFactureRetardUrgente(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierChantierEnCours}
	factures := []models.Facture{{
		BaseModel:    models.BaseModel{ID: "facture-1"},
		Numero:       "FAC-2026-0001",
		Statut:       models.StatutFactureEnRetard,
		DateEmission: maintenant.AddDate(0, 0, -70),
		DateEcheance: maintenant.AddDate(0, 0, -35),
	}}

	resultat := DeriveAlertes(dossier, nil, factures, nil, maintenant)
	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, UrgenceUrgente, resultat.Alertes[0].Urgence)
}

func TestRelanceFactureEcheanceProche(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierChantierEnCours}
	echeance := maintenant.AddDate(0, 0, 2)
	factures := []models.Facture{{
		BaseModel:    models.BaseModel{ID: "facture-1"},
		Numero:       "FAC-2026-0001",
		Statut:       models.StatutFactureEnvoyee,
		DateEmission: maintenant.AddDate(0, 0, -28),
		DateEcheance: echeance,
	}}

	resultat := DeriveAlertes(dossier, nil, factures, nil, maintenant)

	assert.Empty(t, resultat.Alertes)
	require.Len(t, resultat.Relances, 1)
	assert.Equal(t, RelanceFacture, resultat.Relances[0].Type)
	assert.Equal(t, echeance, resultat.Relances[0].Echeance)
}

func TestRelanceFactureEcheanceLointaine(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierChantierEnCours}
	factures := []models.Facture{{
		BaseModel:    models.BaseModel{ID: "facture-1"},
		Statut:       models.StatutFactureEnvoyee,
		DateEmission: maintenant,
		DateEcheance: maintenant.AddDate(0, 0, 10),
	}}

	resultat := DeriveAlertes(dossier, nil, factures, nil, maintenant)
	assert.Empty(t, resultat.Relances)
}

func TestAlerteRDVProche(t *testing.T) {
	dossier := models.Dossier{BaseModel: models.BaseModel{ID: "dossier-1"}, Statut: models.StatutDossierRDVConfirme}
	rdvs := []models.RDV{
		{BaseModel: models.BaseModel{ID: "rdv-1"}, Titre: "Visite", Statut: models.StatutRDVConfirme,
			DateHeure: maintenant.Add(10 * time.Hour)},
		{BaseModel: models.BaseModel{ID: "rdv-2"}, Titre: "Signature", Statut: models.StatutRDVConfirme,
			DateHeure: maintenant.Add(90 * time.Minute)},
		{BaseModel: models.BaseModel{ID: "rdv-3"}, Titre: "Trop loin", Statut: models.StatutRDVConfirme,
			DateHeure: maintenant.Add(48 * time.Hour)},
		{BaseModel: models.BaseModel{ID: "rdv-4"}, Titre: "Non confirmé", Statut: models.StatutRDVPlanifie,
			DateHeure: maintenant.Add(1 * time.Hour)},
	}

	resultat := DeriveAlertes(dossier, nil, nil, rdvs, maintenant)

	require.Len(t, resultat.Alertes, 2)
	assert.Equal(t, UrgenceNormale, resultat.Alertes[0].Urgence)
	assert.Equal(t, UrgenceUrgente, resultat.Alertes[1].Urgence)
}

func TestRangUrgence(t *testing.T) {
	assert.Less(t, RangUrgence(UrgenceUrgente), RangUrgence(UrgenceHaute))
	assert.Less(t, RangUrgence(UrgenceHaute), RangUrgence(UrgenceNormale))
	assert.Greater(t, RangUrgence(Urgence("inconnue")), RangUrgence(UrgenceNormale))
}

func TestPourTenantExclutDossiersClos(t *testing.T) {
	db := ouvrirDBTest(t)
	utilisateur := creerUtilisateurTest(t, db)
	client := creerClientTest(t, db, utilisateur.ID)

	// Dossier actif en visite réalisée depuis 8 jours, sans devis.
	actif := creerDossierTest(t, db, utilisateur.ID, client.ID, models.StatutDossierVisiteRealisee)
	require.NoError(t, db.Model(&models.Dossier{}).Where("id = ?", actif.ID).
		Update("mis_a_jour_le", time.Now().AddDate(0, 0, -8)).Error)

	// Dossier perdu dans la même situation : ignoré.
	perdu := creerDossierTest(t, db, utilisateur.ID, client.ID, models.StatutDossierPerdu)
	require.NoError(t, db.Model(&models.Dossier{}).Where("id = ?", perdu.ID).
		Update("mis_a_jour_le", time.Now().AddDate(0, 0, -8)).Error)

	service := NewAlerteService(db)
	resultat, err := service.PourTenant(utilisateur.ID, time.Now())
	require.NoError(t, err)

	require.Len(t, resultat.Alertes, 1)
	assert.Equal(t, AlerteDevisManquant, resultat.Alertes[0].Type)
	assert.Equal(t, actif.ID, resultat.Alertes[0].DossierID)
}
