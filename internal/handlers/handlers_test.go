package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"batiflow/internal/config"
	"batiflow/internal/models"
	"batiflow/internal/router"
	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type apiTest struct {
	t      *testing.T
	engine *gin.Engine
	db     *gorm.DB
	token  string
	userID string
}

func nouvelAPITest(t *testing.T) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Utilisateur{},
		&models.Client{},
		&models.Dossier{},
		&models.Devis{},
		&models.LigneDevis{},
		&models.Facture{},
		&models.LigneFacture{},
		&models.RDV{},
		&models.JournalEntry{},
	))

	cfg := config.Load()
	container := services.NewContainer(db, nil, cfg)
	engine := router.Setup(container)

	hash, err := bcrypt.GenerateFromPassword([]byte("test123"), bcrypt.MinCost)
	require.NoError(t, err)
	utilisateur := models.Utilisateur{
		Email:      "artisan@test.fr",
		Nom:        "Artisan Test",
		Type:       models.TypeUtilisateurArtisan,
		Actif:      true,
		MotDePasse: string(hash),
	}
	require.NoError(t, db.Create(&utilisateur).Error)

	api := &apiTest{t: t, engine: engine, db: db, userID: utilisateur.ID}

	statut, corps := api.requete("POST", "/api/auth/login", gin.H{
		"email":      "artisan@test.fr",
		"motDePasse": "test123",
	})
	require.Equal(t, http.StatusOK, statut, string(corps))

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(corps, &login))
	api.token = login.Token

	return api
}

// requete exécute une requête, en ajoutant le JWT si présent.
func (a *apiTest) requete(methode, chemin string, payload interface{}) (int, []byte) {
	a.t.Helper()

	var corps *bytes.Buffer
	if payload != nil {
		brut, err := json.Marshal(payload)
		require.NoError(a.t, err)
		corps = bytes.NewBuffer(brut)
	} else {
		corps = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(methode, chemin, corps)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func decoder(t *testing.T, corps []byte, cible interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(corps, cible))
}

func (a *apiTest) creerClient(t *testing.T) string {
	t.Helper()
	statut, corps := a.requete("POST", "/api/clients", gin.H{
		"nom":   "Durand",
		"email": "durand@test.fr",
	})
	require.Equal(t, http.StatusCreated, statut, string(corps))

	var client models.Client
	decoder(t, corps, &client)
	return client.ID
}

func (a *apiTest) creerDossier(t *testing.T, clientID string) string {
	t.Helper()
	statut, corps := a.requete("POST", "/api/dossiers", gin.H{
		"titre":    "Rénovation salle de bain",
		"clientId": clientID,
	})
	require.Equal(t, http.StatusCreated, statut, string(corps))

	var dossier models.Dossier
	decoder(t, corps, &dossier)
	return dossier.ID
}

func TestSante(t *testing.T) {
	api := nouvelAPITest(t)

	statut, _ := api.requete("GET", "/api/health", nil)
	assert.Equal(t, http.StatusOK, statut)
}

func TestAccesSansToken(t *testing.T) {
	api := nouvelAPITest(t)
	api.token = ""

	statut, _ := api.requete("GET", "/api/clients", nil)
	assert.Equal(t, http.StatusUnauthorized, statut)
}

// Scénario complet : contact, dossier, devis chiffré, envoi, facture,
// paiement, cascade.
func TestParcoursCommercial(t *testing.T) {
	api := nouvelAPITest(t)

	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	// L'ouverture du dossier laisse une entrée de création au journal.
	statut, corps := api.requete("GET", "/api/dossiers/"+dossierID+"/journal", nil)
	require.Equal(t, http.StatusOK, statut)
	var journal []models.JournalEntry
	decoder(t, corps, &journal)
	require.Len(t, journal, 1)
	assert.Equal(t, models.TypeJournalCreation, journal[0].Type)

	// Devis : 10 × 100 € HT à 20 % de TVA.
	statut, corps = api.requete("POST", "/api/devis", gin.H{
		"objet":     "Pose carrelage",
		"clientId":  clientID,
		"dossierId": dossierID,
		"lignes": []gin.H{
			{"description": "Pose carrelage", "quantite": 10, "prixUnitaireHt": 100, "tvaPct": 20},
		},
	})
	require.Equal(t, http.StatusCreated, statut, string(corps))
	var devis models.Devis
	decoder(t, corps, &devis)
	assert.Equal(t, 1000.0, devis.MontantHT)
	assert.Equal(t, 200.0, devis.MontantTVA)
	assert.Equal(t, 1200.0, devis.MontantTTC)

	// Passage à envoye : date d'envoi posée, journal alimenté.
	statut, corps = api.requete("PATCH", "/api/devis/"+devis.ID+"/statut", gin.H{"statut": "envoye"})
	require.Equal(t, http.StatusOK, statut, string(corps))
	var envoye models.Devis
	decoder(t, corps, &envoye)
	assert.Equal(t, models.StatutDevisEnvoye, envoye.Statut)
	require.NotNil(t, envoye.DateEnvoi)

	statut, corps = api.requete("GET", "/api/dossiers/"+dossierID+"/journal", nil)
	require.Equal(t, http.StatusOK, statut)
	decoder(t, corps, &journal)
	titres := make([]string, 0, len(journal))
	for _, entree := range journal {
		titres = append(titres, entree.Titre)
	}
	assert.Contains(t, titres, "Devis envoyé")

	// Facture générée depuis le devis.
	statut, corps = api.requete("POST", "/api/devis/"+devis.ID+"/facture", nil)
	require.Equal(t, http.StatusCreated, statut, string(corps))
	var facture models.Facture
	decoder(t, corps, &facture)
	assert.Equal(t, 1200.0, facture.MontantTTC)

	// Paiement : la facture passe à payee et le devis cascade à paye.
	statut, corps = api.requete("PATCH", "/api/factures/"+facture.ID+"/statut", gin.H{"statut": "payee"})
	require.Equal(t, http.StatusOK, statut, string(corps))
	var payee models.Facture
	decoder(t, corps, &payee)
	assert.Equal(t, models.StatutFacturePayee, payee.Statut)
	require.NotNil(t, payee.DatePaiement)

	statut, corps = api.requete("GET", "/api/devis/"+devis.ID, nil)
	require.Equal(t, http.StatusOK, statut)
	var devisFinal models.Devis
	decoder(t, corps, &devisFinal)
	assert.Equal(t, models.StatutDevisPaye, devisFinal.Statut)

	statut, corps = api.requete("GET", "/api/dossiers/"+dossierID+"/journal", nil)
	require.Equal(t, http.StatusOK, statut)
	decoder(t, corps, &journal)
	titres = titres[:0]
	for _, entree := range journal {
		titres = append(titres, entree.Titre)
	}
	assert.Contains(t, titres, "Paiement reçu")
	assert.Contains(t, titres, "Devis payé")
}

func TestStatutInvalideRejete(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	statut, _ := api.requete("PATCH", "/api/dossiers/"+dossierID+"/statut", gin.H{"statut": "statut_fantome"})
	assert.Equal(t, http.StatusBadRequest, statut)
}

func TestSignaturePublique(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)

	statut, corps := api.requete("POST", "/api/devis", gin.H{
		"clientId": clientID,
		"lignes": []gin.H{
			{"description": "Peinture", "quantite": 40, "prixUnitaireHt": 25, "tvaPct": 10},
		},
	})
	require.Equal(t, http.StatusCreated, statut)
	var devis models.Devis
	decoder(t, corps, &devis)

	// Lien de signature émis par l'artisan.
	statut, corps = api.requete("POST", "/api/devis/"+devis.ID+"/signature", nil)
	require.Equal(t, http.StatusOK, statut, string(corps))
	var lien struct {
		Token string `json:"token"`
	}
	decoder(t, corps, &lien)
	require.NotEmpty(t, lien.Token)

	// Consultation publique, sans token d'authentification.
	public := &apiTest{t: t, engine: api.engine}
	statut, corps = public.requete("GET", "/api/public/devis/"+lien.Token, nil)
	require.Equal(t, http.StatusOK, statut, string(corps))
	var projection services.DevisPublic
	decoder(t, corps, &projection)
	assert.Equal(t, devis.Numero, projection.Numero)
	assert.False(t, projection.Signe)

	// Dépôt de la signature.
	statut, corps = public.requete("POST", "/api/public/devis/"+lien.Token+"/signer", gin.H{
		"signature": "data:image/png;base64,xxx",
		"nom":       "Jean Durand",
		"email":     "jean@test.fr",
	})
	require.Equal(t, http.StatusOK, statut, string(corps))

	// Second dépôt refusé.
	statut, _ = public.requete("POST", "/api/public/devis/"+lien.Token+"/signer", gin.H{
		"signature": "data:image/png;base64,yyy",
		"nom":       "Imposteur",
		"email":     "imposteur@test.fr",
	})
	assert.Equal(t, http.StatusConflict, statut)

	// Le devis est accepté côté artisan.
	statut, corps = api.requete("GET", "/api/devis/"+devis.ID, nil)
	require.Equal(t, http.StatusOK, statut)
	var signe models.Devis
	decoder(t, corps, &signe)
	assert.Equal(t, models.StatutDevisAccepte, signe.Statut)
	require.NotNil(t, signe.DateAcceptation)

	// Lien inconnu : 404.
	statut, _ = public.requete("GET", "/api/public/devis/token-fantome", nil)
	assert.Equal(t, http.StatusNotFound, statut)
}

func TestKanbanAPI(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	statut, corps := api.requete("GET", "/api/kanban/dossiers", nil)
	require.Equal(t, http.StatusOK, statut)
	var tableau struct {
		Colonnes []services.ColonneProjetee `json:"colonnes"`
	}
	decoder(t, corps, &tableau)
	require.Len(t, tableau.Colonnes, len(services.ColonnesDossier))
	assert.Equal(t, 1, tableau.Colonnes[0].Nombre)

	// Déplacement vers la colonne rdv : atterrissage sur rdv_a_planifier.
	statut, corps = api.requete("POST", "/api/dossiers/"+dossierID+"/deplacer", gin.H{"colonne": "rdv"})
	require.Equal(t, http.StatusOK, statut, string(corps))
	var dossier models.Dossier
	decoder(t, corps, &dossier)
	assert.Equal(t, models.StatutDossierRDVAPlanifier, dossier.Statut)
}

func TestIsolationTenants(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	// Second artisan sur la même instance.
	hash, err := bcrypt.GenerateFromPassword([]byte("autre123"), bcrypt.MinCost)
	require.NoError(t, err)
	autre := models.Utilisateur{
		Email:      "autre@test.fr",
		Nom:        "Autre Artisan",
		Actif:      true,
		MotDePasse: string(hash),
	}
	require.NoError(t, api.db.Create(&autre).Error)

	intrus := &apiTest{t: t, engine: api.engine, db: api.db}
	statut, corps := intrus.requete("POST", "/api/auth/login", gin.H{
		"email":      "autre@test.fr",
		"motDePasse": "autre123",
	})
	require.Equal(t, http.StatusOK, statut)
	var login struct {
		Token string `json:"token"`
	}
	decoder(t, corps, &login)
	intrus.token = login.Token

	// Le dossier du premier tenant est invisible pour le second.
	statut, _ = intrus.requete("GET", "/api/dossiers/"+dossierID, nil)
	assert.Equal(t, http.StatusNotFound, statut)

	statut, corps = intrus.requete("GET", "/api/dossiers", nil)
	require.Equal(t, http.StatusOK, statut)
	var dossiers []models.Dossier
	decoder(t, corps, &dossiers)
	assert.Empty(t, dossiers)
}

func TestRDVCreationJournalisee(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	statut, corps := api.requete("POST", "/api/rdvs", gin.H{
		"titre":     "Visite technique",
		"dateHeure": "2026-09-02T10:00:00Z",
		"dossierId": dossierID,
		"clientId":  clientID,
	})
	require.Equal(t, http.StatusCreated, statut, string(corps))

	statut, corps = api.requete("GET", "/api/dossiers/"+dossierID+"/journal", nil)
	require.Equal(t, http.StatusOK, statut)
	var journal []models.JournalEntry
	decoder(t, corps, &journal)

	types := make([]models.TypeJournal, 0, len(journal))
	for _, entree := range journal {
		types = append(types, entree.Type)
	}
	assert.Contains(t, types, models.TypeJournalRDVCree)
}

func TestNoteManuelleAuJournal(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	statut, corps := api.requete("POST", "/api/dossiers/"+dossierID+"/journal", gin.H{
		"titre":   "Appel client",
		"contenu": "Le client souhaite décaler le chantier d'une semaine",
	})
	require.Equal(t, http.StatusCreated, statut, string(corps))

	var entree models.JournalEntry
	decoder(t, corps, &entree)
	assert.Equal(t, models.TypeJournalNote, entree.Type)
	assert.Equal(t, "artisan@test.fr", entree.Auteur)
}

func TestSuppressionDossierRefuseeAvecDevis(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	dossierID := api.creerDossier(t, clientID)

	statut, _ := api.requete("POST", "/api/devis", gin.H{
		"clientId":  clientID,
		"dossierId": dossierID,
	})
	require.Equal(t, http.StatusCreated, statut)

	statut, _ = api.requete("DELETE", "/api/dossiers/"+dossierID, nil)
	assert.Equal(t, http.StatusConflict, statut)
}

func TestDashboard(t *testing.T) {
	api := nouvelAPITest(t)
	clientID := api.creerClient(t)
	api.creerDossier(t, clientID)

	statut, corps := api.requete("GET", "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, statut, string(corps))

	var stats struct {
		DossiersActifs int64 `json:"dossiersActifs"`
	}
	decoder(t, corps, &stats)
	assert.EqualValues(t, 1, stats.DossiersActifs)
}
