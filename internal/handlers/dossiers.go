package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"batiflow/internal/models"
	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// DossiersHandler gère les dossiers commerciaux
type DossiersHandler struct {
	db          *gorm.DB
	transitions *services.TransitionService
}

func NewDossiersHandler(db *gorm.DB, transitions *services.TransitionService) *DossiersHandler {
	return &DossiersHandler{db: db, transitions: transitions}
}

// ListDossiers liste les dossiers du tenant
func (h *DossiersHandler) ListDossiers(c *gin.Context) {
	userID := c.GetString("user_id")
	statut := c.Query("statut")
	clientID := c.Query("client_id")

	var dossiers []models.Dossier
	query := h.db.Where("user_id = ?", userID).Preload("Client")

	if statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	if err := query.Order("date_contact DESC").Find(&dossiers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche des dossiers"})
		return
	}

	c.JSON(http.StatusOK, dossiers)
}

// GetDossier renvoie un dossier avec son instantané complet
func (h *DossiersHandler) GetDossier(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	var dossier models.Dossier
	if err := h.db.Where("id = ? AND user_id = ?", dossierID, userID).
		Preload("Client").
		Preload("Devis").Preload("Devis.Lignes").
		Preload("Factures").
		Preload("RDVs").
		First(&dossier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
		return
	}

	c.JSON(http.StatusOK, dossier)
}

// CreateDossier ouvre un dossier au premier contact
func (h *DossiersHandler) CreateDossier(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Titre         string     `json:"titre" binding:"required"`
		ClientID      string     `json:"clientId" binding:"required"`
		Priorite      *string    `json:"priorite"`
		Source        *string    `json:"source"`
		Description   *string    `json:"description"`
		MontantEstime float64    `json:"montantEstime"`
		DateContact   *time.Time `json:"dateContact"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Le client doit appartenir au tenant.
	var client models.Client
	if err := h.db.Where("id = ? AND user_id = ?", req.ClientID, userID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client non trouvé"})
		return
	}

	dateContact := time.Now()
	if req.DateContact != nil {
		dateContact = *req.DateContact
	}
	priorite := models.PrioriteNormale
	if req.Priorite != nil {
		priorite = models.Priorite(*req.Priorite)
	}

	var dossier models.Dossier
	err := h.db.Transaction(func(tx *gorm.DB) error {
		annee := dateContact.Year()
		var count int64
		if err := tx.Model(&models.Dossier{}).
			Where("user_id = ? AND numero LIKE ?", userID, fmt.Sprintf("DOS-%d-%%", annee)).
			Count(&count).Error; err != nil {
			return err
		}

		dossier = models.Dossier{
			Numero:        fmt.Sprintf("DOS-%d-%04d", annee, count+1),
			Titre:         req.Titre,
			Statut:        models.StatutDossierContactRecu,
			Priorite:      priorite,
			Source:        req.Source,
			Description:   req.Description,
			MontantEstime: req.MontantEstime,
			DateContact:   dateContact,
			ClientID:      client.ID,
			UserID:        userID,
		}
		if err := tx.Create(&dossier).Error; err != nil {
			return err
		}

		entree := models.JournalEntry{
			DossierID: dossier.ID,
			Type:      models.TypeJournalCreation,
			Titre:     "Dossier créé",
			Contenu:   fmt.Sprintf("Dossier %s ouvert pour %s", dossier.Numero, client.Nom),
			Auteur:    models.AuteurSysteme,
			UserID:    userID,
		}
		return tx.Create(&entree).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du dossier"})
		return
	}

	c.JSON(http.StatusCreated, dossier)
}

// UpdateDossier met à jour les champs fournis (hors statut, qui passe par
// UpdateDossierStatut)
func (h *DossiersHandler) UpdateDossier(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	var req struct {
		Titre         *string    `json:"titre"`
		Priorite      *string    `json:"priorite"`
		Source        *string    `json:"source"`
		Description   *string    `json:"description"`
		MontantEstime *float64   `json:"montantEstime"`
		DateContact   *time.Time `json:"dateContact"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dossier models.Dossier
	if err := h.db.Where("id = ? AND user_id = ?", dossierID, userID).First(&dossier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
		return
	}

	updates := make(map[string]interface{})
	if req.Titre != nil {
		updates["titre"] = *req.Titre
	}
	if req.Priorite != nil {
		updates["priorite"] = *req.Priorite
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MontantEstime != nil {
		updates["montant_estime"] = *req.MontantEstime
	}
	if req.DateContact != nil {
		updates["date_contact"] = *req.DateContact
	}
	updates["mis_a_jour_le"] = time.Now()

	if err := h.db.Model(&dossier).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du dossier"})
		return
	}

	c.JSON(http.StatusOK, dossier)
}

// UpdateDossierStatut applique une transition de statut
func (h *DossiersHandler) UpdateDossierStatut(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	var req struct {
		Statut string `json:"statut" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dossier, err := h.transitions.TransitionDossier(userID, dossierID, models.StatutDossier(req.Statut))
	if err != nil {
		repondreErreurTransition(c, err, "Dossier non trouvé")
		return
	}

	BroadcastEvenementPipeline(userID, EvenementTransition, gin.H{
		"entite": "dossier",
		"id":     dossier.ID,
		"statut": dossier.Statut,
	})

	c.JSON(http.StatusOK, dossier)
}

// DeleteDossier refuse la suppression tant que des devis ou factures y sont
// rattachés ; la cascade ne passe que par la suppression du client.
func (h *DossiersHandler) DeleteDossier(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	var dossier models.Dossier
	if err := h.db.Where("id = ? AND user_id = ?", dossierID, userID).First(&dossier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
		return
	}

	var references int64
	h.db.Model(&models.Devis{}).Where("dossier_id = ?", dossierID).Count(&references)
	var refFactures int64
	h.db.Model(&models.Facture{}).Where("dossier_id = ?", dossierID).Count(&refFactures)
	if references+refFactures > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Des devis ou factures sont rattachés à ce dossier"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dossier_id = ?", dossierID).Delete(&models.JournalEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("dossier_id = ?", dossierID).Delete(&models.RDV{}).Error; err != nil {
			return err
		}
		return tx.Delete(&dossier).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du dossier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dossier supprimé"})
}

// repondreErreurTransition traduit les erreurs du moteur de transition en
// codes HTTP.
func repondreErreurTransition(c *gin.Context, err error, messageNonTrouve string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": messageNonTrouve})
	case errors.Is(err, services.ErrStatutInvalide):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
	case errors.Is(err, services.ErrDejaSigne):
		c.JSON(http.StatusConflict, gin.H{"error": "Devis déjà signé"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du changement de statut"})
	}
}
