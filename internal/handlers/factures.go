package handlers

import (
	"errors"
	"net/http"
	"time"

	"batiflow/internal/models"
	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FacturesHandler gère les factures
type FacturesHandler struct {
	db          *gorm.DB
	devis       *services.DevisService
	transitions *services.TransitionService
	envois      *services.EnvoiService
}

func NewFacturesHandler(db *gorm.DB, devis *services.DevisService, transitions *services.TransitionService,
	envois *services.EnvoiService) *FacturesHandler {
	return &FacturesHandler{db: db, devis: devis, transitions: transitions, envois: envois}
}

// ListFactures liste les factures du tenant
func (h *FacturesHandler) ListFactures(c *gin.Context) {
	userID := c.GetString("user_id")
	statut := c.Query("statut")
	clientID := c.Query("client_id")
	dossierID := c.Query("dossier_id")

	var factures []models.Facture
	query := h.db.Where("user_id = ?", userID).Preload("Lignes").Preload("Client")

	if statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if dossierID != "" {
		query = query.Where("dossier_id = ?", dossierID)
	}

	if err := query.Order("date_emission DESC").Find(&factures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche des factures"})
		return
	}

	c.JSON(http.StatusOK, factures)
}

// GetFacture renvoie une facture avec ses lignes
func (h *FacturesHandler) GetFacture(c *gin.Context) {
	userID := c.GetString("user_id")
	factureID := c.Param("id")

	var facture models.Facture
	if err := h.db.Where("id = ? AND user_id = ?", factureID, userID).
		Preload("Lignes").Preload("Client").Preload("Devis").Preload("Dossier").
		First(&facture).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture non trouvée"})
		return
	}

	c.JSON(http.StatusOK, facture)
}

// CreateFacture crée une facture libre, montants recalculés côté serveur
func (h *FacturesHandler) CreateFacture(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Objet        *string               `json:"objet"`
		ClientID     string                `json:"clientId" binding:"required"`
		DossierID    *string               `json:"dossierId"`
		DateEmission *time.Time            `json:"dateEmission"`
		DateEcheance *time.Time            `json:"dateEcheance"`
		Lignes       []models.LigneFacture `json:"lignes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	if err := h.db.Where("id = ? AND user_id = ?", req.ClientID, userID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client non trouvé"})
		return
	}
	if req.DossierID != nil {
		var dossier models.Dossier
		if err := h.db.Where("id = ? AND user_id = ?", *req.DossierID, userID).First(&dossier).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
			return
		}
	}

	facture := models.Facture{
		Objet:     req.Objet,
		Statut:    models.StatutFactureBrouillon,
		ClientID:  req.ClientID,
		DossierID: req.DossierID,
		Lignes:    req.Lignes,
	}
	if req.DateEmission != nil {
		facture.DateEmission = *req.DateEmission
	}
	if req.DateEcheance != nil {
		facture.DateEcheance = *req.DateEcheance
	}

	if err := h.devis.CreerFacture(userID, &facture); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la facture"})
		return
	}

	c.JSON(http.StatusCreated, facture)
}

// UpdateFacture met à jour les champs simples (hors statut)
func (h *FacturesHandler) UpdateFacture(c *gin.Context) {
	userID := c.GetString("user_id")
	factureID := c.Param("id")

	var req struct {
		Objet        *string    `json:"objet"`
		DateEcheance *time.Time `json:"dateEcheance"`
		PdfURL       *string    `json:"pdfUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var facture models.Facture
	if err := h.db.Where("id = ? AND user_id = ?", factureID, userID).First(&facture).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture non trouvée"})
		return
	}

	updates := make(map[string]interface{})
	if req.Objet != nil {
		updates["objet"] = *req.Objet
	}
	if req.DateEcheance != nil {
		updates["date_echeance"] = *req.DateEcheance
	}
	if req.PdfURL != nil {
		updates["pdf_url"] = *req.PdfURL
	}
	updates["mis_a_jour_le"] = time.Now()

	if err := h.db.Model(&facture).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour de la facture"})
		return
	}

	c.JSON(http.StatusOK, facture)
}

// UpdateFactureStatut applique une transition de statut ; payee déclenche la
// cascade vers le devis parent.
func (h *FacturesHandler) UpdateFactureStatut(c *gin.Context) {
	userID := c.GetString("user_id")
	factureID := c.Param("id")

	var req struct {
		Statut string `json:"statut" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	facture, err := h.transitions.TransitionFacture(userID, factureID, models.StatutFacture(req.Statut))
	if err != nil {
		repondreErreurTransition(c, err, "Facture non trouvée")
		return
	}

	BroadcastEvenementPipeline(userID, EvenementTransition, gin.H{
		"entite": "facture",
		"id":     facture.ID,
		"statut": facture.Statut,
	})

	c.JSON(http.StatusOK, facture)
}

// EnvoyerFacture émet la demande d'envoi puis passe la facture à envoyee
func (h *FacturesHandler) EnvoyerFacture(c *gin.Context) {
	userID := c.GetString("user_id")
	factureID := c.Param("id")

	var req struct {
		Canal string `json:"canal"`
	}
	_ = c.ShouldBindJSON(&req)
	canal := services.CanalEmail
	if req.Canal != "" {
		canal = services.CanalEnvoi(req.Canal)
	}

	facture, err := h.envois.EnvoyerFacture(c.Request.Context(), userID, factureID, canal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Facture non trouvée"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi de la facture"})
		return
	}

	c.JSON(http.StatusOK, facture)
}

// DeleteFacture supprime une facture non payée et ses lignes
func (h *FacturesHandler) DeleteFacture(c *gin.Context) {
	userID := c.GetString("user_id")
	factureID := c.Param("id")

	var facture models.Facture
	if err := h.db.Where("id = ? AND user_id = ?", factureID, userID).First(&facture).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture non trouvée"})
		return
	}

	if facture.Statut == models.StatutFacturePayee {
		c.JSON(http.StatusConflict, gin.H{"error": "Une facture payée ne peut pas être supprimée"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("facture_id = ?", factureID).Delete(&models.LigneFacture{}).Error; err != nil {
			return err
		}
		return tx.Delete(&facture).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression de la facture"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Facture supprimée"})
}
