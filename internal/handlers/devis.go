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

// DevisHandler gère les devis
type DevisHandler struct {
	db          *gorm.DB
	devis       *services.DevisService
	transitions *services.TransitionService
	signatures  *services.SignatureService
	envois      *services.EnvoiService
}

func NewDevisHandler(db *gorm.DB, devis *services.DevisService, transitions *services.TransitionService,
	signatures *services.SignatureService, envois *services.EnvoiService) *DevisHandler {
	return &DevisHandler{
		db:          db,
		devis:       devis,
		transitions: transitions,
		signatures:  signatures,
		envois:      envois,
	}
}

// ListDevis liste les devis du tenant
func (h *DevisHandler) ListDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	statut := c.Query("statut")
	clientID := c.Query("client_id")
	dossierID := c.Query("dossier_id")

	var devisList []models.Devis
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

	if err := query.Order("date_creation DESC").Find(&devisList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche des devis"})
		return
	}

	c.JSON(http.StatusOK, devisList)
}

// GetDevis renvoie un devis avec ses lignes
func (h *DevisHandler) GetDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var devis models.Devis
	if err := h.db.Where("id = ? AND user_id = ?", devisID, userID).
		Preload("Lignes").Preload("Client").Preload("Dossier").
		First(&devis).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
		return
	}

	c.JSON(http.StatusOK, devis)
}

// CreateDevis crée un devis avec ses lignes ; montants recalculés côté
// serveur, jamais pris du client.
func (h *DevisHandler) CreateDevis(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Objet     *string             `json:"objet"`
		ClientID  string              `json:"clientId" binding:"required"`
		DossierID *string             `json:"dossierId"`
		Lignes    []models.LigneDevis `json:"lignes"`
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

	devis := models.Devis{
		Objet:     req.Objet,
		Statut:    models.StatutDevisBrouillon,
		ClientID:  req.ClientID,
		DossierID: req.DossierID,
		Lignes:    req.Lignes,
	}

	if err := h.devis.Creer(userID, &devis); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du devis"})
		return
	}

	c.JSON(http.StatusCreated, devis)
}

// UpdateDevis met à jour les champs simples (hors statut et lignes)
func (h *DevisHandler) UpdateDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var req struct {
		Objet  *string `json:"objet"`
		PdfURL *string `json:"pdfUrl"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var devis models.Devis
	if err := h.db.Where("id = ? AND user_id = ?", devisID, userID).First(&devis).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
		return
	}

	updates := make(map[string]interface{})
	if req.Objet != nil {
		updates["objet"] = *req.Objet
	}
	if req.PdfURL != nil {
		updates["pdf_url"] = *req.PdfURL
	}
	updates["mis_a_jour_le"] = time.Now()

	if err := h.db.Model(&devis).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du devis"})
		return
	}

	c.JSON(http.StatusOK, devis)
}

// ReplaceLignes remplace les lignes du devis et recalcule les montants
func (h *DevisHandler) ReplaceLignes(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var req struct {
		Lignes []models.LigneDevis `json:"lignes" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	devis, err := h.devis.RemplacerLignes(userID, devisID, req.Lignes)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour des lignes"})
		return
	}

	c.JSON(http.StatusOK, devis)
}

// UpdateDevisStatut applique une transition de statut
func (h *DevisHandler) UpdateDevisStatut(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var req struct {
		Statut string `json:"statut" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	devis, err := h.transitions.TransitionDevis(userID, devisID, models.StatutDevis(req.Statut))
	if err != nil {
		repondreErreurTransition(c, err, "Devis non trouvé")
		return
	}

	BroadcastEvenementPipeline(userID, EvenementTransition, gin.H{
		"entite": "devis",
		"id":     devis.ID,
		"statut": devis.Statut,
	})

	c.JSON(http.StatusOK, devis)
}

// EnvoyerDevis émet la demande d'envoi puis passe le devis à envoye
func (h *DevisHandler) EnvoyerDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var req struct {
		Canal string `json:"canal"`
	}
	// Canal facultatif, email par défaut.
	_ = c.ShouldBindJSON(&req)
	canal := services.CanalEmail
	if req.Canal != "" {
		canal = services.CanalEnvoi(req.Canal)
	}

	devis, err := h.envois.EnvoyerDevis(c.Request.Context(), userID, devisID, canal)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'envoi du devis"})
		return
	}

	c.JSON(http.StatusOK, devis)
}

// CreateLienSignature garantit un token de signature et renvoie le lien
// public
func (h *DevisHandler) CreateLienSignature(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	token, err := h.signatures.IssueToken(userID, devisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
			return
		}
		if errors.Is(err, services.ErrDejaSigne) {
			c.JSON(http.StatusConflict, gin.H{"error": "Devis déjà signé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la génération du lien"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"url":   fmt.Sprintf("/public/devis/%s", token),
	})
}

// CreateFactureDepuisDevis génère la facture d'un devis
func (h *DevisHandler) CreateFactureDepuisDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	facture, err := h.devis.CreerFactureDepuisDevis(userID, devisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la facture"})
		return
	}

	c.JSON(http.StatusCreated, facture)
}

// DeleteDevis supprime un devis non signé et ses lignes
func (h *DevisHandler) DeleteDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var devis models.Devis
	if err := h.db.Where("id = ? AND user_id = ?", devisID, userID).First(&devis).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Devis non trouvé"})
		return
	}

	if devis.Signe() {
		c.JSON(http.StatusConflict, gin.H{"error": "Un devis signé ne peut pas être supprimé"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("devis_id = ?", devisID).Delete(&models.LigneDevis{}).Error; err != nil {
			return err
		}
		return tx.Delete(&devis).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du devis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Devis supprimé"})
}
