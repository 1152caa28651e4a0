package handlers

import (
	"fmt"
	"net/http"
	"time"

	"batiflow/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RDVHandler gère les rendez-vous
type RDVHandler struct {
	db *gorm.DB
}

func NewRDVHandler(db *gorm.DB) *RDVHandler {
	return &RDVHandler{db: db}
}

// ListRDVs liste les RDV du tenant, du plus proche au plus lointain
func (h *RDVHandler) ListRDVs(c *gin.Context) {
	userID := c.GetString("user_id")
	statut := c.Query("statut")
	dossierID := c.Query("dossier_id")

	var rdvs []models.RDV
	query := h.db.Where("user_id = ?", userID).Preload("Client")

	if statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if dossierID != "" {
		query = query.Where("dossier_id = ?", dossierID)
	}

	if err := query.Order("date_heure ASC").Find(&rdvs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche des RDV"})
		return
	}

	c.JSON(http.StatusOK, rdvs)
}

// ListRDVsProchains renvoie les RDV confirmés des prochaines 24 heures
func (h *RDVHandler) ListRDVsProchains(c *gin.Context) {
	userID := c.GetString("user_id")
	maintenant := time.Now()

	var rdvs []models.RDV
	if err := h.db.Where("user_id = ? AND statut = ? AND date_heure BETWEEN ? AND ?",
		userID, models.StatutRDVConfirme, maintenant, maintenant.Add(24*time.Hour)).
		Preload("Client").
		Order("date_heure ASC").
		Find(&rdvs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche des RDV"})
		return
	}

	c.JSON(http.StatusOK, rdvs)
}

// GetRDV renvoie un RDV
func (h *RDVHandler) GetRDV(c *gin.Context) {
	userID := c.GetString("user_id")
	rdvID := c.Param("id")

	var rdv models.RDV
	if err := h.db.Where("id = ? AND user_id = ?", rdvID, userID).
		Preload("Client").Preload("Dossier").
		First(&rdv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "RDV non trouvé"})
		return
	}

	c.JSON(http.StatusOK, rdv)
}

// CreateRDV planifie un RDV ; rattaché à un dossier, il y laisse une trace
// au journal.
func (h *RDVHandler) CreateRDV(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Titre        string    `json:"titre" binding:"required"`
		TypeRDV      *string   `json:"typeRdv"`
		DateHeure    time.Time `json:"dateHeure" binding:"required"`
		DureeMinutes *int      `json:"dureeMinutes"`
		Lieu         *string   `json:"lieu"`
		Notes        *string   `json:"notes"`
		DossierID    *string   `json:"dossierId"`
		ClientID     *string   `json:"clientId"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.DossierID != nil {
		var dossier models.Dossier
		if err := h.db.Where("id = ? AND user_id = ?", *req.DossierID, userID).First(&dossier).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
			return
		}
	}
	if req.ClientID != nil {
		var client models.Client
		if err := h.db.Where("id = ? AND user_id = ?", *req.ClientID, userID).First(&client).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Client non trouvé"})
			return
		}
	}

	rdv := models.RDV{
		Titre:     req.Titre,
		TypeRDV:   models.TypeRDVVisiteTechnique,
		DateHeure: req.DateHeure,
		Statut:    models.StatutRDVPlanifie,
		Lieu:      req.Lieu,
		Notes:     req.Notes,
		DossierID: req.DossierID,
		ClientID:  req.ClientID,
		UserID:    userID,
	}
	if req.TypeRDV != nil {
		rdv.TypeRDV = models.TypeRDV(*req.TypeRDV)
	}
	rdv.DureeMinutes = 60
	if req.DureeMinutes != nil {
		rdv.DureeMinutes = *req.DureeMinutes
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rdv).Error; err != nil {
			return err
		}
		if rdv.DossierID != nil {
			entree := models.JournalEntry{
				DossierID: *rdv.DossierID,
				Type:      models.TypeJournalRDVCree,
				Titre:     "RDV planifié",
				Contenu:   fmt.Sprintf("%s le %s", rdv.Titre, rdv.DateHeure.Format("02/01/2006 15:04")),
				Auteur:    models.AuteurSysteme,
				UserID:    userID,
			}
			return tx.Create(&entree).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du RDV"})
		return
	}

	c.JSON(http.StatusCreated, rdv)
}

// UpdateRDV met à jour les champs fournis, statut compris
func (h *RDVHandler) UpdateRDV(c *gin.Context) {
	userID := c.GetString("user_id")
	rdvID := c.Param("id")

	var req struct {
		Titre        *string    `json:"titre"`
		TypeRDV      *string    `json:"typeRdv"`
		DateHeure    *time.Time `json:"dateHeure"`
		DureeMinutes *int       `json:"dureeMinutes"`
		Statut       *string    `json:"statut"`
		Lieu         *string    `json:"lieu"`
		Notes        *string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var rdv models.RDV
	if err := h.db.Where("id = ? AND user_id = ?", rdvID, userID).First(&rdv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "RDV non trouvé"})
		return
	}

	if req.Statut != nil && !models.StatutRDV(*req.Statut).Valide() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	updates := make(map[string]interface{})
	if req.Titre != nil {
		updates["titre"] = *req.Titre
	}
	if req.TypeRDV != nil {
		updates["type_rdv"] = *req.TypeRDV
	}
	if req.DateHeure != nil {
		updates["date_heure"] = *req.DateHeure
	}
	if req.DureeMinutes != nil {
		updates["duree_minutes"] = *req.DureeMinutes
	}
	if req.Statut != nil {
		updates["statut"] = *req.Statut
	}
	if req.Lieu != nil {
		updates["lieu"] = *req.Lieu
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	updates["mis_a_jour_le"] = time.Now()

	if err := h.db.Model(&rdv).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du RDV"})
		return
	}

	c.JSON(http.StatusOK, rdv)
}

// DeleteRDV supprime un RDV
func (h *RDVHandler) DeleteRDV(c *gin.Context) {
	userID := c.GetString("user_id")
	rdvID := c.Param("id")

	var rdv models.RDV
	if err := h.db.Where("id = ? AND user_id = ?", rdvID, userID).First(&rdv).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "RDV non trouvé"})
		return
	}

	if err := h.db.Delete(&rdv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du RDV"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "RDV supprimé"})
}
