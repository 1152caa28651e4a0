package handlers

import (
	"net/http"

	"batiflow/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// JournalHandler expose l'historique d'un dossier. Le journal est en
// append-only : aucune route de modification ni de suppression d'entrée.
type JournalHandler struct {
	db *gorm.DB
}

func NewJournalHandler(db *gorm.DB) *JournalHandler {
	return &JournalHandler{db: db}
}

// ListJournal renvoie les entrées d'un dossier, de la plus récente à la
// plus ancienne.
func (h *JournalHandler) ListJournal(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	var dossier models.Dossier
	if err := h.db.Where("id = ? AND user_id = ?", dossierID, userID).First(&dossier).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
		return
	}

	var entrees []models.JournalEntry
	if err := h.db.Where("dossier_id = ? AND user_id = ?", dossierID, userID).
		Order("cree_le DESC").Find(&entrees).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la lecture du journal"})
		return
	}

	c.JSON(http.StatusOK, entrees)
}

// CreateNote ajoute une note manuelle au journal du dossier
func (h *JournalHandler) CreateNote(c *gin.Context) {
	userID := c.GetString("user_id")
	userEmail := c.GetString("user_email")
	dossierID := c.Param("id")

	var req struct {
		Titre   string `json:"titre" binding:"required"`
		Contenu string `json:"contenu"`
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

	auteur := userEmail
	if auteur == "" {
		auteur = userID
	}

	entree := models.JournalEntry{
		DossierID: dossierID,
		Type:      models.TypeJournalNote,
		Titre:     req.Titre,
		Contenu:   req.Contenu,
		Auteur:    auteur,
		UserID:    userID,
	}

	if err := h.db.Create(&entree).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'ajout de la note"})
		return
	}

	c.JSON(http.StatusCreated, entree)
}
