package handlers

import (
	"net/http"
	"time"

	"batiflow/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClientsHandler gère les clients
type ClientsHandler struct {
	db *gorm.DB
}

func NewClientsHandler(db *gorm.DB) *ClientsHandler {
	return &ClientsHandler{db: db}
}

// ListClients liste les clients du tenant
func (h *ClientsHandler) ListClients(c *gin.Context) {
	userID := c.GetString("user_id")
	recherche := c.Query("q")

	var clients []models.Client
	query := h.db.Where("user_id = ?", userID)
	if recherche != "" {
		motif := "%" + recherche + "%"
		query = query.Where("nom ILIKE ? OR entreprise ILIKE ? OR email ILIKE ?", motif, motif, motif)
	}

	if err := query.Order("nom ASC").Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche des clients"})
		return
	}

	c.JSON(http.StatusOK, clients)
}

// GetClient renvoie un client avec ses dossiers
func (h *ClientsHandler) GetClient(c *gin.Context) {
	userID := c.GetString("user_id")
	clientID := c.Param("id")

	var client models.Client
	if err := h.db.Where("id = ? AND user_id = ?", clientID, userID).
		Preload("Dossiers").Preload("Devis").Preload("Factures").
		First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client non trouvé"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// CreateClient crée un client
func (h *ClientsHandler) CreateClient(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Nom        string  `json:"nom" binding:"required"`
		Prenom     *string `json:"prenom"`
		Email      *string `json:"email"`
		Telephone  *string `json:"telephone"`
		Entreprise *string `json:"entreprise"`
		Adresse    *string `json:"adresse"`
		CodePostal *string `json:"codePostal"`
		Ville      *string `json:"ville"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := models.Client{
		Nom:        req.Nom,
		Prenom:     req.Prenom,
		Email:      req.Email,
		Telephone:  req.Telephone,
		Entreprise: req.Entreprise,
		Adresse:    req.Adresse,
		CodePostal: req.CodePostal,
		Ville:      req.Ville,
		UserID:     userID,
	}

	if err := h.db.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du client"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

// UpdateClient met à jour les champs fournis
func (h *ClientsHandler) UpdateClient(c *gin.Context) {
	userID := c.GetString("user_id")
	clientID := c.Param("id")

	var req struct {
		Nom        *string `json:"nom"`
		Prenom     *string `json:"prenom"`
		Email      *string `json:"email"`
		Telephone  *string `json:"telephone"`
		Entreprise *string `json:"entreprise"`
		Adresse    *string `json:"adresse"`
		CodePostal *string `json:"codePostal"`
		Ville      *string `json:"ville"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var client models.Client
	if err := h.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client non trouvé"})
		return
	}

	updates := make(map[string]interface{})
	if req.Nom != nil {
		updates["nom"] = *req.Nom
	}
	if req.Prenom != nil {
		updates["prenom"] = *req.Prenom
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Telephone != nil {
		updates["telephone"] = *req.Telephone
	}
	if req.Entreprise != nil {
		updates["entreprise"] = *req.Entreprise
	}
	if req.Adresse != nil {
		updates["adresse"] = *req.Adresse
	}
	if req.CodePostal != nil {
		updates["code_postal"] = *req.CodePostal
	}
	if req.Ville != nil {
		updates["ville"] = *req.Ville
	}
	updates["mis_a_jour_le"] = time.Now()

	if err := h.db.Model(&client).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du client"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient supprime un client et tout ce qui s'y rattache. Seule voie
// de suppression en cascade : un dossier référencé ne se supprime jamais
// seul.
func (h *ClientsHandler) DeleteClient(c *gin.Context) {
	userID := c.GetString("user_id")
	clientID := c.Param("id")

	var client models.Client
	if err := h.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client non trouvé"})
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var dossiers []models.Dossier
		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Find(&dossiers).Error; err != nil {
			return err
		}
		for _, dossier := range dossiers {
			if err := tx.Where("dossier_id = ?", dossier.ID).Delete(&models.JournalEntry{}).Error; err != nil {
				return err
			}
		}

		var devisList []models.Devis
		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Find(&devisList).Error; err != nil {
			return err
		}
		for _, devis := range devisList {
			if err := tx.Where("devis_id = ?", devis.ID).Delete(&models.LigneDevis{}).Error; err != nil {
				return err
			}
		}

		var factures []models.Facture
		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Find(&factures).Error; err != nil {
			return err
		}
		for _, facture := range factures {
			if err := tx.Where("facture_id = ?", facture.ID).Delete(&models.LigneFacture{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Delete(&models.RDV{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Delete(&models.Facture{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Delete(&models.Devis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ? AND user_id = ?", clientID, userID).Delete(&models.Dossier{}).Error; err != nil {
			return err
		}
		return tx.Delete(&client).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du client"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client supprimé"})
}
