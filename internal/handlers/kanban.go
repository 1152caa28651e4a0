package handlers

import (
	"net/http"

	"batiflow/internal/models"
	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
)

// KanbanHandler expose les tableaux de pipeline et le glisser-déposer
type KanbanHandler struct {
	kanban *services.KanbanService
}

func NewKanbanHandler(kanban *services.KanbanService) *KanbanHandler {
	return &KanbanHandler{kanban: kanban}
}

// GetColonnes renvoie la définition des colonnes des deux pipelines
func (h *KanbanHandler) GetColonnes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"devis":    services.ColonnesDevis,
		"dossiers": services.ColonnesDossier,
	})
}

// GetTableauDevis projette les devis du tenant sur les colonnes
func (h *KanbanHandler) GetTableauDevis(c *gin.Context) {
	userID := c.GetString("user_id")

	colonnes, err := h.kanban.TableauDevis(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du tableau"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"colonnes": colonnes})
}

// GetTableauDossiers projette les dossiers du tenant sur le pipeline
func (h *KanbanHandler) GetTableauDossiers(c *gin.Context) {
	userID := c.GetString("user_id")

	colonnes, err := h.kanban.TableauDossiers(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du tableau"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"colonnes": colonnes})
}

// DeplacerDevis déplace un devis vers une colonne ; la carte atterrit sur le
// premier statut de la colonne cible.
func (h *KanbanHandler) DeplacerDevis(c *gin.Context) {
	userID := c.GetString("user_id")
	devisID := c.Param("id")

	var req struct {
		Colonne string `json:"colonne" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	devis, err := h.kanban.DeplacerDevis(userID, devisID, req.Colonne)
	if err != nil {
		repondreErreurTransition(c, err, "Devis non trouvé")
		return
	}

	BroadcastEvenementPipeline(userID, EvenementKanban, gin.H{
		"entite":  "devis",
		"id":      devis.ID,
		"statut":  devis.Statut,
		"colonne": req.Colonne,
	})

	c.JSON(http.StatusOK, devis)
}

// DeplacerDossier déplace un dossier vers une colonne du pipeline
func (h *KanbanHandler) DeplacerDossier(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	var req struct {
		Colonne string `json:"colonne" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dossier, err := h.kanban.DeplacerDossier(userID, dossierID, req.Colonne)
	if err != nil {
		repondreErreurTransition(c, err, "Dossier non trouvé")
		return
	}

	BroadcastEvenementPipeline(userID, EvenementKanban, gin.H{
		"entite":  "dossier",
		"id":      dossier.ID,
		"statut":  dossier.Statut,
		"colonne": req.Colonne,
	})

	c.JSON(http.StatusOK, dossier)
}

// GetStatuts renvoie la table des statuts avec libellés et couleurs, pour
// que le front n'ait pas à la dupliquer.
func (h *KanbanHandler) GetStatuts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dossiers": models.MetaStatutDossier,
		"devis":    models.MetaStatutDevis,
		"factures": models.MetaStatutFacture,
		"rdvs":     models.MetaStatutRDV,
	})
}
