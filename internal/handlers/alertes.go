package handlers

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AlertesHandler expose les alertes et relances dérivées. Aucun état : tout
// est recalculé à chaque requête.
type AlertesHandler struct {
	alertes *services.AlerteService
}

func NewAlertesHandler(alertes *services.AlerteService) *AlertesHandler {
	return &AlertesHandler{alertes: alertes}
}

// ListAlertes renvoie les alertes de tous les dossiers actifs du tenant,
// triées par urgence décroissante.
func (h *AlertesHandler) ListAlertes(c *gin.Context) {
	userID := c.GetString("user_id")

	resultat, err := h.alertes.PourTenant(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul des alertes"})
		return
	}

	trierAlertes(resultat)
	c.JSON(http.StatusOK, resultat)
}

// ListAlertesDossier renvoie les alertes d'un seul dossier
func (h *AlertesHandler) ListAlertesDossier(c *gin.Context) {
	userID := c.GetString("user_id")
	dossierID := c.Param("id")

	resultat, err := h.alertes.PourDossier(userID, dossierID, time.Now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dossier non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul des alertes"})
		return
	}

	trierAlertes(resultat)
	c.JSON(http.StatusOK, resultat)
}

// trierAlertes ordonne les alertes par urgence puis les relances par
// échéance. Le moteur ne trie pas, la présentation le fait.
func trierAlertes(resultat *services.ResultatAlertes) {
	sort.SliceStable(resultat.Alertes, func(i, j int) bool {
		return services.RangUrgence(resultat.Alertes[i].Urgence) < services.RangUrgence(resultat.Alertes[j].Urgence)
	})
	sort.SliceStable(resultat.Relances, func(i, j int) bool {
		return resultat.Relances[i].Echeance.Before(resultat.Relances[j].Echeance)
	})
}
