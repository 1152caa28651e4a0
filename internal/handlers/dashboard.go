package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"batiflow/internal/models"
	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DashboardHandler agrège les indicateurs d'accueil. Le résultat est mis en
// cache Redis 60 s par tenant quand Redis est configuré.
type DashboardHandler struct {
	db      *gorm.DB
	redis   *redis.Client
	alertes *services.AlerteService
}

func NewDashboardHandler(db *gorm.DB, redisClient *redis.Client, alertes *services.AlerteService) *DashboardHandler {
	return &DashboardHandler{db: db, redis: redisClient, alertes: alertes}
}

type statsDashboard struct {
	DossiersActifs   int64   `json:"dossiersActifs"`
	DossiersSignes   int64   `json:"dossiersSignes"`
	DevisEnCours     int64   `json:"devisEnCours"`
	DevisEnAttente   float64 `json:"devisEnAttente"`
	CAEncaisse       float64 `json:"caEncaisse"`
	FacturesImpayees float64 `json:"facturesImpayees"`
	RDVSemaine       int64   `json:"rdvSemaine"`
	AlertesUrgentes  int     `json:"alertesUrgentes"`
}

// GetDashboard renvoie les indicateurs du tenant
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := c.Request.Context()
	cle := fmt.Sprintf("dashboard:%s", userID)

	if h.redis != nil {
		if brut, err := h.redis.Get(ctx, cle).Result(); err == nil {
			var stats statsDashboard
			if json.Unmarshal([]byte(brut), &stats) == nil {
				c.JSON(http.StatusOK, stats)
				return
			}
		}
	}

	stats, err := h.calculerStats(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du calcul des indicateurs"})
		return
	}

	if h.redis != nil {
		if brut, err := json.Marshal(stats); err == nil {
			h.redis.Set(ctx, cle, brut, 60*time.Second)
		}
	}

	c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) calculerStats(ctx context.Context, userID string) (*statsDashboard, error) {
	maintenant := time.Now()
	stats := &statsDashboard{}

	if err := h.db.Model(&models.Dossier{}).
		Where("user_id = ? AND statut NOT IN ?", userID,
			[]models.StatutDossier{models.StatutDossierPerdu, models.StatutDossierAnnule}).
		Count(&stats.DossiersActifs).Error; err != nil {
		return nil, err
	}
	if err := h.db.Model(&models.Dossier{}).
		Where("user_id = ? AND statut = ?", userID, models.StatutDossierSigne).
		Count(&stats.DossiersSignes).Error; err != nil {
		return nil, err
	}

	if err := h.db.Model(&models.Devis{}).
		Where("user_id = ? AND statut NOT IN ?", userID,
			[]models.StatutDevis{models.StatutDevisPaye, models.StatutDevisRefuse, models.StatutDevisExpire}).
		Count(&stats.DevisEnCours).Error; err != nil {
		return nil, err
	}
	// COALESCE : SUM renvoie NULL sur un ensemble vide.
	if err := h.db.Model(&models.Devis{}).
		Where("user_id = ? AND statut = ?", userID, models.StatutDevisEnvoye).
		Select("COALESCE(SUM(montant_ttc), 0)").Scan(&stats.DevisEnAttente).Error; err != nil {
		return nil, err
	}

	if err := h.db.Model(&models.Facture{}).
		Where("user_id = ? AND statut = ?", userID, models.StatutFacturePayee).
		Select("COALESCE(SUM(montant_ttc), 0)").Scan(&stats.CAEncaisse).Error; err != nil {
		return nil, err
	}
	if err := h.db.Model(&models.Facture{}).
		Where("user_id = ? AND statut IN ?", userID,
			[]models.StatutFacture{models.StatutFactureEnvoyee, models.StatutFactureEnRetard}).
		Select("COALESCE(SUM(montant_ttc), 0)").Scan(&stats.FacturesImpayees).Error; err != nil {
		return nil, err
	}

	if err := h.db.Model(&models.RDV{}).
		Where("user_id = ? AND date_heure BETWEEN ? AND ? AND statut NOT IN ?",
			userID, maintenant, maintenant.AddDate(0, 0, 7),
			[]models.StatutRDV{models.StatutRDVAnnule, models.StatutRDVRealise}).
		Count(&stats.RDVSemaine).Error; err != nil {
		return nil, err
	}

	resultat, err := h.alertes.PourTenant(userID, maintenant)
	if err != nil {
		return nil, err
	}
	for _, alerte := range resultat.Alertes {
		if alerte.Urgence == services.UrgenceUrgente {
			stats.AlertesUrgentes++
		}
	}

	return stats, nil
}
