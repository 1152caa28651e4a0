package handlers

import (
	"errors"
	"net/http"

	"batiflow/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SignatureHandler porte les routes publiques de signature, accessibles par
// token opaque sans authentification.
type SignatureHandler struct {
	signatures *services.SignatureService
}

func NewSignatureHandler(signatures *services.SignatureService) *SignatureHandler {
	return &SignatureHandler{signatures: signatures}
}

// GetDevisPublic renvoie la projection publique du devis lié au token
func (h *SignatureHandler) GetDevisPublic(c *gin.Context) {
	token := c.Param("token")

	devis, err := h.signatures.FetchByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lien de signature invalide"})
			return
		}
		if errors.Is(err, services.ErrDevisRefuse) {
			c.JSON(http.StatusGone, gin.H{"error": "Ce devis a été refusé et n'est plus consultable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la consultation du devis"})
		return
	}

	c.JSON(http.StatusOK, devis)
}

// SignerDevis dépose la signature du client. Un seul dépôt possible : le
// second renvoie 409.
func (h *SignatureHandler) SignerDevis(c *gin.Context) {
	token := c.Param("token")

	var req services.SignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.AdresseIP = c.ClientIP()

	devis, err := h.signatures.SubmitSignature(token, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lien de signature invalide"})
			return
		}
		if errors.Is(err, services.ErrDejaSigne) {
			c.JSON(http.StatusConflict, gin.H{"error": "Ce devis est déjà signé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du dépôt de la signature"})
		return
	}

	BroadcastEvenementPipeline(devis.UserID, EvenementSignature, gin.H{
		"entite": "devis",
		"id":     devis.ID,
		"statut": devis.Statut,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Devis signé",
		"numero":  devis.Numero,
		"statut":  devis.Statut,
	})
}
