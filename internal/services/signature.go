package services

import (
	"fmt"
	"time"

	"batiflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SignatureService gère le cycle de signature électronique d'un devis :
// émission d'un token opaque à usage unique, consultation publique, et
// dépôt d'exactement une signature.
type SignatureService struct {
	db *gorm.DB
}

func NewSignatureService(db *gorm.DB) *SignatureService {
	return &SignatureService{db: db}
}

// DevisPublic est la projection en lecture seule exposée sur le lien de
// signature, sans authentification.
type DevisPublic struct {
	Numero          string              `json:"numero"`
	Objet           *string             `json:"objet"`
	Statut          models.StatutDevis  `json:"statut"`
	MontantHT       float64             `json:"montantHt"`
	MontantTVA      float64             `json:"montantTva"`
	MontantTTC      float64             `json:"montantTtc"`
	DateCreation    time.Time           `json:"dateCreation"`
	DateEnvoi       *time.Time          `json:"dateEnvoi"`
	Client          string              `json:"client"`
	Entreprise      *string             `json:"entreprise"`
	Lignes          []models.LigneDevis `json:"lignes"`
	Signe           bool                `json:"signe"`
	SignatureNom    *string             `json:"signatureNom,omitempty"`
	SignatureDate   *time.Time          `json:"signatureDate,omitempty"`
	PdfURL          *string             `json:"pdfUrl,omitempty"`
}

// SignatureRequest est la charge utile du dépôt de signature.
type SignatureRequest struct {
	Image     string    `json:"signature" binding:"required"`
	Nom       string    `json:"nom" binding:"required"`
	Email     string    `json:"email" binding:"required,email"`
	SigneLe   time.Time `json:"signeLe"`
	AdresseIP string    `json:"-"`
}

// IssueToken garantit un token de signature sur le devis. Idempotent tant
// que le devis n'est pas signé ; un devis déjà signé ne reçoit pas de
// nouveau token.
func (s *SignatureService) IssueToken(tenantID, devisID string) (string, error) {
	var devis models.Devis
	if err := s.db.Where("id = ? AND user_id = ?", devisID, tenantID).First(&devis).Error; err != nil {
		return "", err
	}

	if devis.Signe() {
		return "", ErrDejaSigne
	}
	if devis.SignatureToken != nil {
		return *devis.SignatureToken, nil
	}

	token := uuid.New().String()
	if err := s.db.Model(&devis).Update("signature_token", token).Error; err != nil {
		return "", err
	}
	return token, nil
}

// FetchByToken renvoie la projection publique du devis associé au token.
// Un devis refusé renvoie ErrDevisRefuse plutôt que ses données.
func (s *SignatureService) FetchByToken(token string) (*DevisPublic, error) {
	var devis models.Devis
	if err := s.db.Preload("Lignes").Preload("Client").
		Where("signature_token = ?", token).First(&devis).Error; err != nil {
		return nil, err
	}

	if devis.Statut == models.StatutDevisRefuse {
		return nil, ErrDevisRefuse
	}

	nomClient := devis.Client.Nom
	if devis.Client.Prenom != nil {
		nomClient = *devis.Client.Prenom + " " + nomClient
	}

	return &DevisPublic{
		Numero:        devis.Numero,
		Objet:         devis.Objet,
		Statut:        devis.Statut,
		MontantHT:     devis.MontantHT,
		MontantTVA:    devis.MontantTVA,
		MontantTTC:    devis.MontantTTC,
		DateCreation:  devis.DateCreation,
		DateEnvoi:     devis.DateEnvoi,
		Client:        nomClient,
		Entreprise:    devis.Client.Entreprise,
		Lignes:        devis.Lignes,
		Signe:         devis.Signe(),
		SignatureNom:  devis.SignatureNom,
		SignatureDate: devis.SignatureDate,
		PdfURL:        devis.PdfURL,
	}, nil
}

// SubmitSignature dépose la signature. Check-and-set atomique : l'UPDATE est
// conditionné à signature_client IS NULL et départagé sur le nombre de lignes
// affectées, pour que deux dépôts concurrents donnent exactement un succès
// et un ErrDejaSigne.
func (s *SignatureService) SubmitSignature(token string, req SignatureRequest) (*models.Devis, error) {
	signeLe := req.SigneLe
	if signeLe.IsZero() {
		signeLe = time.Now()
	}

	var devis models.Devis
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Devis{}).
			Where("signature_token = ? AND signature_client IS NULL", token).
			Updates(map[string]interface{}{
				"signature_client": req.Image,
				"signature_nom":    req.Nom,
				"signature_email":  req.Email,
				"signature_date":   signeLe,
				"signature_ip":     req.AdresseIP,
				"statut":           models.StatutDevisAccepte,
				"date_acceptation": signeLe,
				"mis_a_jour_le":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			// Départager token inconnu et devis déjà signé.
			var existant models.Devis
			if err := tx.Where("signature_token = ?", token).First(&existant).Error; err != nil {
				return err
			}
			return ErrDejaSigne
		}

		if err := tx.Where("signature_token = ?", token).First(&devis).Error; err != nil {
			return err
		}

		if devis.DossierID != nil {
			journaliser(tx, devis.UserID, *devis.DossierID, models.TypeJournalDevis,
				"Devis signé", fmt.Sprintf("Devis %s signé par %s", devis.Numero, req.Nom))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &devis, nil
}
