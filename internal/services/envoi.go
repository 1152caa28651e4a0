package services

import (
	"context"
	"fmt"
	"log"

	"batiflow/internal/config"
	"batiflow/internal/models"

	"gorm.io/gorm"
)

// CanalEnvoi identifie le collaborateur de livraison sollicité.
type CanalEnvoi string

const (
	CanalEmail    CanalEnvoi = "email"
	CanalWhatsApp CanalEnvoi = "whatsapp"
)

// DemandeEnvoi est le contrat étroit passé au transporteur : un destinataire
// et une référence de document, rien de plus. Le rendu PDF et la mécanique
// d'acheminement restent à l'extérieur.
type DemandeEnvoi struct {
	Canal        CanalEnvoi
	Destinataire string
	Objet        string
	Message      string
	PdfURL       string
}

// Transporteur achemine une demande d'envoi. La politique de retry
// appartient à l'implémentation.
type Transporteur interface {
	Envoyer(ctx context.Context, demande DemandeEnvoi) error
}

// transporteurJournal trace les envois sans les acheminer. Utilisé par
// défaut tant qu'aucun fournisseur n'est configuré, et dans les tests.
type transporteurJournal struct{}

func (transporteurJournal) Envoyer(ctx context.Context, demande DemandeEnvoi) error {
	log.Printf("[ENVOI] %s -> %s : %s", demande.Canal, demande.Destinataire, demande.Objet)
	return nil
}

// EnvoiService émet les demandes d'envoi de documents et applique la
// transition envoye(e) correspondante.
type EnvoiService struct {
	db           *gorm.DB
	transitions  *TransitionService
	transporteur Transporteur
}

func NewEnvoiService(db *gorm.DB, transitions *TransitionService, cfg *config.Config) *EnvoiService {
	return &EnvoiService{
		db:           db,
		transitions:  transitions,
		transporteur: transporteurJournal{},
	}
}

// AvecTransporteur remplace le transporteur par défaut.
func (s *EnvoiService) AvecTransporteur(t Transporteur) *EnvoiService {
	s.transporteur = t
	return s
}

// EnvoyerDevis émet la demande d'envoi du devis puis le passe à envoye.
// L'échec du transporteur laisse le devis intact.
func (s *EnvoiService) EnvoyerDevis(ctx context.Context, tenantID, devisID string, canal CanalEnvoi) (*models.Devis, error) {
	var devis models.Devis
	if err := s.db.Preload("Client").Where("id = ? AND user_id = ?", devisID, tenantID).First(&devis).Error; err != nil {
		return nil, err
	}

	demande := DemandeEnvoi{
		Canal:        canal,
		Destinataire: destinataireClient(&devis.Client, canal),
		Objet:        fmt.Sprintf("Devis %s", devis.Numero),
		Message:      fmt.Sprintf("Votre devis %s est disponible", devis.Numero),
	}
	if devis.PdfURL != nil {
		demande.PdfURL = *devis.PdfURL
	}
	if err := s.transporteur.Envoyer(ctx, demande); err != nil {
		return nil, err
	}

	return s.transitions.TransitionDevis(tenantID, devisID, models.StatutDevisEnvoye)
}

// EnvoyerFacture émet la demande d'envoi de la facture puis la passe à
// envoyee.
func (s *EnvoiService) EnvoyerFacture(ctx context.Context, tenantID, factureID string, canal CanalEnvoi) (*models.Facture, error) {
	var facture models.Facture
	if err := s.db.Preload("Client").Where("id = ? AND user_id = ?", factureID, tenantID).First(&facture).Error; err != nil {
		return nil, err
	}

	demande := DemandeEnvoi{
		Canal:        canal,
		Destinataire: destinataireClient(&facture.Client, canal),
		Objet:        fmt.Sprintf("Facture %s", facture.Numero),
		Message:      fmt.Sprintf("Votre facture %s est disponible", facture.Numero),
	}
	if facture.PdfURL != nil {
		demande.PdfURL = *facture.PdfURL
	}
	if err := s.transporteur.Envoyer(ctx, demande); err != nil {
		return nil, err
	}

	return s.transitions.TransitionFacture(tenantID, factureID, models.StatutFactureEnvoyee)
}

func destinataireClient(client *models.Client, canal CanalEnvoi) string {
	if canal == CanalWhatsApp && client.Telephone != nil {
		return *client.Telephone
	}
	if client.Email != nil {
		return *client.Email
	}
	return ""
}
