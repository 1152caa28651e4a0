package services

import (
	"fmt"
	"log"
	"time"

	"batiflow/internal/models"

	"gorm.io/gorm"
)

// TransitionService applique les changements de statut sur les dossiers,
// devis et factures. Les transitions sont libres au sein de l'énumération
// de chaque entité (pas de graphe imposé) ; seuls les effets de bord par
// statut cible sont câblés : dates, journal, et cascade facture → devis.
type TransitionService struct {
	db *gorm.DB
}

func NewTransitionService(db *gorm.DB) *TransitionService {
	return &TransitionService{db: db}
}

// journaliser ajoute une entrée d'audit. L'échec d'écriture du journal
// n'interrompt pas la transition : c'est une trace, pas une donnée de
// cohérence.
func journaliser(tx *gorm.DB, tenantID, dossierID string, typ models.TypeJournal, titre, contenu string) {
	entree := models.JournalEntry{
		DossierID: dossierID,
		Type:      typ,
		Titre:     titre,
		Contenu:   contenu,
		Auteur:    models.AuteurSysteme,
		UserID:    tenantID,
	}
	if err := tx.Create(&entree).Error; err != nil {
		log.Printf("[JOURNAL] échec d'écriture (%s / %s): %v", dossierID, titre, err)
	}
}

// TransitionDossier passe un dossier au statut cible.
func (s *TransitionService) TransitionDossier(tenantID, dossierID string, cible models.StatutDossier) (*models.Dossier, error) {
	if !cible.Valide() {
		return nil, ErrStatutInvalide
	}

	var dossier models.Dossier
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", dossierID, tenantID).First(&dossier).Error; err != nil {
			return err
		}

		if err := tx.Model(&dossier).Updates(map[string]interface{}{
			"statut":        cible,
			"mis_a_jour_le": time.Now(),
		}).Error; err != nil {
			return err
		}

		journaliser(tx, tenantID, dossier.ID, models.TypeJournalStatut,
			"Statut mis à jour",
			fmt.Sprintf("Dossier %s passé à « %s »", dossier.Numero, cible.Libelle()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	dossier.Statut = cible
	return &dossier, nil
}

// TransitionDevis passe un devis au statut cible. envoye et accepte posent
// leur date respective si elle est absente.
func (s *TransitionService) TransitionDevis(tenantID, devisID string, cible models.StatutDevis) (*models.Devis, error) {
	if !cible.Valide() {
		return nil, ErrStatutInvalide
	}

	var devis models.Devis
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", devisID, tenantID).First(&devis).Error; err != nil {
			return err
		}

		maintenant := time.Now()
		updates := map[string]interface{}{
			"statut":        cible,
			"mis_a_jour_le": maintenant,
		}
		if cible == models.StatutDevisEnvoye && devis.DateEnvoi == nil {
			updates["date_envoi"] = maintenant
		}
		if cible == models.StatutDevisAccepte && devis.DateAcceptation == nil {
			updates["date_acceptation"] = maintenant
		}

		if err := tx.Model(&devis).Updates(updates).Error; err != nil {
			return err
		}

		if devis.DossierID != nil {
			titre, contenu := libelleTransitionDevis(&devis, cible)
			journaliser(tx, tenantID, *devis.DossierID, models.TypeJournalDevis, titre, contenu)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("id = ?", devisID).First(&devis).Error; err != nil {
		return nil, err
	}
	return &devis, nil
}

func libelleTransitionDevis(devis *models.Devis, cible models.StatutDevis) (string, string) {
	switch cible {
	case models.StatutDevisEnvoye:
		return "Devis envoyé", fmt.Sprintf("Devis %s envoyé au client", devis.Numero)
	case models.StatutDevisAccepte:
		return "Devis accepté", fmt.Sprintf("Devis %s accepté par le client", devis.Numero)
	case models.StatutDevisRefuse:
		return "Devis refusé", fmt.Sprintf("Devis %s refusé par le client", devis.Numero)
	case models.StatutDevisPaye:
		return "Devis payé", fmt.Sprintf("Devis %s intégralement payé", devis.Numero)
	default:
		return "Devis mis à jour", fmt.Sprintf("Devis %s passé à « %s »", devis.Numero, cible.Libelle())
	}
}

// TransitionFacture passe une facture au statut cible. payee pose la date
// de paiement puis cascade : si toutes les factures rattachées au même devis
// sont payées, le devis passe à paye. La vérification et la mise à jour du
// devis se font dans la même transaction que le marquage de la facture, pour
// qu'un marquage concurrent de deux factures sœurs converge toujours.
func (s *TransitionService) TransitionFacture(tenantID, factureID string, cible models.StatutFacture) (*models.Facture, error) {
	if !cible.Valide() {
		return nil, ErrStatutInvalide
	}

	var facture models.Facture
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", factureID, tenantID).First(&facture).Error; err != nil {
			return err
		}

		maintenant := time.Now()
		updates := map[string]interface{}{
			"statut":        cible,
			"mis_a_jour_le": maintenant,
		}
		if cible == models.StatutFacturePayee {
			updates["date_paiement"] = maintenant
		}

		if err := tx.Model(&facture).Updates(updates).Error; err != nil {
			return err
		}

		if facture.DossierID != nil {
			titre, contenu := libelleTransitionFacture(&facture, cible)
			journaliser(tx, tenantID, *facture.DossierID, typeJournalFacture(cible), titre, contenu)
		}

		if cible == models.StatutFacturePayee && facture.DevisID != nil {
			if err := s.cascaderPaiementDevis(tx, tenantID, &facture); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("id = ?", factureID).First(&facture).Error; err != nil {
		return nil, err
	}
	return &facture, nil
}

// cascaderPaiementDevis relit toutes les factures du devis parent ; si plus
// aucune n'est impayée, le devis passe à paye. Ré-évaluée à chaque paiement,
// la mise à jour est idempotente.
func (s *TransitionService) cascaderPaiementDevis(tx *gorm.DB, tenantID string, facture *models.Facture) error {
	var impayees int64
	if err := tx.Model(&models.Facture{}).
		Where("devis_id = ? AND user_id = ? AND statut <> ?", *facture.DevisID, tenantID, models.StatutFacturePayee).
		Count(&impayees).Error; err != nil {
		return err
	}
	if impayees > 0 {
		return nil
	}

	var devis models.Devis
	if err := tx.Where("id = ? AND user_id = ?", *facture.DevisID, tenantID).First(&devis).Error; err != nil {
		return err
	}
	if devis.Statut == models.StatutDevisPaye {
		return nil
	}

	if err := tx.Model(&devis).Updates(map[string]interface{}{
		"statut":        models.StatutDevisPaye,
		"mis_a_jour_le": time.Now(),
	}).Error; err != nil {
		return err
	}

	if devis.DossierID != nil {
		journaliser(tx, tenantID, *devis.DossierID, models.TypeJournalPaiement,
			"Devis payé", fmt.Sprintf("Devis %s intégralement payé", devis.Numero))
	}
	return nil
}

func libelleTransitionFacture(facture *models.Facture, cible models.StatutFacture) (string, string) {
	switch cible {
	case models.StatutFactureEnvoyee:
		return "Facture envoyée", fmt.Sprintf("Facture %s envoyée au client", facture.Numero)
	case models.StatutFacturePayee:
		return "Paiement reçu", fmt.Sprintf("Facture %s payée", facture.Numero)
	case models.StatutFactureEnRetard:
		return "Facture en retard", fmt.Sprintf("Facture %s échue sans paiement", facture.Numero)
	default:
		return "Facture mise à jour", fmt.Sprintf("Facture %s passée à « %s »", facture.Numero, cible.Libelle())
	}
}

func typeJournalFacture(cible models.StatutFacture) models.TypeJournal {
	if cible == models.StatutFacturePayee {
		return models.TypeJournalPaiement
	}
	return models.TypeJournalFacture
}
