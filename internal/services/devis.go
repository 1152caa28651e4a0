package services

import (
	"fmt"
	"time"

	"batiflow/internal/models"

	"gorm.io/gorm"
)

// DevisService porte le calcul des montants et la gestion des lignes.
type DevisService struct {
	db *gorm.DB
}

func NewDevisService(db *gorm.DB) *DevisService {
	return &DevisService{db: db}
}

// CalculerTotaux calcule HT, TVA et TTC à partir des lignes et renseigne
// les totaux par ligne. Invariant : montant_ht = Σ quantité × PU HT,
// montant_tva = Σ quantité × PU HT × tva/100.
func CalculerTotaux(lignes []models.LigneDevis) (ht, tva, ttc float64) {
	for i := range lignes {
		ligne := &lignes[i]
		ligne.TotalHT = ligne.Quantite * ligne.PrixUnitaireHT
		ligne.TotalTTC = ligne.TotalHT * (1 + ligne.TVAPct/100)
		ht += ligne.TotalHT
		tva += ligne.TotalHT * ligne.TVAPct / 100
	}
	ttc = ht + tva
	return ht, tva, ttc
}

// CalculerTotauxFacture fait le même calcul pour les lignes de facture.
func CalculerTotauxFacture(lignes []models.LigneFacture) (ht, tva, ttc float64) {
	for i := range lignes {
		ligne := &lignes[i]
		ligne.TotalHT = ligne.Quantite * ligne.PrixUnitaireHT
		ligne.TotalTTC = ligne.TotalHT * (1 + ligne.TVAPct/100)
		ht += ligne.TotalHT
		tva += ligne.TotalHT * ligne.TVAPct / 100
	}
	ttc = ht + tva
	return ht, tva, ttc
}

// Creer crée un devis avec ses lignes, totaux recalculés, et numéro attribué
// si absent.
func (s *DevisService) Creer(tenantID string, devis *models.Devis) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		devis.UserID = tenantID
		if devis.Numero == "" {
			numero, err := prochainNumero(tx, tenantID, "DEV", &models.Devis{})
			if err != nil {
				return err
			}
			devis.Numero = numero
		}
		if devis.DateCreation.IsZero() {
			devis.DateCreation = time.Now()
		}
		devis.MontantHT, devis.MontantTVA, devis.MontantTTC = CalculerTotaux(devis.Lignes)
		for i := range devis.Lignes {
			devis.Lignes[i].Position = i
		}

		if err := tx.Create(devis).Error; err != nil {
			return err
		}

		if devis.DossierID != nil {
			journaliser(tx, tenantID, *devis.DossierID, models.TypeJournalDevis,
				"Devis créé", fmt.Sprintf("Devis %s créé", devis.Numero))
		}
		return nil
	})
}

// RemplacerLignes remplace l'ensemble des lignes d'un devis et recalcule
// les montants. Les lignes sont toujours remplacées en bloc, jamais éditées
// une à une.
func (s *DevisService) RemplacerLignes(tenantID, devisID string, lignes []models.LigneDevis) (*models.Devis, error) {
	var devis models.Devis
	if err := s.db.Where("id = ? AND user_id = ?", devisID, tenantID).First(&devis).Error; err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("devis_id = ?", devisID).Delete(&models.LigneDevis{}).Error; err != nil {
			return err
		}

		ht, tva, ttc := CalculerTotaux(lignes)
		for i := range lignes {
			lignes[i].ID = ""
			lignes[i].DevisID = devisID
			lignes[i].Position = i
			if err := tx.Create(&lignes[i]).Error; err != nil {
				return err
			}
		}

		return tx.Model(&devis).Updates(map[string]interface{}{
			"montant_ht":  ht,
			"montant_tva": tva,
			"montant_ttc": ttc,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Lignes").Where("id = ?", devisID).First(&devis).Error; err != nil {
		return nil, err
	}
	return &devis, nil
}

// CreerFacture crée une facture libre avec ses lignes, totaux recalculés
// et numéro attribué si absent.
func (s *DevisService) CreerFacture(tenantID string, facture *models.Facture) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		facture.UserID = tenantID
		if facture.Numero == "" {
			numero, err := prochainNumero(tx, tenantID, "FAC", &models.Facture{})
			if err != nil {
				return err
			}
			facture.Numero = numero
		}
		maintenant := time.Now()
		if facture.DateEmission.IsZero() {
			facture.DateEmission = maintenant
		}
		if facture.DateEcheance.IsZero() {
			facture.DateEcheance = facture.DateEmission.AddDate(0, 0, 30)
		}
		facture.MontantHT, facture.MontantTVA, facture.MontantTTC = CalculerTotauxFacture(facture.Lignes)
		for i := range facture.Lignes {
			facture.Lignes[i].Position = i
		}

		if err := tx.Create(facture).Error; err != nil {
			return err
		}

		if facture.DossierID != nil {
			journaliser(tx, tenantID, *facture.DossierID, models.TypeJournalFacture,
				"Facture créée", fmt.Sprintf("Facture %s créée", facture.Numero))
		}
		return nil
	})
}

// CreerFactureDepuisDevis génère une facture à partir d'un devis, lignes
// copiées, échéance à 30 jours.
func (s *DevisService) CreerFactureDepuisDevis(tenantID, devisID string) (*models.Facture, error) {
	var devis models.Devis
	if err := s.db.Preload("Lignes").Where("id = ? AND user_id = ?", devisID, tenantID).First(&devis).Error; err != nil {
		return nil, err
	}

	var facture models.Facture
	err := s.db.Transaction(func(tx *gorm.DB) error {
		numero, err := prochainNumero(tx, tenantID, "FAC", &models.Facture{})
		if err != nil {
			return err
		}

		maintenant := time.Now()
		facture = models.Facture{
			Numero:       numero,
			Objet:        devis.Objet,
			Statut:       models.StatutFactureBrouillon,
			DateEmission: maintenant,
			DateEcheance: maintenant.AddDate(0, 0, 30),
			DevisID:      &devis.ID,
			ClientID:     devis.ClientID,
			DossierID:    devis.DossierID,
			UserID:       tenantID,
		}
		for _, ligne := range devis.Lignes {
			facture.Lignes = append(facture.Lignes, models.LigneFacture{
				Position:       ligne.Position,
				Description:    ligne.Description,
				Quantite:       ligne.Quantite,
				Unite:          ligne.Unite,
				PrixUnitaireHT: ligne.PrixUnitaireHT,
				TVAPct:         ligne.TVAPct,
			})
		}
		facture.MontantHT, facture.MontantTVA, facture.MontantTTC = CalculerTotauxFacture(facture.Lignes)

		if err := tx.Create(&facture).Error; err != nil {
			return err
		}

		if facture.DossierID != nil {
			journaliser(tx, tenantID, *facture.DossierID, models.TypeJournalFacture,
				"Facture créée", fmt.Sprintf("Facture %s créée depuis le devis %s", facture.Numero, devis.Numero))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &facture, nil
}

// prochainNumero attribue un numéro séquentiel par tenant et par année,
// au format PREFIX-AAAA-0001.
func prochainNumero(tx *gorm.DB, tenantID, prefixe string, modele interface{}) (string, error) {
	annee := time.Now().Year()
	var count int64
	if err := tx.Model(modele).Where("user_id = ? AND numero LIKE ?",
		tenantID, fmt.Sprintf("%s-%d-%%", prefixe, annee)).Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%04d", prefixe, annee, count+1), nil
}
