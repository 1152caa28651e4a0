package services

import (
	"fmt"
	"time"

	"batiflow/internal/models"

	"gorm.io/gorm"
)

type Urgence string

const (
	UrgenceNormale Urgence = "normale"
	UrgenceHaute   Urgence = "haute"
	UrgenceUrgente Urgence = "urgente"
)

// Types d'alerte dérivés
const (
	AlerteDevisManquant    = "devis_manquant"
	AlerteDevisSansReponse = "devis_sans_reponse"
	AlerteFactureRetard    = "facture_retard"
	AlerteFactureACreer    = "facture_a_creer"
	AlerteRDVProche        = "rdv_proche"
)

// Types de relance programmée
const (
	RelanceDevis   = "relance_devis"
	RelanceFacture = "relance_facture"
)

// Seuils métier, en jours sauf mention contraire. Constantes fixes, pas de
// configuration par tenant.
const (
	seuilDevisManquantHaute    = 3
	seuilDevisManquantUrgente  = 7
	seuilDevisSansReponse      = 7
	seuilDevisSansReponseUrg   = 14
	seuilFactureRetardHaute    = 15
	seuilFactureRetardUrgente  = 30
	fenetreRelanceFactureJours = 3
	fenetreRDVProcheHeures     = 24
	seuilRDVUrgentHeures       = 2
)

type Alerte struct {
	Type           string  `json:"type"`
	Urgence        Urgence `json:"urgence"`
	Titre          string  `json:"titre"`
	Message        string  `json:"message"`
	ActionSuggeree string  `json:"actionSuggeree"`
	DossierID      string  `json:"dossierId"`
	DevisID        string  `json:"devisId,omitempty"`
	FactureID      string  `json:"factureId,omitempty"`
	RDVID          string  `json:"rdvId,omitempty"`
}

// Relance est un rappel programmé, tourné vers l'avenir, distinct d'une
// alerte qui décrit l'état présent.
type Relance struct {
	Type      string    `json:"type"`
	Echeance  time.Time `json:"echeance"`
	Message   string    `json:"message"`
	DossierID string    `json:"dossierId"`
	DevisID   string    `json:"devisId,omitempty"`
	FactureID string    `json:"factureId,omitempty"`
}

type ResultatAlertes struct {
	Alertes  []Alerte  `json:"alertes"`
	Relances []Relance `json:"relances"`
}

// joursEcoules calcule floor((maintenant - ref) / 24h). Négatif si ref est
// dans le futur.
func joursEcoules(ref, maintenant time.Time) int {
	d := maintenant.Sub(ref)
	if d < 0 {
		return -int((-d) / (24 * time.Hour))
	}
	return int(d / (24 * time.Hour))
}

// DeriveAlertes dérive les alertes et relances d'un dossier à partir de son
// instantané. Fonction pure, recalculée à chaque lecture, sans état persisté.
// Ne retourne jamais d'erreur : une donnée manquante saute la règle.
func DeriveAlertes(dossier models.Dossier, devisList []models.Devis, factures []models.Facture, rdvs []models.RDV, maintenant time.Time) ResultatAlertes {
	resultat := ResultatAlertes{
		Alertes:  []Alerte{},
		Relances: []Relance{},
	}

	// Dossier visité sans devis : relancer la rédaction du chiffrage.
	if dossier.Statut == models.StatutDossierVisiteRealisee && len(devisList) == 0 {
		jours := joursEcoules(dossier.MisAJourLe, maintenant)
		if jours >= seuilDevisManquantHaute {
			urgence := UrgenceHaute
			if jours >= seuilDevisManquantUrgente {
				urgence = UrgenceUrgente
			}
			resultat.Alertes = append(resultat.Alertes, Alerte{
				Type:           AlerteDevisManquant,
				Urgence:        urgence,
				Titre:          "Devis à rédiger",
				Message:        fmt.Sprintf("Visite réalisée il y a %d jours sur le dossier %s, aucun devis créé", jours, dossier.Numero),
				ActionSuggeree: "Créer le devis",
				DossierID:      dossier.ID,
			})
		}
	}

	for _, devis := range devisList {
		// Devis envoyé resté sans réponse.
		if devis.Statut == models.StatutDevisEnvoye && devis.DateEnvoi != nil {
			jours := joursEcoules(*devis.DateEnvoi, maintenant)
			if jours >= seuilDevisSansReponse {
				urgence := UrgenceNormale
				if jours >= seuilDevisSansReponseUrg {
					urgence = UrgenceUrgente
				}
				resultat.Alertes = append(resultat.Alertes, Alerte{
					Type:           AlerteDevisSansReponse,
					Urgence:        urgence,
					Titre:          "Devis sans réponse",
					Message:        fmt.Sprintf("Devis %s envoyé il y a %d jours sans réponse", devis.Numero, jours),
					ActionSuggeree: "Relancer le client",
					DossierID:      dossier.ID,
					DevisID:        devis.ID,
				})
			}

			// Relance programmée à J+7, dans la fenêtre [7j, 14j).
			if jours >= seuilDevisSansReponse && jours < seuilDevisSansReponseUrg {
				resultat.Relances = append(resultat.Relances, Relance{
					Type:      RelanceDevis,
					Echeance:  devis.DateEnvoi.AddDate(0, 0, seuilDevisSansReponse),
					Message:   fmt.Sprintf("Relancer le client pour le devis %s", devis.Numero),
					DossierID: dossier.ID,
					DevisID:   devis.ID,
				})
			}
		}

		// Devis accepté sans aucune facture sur le dossier.
		if (devis.Statut == models.StatutDevisAccepte || devis.Statut == models.StatutDevis("signe")) && len(factures) == 0 {
			resultat.Alertes = append(resultat.Alertes, Alerte{
				Type:           AlerteFactureACreer,
				Urgence:        UrgenceHaute,
				Titre:          "Facture à émettre",
				Message:        fmt.Sprintf("Devis %s accepté, aucune facture émise sur le dossier", devis.Numero),
				ActionSuggeree: "Créer la facture",
				DossierID:      dossier.ID,
				DevisID:        devis.ID,
			})
		}
	}

	for _, facture := range factures {
		echue := facture.Statut == models.StatutFactureEnvoyee && facture.DateEcheance.Before(maintenant)
		if facture.Statut == models.StatutFactureEnRetard || echue {
			jours := joursEcoules(facture.DateEcheance, maintenant)
			urgence := UrgenceNormale
			if jours >= seuilFactureRetardUrgente {
				urgence = UrgenceUrgente
			} else if jours >= seuilFactureRetardHaute {
				urgence = UrgenceHaute
			}
			resultat.Alertes = append(resultat.Alertes, Alerte{
				Type:           AlerteFactureRetard,
				Urgence:        urgence,
				Titre:          "Facture en retard",
				Message:        fmt.Sprintf("Facture %s échue depuis %d jours", facture.Numero, jours),
				ActionSuggeree: "Relancer le paiement",
				DossierID:      dossier.ID,
				FactureID:      facture.ID,
			})
		}

		// Relance programmée à l'échéance, quand celle-ci tombe sous 3 jours.
		if facture.Statut == models.StatutFactureEnvoyee &&
			!facture.DateEcheance.Before(maintenant) &&
			!facture.DateEcheance.After(maintenant.AddDate(0, 0, fenetreRelanceFactureJours)) {
			resultat.Relances = append(resultat.Relances, Relance{
				Type:      RelanceFacture,
				Echeance:  facture.DateEcheance,
				Message:   fmt.Sprintf("Échéance de la facture %s", facture.Numero),
				DossierID: dossier.ID,
				FactureID: facture.ID,
			})
		}
	}

	for _, rdv := range rdvs {
		if rdv.Statut != models.StatutRDVConfirme {
			continue
		}
		restant := rdv.DateHeure.Sub(maintenant)
		if restant <= 0 || restant > fenetreRDVProcheHeures*time.Hour {
			continue
		}
		urgence := UrgenceNormale
		if restant <= seuilRDVUrgentHeures*time.Hour {
			urgence = UrgenceUrgente
		}
		resultat.Alertes = append(resultat.Alertes, Alerte{
			Type:           AlerteRDVProche,
			Urgence:        urgence,
			Titre:          "RDV imminent",
			Message:        fmt.Sprintf("%s dans %d h", rdv.Titre, int(restant.Hours())+1),
			ActionSuggeree: "Préparer le RDV",
			DossierID:      dossier.ID,
			RDVID:          rdv.ID,
		})
	}

	return resultat
}

// rangUrgence sert au tri côté appelant ; le moteur lui-même ne trie pas.
var rangUrgence = map[Urgence]int{
	UrgenceUrgente: 0,
	UrgenceHaute:   1,
	UrgenceNormale: 2,
}

func RangUrgence(u Urgence) int {
	if r, ok := rangUrgence[u]; ok {
		return r
	}
	return 3
}

// AlerteService charge l'instantané d'un dossier et délègue au moteur pur.
type AlerteService struct {
	db *gorm.DB
}

func NewAlerteService(db *gorm.DB) *AlerteService {
	return &AlerteService{db: db}
}

// PourDossier dérive les alertes d'un dossier donné.
func (s *AlerteService) PourDossier(tenantID, dossierID string, maintenant time.Time) (*ResultatAlertes, error) {
	var dossier models.Dossier
	if err := s.db.Where("id = ? AND user_id = ?", dossierID, tenantID).First(&dossier).Error; err != nil {
		return nil, err
	}

	var devisList []models.Devis
	if err := s.db.Where("dossier_id = ? AND user_id = ?", dossierID, tenantID).Find(&devisList).Error; err != nil {
		return nil, err
	}
	var factures []models.Facture
	if err := s.db.Where("dossier_id = ? AND user_id = ?", dossierID, tenantID).Find(&factures).Error; err != nil {
		return nil, err
	}
	var rdvs []models.RDV
	if err := s.db.Where("dossier_id = ? AND user_id = ?", dossierID, tenantID).Find(&rdvs).Error; err != nil {
		return nil, err
	}

	resultat := DeriveAlertes(dossier, devisList, factures, rdvs, maintenant)
	return &resultat, nil
}

// PourTenant agrège les alertes de tous les dossiers actifs du tenant.
func (s *AlerteService) PourTenant(tenantID string, maintenant time.Time) (*ResultatAlertes, error) {
	var dossiers []models.Dossier
	if err := s.db.Where("user_id = ? AND statut NOT IN ?", tenantID,
		[]models.StatutDossier{models.StatutDossierPerdu, models.StatutDossierAnnule}).
		Find(&dossiers).Error; err != nil {
		return nil, err
	}

	total := ResultatAlertes{Alertes: []Alerte{}, Relances: []Relance{}}
	for _, dossier := range dossiers {
		resultat, err := s.PourDossier(tenantID, dossier.ID, maintenant)
		if err != nil {
			return nil, err
		}
		total.Alertes = append(total.Alertes, resultat.Alertes...)
		total.Relances = append(total.Relances, resultat.Relances...)
	}
	return &total, nil
}
