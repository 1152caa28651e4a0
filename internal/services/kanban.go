package services

import (
	"batiflow/internal/models"

	"gorm.io/gorm"
)

// ColonneKanban décrit une colonne fixe du pipeline : un identifiant, un
// libellé d'affichage et l'ensemble des statuts qu'elle regroupe. Le premier
// statut de la liste est le statut d'atterrissage d'un glisser-déposer.
type ColonneKanban struct {
	ID      string   `json:"id"`
	Titre   string   `json:"titre"`
	Couleur string   `json:"couleur"`
	Statuts []string `json:"statuts"`
}

// Colonnes du pipeline devis. Ordre d'affichage fixe.
var ColonnesDevis = []ColonneKanban{
	{ID: "preparation", Titre: "En préparation", Couleur: "#64748b", Statuts: []string{"brouillon", "en_preparation"}},
	{ID: "pret", Titre: "Prêt", Couleur: "#3b82f6", Statuts: []string{"pret"}},
	{ID: "envoye", Titre: "Envoyé", Couleur: "#f97316", Statuts: []string{"envoye"}},
	{ID: "accepte", Titre: "Accepté", Couleur: "#22c55e", Statuts: []string{"accepte"}},
	{ID: "paye", Titre: "Payé", Couleur: "#10b981", Statuts: []string{"paye"}},
	{ID: "sans_suite", Titre: "Sans suite", Couleur: "#6b7280", Statuts: []string{"refuse", "expire"}},
}

// Colonnes du pipeline dossiers.
var ColonnesDossier = []ColonneKanban{
	{ID: "contact", Titre: "Contact", Couleur: "#3b82f6", Statuts: []string{"contact_recu", "qualification"}},
	{ID: "rdv", Titre: "RDV", Couleur: "#8b5cf6", Statuts: []string{"rdv_a_planifier", "rdv_planifie", "rdv_confirme"}},
	{ID: "visite", Titre: "Visite réalisée", Couleur: "#ec4899", Statuts: []string{"visite_realisee"}},
	{ID: "devis", Titre: "Devis", Couleur: "#f59e0b", Statuts: []string{"devis_en_cours", "devis_pret", "devis_envoye"}},
	{ID: "negociation", Titre: "Négociation", Couleur: "#eab308", Statuts: []string{"en_negociation"}},
	{ID: "signe", Titre: "Signé", Couleur: "#22c55e", Statuts: []string{"signe"}},
	{ID: "chantier", Titre: "Chantier", Couleur: "#10b981", Statuts: []string{"chantier_en_cours", "chantier_termine"}},
	{ID: "perdu", Titre: "Perdu / Annulé", Couleur: "#6b7280", Statuts: []string{"perdu", "annule"}},
}

// CarteKanban est une carte affichable, quel que soit le type d'entité
// sous-jacent.
type CarteKanban struct {
	ID      string  `json:"id"`
	Numero  string  `json:"numero"`
	Titre   string  `json:"titre"`
	Statut  string  `json:"statut"`
	Montant float64 `json:"montant"`
}

// ColonneProjetee est une colonne remplie, avec compteur et total affiché.
type ColonneProjetee struct {
	ColonneKanban
	Nombre       int           `json:"nombre"`
	MontantTotal float64       `json:"montantTotal"`
	Cartes       []CarteKanban `json:"cartes"`
}

// partitionner répartit les cartes dans les colonnes par appartenance du
// statut. Statut vide ou inconnu : première colonne du pipeline.
func partitionner(colonnes []ColonneKanban, cartes []CarteKanban) []ColonneProjetee {
	projetees := make([]ColonneProjetee, len(colonnes))
	index := make(map[string]int, len(colonnes)*2)
	for i, colonne := range colonnes {
		projetees[i] = ColonneProjetee{ColonneKanban: colonne, Cartes: []CarteKanban{}}
		for _, statut := range colonne.Statuts {
			index[statut] = i
		}
	}

	for _, carte := range cartes {
		i, ok := index[carte.Statut]
		if !ok {
			i = 0
		}
		projetees[i].Cartes = append(projetees[i].Cartes, carte)
		projetees[i].Nombre++
		projetees[i].MontantTotal += carte.Montant
	}
	return projetees
}

// PartitionnerDevis projette une collection de devis sur les colonnes du
// pipeline devis (montant affiché : TTC).
func PartitionnerDevis(devisList []models.Devis) []ColonneProjetee {
	cartes := make([]CarteKanban, 0, len(devisList))
	for _, devis := range devisList {
		titre := devis.Numero
		if devis.Objet != nil {
			titre = *devis.Objet
		}
		cartes = append(cartes, CarteKanban{
			ID:      devis.ID,
			Numero:  devis.Numero,
			Titre:   titre,
			Statut:  string(devis.Statut),
			Montant: devis.MontantTTC,
		})
	}
	return partitionner(ColonnesDevis, cartes)
}

// PartitionnerDossiers projette les dossiers sur le pipeline commercial
// (montant affiché : estimation).
func PartitionnerDossiers(dossiers []models.Dossier) []ColonneProjetee {
	cartes := make([]CarteKanban, 0, len(dossiers))
	for _, dossier := range dossiers {
		cartes = append(cartes, CarteKanban{
			ID:      dossier.ID,
			Numero:  dossier.Numero,
			Titre:   dossier.Titre,
			Statut:  string(dossier.Statut),
			Montant: dossier.MontantEstime,
		})
	}
	return partitionner(ColonnesDossier, cartes)
}

// KanbanService charge les collections et applique les déplacements.
type KanbanService struct {
	db          *gorm.DB
	transitions *TransitionService
}

func NewKanbanService(db *gorm.DB, transitions *TransitionService) *KanbanService {
	return &KanbanService{db: db, transitions: transitions}
}

// TableauDevis renvoie le kanban devis du tenant.
func (s *KanbanService) TableauDevis(tenantID string) ([]ColonneProjetee, error) {
	var devisList []models.Devis
	if err := s.db.Where("user_id = ?", tenantID).Order("cree_le DESC").Find(&devisList).Error; err != nil {
		return nil, err
	}
	return PartitionnerDevis(devisList), nil
}

// TableauDossiers renvoie le kanban dossiers du tenant.
func (s *KanbanService) TableauDossiers(tenantID string) ([]ColonneProjetee, error) {
	var dossiers []models.Dossier
	if err := s.db.Where("user_id = ?", tenantID).Order("cree_le DESC").Find(&dossiers).Error; err != nil {
		return nil, err
	}
	return PartitionnerDossiers(dossiers), nil
}

// DeplacerDevis déplace un devis vers une colonne : transition vers le
// premier statut de la colonne cible, jamais un choix parmi les statuts
// qu'elle regroupe.
func (s *KanbanService) DeplacerDevis(tenantID, devisID, colonneID string) (*models.Devis, error) {
	colonne := trouverColonne(ColonnesDevis, colonneID)
	if colonne == nil {
		return nil, ErrStatutInvalide
	}
	return s.transitions.TransitionDevis(tenantID, devisID, models.StatutDevis(colonne.Statuts[0]))
}

// DeplacerDossier déplace un dossier vers une colonne du pipeline.
func (s *KanbanService) DeplacerDossier(tenantID, dossierID, colonneID string) (*models.Dossier, error) {
	colonne := trouverColonne(ColonnesDossier, colonneID)
	if colonne == nil {
		return nil, ErrStatutInvalide
	}
	return s.transitions.TransitionDossier(tenantID, dossierID, models.StatutDossier(colonne.Statuts[0]))
}

func trouverColonne(colonnes []ColonneKanban, id string) *ColonneKanban {
	for i := range colonnes {
		if colonnes[i].ID == id {
			return &colonnes[i]
		}
	}
	return nil
}
