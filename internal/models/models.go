package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model avec les champs communs
type BaseModel struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreeLe     time.Time `gorm:"autoCreateTime" json:"creeLe"`
	MisAJourLe time.Time `gorm:"autoUpdateTime" json:"misAJourLe"`
}

// BeforeCreate hook pour générer l'UUID
func (base *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// Enums
type TypeUtilisateur string

const (
	TypeUtilisateurAdmin    TypeUtilisateur = "ADMIN"
	TypeUtilisateurArtisan  TypeUtilisateur = "ARTISAN"
	TypeUtilisateurCommerce TypeUtilisateur = "COMMERCIAL"
)

type StatutDossier string

const (
	StatutDossierContactRecu      StatutDossier = "contact_recu"
	StatutDossierQualification    StatutDossier = "qualification"
	StatutDossierRDVAPlanifier    StatutDossier = "rdv_a_planifier"
	StatutDossierRDVPlanifie      StatutDossier = "rdv_planifie"
	StatutDossierRDVConfirme      StatutDossier = "rdv_confirme"
	StatutDossierVisiteRealisee   StatutDossier = "visite_realisee"
	StatutDossierDevisEnCours     StatutDossier = "devis_en_cours"
	StatutDossierDevisPret        StatutDossier = "devis_pret"
	StatutDossierDevisEnvoye      StatutDossier = "devis_envoye"
	StatutDossierEnNegociation    StatutDossier = "en_negociation"
	StatutDossierSigne            StatutDossier = "signe"
	StatutDossierChantierEnCours  StatutDossier = "chantier_en_cours"
	StatutDossierChantierTermine  StatutDossier = "chantier_termine"
	StatutDossierPerdu            StatutDossier = "perdu"
	StatutDossierAnnule           StatutDossier = "annule"
)

type StatutDevis string

const (
	StatutDevisBrouillon     StatutDevis = "brouillon"
	StatutDevisEnPreparation StatutDevis = "en_preparation"
	StatutDevisPret          StatutDevis = "pret"
	StatutDevisEnvoye        StatutDevis = "envoye"
	StatutDevisAccepte       StatutDevis = "accepte"
	StatutDevisRefuse        StatutDevis = "refuse"
	StatutDevisExpire        StatutDevis = "expire"
	StatutDevisPaye          StatutDevis = "paye"
)

type StatutFacture string

const (
	StatutFactureBrouillon StatutFacture = "brouillon"
	StatutFactureEnvoyee   StatutFacture = "envoyee"
	StatutFactureEnRetard  StatutFacture = "en_retard"
	StatutFacturePayee     StatutFacture = "payee"
)

type StatutRDV string

const (
	StatutRDVPlanifie StatutRDV = "planifie"
	StatutRDVConfirme StatutRDV = "confirme"
	StatutRDVEnCours  StatutRDV = "en_cours"
	StatutRDVRealise  StatutRDV = "realise"
	StatutRDVAnnule   StatutRDV = "annule"
	StatutRDVReporte  StatutRDV = "reporte"
)

type Priorite string

const (
	PrioriteBasse   Priorite = "basse"
	PrioriteNormale Priorite = "normale"
	PrioriteHaute   Priorite = "haute"
	PrioriteUrgente Priorite = "urgente"
)

// Models
type Utilisateur struct {
	BaseModel
	Email      string          `gorm:"uniqueIndex;not null" json:"email"`
	Nom        string          `gorm:"not null" json:"nom"`
	Telephone  *string         `json:"telephone"`
	Entreprise *string         `json:"entreprise"`
	Type       TypeUtilisateur `gorm:"not null;default:'ARTISAN'" json:"type"`
	Actif      bool            `gorm:"default:true" json:"actif"`
	MotDePasse string          `gorm:"not null" json:"-"` // Jamais renvoyé par l'API

	// Relations
	Clients  []Client  `gorm:"foreignKey:UserID" json:"clients,omitempty"`
	Dossiers []Dossier `gorm:"foreignKey:UserID" json:"dossiers,omitempty"`
	Devis    []Devis   `gorm:"foreignKey:UserID" json:"devis,omitempty"`
	Factures []Facture `gorm:"foreignKey:UserID" json:"factures,omitempty"`
	RDVs     []RDV     `gorm:"foreignKey:UserID" json:"rdvs,omitempty"`
}

func (Utilisateur) TableName() string {
	return "utilisateurs"
}
