package models

import "time"

type TypeRDV string

const (
	TypeRDVVisiteTechnique TypeRDV = "visite_technique"
	TypeRDVPresentation    TypeRDV = "presentation_devis"
	TypeRDVSignature       TypeRDV = "signature"
	TypeRDVChantier        TypeRDV = "chantier"
	TypeRDVAutre           TypeRDV = "autre"
)

type RDV struct {
	BaseModel
	Titre        string    `gorm:"not null" json:"titre"`
	TypeRDV      TypeRDV   `gorm:"not null;default:'visite_technique'" json:"typeRdv"`
	DateHeure    time.Time `gorm:"not null" json:"dateHeure"`
	DureeMinutes int       `gorm:"not null;default:60" json:"dureeMinutes"`
	Statut       StatutRDV `gorm:"not null;default:'planifie'" json:"statut"`
	Lieu         *string   `json:"lieu"`
	Notes        *string   `gorm:"type:text" json:"notes"`

	DossierID *string `gorm:"index" json:"dossierId"`
	ClientID  *string `gorm:"index" json:"clientId"`
	UserID    string  `gorm:"not null;index" json:"userId"`

	// Relations
	Dossier *Dossier `gorm:"foreignKey:DossierID" json:"dossier,omitempty"`
	Client  *Client  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}

func (RDV) TableName() string {
	return "rdvs"
}
