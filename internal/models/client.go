package models

import "time"

type Client struct {
	BaseModel
	Nom        string  `gorm:"not null" json:"nom"`
	Prenom     *string `json:"prenom"`
	Email      *string `json:"email"`
	Telephone  *string `json:"telephone"`
	Entreprise *string `json:"entreprise"`

	// Adresse
	Adresse    *string `json:"adresse"`
	CodePostal *string `json:"codePostal"`
	Ville      *string `json:"ville"`

	UserID string `gorm:"not null;index" json:"userId"`

	// Relations
	Utilisateur Utilisateur `gorm:"foreignKey:UserID" json:"utilisateur,omitempty"`
	Dossiers    []Dossier   `gorm:"foreignKey:ClientID" json:"dossiers,omitempty"`
	Devis       []Devis     `gorm:"foreignKey:ClientID" json:"devis,omitempty"`
	Factures    []Facture   `gorm:"foreignKey:ClientID" json:"factures,omitempty"`
	RDVs        []RDV       `gorm:"foreignKey:ClientID" json:"rdvs,omitempty"`
}

func (Client) TableName() string {
	return "clients"
}

// Dossier suit une affaire commerciale du premier contact à la fin de chantier.
type Dossier struct {
	BaseModel
	Numero        string        `gorm:"not null;uniqueIndex:idx_dossiers_user_numero" json:"numero"`
	Titre         string        `gorm:"not null" json:"titre"`
	Statut        StatutDossier `gorm:"not null;default:'contact_recu'" json:"statut"`
	Priorite      Priorite      `gorm:"not null;default:'normale'" json:"priorite"`
	Source        *string       `json:"source"`
	Description   *string       `gorm:"type:text" json:"description"`
	MontantEstime float64       `gorm:"default:0" json:"montantEstime"`
	DateContact   time.Time     `gorm:"not null" json:"dateContact"`

	ClientID string `gorm:"not null;index" json:"clientId"`
	UserID   string `gorm:"not null;uniqueIndex:idx_dossiers_user_numero" json:"userId"`

	// Relations
	Client   Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Devis    []Devis        `gorm:"foreignKey:DossierID" json:"devis,omitempty"`
	Factures []Facture      `gorm:"foreignKey:DossierID" json:"factures,omitempty"`
	RDVs     []RDV          `gorm:"foreignKey:DossierID" json:"rdvs,omitempty"`
	Journal  []JournalEntry `gorm:"foreignKey:DossierID" json:"journal,omitempty"`
}

func (Dossier) TableName() string {
	return "dossiers"
}
