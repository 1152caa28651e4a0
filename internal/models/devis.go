package models

import "time"

// Devis est un document de chiffrage avec lignes, soumis à un cycle
// d'acceptation et signable via un lien public à token unique.
type Devis struct {
	BaseModel
	Numero       string      `gorm:"not null;uniqueIndex:idx_devis_user_numero" json:"numero"`
	Objet        *string     `json:"objet"`
	Statut       StatutDevis `gorm:"not null;default:'brouillon'" json:"statut"`
	MontantHT    float64     `gorm:"default:0" json:"montantHt"`
	MontantTVA   float64     `gorm:"default:0" json:"montantTva"`
	MontantTTC   float64     `gorm:"default:0" json:"montantTtc"`
	DateCreation time.Time   `gorm:"not null" json:"dateCreation"`
	DateEnvoi    *time.Time  `json:"dateEnvoi"`

	// Signature électronique
	DateAcceptation *time.Time `json:"dateAcceptation"`
	SignatureToken  *string    `gorm:"uniqueIndex" json:"-"`
	SignatureClient *string    `gorm:"type:text" json:"signatureClient,omitempty"`
	SignatureNom    *string    `json:"signatureNom,omitempty"`
	SignatureEmail  *string    `json:"signatureEmail,omitempty"`
	SignatureDate   *time.Time `json:"signatureDate,omitempty"`
	SignatureIP     *string    `json:"-"`

	PdfURL *string `json:"pdfUrl,omitempty"`

	ClientID  string  `gorm:"not null;index" json:"clientId"`
	DossierID *string `gorm:"index" json:"dossierId"`
	UserID    string  `gorm:"not null;uniqueIndex:idx_devis_user_numero" json:"userId"`

	// Relations
	Client  Client       `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Dossier *Dossier     `gorm:"foreignKey:DossierID" json:"dossier,omitempty"`
	Lignes  []LigneDevis `gorm:"foreignKey:DevisID" json:"lignes,omitempty"`
}

func (Devis) TableName() string {
	return "devis"
}

// Signe indique si le devis porte déjà une signature client.
func (d *Devis) Signe() bool {
	return d.SignatureClient != nil
}

type LigneDevis struct {
	BaseModel
	DevisID        string  `gorm:"not null;index" json:"devisId"`
	Position       int     `gorm:"not null;default:0" json:"position"`
	Description    string  `gorm:"not null" json:"description"`
	Quantite       float64 `gorm:"not null" json:"quantite"`
	Unite          *string `json:"unite"`
	PrixUnitaireHT float64 `gorm:"not null" json:"prixUnitaireHt"`
	TVAPct         float64 `gorm:"not null;default:20" json:"tvaPct"`
	TotalHT        float64 `gorm:"default:0" json:"totalHt"`
	TotalTTC       float64 `gorm:"default:0" json:"totalTtc"`
}

func (LigneDevis) TableName() string {
	return "lignes_devis"
}
