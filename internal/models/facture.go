package models

import "time"

// Facture, optionnellement générée depuis un devis accepté (DevisID).
type Facture struct {
	BaseModel
	Numero       string        `gorm:"not null;uniqueIndex:idx_factures_user_numero" json:"numero"`
	Objet        *string       `json:"objet"`
	Statut       StatutFacture `gorm:"not null;default:'brouillon'" json:"statut"`
	MontantHT    float64       `gorm:"default:0" json:"montantHt"`
	MontantTVA   float64       `gorm:"default:0" json:"montantTva"`
	MontantTTC   float64       `gorm:"default:0" json:"montantTtc"`
	DateEmission time.Time     `gorm:"not null" json:"dateEmission"`
	DateEcheance time.Time     `gorm:"not null" json:"dateEcheance"`
	DatePaiement *time.Time    `json:"datePaiement"`

	PdfURL *string `json:"pdfUrl,omitempty"`

	DevisID   *string `gorm:"index" json:"devisId"`
	ClientID  string  `gorm:"not null;index" json:"clientId"`
	DossierID *string `gorm:"index" json:"dossierId"`
	UserID    string  `gorm:"not null;uniqueIndex:idx_factures_user_numero" json:"userId"`

	// Relations
	Client  Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Devis   *Devis         `gorm:"foreignKey:DevisID" json:"devis,omitempty"`
	Dossier *Dossier       `gorm:"foreignKey:DossierID" json:"dossier,omitempty"`
	Lignes  []LigneFacture `gorm:"foreignKey:FactureID" json:"lignes,omitempty"`
}

func (Facture) TableName() string {
	return "factures"
}

type LigneFacture struct {
	BaseModel
	FactureID      string  `gorm:"not null;index" json:"factureId"`
	Position       int     `gorm:"not null;default:0" json:"position"`
	Description    string  `gorm:"not null" json:"description"`
	Quantite       float64 `gorm:"not null" json:"quantite"`
	Unite          *string `json:"unite"`
	PrixUnitaireHT float64 `gorm:"not null" json:"prixUnitaireHt"`
	TVAPct         float64 `gorm:"not null;default:20" json:"tvaPct"`
	TotalHT        float64 `gorm:"default:0" json:"totalHt"`
	TotalTTC       float64 `gorm:"default:0" json:"totalTtc"`
}

func (LigneFacture) TableName() string {
	return "lignes_factures"
}
