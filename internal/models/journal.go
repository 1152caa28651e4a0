package models

type TypeJournal string

const (
	TypeJournalCreation TypeJournal = "creation"
	TypeJournalStatut   TypeJournal = "statut"
	TypeJournalDevis    TypeJournal = "devis"
	TypeJournalFacture  TypeJournal = "facture"
	TypeJournalPaiement TypeJournal = "paiement"
	TypeJournalRDVCree  TypeJournal = "rdv_cree"
	TypeJournalNote     TypeJournal = "note"
)

// AuteurSysteme identifie les entrées écrites par les transitions elles-mêmes,
// par opposition aux notes saisies par l'utilisateur.
const AuteurSysteme = "systeme"

// JournalEntry est une entrée d'audit en append-only sur un dossier.
// Jamais modifiée ni supprimée.
type JournalEntry struct {
	BaseModel
	DossierID string      `gorm:"not null;index" json:"dossierId"`
	Type      TypeJournal `gorm:"not null" json:"type"`
	Titre     string      `gorm:"not null" json:"titre"`
	Contenu   string      `gorm:"type:text" json:"contenu"`
	Auteur    string      `gorm:"not null;default:'systeme'" json:"auteur"`
	UserID    string      `gorm:"not null;index" json:"userId"`

	// Relations
	Dossier Dossier `gorm:"foreignKey:DossierID" json:"dossier,omitempty"`
}

func (JournalEntry) TableName() string {
	return "journal"
}
