package models

// StatutMeta regroupe le libellé, la couleur et la colonne kanban d'un statut.
// Table unique consommée par toutes les projections (kanban, listes, fiches),
// au lieu de switchs dupliqués par vue.
type StatutMeta struct {
	Libelle string `json:"libelle"`
	Couleur string `json:"couleur"`
	Colonne string `json:"colonne"`
}

// Ordre pipeline des statuts de dossier. Les deux états absorbants
// perdu/annule sont en queue.
var StatutsDossier = []StatutDossier{
	StatutDossierContactRecu,
	StatutDossierQualification,
	StatutDossierRDVAPlanifier,
	StatutDossierRDVPlanifie,
	StatutDossierRDVConfirme,
	StatutDossierVisiteRealisee,
	StatutDossierDevisEnCours,
	StatutDossierDevisPret,
	StatutDossierDevisEnvoye,
	StatutDossierEnNegociation,
	StatutDossierSigne,
	StatutDossierChantierEnCours,
	StatutDossierChantierTermine,
	StatutDossierPerdu,
	StatutDossierAnnule,
}

var StatutsDevis = []StatutDevis{
	StatutDevisBrouillon,
	StatutDevisEnPreparation,
	StatutDevisPret,
	StatutDevisEnvoye,
	StatutDevisAccepte,
	StatutDevisRefuse,
	StatutDevisExpire,
	StatutDevisPaye,
}

var StatutsFacture = []StatutFacture{
	StatutFactureBrouillon,
	StatutFactureEnvoyee,
	StatutFactureEnRetard,
	StatutFacturePayee,
}

var StatutsRDV = []StatutRDV{
	StatutRDVPlanifie,
	StatutRDVConfirme,
	StatutRDVEnCours,
	StatutRDVRealise,
	StatutRDVAnnule,
	StatutRDVReporte,
}

var MetaStatutDossier = map[StatutDossier]StatutMeta{
	StatutDossierContactRecu:     {Libelle: "Contact reçu", Couleur: "#3b82f6", Colonne: "contact"},
	StatutDossierQualification:   {Libelle: "Qualification", Couleur: "#6366f1", Colonne: "contact"},
	StatutDossierRDVAPlanifier:   {Libelle: "RDV à planifier", Couleur: "#8b5cf6", Colonne: "rdv"},
	StatutDossierRDVPlanifie:     {Libelle: "RDV planifié", Couleur: "#8b5cf6", Colonne: "rdv"},
	StatutDossierRDVConfirme:     {Libelle: "RDV confirmé", Couleur: "#a855f7", Colonne: "rdv"},
	StatutDossierVisiteRealisee:  {Libelle: "Visite réalisée", Couleur: "#ec4899", Colonne: "visite"},
	StatutDossierDevisEnCours:    {Libelle: "Devis en cours", Couleur: "#f59e0b", Colonne: "devis"},
	StatutDossierDevisPret:       {Libelle: "Devis prêt", Couleur: "#f59e0b", Colonne: "devis"},
	StatutDossierDevisEnvoye:     {Libelle: "Devis envoyé", Couleur: "#f97316", Colonne: "devis"},
	StatutDossierEnNegociation:   {Libelle: "En négociation", Couleur: "#eab308", Colonne: "negociation"},
	StatutDossierSigne:           {Libelle: "Signé", Couleur: "#22c55e", Colonne: "signe"},
	StatutDossierChantierEnCours: {Libelle: "Chantier en cours", Couleur: "#10b981", Colonne: "chantier"},
	StatutDossierChantierTermine: {Libelle: "Chantier terminé", Couleur: "#14b8a6", Colonne: "chantier"},
	StatutDossierPerdu:           {Libelle: "Perdu", Couleur: "#6b7280", Colonne: "perdu"},
	StatutDossierAnnule:          {Libelle: "Annulé", Couleur: "#6b7280", Colonne: "perdu"},
}

var MetaStatutDevis = map[StatutDevis]StatutMeta{
	StatutDevisBrouillon:     {Libelle: "Brouillon", Couleur: "#94a3b8", Colonne: "preparation"},
	StatutDevisEnPreparation: {Libelle: "En préparation", Couleur: "#64748b", Colonne: "preparation"},
	StatutDevisPret:          {Libelle: "Prêt", Couleur: "#3b82f6", Colonne: "pret"},
	StatutDevisEnvoye:        {Libelle: "Envoyé", Couleur: "#f97316", Colonne: "envoye"},
	StatutDevisAccepte:       {Libelle: "Accepté", Couleur: "#22c55e", Colonne: "accepte"},
	StatutDevisRefuse:        {Libelle: "Refusé", Couleur: "#ef4444", Colonne: "sans_suite"},
	StatutDevisExpire:        {Libelle: "Expiré", Couleur: "#6b7280", Colonne: "sans_suite"},
	StatutDevisPaye:          {Libelle: "Payé", Couleur: "#10b981", Colonne: "paye"},
}

var MetaStatutFacture = map[StatutFacture]StatutMeta{
	StatutFactureBrouillon: {Libelle: "Brouillon", Couleur: "#94a3b8", Colonne: "brouillon"},
	StatutFactureEnvoyee:   {Libelle: "Envoyée", Couleur: "#3b82f6", Colonne: "envoyee"},
	StatutFactureEnRetard:  {Libelle: "En retard", Couleur: "#ef4444", Colonne: "retard"},
	StatutFacturePayee:     {Libelle: "Payée", Couleur: "#22c55e", Colonne: "payee"},
}

var MetaStatutRDV = map[StatutRDV]StatutMeta{
	StatutRDVPlanifie: {Libelle: "Planifié", Couleur: "#3b82f6", Colonne: "a_venir"},
	StatutRDVConfirme: {Libelle: "Confirmé", Couleur: "#22c55e", Colonne: "a_venir"},
	StatutRDVEnCours:  {Libelle: "En cours", Couleur: "#f59e0b", Colonne: "a_venir"},
	StatutRDVRealise:  {Libelle: "Réalisé", Couleur: "#10b981", Colonne: "passe"},
	StatutRDVAnnule:   {Libelle: "Annulé", Couleur: "#6b7280", Colonne: "passe"},
	StatutRDVReporte:  {Libelle: "Reporté", Couleur: "#eab308", Colonne: "a_venir"},
}

func (s StatutDossier) Valide() bool {
	_, ok := MetaStatutDossier[s]
	return ok
}

func (s StatutDevis) Valide() bool {
	_, ok := MetaStatutDevis[s]
	return ok
}

func (s StatutFacture) Valide() bool {
	_, ok := MetaStatutFacture[s]
	return ok
}

func (s StatutRDV) Valide() bool {
	_, ok := MetaStatutRDV[s]
	return ok
}

func (s StatutDossier) Libelle() string {
	return MetaStatutDossier[s].Libelle
}

func (s StatutDevis) Libelle() string {
	return MetaStatutDevis[s].Libelle
}

func (s StatutFacture) Libelle() string {
	return MetaStatutFacture[s].Libelle
}
