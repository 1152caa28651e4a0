package services

import "errors"

// Erreurs typées remontées telles quelles aux handlers, qui les traduisent
// en codes HTTP (404 introuvable, 409 conflit d'état, 400 validation).
var (
	// ErrDejaSigne : tentative de signature d'un devis déjà signé.
	ErrDejaSigne = errors.New("devis déjà signé")

	// ErrDevisRefuse : consultation publique d'un devis refusé.
	ErrDevisRefuse = errors.New("devis refusé")

	// ErrStatutInvalide : statut cible hors de l'énumération de l'entité.
	ErrStatutInvalide = errors.New("statut invalide")
)
