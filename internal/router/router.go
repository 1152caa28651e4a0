package router

import (
	"batiflow/internal/handlers"
	"batiflow/internal/middleware"
	"batiflow/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Setup configure toutes les routes de l'application
func Setup(container *services.Container) *gin.Engine {
	r := gin.Default()

	// Hub websocket
	handlers.InitWebSocketHub()

	// CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"http://localhost:3000", "http://localhost:3001"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	r.Use(cors.New(config))

	// Handlers
	authHandler := handlers.NewAuthHandler(container.AuthService)
	clientsHandler := handlers.NewClientsHandler(container.DB)
	dossiersHandler := handlers.NewDossiersHandler(container.DB, container.TransitionService)
	devisHandler := handlers.NewDevisHandler(container.DB, container.DevisService,
		container.TransitionService, container.SignatureService, container.EnvoiService)
	facturesHandler := handlers.NewFacturesHandler(container.DB, container.DevisService,
		container.TransitionService, container.EnvoiService)
	rdvHandler := handlers.NewRDVHandler(container.DB)
	journalHandler := handlers.NewJournalHandler(container.DB)
	kanbanHandler := handlers.NewKanbanHandler(container.KanbanService)
	alertesHandler := handlers.NewAlertesHandler(container.AlerteService)
	signatureHandler := handlers.NewSignatureHandler(container.SignatureService)
	dashboardHandler := handlers.NewDashboardHandler(container.DB, container.Redis, container.AlerteService)

	// Routes publiques : login, santé, et consultation/signature de devis par
	// token opaque.
	public := r.Group("/api")
	{
		public.POST("/auth/login", authHandler.Login)
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok", "message": "BatiFlow CRM API"})
		})
		public.GET("/public/devis/:token", signatureHandler.GetDevisPublic)
		public.POST("/public/devis/:token/signer", signatureHandler.SignerDevis)
	}

	// WebSocket (JWT en query param ou header)
	r.GET("/ws", handlers.NewWebSocketHandler(container.AuthService))

	// Routes protégées
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(container.AuthService))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/dashboard", dashboardHandler.GetDashboard)

		clients := protected.Group("/clients")
		{
			clients.GET("", clientsHandler.ListClients)
			clients.POST("", clientsHandler.CreateClient)
			clients.GET("/:id", clientsHandler.GetClient)
			clients.PUT("/:id", clientsHandler.UpdateClient)
			clients.DELETE("/:id", clientsHandler.DeleteClient)
		}

		dossiers := protected.Group("/dossiers")
		{
			dossiers.GET("", dossiersHandler.ListDossiers)
			dossiers.POST("", dossiersHandler.CreateDossier)
			dossiers.GET("/:id", dossiersHandler.GetDossier)
			dossiers.PUT("/:id", dossiersHandler.UpdateDossier)
			dossiers.PATCH("/:id/statut", dossiersHandler.UpdateDossierStatut)
			dossiers.DELETE("/:id", dossiersHandler.DeleteDossier)
			dossiers.GET("/:id/journal", journalHandler.ListJournal)
			dossiers.POST("/:id/journal", journalHandler.CreateNote)
			dossiers.GET("/:id/alertes", alertesHandler.ListAlertesDossier)
			dossiers.POST("/:id/deplacer", kanbanHandler.DeplacerDossier)
		}

		devis := protected.Group("/devis")
		{
			devis.GET("", devisHandler.ListDevis)
			devis.POST("", devisHandler.CreateDevis)
			devis.GET("/:id", devisHandler.GetDevis)
			devis.PUT("/:id", devisHandler.UpdateDevis)
			devis.PUT("/:id/lignes", devisHandler.ReplaceLignes)
			devis.PATCH("/:id/statut", devisHandler.UpdateDevisStatut)
			devis.POST("/:id/envoyer", devisHandler.EnvoyerDevis)
			devis.POST("/:id/signature", devisHandler.CreateLienSignature)
			devis.POST("/:id/facture", devisHandler.CreateFactureDepuisDevis)
			devis.POST("/:id/deplacer", kanbanHandler.DeplacerDevis)
			devis.DELETE("/:id", devisHandler.DeleteDevis)
		}

		factures := protected.Group("/factures")
		{
			factures.GET("", facturesHandler.ListFactures)
			factures.POST("", facturesHandler.CreateFacture)
			factures.GET("/:id", facturesHandler.GetFacture)
			factures.PUT("/:id", facturesHandler.UpdateFacture)
			factures.PATCH("/:id/statut", facturesHandler.UpdateFactureStatut)
			factures.POST("/:id/envoyer", facturesHandler.EnvoyerFacture)
			factures.DELETE("/:id", facturesHandler.DeleteFacture)
		}

		rdvs := protected.Group("/rdvs")
		{
			rdvs.GET("", rdvHandler.ListRDVs)
			rdvs.GET("/prochains", rdvHandler.ListRDVsProchains)
			rdvs.POST("", rdvHandler.CreateRDV)
			rdvs.GET("/:id", rdvHandler.GetRDV)
			rdvs.PUT("/:id", rdvHandler.UpdateRDV)
			rdvs.DELETE("/:id", rdvHandler.DeleteRDV)
		}

		kanban := protected.Group("/kanban")
		{
			kanban.GET("/colonnes", kanbanHandler.GetColonnes)
			kanban.GET("/statuts", kanbanHandler.GetStatuts)
			kanban.GET("/devis", kanbanHandler.GetTableauDevis)
			kanban.GET("/dossiers", kanbanHandler.GetTableauDossiers)
		}

		protected.GET("/alertes", alertesHandler.ListAlertes)
	}

	return r
}
