package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sportsfest/registration-system/handlers"
	appMiddleware "github.com/sportsfest/registration-system/middleware"
	"github.com/sportsfest/registration-system/models"
)

// SetupRoutes wires every HTTP endpoint onto the router. Admin tiers are
// enforced here with role middleware; row-level scoping happens in the
// services.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sportHandler *handlers.SportHandler,
	communityHandler *handlers.CommunityHandler,
	participantHandler *handlers.ParticipantHandler,
	volunteerHandler *handlers.VolunteerHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	formatHandler *handlers.FormatHandler,
	calendarHandler *handlers.CalendarHandler,
	convenorHandler *handlers.ConvenorHandler,
	emailHandler *handlers.EmailHandler,
	settingsHandler *handlers.SettingsHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := appMiddleware.Authenticate(jwtSecret)
	adminOnly := appMiddleware.Authorize(models.RoleAdmin)
	registrarRoles := appMiddleware.Authorize(
		models.RoleAdmin, models.RoleCommunityAdmin, models.RoleSportsAdmin)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	// Authentication
	router.Post("/auth/login", authHandler.Login)
	router.Post("/auth/signup", authHandler.Signup)
	router.Post("/auth/community-admin/login", authHandler.CommunityAdminLogin)
	router.Post("/auth/sports-admin/login", authHandler.SportsAdminLogin)
	router.Post("/auth/volunteer/login", authHandler.VolunteerLogin)
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/auth/me", authHandler.Me)
	})

	// Public surface
	router.Post("/participants/register", participantHandler.Register)
	router.Post("/contact", emailHandler.Contact)
	router.Get("/sports", sportHandler.GetAllSports)
	router.Get("/sports/tree", sportHandler.GetSportTree)
	router.Get("/sports/{sportID}", sportHandler.GetSportByID)
	router.Get("/sports/{sportID}/formats", formatHandler.ListBySport)
	router.Get("/communities", communityHandler.GetAll)
	router.Get("/communities/{communityID}", communityHandler.GetByID)
	router.Get("/leaderboard", leaderboardHandler.ListAll)
	router.Get("/leaderboard/standings", leaderboardHandler.OverallStandings)
	router.Get("/leaderboard/sports/{sportID}", leaderboardHandler.ListBySport)
	router.Get("/calendar", calendarHandler.List)
	router.Get("/calendar/{eventID}", calendarHandler.GetByID)
	router.Get("/convenors", convenorHandler.List)
	router.Get("/formats", formatHandler.List)
	router.Get("/formats/{formatID}", formatHandler.GetByID)

	// Live pushes
	router.Get("/ws/leaderboard", webSocketHandler.ServeLeaderboard)
	router.Get("/ws/calendar", webSocketHandler.ServeCalendar)

	// Participant self-service
	router.Route("/me", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", participantHandler.GetOwn)
		r.Put("/", participantHandler.UpdateOwnProfile)
		r.Put("/sports", participantHandler.UpdateOwnSports)
		r.Put("/password", userHandler.ChangeOwnPassword)
	})

	// Registration administration
	router.Route("/participants", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(registrarRoles)

		r.Get("/", participantHandler.List)
		r.Get("/{participantID}", participantHandler.GetByID)
		r.Put("/{participantID}", participantHandler.Update)
		r.Delete("/{participantID}", participantHandler.Delete)
		r.Put("/{participantID}/status", participantHandler.UpdateStatus)
		r.Get("/export", participantHandler.Export)
		r.Get("/export/{format}", participantHandler.Export)

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleCommunityAdmin))
			r.Post("/bulk-upload", participantHandler.BulkUpload)
		})
	})

	// Sport administration
	router.Route("/admin/sports", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Post("/", sportHandler.CreateSport)
		r.Put("/{sportID}", sportHandler.UpdateSport)
		r.Delete("/{sportID}", sportHandler.DeleteSport)
		r.Post("/{sportID}/logo", sportHandler.UploadSportLogo)
		r.Post("/{sportID}/incompatibilities", sportHandler.DeclareIncompatibility)
		r.Delete("/{sportID}/incompatibilities/{otherID}", sportHandler.RemoveIncompatibility)
	})

	// Community administration
	router.Route("/admin/communities", func(r chi.Router) {
		r.Use(authenticate)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Post("/", communityHandler.Create)
			r.Delete("/{communityID}", communityHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleCommunityAdmin))
			r.Put("/{communityID}", communityHandler.Update)
			r.Post("/{communityID}/logo", communityHandler.UploadLogo)
			r.Get("/{communityID}/contacts", communityHandler.ListContacts)
			r.Post("/{communityID}/contacts", communityHandler.AddContact)
			r.Put("/{communityID}/contacts/{contactID}", communityHandler.UpdateContact)
			r.Delete("/{communityID}/contacts/{contactID}", communityHandler.DeleteContact)
		})
	})

	// Volunteer administration
	router.Route("/volunteers", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleVolunteerAdmin))

		r.Post("/", volunteerHandler.Create)
		r.Get("/", volunteerHandler.List)
		r.Get("/{volunteerID}", volunteerHandler.GetByID)
		r.Put("/{volunteerID}", volunteerHandler.Update)
		r.Delete("/{volunteerID}", volunteerHandler.Delete)
	})
	router.Route("/departments", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleVolunteerAdmin))

		r.Get("/", volunteerHandler.ListDepartments)
		r.Post("/", volunteerHandler.CreateDepartment)
		r.Delete("/{departmentID}", volunteerHandler.DeleteDepartment)
	})

	// Scores, schedule, formats, convenors
	router.Route("/admin/leaderboard", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleSportsAdmin))

		r.Post("/", leaderboardHandler.Upsert)
		r.Put("/{entryID}", leaderboardHandler.Update)
		r.Delete("/{entryID}", leaderboardHandler.Delete)
	})
	router.Route("/admin/calendar", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleSportsAdmin))

		r.Post("/", calendarHandler.Create)
		r.Put("/{eventID}", calendarHandler.Update)
		r.Delete("/{eventID}", calendarHandler.Delete)
	})
	router.Route("/admin/formats", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleSportsAdmin))

		r.Post("/", formatHandler.Create)
		r.Put("/{formatID}", formatHandler.Update)
		r.Delete("/{formatID}", formatHandler.Delete)
	})
	router.Route("/admin/convenors", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(appMiddleware.Authorize(models.RoleAdmin, models.RoleSportsAdmin))

		r.Post("/", convenorHandler.Create)
		r.Get("/{convenorID}", convenorHandler.GetByID)
		r.Put("/{convenorID}", convenorHandler.Update)
		r.Delete("/{convenorID}", convenorHandler.Delete)
	})

	// User management and platform settings
	router.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Get("/", userHandler.List)
		r.Get("/{userID}", userHandler.GetByID)
		r.Put("/{userID}", userHandler.Update)
		r.Delete("/{userID}", userHandler.Delete)
	})
	router.Route("/email", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(registrarRoles)

		r.Post("/registration-confirmation", emailHandler.RegistrationConfirmation)
	})
	router.Route("/admin/emails", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Post("/broadcast", emailHandler.Broadcast)
		r.Get("/", emailHandler.Recent)
	})
	router.Route("/settings", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", settingsHandler.Get)
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Put("/freeze-date", settingsHandler.SetFreezeDate)
		})
	})
}
