package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/golfcompete/golfcompete/handlers"
	"github.com/golfcompete/golfcompete/middleware"
)

// SetupRoutes mounts the full API surface. Reads on series, events, courses
// and rounds are public; every mutation requires a Bearer token.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	seriesHandler *handlers.SeriesHandler,
	eventHandler *handlers.EventHandler,
	roundHandler *handlers.RoundHandler,
	bagHandler *handlers.BagHandler,
	courseHandler *handlers.CourseHandler,
	noteHandler *handlers.NoteHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
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

	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/ws/events/{eventID}/leaderboard", webSocketHandler.EventLeaderboard)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Get("/oauth/redirect", authHandler.OAuthRedirect)
			r.Get("/oauth/callback", authHandler.OAuthCallback)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Put("/password", authHandler.UpdatePassword)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/", userHandler.List)
			r.Get("/me", userHandler.GetCurrent)
			r.Get("/{userID}", userHandler.Get)
			r.Put("/{userID}", userHandler.Update)
			r.Put("/{userID}/role", userHandler.UpdateRole)
			r.Delete("/{userID}", userHandler.Delete)
			r.Post("/{userID}/avatar", userHandler.UploadAvatar)
		})

		r.Route("/series", func(r chi.Router) {
			r.Get("/", seriesHandler.List)
			r.Get("/{seriesID}", seriesHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/", seriesHandler.Create)
				r.Put("/{seriesID}", seriesHandler.Update)
				r.Delete("/{seriesID}", seriesHandler.Delete)
				r.Post("/{seriesID}/participants", seriesHandler.InviteParticipant)
				r.Post("/participants/{participantID}/respond", seriesHandler.RespondToInvitation)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.Get("/{eventID}", eventHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/", eventHandler.Create)
				r.Put("/{eventID}", eventHandler.Update)
				r.Delete("/{eventID}", eventHandler.Delete)
				r.Post("/{eventID}/participants", eventHandler.InviteParticipant)
				r.Delete("/participants/{participantID}", eventHandler.RemoveParticipant)
				r.Post("/participants/{participantID}/respond", eventHandler.RespondToInvitation)
			})
		})

		r.Route("/rounds", func(r chi.Router) {
			r.Get("/{roundID}", roundHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Get("/", roundHandler.List)
				r.Post("/", roundHandler.Start)
				r.Post("/{roundID}/scores", roundHandler.AddHoleScore)
				r.Post("/{roundID}/complete", roundHandler.Complete)
				r.Delete("/{roundID}", roundHandler.Delete)
			})
		})

		r.Route("/bags", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/", bagHandler.List)
			r.Post("/", bagHandler.Create)
			r.Get("/{bagID}", bagHandler.Get)
			r.Put("/{bagID}", bagHandler.Update)
			r.Delete("/{bagID}", bagHandler.Delete)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courseHandler.List)
			r.Get("/{courseID}", courseHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Post("/", courseHandler.Create)
				r.Put("/{courseID}", courseHandler.Update)
				r.Delete("/{courseID}", courseHandler.Delete)
				r.Post("/{courseID}/image", courseHandler.UploadImage)

				r.Post("/{courseID}/holes", courseHandler.AddHole)
				r.Put("/{courseID}/holes/bulk", courseHandler.ReplaceHoles)
				r.Put("/holes/{holeID}", courseHandler.UpdateHole)
				r.Delete("/holes/{holeID}", courseHandler.DeleteHole)

				r.Post("/{courseID}/tees", courseHandler.AddTee)
				r.Put("/tees/{teeID}", courseHandler.UpdateTee)
				r.Delete("/tees/{teeID}", courseHandler.DeleteTee)
			})
		})

		r.Route("/notes", func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/", noteHandler.List)
			r.Post("/", noteHandler.Create)
			r.Get("/{noteID}", noteHandler.Get)
			r.Put("/{noteID}", noteHandler.Update)
			r.Delete("/{noteID}", noteHandler.Delete)
		})
	})
}
