package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"photofolio/internal/api/handlers"
	"photofolio/internal/auth"
	"photofolio/internal/services"
	"photofolio/internal/storage"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(userService services.UserServiceProvider, photoService services.PhotoServiceProvider, files *storage.FileStore) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Uploaded images are exposed under their stored URL prefix.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(files.Dir()))))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	photoHandler := handlers.NewPhotoHandler(photoService, files)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware())

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", userHandler.GetProfile)
				r.Put("/profile", userHandler.UpdateProfile)
			})

			r.Route("/photos", func(r chi.Router) {
				r.Get("/", photoHandler.List)
				r.Post("/", photoHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", photoHandler.Get)
					r.Put("/", photoHandler.Update)
					r.Delete("/", photoHandler.Delete)
				})
			})
		})
	})

	return r
}
