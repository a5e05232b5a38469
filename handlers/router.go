package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

type RouterConfig struct {
	Auth               *AuthHandler
	Albums             *AlbumHandler
	Photos             *PhotoHandler
	CORSAllowedOrigins []string
}

// NewRouter wires the API routes behind the request middleware stack
func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   rc.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.New(corsOptions).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", rc.Auth.Login)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(rc.Auth.JWTSecret))

			r.Route("/albums", func(r chi.Router) {
				r.Get("/", rc.Albums.ListAlbums)
				r.Get("/{name}/photos", rc.Albums.ListAlbumPhotos)
			})

			r.Route("/photos/{id}", func(r chi.Router) {
				r.Get("/", rc.Photos.GetPhoto)
				r.Put("/", rc.Photos.UpdatePhoto)
				r.Post("/tags", rc.Photos.AddTag)
				r.Get("/history", rc.Photos.History)
				r.Get("/thumbnail", rc.Photos.Thumbnail)
			})
		})
	})

	return r
}
