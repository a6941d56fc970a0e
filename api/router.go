package api

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	api_middleware "gitlab.uncharted.software/WM/runsync-client/api/middleware"
	"gitlab.uncharted.software/WM/runsync-client/api/queue"
	"gitlab.uncharted.software/WM/runsync-client/api/routes"
	"gitlab.uncharted.software/WM/runsync-client/config"
)

// NewRouter returns a chi router with the webhook receiver endpoints registered.
func NewRouter(cfg config.Config, notificationQueue queue.NotificationQueue) (chi.Router, error) {

	// Setup the router and configure baseline middleware
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api_middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer)

	// Configure CORS handling
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Route("/webhook", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/", routes.NotifyRequest(&cfg, notificationQueue))
		r.Get("/status", routes.StatusRequest(&cfg, notificationQueue))
		r.Get("/notifications", routes.NotificationsRequest(&cfg, notificationQueue))
		r.Post("/notifications/next", routes.NextNotificationRequest(&cfg, notificationQueue))
		r.Delete("/notifications", routes.ClearRequest(&cfg, notificationQueue))
	})

	return r, nil
}
