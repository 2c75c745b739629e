package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gemcircle/gemcircle-backend/api/controllers"
	"github.com/gemcircle/gemcircle-backend/api/middleware"
	"github.com/gemcircle/gemcircle-backend/internal/grouppurchases"
	"github.com/gemcircle/gemcircle-backend/internal/notifications"
	"github.com/gemcircle/gemcircle-backend/pkg/config"
	"github.com/gemcircle/gemcircle-backend/pkg/db"
	"github.com/gemcircle/gemcircle-backend/pkg/logger"
	"github.com/gemcircle/gemcircle-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	purchaseService grouppurchases.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.RateLimit(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/group-purchases", func(r chi.Router) {
			r.Get("/", controllers.ListGroupPurchases(purchaseService, logg))
			r.Post("/", controllers.CreateGroupPurchase(purchaseService, logg))
			r.Route("/{purchaseId}", func(r chi.Router) {
				r.Get("/", controllers.GetGroupPurchase(purchaseService, logg))
				r.Patch("/cancel", controllers.CancelGroupPurchase(purchaseService, logg))
				r.Post("/join", controllers.JoinGroupPurchase(purchaseService, logg))
				r.Delete("/join", controllers.LeaveGroupPurchase(purchaseService, logg))
				r.Get("/participants", controllers.ListGroupPurchaseParticipants(purchaseService, logg))
				r.Patch("/participants/me", controllers.SetMyParticipantStatus(purchaseService, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Patch("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
