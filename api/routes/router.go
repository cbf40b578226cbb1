package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Shashankphatkure/equico-app/api/controllers"
	analyticscontrollers "github.com/Shashankphatkure/equico-app/api/controllers/analytics"
	subscriptioncontrollers "github.com/Shashankphatkure/equico-app/api/controllers/subscriptions"
	webhookcontrollers "github.com/Shashankphatkure/equico-app/api/controllers/webhooks"
	"github.com/Shashankphatkure/equico-app/api/middleware"
	"github.com/Shashankphatkure/equico-app/internal/analytics"
	"github.com/Shashankphatkure/equico-app/internal/auth"
	"github.com/Shashankphatkure/equico-app/internal/disputes"
	"github.com/Shashankphatkure/equico-app/internal/follows"
	"github.com/Shashankphatkure/equico-app/internal/horses"
	"github.com/Shashankphatkure/equico-app/internal/listings"
	"github.com/Shashankphatkure/equico-app/internal/messages"
	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/internal/posts"
	"github.com/Shashankphatkure/equico-app/internal/reviews"
	"github.com/Shashankphatkure/equico-app/internal/shops"
	subscriptionsvc "github.com/Shashankphatkure/equico-app/internal/subscriptions"
	"github.com/Shashankphatkure/equico-app/internal/users"
	"github.com/Shashankphatkure/equico-app/pkg/auth/session"
	"github.com/Shashankphatkure/equico-app/pkg/config"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/metrics"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
	pkgredis "github.com/Shashankphatkure/equico-app/pkg/redis"
)

// RedisStore is the subset of the redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	controllers.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type signingSecretProvider interface {
	SigningSecret() string
}

// Params carries everything the router mounts. Nil services answer 500.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    RedisStore
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	Auth          auth.Service
	Register      auth.RegisterService
	Users         users.Service
	Follows       follows.Service
	Posts         posts.Service
	Horses        horses.Service
	Listings      listings.Service
	Shops         shops.Service
	Analytics     analytics.Service
	Subscriptions subscriptionsvc.Service
	Messages      messages.Service
	Notifications notifications.Service
	Reviews       reviews.Service
	Disputes      disputes.Service
	Realtime      realtime.Subscriber

	StripeClient       signingSecretProvider
	StripeWebhook      webhookcontrollers.StripeWebhookService
	StripeWebhookGuard stripeWebhookGuard
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	maxUpload := cfg.Media.MaxUploadBytes()
	cookies := controllers.CookieOptions{Secure: cfg.App.IsProd()}

	var registerer prometheus.Registerer
	if p.Registry != nil {
		registerer = p.Registry
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(metrics.NewHTTPMetrics(registerer)),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    p.DB,
			"redis": p.Redis,
		}, logg))
	})
	if p.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	authRequired := middleware.Auth(cfg.JWT, p.Sessions, logg)
	authOptional := middleware.OptionalAuth(cfg.JWT, p.Sessions, logg)

	r.Route("/api", func(r chi.Router) {
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(p.StripeWebhook, p.StripeClient, p.StripeWebhookGuard, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), p.Redis, logg)).
				Post("/login", controllers.AuthLogin(p.Auth, cookies, logg))
			r.With(middleware.AuthRateLimit(middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit), p.Redis, logg)).
				Post("/register", controllers.AuthRegister(p.Register, logg))
			r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, cookies, logg))
		})

		// public browse; a signed-in caller additionally gets isSaved
		r.Group(func(r chi.Router) {
			r.Use(authOptional)
			r.Get("/marketplace/listings", controllers.ListListings(p.Listings, logg))
			r.Get("/marketplace/listings/{id}", controllers.GetListing(p.Listings, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Get("/realtime", controllers.RealtimeSubscribe(p.Realtime, cfg.CORS.AllowedOrigins, logg))

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", controllers.GetProfile(p.Users, logg))
				r.Put("/", controllers.UpdateProfile(p.Users, maxUpload, logg))
				r.Get("/posts", controllers.ProfilePosts(p.Posts, logg))
				r.Post("/follow", controllers.FollowUser(p.Follows, logg))
				r.Delete("/follow", controllers.UnfollowUser(p.Follows, logg))
				r.Get("/{id}/followers", controllers.ProfileFollowers(p.Follows, logg))
				r.Get("/{id}/following", controllers.ProfileFollowing(p.Follows, logg))
			})
			r.Get("/search/users", controllers.SearchUsers(p.Users, logg))

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", controllers.ListPosts(p.Posts, logg))
				r.Post("/", controllers.CreatePost(p.Posts, maxUpload, logg))
				r.Post("/{id}/like", controllers.LikePost(p.Posts, logg))
				r.Delete("/{id}/like", controllers.UnlikePost(p.Posts, logg))
				r.Get("/{id}/comments", controllers.ListComments(p.Posts, logg))
				r.Post("/{id}/comments", controllers.CreateComment(p.Posts, logg))
				r.Delete("/{id}/comments", controllers.DeleteComment(p.Posts, logg))
			})

			r.Route("/horses", func(r chi.Router) {
				r.Get("/", controllers.ListHorses(p.Horses, logg))
				r.Post("/", controllers.CreateHorse(p.Horses, logg))
				r.Get("/{id}", controllers.GetHorse(p.Horses, logg))
				r.Put("/{id}", controllers.UpdateHorse(p.Horses, logg))
				r.Delete("/{id}", controllers.DeleteHorse(p.Horses, logg))
				r.Get("/{id}/medical-records", controllers.ListMedicalRecords(p.Horses, logg))
				r.Post("/{id}/medical-records", controllers.CreateMedicalRecord(p.Horses, maxUpload, logg))
				r.Get("/{id}/appointments", controllers.ListAppointments(p.Horses, logg))
				r.Post("/{id}/appointments", controllers.CreateAppointment(p.Horses, logg))
				r.Put("/{id}/appointments", controllers.UpdateAppointment(p.Horses, logg))
			})

			r.Route("/marketplace", func(r chi.Router) {
				r.Post("/listings", controllers.CreateListing(p.Listings, maxUpload, logg))
				r.Put("/listings/{id}", controllers.UpdateListing(p.Listings, maxUpload, logg))
				r.Delete("/listings/{id}", controllers.DeleteListing(p.Listings, logg))
				r.Post("/listings/{id}/save", controllers.SaveListing(p.Listings, logg))
				r.Delete("/listings/{id}/save", controllers.UnsaveListing(p.Listings, logg))

				r.Route("/shop", func(r chi.Router) {
					r.Get("/", controllers.GetShop(p.Shops, logg))
					r.Put("/", controllers.UpdateShop(p.Shops, maxUpload, logg))
					r.Delete("/", controllers.DeleteShop(p.Shops, logg))
					r.Get("/listings", controllers.ShopListings(p.Shops, logg))
					r.Post("/listings", controllers.CreateShopListing(p.Listings, maxUpload, logg))
					r.Put("/listings", controllers.BulkShopListings(p.Shops, logg))
					r.Get("/analytics", analyticscontrollers.ShopAnalytics(p.Analytics, logg))
					r.Get("/analytics/export", analyticscontrollers.ShopAnalyticsExport(p.Analytics, logg))
					r.Post("/upgrade", subscriptioncontrollers.ShopUpgrade(p.Subscriptions, logg))
				})
			})

			r.Get("/messages", controllers.ListMessages(p.Messages, logg))
			r.Post("/messages", controllers.SendMessage(p.Messages, logg))

			r.Get("/notifications", controllers.ListNotifications(p.Notifications, logg))
			r.Put("/notifications", controllers.MarkNotificationsRead(p.Notifications, logg))

			r.Post("/reviews", controllers.CreateReview(p.Reviews, logg))
			r.Post("/disputes", controllers.OpenDispute(p.Disputes, logg))
		})
	})

	return r
}
