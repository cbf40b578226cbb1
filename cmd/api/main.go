package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Shashankphatkure/equico-app/api/routes"
	"github.com/Shashankphatkure/equico-app/internal/analytics"
	"github.com/Shashankphatkure/equico-app/internal/auth"
	"github.com/Shashankphatkure/equico-app/internal/disputes"
	"github.com/Shashankphatkure/equico-app/internal/follows"
	"github.com/Shashankphatkure/equico-app/internal/horses"
	"github.com/Shashankphatkure/equico-app/internal/listings"
	"github.com/Shashankphatkure/equico-app/internal/media"
	"github.com/Shashankphatkure/equico-app/internal/messages"
	"github.com/Shashankphatkure/equico-app/internal/notifications"
	"github.com/Shashankphatkure/equico-app/internal/posts"
	"github.com/Shashankphatkure/equico-app/internal/reviews"
	"github.com/Shashankphatkure/equico-app/internal/shops"
	"github.com/Shashankphatkure/equico-app/internal/subscriptions"
	"github.com/Shashankphatkure/equico-app/internal/users"
	stripewebhook "github.com/Shashankphatkure/equico-app/internal/webhooks/stripe"
	"github.com/Shashankphatkure/equico-app/pkg/auth/session"
	"github.com/Shashankphatkure/equico-app/pkg/config"
	"github.com/Shashankphatkure/equico-app/pkg/db"
	"github.com/Shashankphatkure/equico-app/pkg/instance"
	"github.com/Shashankphatkure/equico-app/pkg/logger"
	"github.com/Shashankphatkure/equico-app/pkg/migrate"
	"github.com/Shashankphatkure/equico-app/pkg/pubsub"
	"github.com/Shashankphatkure/equico-app/pkg/realtime"
	"github.com/Shashankphatkure/equico-app/pkg/redis"
	"github.com/Shashankphatkure/equico-app/pkg/security"
	"github.com/Shashankphatkure/equico-app/pkg/storage/gcs"
	"github.com/Shashankphatkure/equico-app/pkg/stripe"
)

const (
	shutdownTimeout   = 15 * time.Second
	readHeaderTimeout = 10 * time.Second
	stripeEventScope  = "stripe-webhook"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	must(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	must(ctx, logg, "database", err)
	defer closeQuietly(logg, "database", dbClient.Close)

	must(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	must(ctx, logg, "redis", err)
	defer closeQuietly(logg, "redis", redisClient.Close)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	must(ctx, logg, "object storage", err)
	defer closeQuietly(logg, "object storage", gcsClient.Close)

	stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
	must(ctx, logg, "stripe", err)

	broker, err := realtime.NewRedisBroker(redisClient)
	must(ctx, logg, "realtime broker", err)
	var publisher realtime.Publisher = broker
	if cfg.Realtime.UsesPubSub() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		must(ctx, logg, "pubsub", err)
		defer closeQuietly(logg, "pubsub", pubsubClient.Close)

		cloudPublisher, err := realtime.NewPubSubPublisher(pubsubClient.RealtimePublisher())
		must(ctx, logg, "pubsub publisher", err)
		// local websocket subscribers still listen on redis
		publisher = realtime.Fanout{broker, cloudPublisher}
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	must(ctx, logg, "session manager", err)

	uploader, err := media.NewUploader(gcsClient, logg)
	must(ctx, logg, "media uploader", err)

	hasher := security.NewHasher(cfg.Password)
	usersRepo := users.NewRepository(dbClient.DB())
	shopsRepo := shops.NewRepository(dbClient.DB())
	listingsRepo := listings.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Passwords:      hasher,
		JWTConfig:      cfg.JWT,
	})
	must(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{UserRepo: usersRepo, Passwords: hasher})
	must(ctx, logg, "register service", err)

	usersService, err := users.NewService(users.ServiceParams{Repo: usersRepo, Uploader: uploader})
	must(ctx, logg, "users service", err)

	followsService, err := follows.NewService(follows.ServiceParams{Repo: follows.NewRepository(dbClient.DB()), Users: usersRepo})
	must(ctx, logg, "follows service", err)

	postsService, err := posts.NewService(posts.ServiceParams{
		Repo:      posts.NewRepository(dbClient.DB()),
		Uploader:  uploader,
		Publisher: publisher,
		Logger:    logg,
	})
	must(ctx, logg, "posts service", err)

	horsesService, err := horses.NewService(horses.ServiceParams{
		DB:       dbClient,
		Repo:     horses.NewRepository(dbClient.DB()),
		Uploader: uploader,
	})
	must(ctx, logg, "horses service", err)

	shopsService, err := shops.NewService(shops.ServiceParams{
		DB:       dbClient,
		Repo:     shopsRepo,
		Users:    usersRepo,
		Saves:    listingsRepo,
		Uploader: uploader,
	})
	must(ctx, logg, "shops service", err)

	listingsService, err := listings.NewService(listings.ServiceParams{
		DB:       dbClient,
		Repo:     listingsRepo,
		Shops:    shopsService,
		ShopRepo: shopsRepo,
		Uploader: uploader,
	})
	must(ctx, logg, "listings service", err)

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo:  analytics.NewRepository(dbClient.DB()),
		Shops: shopsService,
	})
	must(ctx, logg, "analytics service", err)

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Shops:   shopsService,
		Prices:  stripeClient,
		Stripe:  subscriptions.NewStripeCheckoutClient(),
		BaseURL: cfg.App.BaseURL,
	})
	must(ctx, logg, "subscriptions service", err)

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:      notifications.NewRepository(dbClient.DB()),
		Publisher: publisher,
		Logger:    logg,
	})
	must(ctx, logg, "notifications service", err)

	messagesService, err := messages.NewService(messages.ServiceParams{
		Repo:      messages.NewRepository(dbClient.DB()),
		Users:     usersRepo,
		Listings:  listingsRepo,
		Notifier:  notificationsService,
		Publisher: publisher,
		Logger:    logg,
	})
	must(ctx, logg, "messages service", err)

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviews.NewRepository(dbClient.DB()),
		Users:    usersRepo,
		Listings: listingsRepo,
		Notifier: notificationsService,
		Logger:   logg,
	})
	must(ctx, logg, "reviews service", err)

	disputesService, err := disputes.NewService(disputes.ServiceParams{
		Repo:     disputes.NewRepository(dbClient.DB()),
		Listings: listingsRepo,
		Notifier: notificationsService,
		Logger:   logg,
	})
	must(ctx, logg, "disputes service", err)

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{DB: dbClient, ShopsRepo: shopsRepo, Logger: logg})
	must(ctx, logg, "stripe webhook service", err)

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.EventTTL, stripeEventScope)
	must(ctx, logg, "stripe webhook guard", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := routes.NewRouter(routes.Params{
		Config:             cfg,
		Logger:             logg,
		DB:                 dbClient,
		Redis:              redisClient,
		Sessions:           sessionManager,
		Registry:           registry,
		Auth:               authService,
		Register:           registerService,
		Users:              usersService,
		Follows:            followsService,
		Posts:              postsService,
		Horses:             horsesService,
		Listings:           listingsService,
		Shops:              shopsService,
		Analytics:          analyticsService,
		Subscriptions:      subscriptionsService,
		Messages:           messagesService,
		Notifications:      notificationsService,
		Reviews:            reviewsService,
		Disputes:           disputesService,
		Realtime:           broker,
		StripeClient:       stripeClient,
		StripeWebhook:      webhookService,
		StripeWebhookGuard: webhookGuard,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"instance":   instance.GetID(),
		"stripe_env": stripeClient.Environment(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}

func must(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("failed to bootstrap %s", resource), err)
	os.Exit(1)
}

func closeQuietly(logg *logger.Logger, resource string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(context.Background(), "error closing "+resource, err)
	}
}
