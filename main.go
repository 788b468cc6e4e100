package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/config"
	"backoffice/cron"
	"backoffice/database"
	"backoffice/database/repository"
	"backoffice/handlers"
	"backoffice/middleware"
	"backoffice/routes"
	"backoffice/services/aggregator"
	"backoffice/services/notification"
	"backoffice/services/tasks"
	"backoffice/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	utils.InitRedis()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))

	// repositories.
	repos := repository.NewMongoRepositories(database.DB())

	// aggregation.
	sources := aggregator.NewRepositorySources(repos)
	if config.AppConfig.StripeKey != "" {
		stripe.Key = config.AppConfig.StripeKey
		sources.Payments = aggregator.NewStripePaymentSource()
		logger.Info("payments are read from Stripe")
	}
	aggOpts := []aggregator.Option{
		aggregator.WithPageLimit(config.AppConfig.SourcePageLimit),
		aggregator.WithMaxPages(config.AppConfig.SourceMaxPages),
		aggregator.WithFetchConcurrency(config.AppConfig.SourceFetchConcurrency),
		aggregator.WithLogger(logger.Named("aggregator")),
	}
	if ttl := config.AppConfig.AggregationCacheTTL(); ttl > 0 {
		aggOpts = append(aggOpts, aggregator.WithCache(aggregator.NewRedisResultCache(utils.GetCacheClient(), ttl)))
	}
	agg := aggregator.NewAggregator(sources, aggOpts...)

	// notifications.
	hub := notification.NewRedisHub(utils.GetPubSubClient(), notification.DefaultHubChannel, logger.Named("hub"))
	var pusher notification.Pusher
	fcm, err := utils.FirebaseInit(ctx)
	if err != nil {
		logger.Warn("device pushes disabled", zap.Error(err))
	} else if fcm != nil {
		pusher = notification.NewFCMPusher(fcm, config.AppConfig.FirebaseAdminTopic)
	}
	notificationService, err := notification.NewDefaultNotificationService(repos.Notifications, hub, pusher, logger.Named("notifications"))
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}

	queue := cron.NewQueueClient()
	defer queue.Close()
	worker := cron.InitNotificationWorker(ctx, notificationService, logger.Named("worker"))

	utils.StartHealthMonitor(ctx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetPubSubClient()},
		database.MongoClient)

	sourceHandler := handlers.NewSourceHandler(sources)
	activityHandler := handlers.NewActivityHandler(agg)
	notificationHandler := handlers.NewNotificationHandler(notificationService, tasks.NewAsynqEnqueuer(queue))

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		AdminToken:      config.AppConfig.AdminToken,
		JWTSecret:       config.AppConfig.JWTSecret,
		RateLimitPerMin: config.AppConfig.MaxRequestsPerMin,

		// Source listings.
		ListCustomersHandler:         sourceHandler.ListCustomersHandler,
		ListPaymentsHandler:          sourceHandler.ListPaymentsHandler,
		ListSubscriptionsHandler:     sourceHandler.ListSubscriptionsHandler,
		ListTokenTransactionsHandler: sourceHandler.ListTokenTransactionsHandler,

		// Activity.
		GetActivityHandler: activityHandler.GetActivityHandler,

		// Notifications.
		ListNotificationsHandler:  notificationHandler.ListNotificationsHandler,
		UnreadCountHandler:        notificationHandler.UnreadCountHandler,
		MarkNotificationRead:      notificationHandler.MarkNotificationRead,
		MarkAllNotificationsRead:  notificationHandler.MarkAllNotificationsRead,
		DeleteNotificationHandler: notificationHandler.DeleteNotificationHandler,
		CreateNotificationHandler: notificationHandler.CreateNotificationHandler,
		StreamNotifications:       notificationHandler.StreamNotifications,

		HealthHandler: handlers.HealthHandler,
	}
	if handlerBundle.AdminToken == "" && handlerBundle.JWTSecret == "" {
		logger.Warn("neither ADMIN_TOKEN nor JWT_SECRET is set, every admin request will be rejected")
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	// Request contexts end when shutdown starts so open notification
	// streams let go of their connections.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelRequests)

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()

	logger.Sugar().Info("main: server stopped gracefully")
}
