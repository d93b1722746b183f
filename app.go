package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ambulink/config"
	"ambulink/cron"
	"ambulink/database"
	analyticsRepo "ambulink/database/repository/analytics"
	bookingRepo "ambulink/database/repository/booking"
	hospitalRepo "ambulink/database/repository/hospital"
	notificationRepo "ambulink/database/repository/notification"
	userRepo "ambulink/database/repository/user"
	"ambulink/handlers"
	"ambulink/middleware"
	"ambulink/models"
	"ambulink/routes"
	"ambulink/services/analytics"
	"ambulink/services/booking"
	"ambulink/services/events"
	"ambulink/services/hospital"
	"ambulink/services/location"
	"ambulink/services/notification"
	"ambulink/services/realtime"
	"ambulink/services/tasks"
	"ambulink/services/user"
	"ambulink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// repositories groups the Mongo-backed stores.
type repositories struct {
	bookings      *bookingRepo.MongoBookingRepo
	users         *userRepo.MongoUserRepo
	notifications *notificationRepo.MongoNotificationRepo
	hospitals     *hospitalRepo.MongoHospitalRepo
	analytics     *analyticsRepo.MongoAnalyticsRepo
}

func openRepositories(ctx context.Context) (*repositories, error) {
	db := database.DB()
	repos := &repositories{
		bookings:      bookingRepo.NewMongoBookingRepo(db),
		users:         userRepo.NewMongoUserRepo(db),
		notifications: notificationRepo.NewMongoNotificationRepo(db),
		hospitals:     hospitalRepo.NewMongoHospitalRepo(db),
		analytics:     analyticsRepo.NewMongoAnalyticsRepo(db),
	}

	indexers := map[string]interface {
		EnsureIndexes(context.Context) error
	}{
		"bookings":      repos.bookings,
		"users":         repos.users,
		"notifications": repos.notifications,
		"hospitals":     repos.hospitals,
	}
	for name, r := range indexers {
		if err := r.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return repos, nil
}

func runServer() error {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck
	if err := utils.CheckJWTSecret(); err != nil {
		return err
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	utils.InitRedis()
	defer utils.CloseRedis()
	utils.StartHealthMonitor(ctx, 30*time.Second, utils.RedisClients(), database.MongoClient)

	repos, err := openRepositories(ctx)
	if err != nil {
		return err
	}

	// Realtime sinks. The booking service guards room joins, so the hub
	// resolves it lazily.
	var bookingService *booking.DefaultBookingService
	hub := realtime.NewHub(func(ctx context.Context, actor models.Actor, room string) error {
		return bookingService.CanJoinRoom(ctx, actor, room)
	}, nil)
	defer hub.Close()

	sinks := []realtime.Sink{{Name: "websocket", Broadcaster: hub}}
	if url := config.AppConfig.RabbitMQURL; url != "" {
		rabbit, err := events.NewRabbitPublisher(url)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, booking events stay local", zap.Error(err))
		} else {
			defer rabbit.Close()
			sinks = append(sinks, realtime.Sink{Name: "rabbitmq", Broadcaster: rabbit})
		}
	}
	if brokers := config.SplitList(config.AppConfig.KafkaBrokers); len(brokers) > 0 {
		kafka := events.NewKafkaLocationSink(brokers, config.AppConfig.KafkaLocationTopic)
		defer kafka.Close()
		sinks = append(sinks, realtime.Sink{Name: "kafka", Broadcaster: kafka})
	}
	broadcaster := realtime.NewFanout(sinks...)

	// services.
	var pusher notification.Pusher
	if fcm := utils.FirebaseInit(ctx); fcm != nil {
		pusher = notification.NewFCMPusher(fcm)
	}
	notificationService, err := notification.NewDefaultNotificationService(repos.notifications, repos.users, broadcaster, pusher)
	if err != nil {
		return err
	}

	userService := &user.DefaultUserService{
		Repo:        repos.users,
		Bookings:    repos.bookings,
		Broadcaster: broadcaster,
		TokenTTL:    config.AppConfig.TokenTTL,
	}
	if geo := utils.GetGeoClient(); geo != nil {
		index := location.NewRedisIndex(geo)
		userService.Locations = index
		go cron.StartDriverIndexCron(ctx, 5*time.Minute, repos.users, index)
	}
	hub.SetLocationUpdater(userService)

	hospitalService := &hospital.DefaultHospitalService{Repo: repos.hospitals}

	bookingService = &booking.DefaultBookingService{
		Bookings:    repos.bookings,
		Users:       repos.users,
		Notifier:    notificationService,
		Broadcaster: broadcaster,
		Hospitals:   hospitalService,
	}
	if config.RedisEnabled() {
		escalator := tasks.NewAsynqEscalator(cron.RedisOpt(), config.AppConfig.EscalationDelay)
		defer escalator.Close()
		bookingService.Escalator = escalator

		worker := cron.InitEscalationWorker(repos.bookings, notificationService)
		defer worker.Shutdown()
	}

	analyticsService := &analytics.DefaultAnalyticsService{
		Repo:  repos.analytics,
		Cache: utils.GetCacheClient(),
	}

	// handlers.
	authHandler := handlers.NewAuthHandler(userService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	driverHandler := handlers.NewDriverHandler(userService)
	hospitalHandler := handlers.NewHospitalHandler(hospitalService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	origins := config.SplitList(config.AppConfig.CORSOrigins)
	wsHandler := handlers.NewWebsocketHandler(hub, origins)

	handlerBundle := &handlers.HandlerBundle{
		RegisterHandler:       authHandler.RegisterHandler,
		LoginHandler:          authHandler.LoginHandler,
		UpdateFCMTokenHandler: authHandler.UpdateFCMTokenHandler,

		CreateBookingHandler:  bookingHandler.CreateBookingHandler,
		ListBookingsHandler:   bookingHandler.ListBookingsHandler,
		GetBookingHandler:     bookingHandler.GetBookingHandler,
		UpdateStatusHandler:   bookingHandler.UpdateStatusHandler,
		AssignDriverHandler:   bookingHandler.AssignDriverHandler,
		SubmitFeedbackHandler: bookingHandler.SubmitFeedbackHandler,
		EmergencyAlertHandler: bookingHandler.EmergencyAlertHandler,

		ListDriversHandler:     driverHandler.ListDriversHandler,
		NearbyDriversHandler:   driverHandler.NearbyDriversHandler,
		UpdateLocationHandler:  driverHandler.UpdateLocationHandler,
		SetAvailabilityHandler: driverHandler.SetAvailabilityHandler,

		ListHospitalsHandler:     hospitalHandler.ListHospitalsHandler,
		CreateHospitalHandler:    hospitalHandler.CreateHospitalHandler,
		ListNotificationsHandler: notificationHandler.ListNotificationsHandler,
		MarkReadHandler:          notificationHandler.MarkReadHandler,
		DashboardHandler:         analyticsHandler.DashboardHandler,

		WebsocketHandler: wsHandler.ServeHandler,
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(routes.CORS(origins))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "5000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("server failed to start: %w", err)
	}
	logger.Info("server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("mongo disconnect failed", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
	return nil
}

func runSeed(ctx context.Context, name, email, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync() //nolint:errcheck

	database.InitDB()
	defer database.Disconnect(context.Background()) //nolint:errcheck

	repos, err := openRepositories(ctx)
	if err != nil {
		return err
	}

	if password != "" {
		userService := &user.DefaultUserService{Repo: repos.users, Bookings: repos.bookings}
		admin, err := userService.EnsureAdmin(ctx, name, email, password)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		logger.Info("admin account ready", zap.String("userId", admin.ID), zap.String("email", admin.Email))
	} else {
		logger.Warn("no admin password given, skipping admin account")
	}

	hospitalService := &hospital.DefaultHospitalService{Repo: repos.hospitals}
	inserted, err := hospitalService.SeedDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seed hospitals: %w", err)
	}
	logger.Info("hospital directory seeded", zap.Int("inserted", inserted))
	return nil
}
