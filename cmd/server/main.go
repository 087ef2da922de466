package main

import (
	"net/http"

	"horseshipt/config"
	"horseshipt/db"
	"horseshipt/db/mongo"
	"horseshipt/db/postgres"
	"horseshipt/handlers"
	"horseshipt/repository"
	"horseshipt/routes"
	"horseshipt/utils"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load config from .env or config file
	cfg := config.LoadConfig()

	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var (
		shipmentRepo   repository.ShipmentRepository
		quoteRepo      repository.QuoteRepository
		assignmentRepo repository.AssignmentRepository
		userRepo       repository.UserRepository
		settingsRepo   repository.SettingsRepository
		messageRepo    repository.MessageRepository
	)

	switch db.DBType(cfg.DBType) {
	case db.Postgres:
		if err := db.RunMigrations(cfg.PostgresURL); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}

		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(); err != nil {
			logger.Fatal("postgres connect failed", zap.Error(err))
		}
		defer pg.Disconnect()

		shipmentRepo = repository.NewPostgresShipmentRepo(pg.Conn)
		quoteRepo = repository.NewPostgresQuoteRepo(pg.Conn)
		assignmentRepo = repository.NewPostgresAssignmentRepo(pg.Conn)
		userRepo = repository.NewPostgresUserRepo(pg.Conn)
		settingsRepo = repository.NewPostgresSettingsRepo(pg.Conn)
		messageRepo = repository.NewPostgresMessageRepo(pg.Conn)

	case db.Mongo:
		mg := mongo.NewMongoDB(cfg.MongoURL)
		if err := mg.Connect(); err != nil {
			logger.Fatal("mongo connect failed", zap.Error(err))
		}
		defer mg.Disconnect()

		shipmentRepo = repository.NewMongoShipmentRepo(mg.Client)
		quoteRepo = repository.NewMongoQuoteRepo(mg.Client)
		assignmentRepo = repository.NewMongoAssignmentRepo(mg.Client)
		userRepo = repository.NewMongoUserRepo(mg.Client)
		settingsRepo = repository.NewMongoSettingsRepo(mg.Client)
		messageRepo = repository.NewMongoMessageRepo(mg.Client)

	case db.Memory:
		store := repository.NewMemoryStore()
		shipmentRepo = store.Shipments()
		quoteRepo = store.Quotes()
		assignmentRepo = store.Assignments()
		userRepo = store.Users()
		settingsRepo = store.Settings()
		messageRepo = store.Messages()

	default:
		logger.Fatal("DB_TYPE not supported", zap.String("db_type", cfg.DBType))
	}

	// Combined repositories over the backend-agnostic interfaces
	bookingRepo := repository.NewBookingRepository(shipmentRepo, quoteRepo, assignmentRepo)
	waybillRepo := repository.NewWaybillRepository(shipmentRepo, assignmentRepo, userRepo)
	threadRepo := repository.NewThreadRepository(bookingRepo, messageRepo)

	metrics := utils.NewMetrics(prometheus.DefaultRegisterer)
	notifier := utils.NewNotifier(userRepo, settingsRepo, logger, cfg)

	router := &routes.Router{
		Logger:    logger,
		Metrics:   metrics,
		JWTSecret: cfg.JWTSecret,

		Users:       &handlers.UserHandler{Repo: userRepo, JWTSecret: cfg.JWTSecret, Logger: logger},
		Shipments:   &handlers.ShipmentHandler{Booking: bookingRepo, Notifier: notifier, Metrics: metrics, Logger: logger},
		Quotes:      &handlers.QuoteHandler{Booking: bookingRepo, Notifier: notifier, Metrics: metrics, Logger: logger},
		Assignments: &handlers.AssignmentHandler{Booking: bookingRepo, Notifier: notifier, Metrics: metrics, Logger: logger},
		Settings:    &handlers.SettingsHandler{Repo: settingsRepo},
		Waybills:    &handlers.WaybillHandler{Waybills: waybillRepo, Shipments: shipmentRepo, Logger: logger},
		Messages:    &handlers.MessageHandler{Threads: threadRepo, Notifier: notifier, Logger: logger},
	}
	router.SetupRoutes()

	logger.Info("server listening", zap.String("port", cfg.Port), zap.String("db_type", cfg.DBType))
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
