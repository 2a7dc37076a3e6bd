package main

import (
	"context"
	"flag"
	"os"
	"time"

	"shopbridge-core/internal/application"
	"shopbridge-core/internal/application/webhook_handlers"
	"shopbridge-core/internal/infrastructure/config"
	"shopbridge-core/internal/infrastructure/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// redactor runs one PII retention pass and exits. Scheduling (cron, k8s
// CronJob) lives outside the binary. With -reconcile it also retries
// unprocessed webhook deliveries.
func main() {
	reconcile := flag.Bool("reconcile", false, "also retry unprocessed webhook deliveries")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Read()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read configuration")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDatabase)

	shopRepo := repository.NewMongoShopRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	customerRepo := repository.NewMongoCustomerRepository(db)

	redaction := application.NewRedactionService(
		shopRepo,
		orderRepo,
		customerRepo,
		logger,
		cfg.RetentionWindow,
		cfg.RedactionBatchSize,
		cfg.RedactionWorkers,
	)

	report, err := redaction.Run(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Redaction run failed")
	}

	for _, shop := range report.Shops {
		for _, msg := range shop.Errors {
			logger.Warn().Str("shop", shop.ShopDomain).Str("error", msg).Msg("Redaction record error")
		}
	}

	if !*reconcile {
		return
	}

	catalogRepo := repository.NewMongoCatalogRepository(db)
	userShopRepo := repository.NewMongoUserShopRepository(db)
	deliveryRepo := repository.NewMongoDeliveryRepository(db)
	auditRepo := repository.NewMongoAuditRepository(db)

	dispatcher := application.NewWebhookDispatcher(logger)
	dispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(orderRepo, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewProductHandler(catalogRepo, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(customerRepo, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewInventoryHandler(catalogRepo, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewAppLifecycleHandler(shopRepo, logger))
	dispatcher.RegisterHandler(webhook_handlers.NewComplianceHandler(
		shopRepo, orderRepo, customerRepo, catalogRepo, userShopRepo, deliveryRepo, auditRepo, logger,
	))

	reconciliation := application.NewReconciliationService(
		shopRepo, deliveryRepo, dispatcher, logger, 10*time.Minute, 100,
	)
	if _, _, err := reconciliation.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Reconciliation pass failed")
	}
}
