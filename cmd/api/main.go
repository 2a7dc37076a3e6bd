package main

import (
	"context"
	"net/http"
	"net/url"
	"os"

	"shopbridge-core/internal/application"
	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/application/webhook_handlers"
	"shopbridge-core/internal/infrastructure/config"
	securitymiddleware "shopbridge-core/internal/infrastructure/middleware"
	"shopbridge-core/internal/infrastructure/platform"
	"shopbridge-core/internal/infrastructure/pubsub"
	"shopbridge-core/internal/infrastructure/repository"
	"shopbridge-core/internal/infrastructure/statestore"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Cookies carrying the OAuth negotiation nonce and shop domain across the
// browser redirect round trip.
const (
	cookieOAuthState = "shopbridge_oauth_state"
	cookieOAuthShop  = "shopbridge_oauth_shop"
)

// defaultWebhookTopics are subscribed on every successful install.
var defaultWebhookTopics = []string{
	"app/uninstalled",
	"shop/update",
	"orders/create",
	"orders/updated",
	"orders/paid",
	"orders/cancelled",
	"orders/fulfilled",
	"products/create",
	"products/update",
	"products/delete",
	"customers/create",
	"customers/update",
	"customers/delete",
	"inventory_levels/update",
}

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Read()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to read configuration")
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDatabase)

	// Connect to Redis for OAuth negotiation state
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	// Initialize repositories
	shopRepo := repository.NewMongoShopRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	customerRepo := repository.NewMongoCustomerRepository(db)
	catalogRepo := repository.NewMongoCatalogRepository(db)
	userShopRepo := repository.NewMongoUserShopRepository(db)
	deliveryRepo := repository.NewMongoDeliveryRepository(db)
	auditRepo := repository.NewMongoAuditRepository(db)

	// Initialize platform infrastructure
	verifier := platform.NewVerifier(cfg.ShopifyAPISecret)
	platformClient := platform.NewClient(
		cfg.ShopifyAPIKey,
		cfg.ShopifyAPISecret,
		cfg.Scopes,
		cfg.AppURL+"/auth/callback",
		cfg.AppURL+"/webhooks/shopify",
		logger,
	)
	negotiationStore := statestore.NewRedisNegotiationStore(redisClient)

	// The initial sync pipeline lives outside this core; the dispatcher
	// just hands shops to it off the OAuth request path.
	syncDispatcher := pubsub.NewSyncDispatcher(func(shopDomain string) {
		logger.Info().Str("shop", shopDomain).Msg("Initial sync requested")
	}, 16, logger)
	syncDispatcher.Start()
	defer syncDispatcher.Stop()

	// Initialize application services
	authService := application.NewAuthService(
		shopRepo,
		userShopRepo,
		negotiationStore,
		platformClient,
		verifier,
		syncDispatcher,
		logger,
		cfg.Scopes,
		defaultWebhookTopics,
	)

	// Initialize webhook dispatcher and register handlers
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(orderRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(catalogRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(customerRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewInventoryHandler(catalogRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppLifecycleHandler(shopRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewComplianceHandler(
		shopRepo, orderRepo, customerRepo, catalogRepo, userShopRepo, deliveryRepo, auditRepo, logger,
	))

	webhookRouter := application.NewWebhookRouter(verifier, shopRepo, deliveryRepo, webhookDispatcher, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.DashboardURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// OAuth routes. Begin requires an authenticated application user; the
	// callback authenticates itself through state, cookies, and HMAC.
	r.With(securitymiddleware.RequireUserMiddleware(logger)).
		Get("/auth/shopify", beginAuthHandler(authService, logger))
	r.Get("/auth/callback", authCallbackHandler(authService, cfg.DashboardURL, logger))

	// Webhook ingress. Compliance events share the signature contract and
	// get a dedicated path as well as dispatch via the general endpoint.
	r.Post("/webhooks/shopify", webhookRouter.Handler())
	r.Post("/webhooks/compliance", webhookRouter.Handler())

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// beginAuthHandler initiates the OAuth flow
func beginAuthHandler(authService *application.AuthService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}
		confirmed := r.URL.Query().Get("confirmed") == "true"

		begin, err := authService.Begin(r.Context(), shop, confirmed)
		if err != nil {
			switch err {
			case application.ErrInvalidShopDomain:
				http.Error(w, "invalid shop domain", http.StatusBadRequest)
			case application.ErrUnauthenticated:
				http.Error(w, "authentication required", http.StatusUnauthorized)
			default:
				logger.Error().Err(err).Str("shop", shop).Msg("Failed to begin OAuth flow")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		if begin.NeedsConfirmation {
			// The shop already exists; the human must confirm linking their
			// account to the existing tenant before re-authorizing.
			http.Error(w, "shop already connected, repeat with confirmed=true to link", http.StatusConflict)
			return
		}

		setNegotiationCookie(w, cookieOAuthState, begin.State)
		setNegotiationCookie(w, cookieOAuthShop, begin.Shop)
		http.Redirect(w, r, begin.AuthorizeURL, http.StatusFound)
	}
}

// authCallbackHandler handles the OAuth callback
func authCallbackHandler(authService *application.AuthService, dashboardURL string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookieState := readCookie(r, cookieOAuthState)
		cookieShop := readCookie(r, cookieOAuthShop)

		outcome := authService.HandleCallback(r.Context(), r.URL.Query(), cookieState, cookieShop)

		clearNegotiationCookie(w, cookieOAuthState)
		clearNegotiationCookie(w, cookieOAuthShop)

		if !outcome.Success {
			redirect := dashboardURL + "?error=" + url.QueryEscape(outcome.Reason) +
				"&message=" + url.QueryEscape(outcome.Message)
			http.Redirect(w, r, redirect, http.StatusFound)
			return
		}

		redirect := dashboardURL + "?success=true&shop=" + url.QueryEscape(outcome.Shop)
		logger.Info().Str("shop", outcome.Shop).Msg("Redirecting to dashboard after successful OAuth")
		http.Redirect(w, r, redirect, http.StatusFound)
	}
}

func setNegotiationCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(domain.NegotiationTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearNegotiationCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
