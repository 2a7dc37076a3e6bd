package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"shopbridge-core/internal/domain"
	"shopbridge-core/internal/infrastructure/metrics"
	"shopbridge-core/internal/ports"

	"github.com/rs/zerolog"
)

// shopDomainPattern matches a syntactically valid tenant domain: a single
// alphanumeric-and-hyphen label followed by the platform's fixed suffix.
var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// Errors surfaced by Begin.
var (
	ErrUnauthenticated  = errors.New("authenticated application user required")
	ErrInvalidShopDomain = errors.New("invalid shop domain")
)

// Callback failure reason codes. These are safe to echo to the redirect
// target; internal error detail never is.
const (
	ReasonMissingParams = "missing_params"
	ReasonStateMismatch = "state_mismatch"
	ReasonShopMismatch  = "shop_mismatch"
	ReasonInvalidHMAC   = "invalid_hmac"
	ReasonStateReplayed = "state_replayed"
	ReasonTokenExchange = "token_exchange"
	ReasonCallbackError = "callback_error"
)

// BeginAuth is the outcome of starting an OAuth negotiation. When
// NeedsConfirmation is set the caller must re-submit with the confirmed flag
// before a negotiation is issued.
type BeginAuth struct {
	AuthorizeURL      string
	State             string
	Shop              string
	NeedsConfirmation bool
}

// CallbackOutcome is the terminal result of a callback. Reason and Message
// are populated only on failure and carry no internal error detail.
type CallbackOutcome struct {
	Success bool
	Shop    string
	Reason  string
	Message string
}

// AuthService orchestrates the OAuth flow: begin, callback validation, token
// exchange, shop persistence, and post-link side effects.
type AuthService struct {
	shops        ports.ShopRepository
	userShops    ports.UserShopRepository
	negotiations ports.NegotiationStore
	platform     ports.PlatformClient
	verifier     ports.CallbackVerifier
	syncTrigger  ports.SyncTrigger
	logger       zerolog.Logger

	scopes        []string
	webhookTopics []string
}

// NewAuthService creates the OAuth flow controller.
func NewAuthService(
	shops ports.ShopRepository,
	userShops ports.UserShopRepository,
	negotiations ports.NegotiationStore,
	platform ports.PlatformClient,
	verifier ports.CallbackVerifier,
	syncTrigger ports.SyncTrigger,
	logger zerolog.Logger,
	scopes []string,
	webhookTopics []string,
) *AuthService {
	return &AuthService{
		shops:         shops,
		userShops:     userShops,
		negotiations:  negotiations,
		platform:      platform,
		verifier:      verifier,
		syncTrigger:   syncTrigger,
		logger:        logger,
		scopes:        scopes,
		webhookTopics: webhookTopics,
	}
}

// Begin validates the shop domain, guards against silently re-linking an
// existing tenant, issues a fresh negotiation, and returns the provider
// authorization URL.
func (s *AuthService) Begin(ctx context.Context, shop string, confirmed bool) (*BeginAuth, error) {
	userID := domain.GetUserIDFromContext(ctx)
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	if !shopDomainPattern.MatchString(shop) {
		return nil, ErrInvalidShopDomain
	}

	existing, err := s.shops.GetByDomain(ctx, shop)
	if err != nil {
		return nil, fmt.Errorf("failed to look up shop: %w", err)
	}
	if existing != nil && !confirmed {
		// The shop is already installed; make the human confirm linking
		// their account to existing tenant data before re-authorizing.
		return &BeginAuth{Shop: shop, NeedsConfirmation: true}, nil
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	state := hex.EncodeToString(stateBytes)

	negotiation := &domain.Negotiation{
		State:     state,
		Shop:      shop,
		UserID:    userID,
		Scopes:    s.scopes,
		CreatedAt: time.Now(),
	}
	if err := s.negotiations.Save(ctx, negotiation); err != nil {
		return nil, fmt.Errorf("failed to save negotiation: %w", err)
	}

	s.logger.Info().
		Str("shop", shop).
		Str("user", userID).
		Strs("requested_scopes", s.scopes).
		Msg("Starting OAuth negotiation")

	return &BeginAuth{
		AuthorizeURL: s.platform.AuthorizeURL(shop, state),
		State:        state,
		Shop:         shop,
	}, nil
}

// HandleCallback runs the Validating -> Exchanging -> Linked transitions and
// always produces a terminal outcome. Internal errors map to a generic
// failure; reason codes are the only detail the redirect target sees.
func (s *AuthService) HandleCallback(ctx context.Context, query url.Values, cookieState, cookieShop string) *CallbackOutcome {
	outcome := s.handleCallback(ctx, query, cookieState, cookieShop)
	if outcome.Success {
		metrics.OAuthFlows.WithLabelValues("linked").Inc()
	} else {
		metrics.OAuthFlows.WithLabelValues(outcome.Reason).Inc()
	}
	return outcome
}

func (s *AuthService) handleCallback(ctx context.Context, query url.Values, cookieState, cookieShop string) *CallbackOutcome {
	code := query.Get("code")
	state := query.Get("state")
	shop := query.Get("shop")
	signature := query.Get("hmac")

	if code == "" || state == "" || shop == "" || signature == "" {
		return fail(ReasonMissingParams, "missing required callback parameters")
	}

	if cookieState == "" || state != cookieState {
		s.logger.Warn().Str("shop", shop).Msg("Callback state does not match negotiation cookie")
		return fail(ReasonStateMismatch, "authorization state did not match")
	}
	if cookieShop == "" || shop != cookieShop {
		s.logger.Warn().Str("shop", shop).Msg("Callback shop does not match negotiation cookie")
		return fail(ReasonShopMismatch, "shop did not match the authorization request")
	}

	if !s.verifier.VerifyCallback(query) {
		s.logger.Warn().Str("shop", shop).Msg("Callback signature verification failed")
		return fail(ReasonInvalidHMAC, "callback signature invalid")
	}

	// Consume the server-side negotiation only after the request has fully
	// validated. The first observer wins; a replayed callback URL gets
	// nothing even inside the cookie lifetime.
	negotiation, err := s.negotiations.Consume(ctx, state)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to consume negotiation")
		return fail(ReasonCallbackError, "authorization could not be completed")
	}
	if negotiation == nil || negotiation.Shop != shop {
		s.logger.Warn().Str("shop", shop).Msg("Negotiation expired, unknown, or already consumed")
		return fail(ReasonStateReplayed, "authorization request expired or already used")
	}

	accessToken, err := s.platform.ExchangeToken(ctx, shop, code)
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
		return fail(ReasonTokenExchange, "could not complete installation")
	}

	// Metadata fetch is best-effort: the flow succeeds without it.
	var meta ports.ShopMetadata
	if m, err := s.platform.GetShopMetadata(ctx, shop, accessToken); err != nil {
		s.logger.Warn().Err(err).Str("shop", shop).Msg("Failed to fetch shop metadata")
	} else {
		meta = *m
	}

	stored, err := s.shops.UpsertByDomain(ctx, &domain.Shop{
		Domain:      shop,
		AccessToken: accessToken,
		Scopes:      negotiation.Scopes,
		Active:      true,
		Name:        meta.Name,
		Currency:    meta.Currency,
		Timezone:    meta.Timezone,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to save shop")
		return fail(ReasonCallbackError, "authorization could not be completed")
	}

	if negotiation.UserID != "" {
		if err := s.userShops.Link(ctx, negotiation.UserID, stored.ID, domain.DefaultUserRole); err != nil {
			s.logger.Error().Err(err).Str("shop", shop).Str("user", negotiation.UserID).Msg("Failed to link user to shop")
			return fail(ReasonCallbackError, "authorization could not be completed")
		}
	}

	// Webhook registration failing must not block the primary flow.
	if err := s.platform.RegisterWebhooks(ctx, shop, accessToken, s.webhookTopics); err != nil {
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to register webhook subscriptions")
	}

	s.syncTrigger.TriggerInitialSync(shop)

	s.logger.Info().
		Str("shop", shop).
		Strs("stored_scopes", stored.Scopes).
		Msg("OAuth flow completed, shop linked")

	return &CallbackOutcome{Success: true, Shop: shop}
}

func fail(reason, message string) *CallbackOutcome {
	return &CallbackOutcome{Reason: reason, Message: message}
}
