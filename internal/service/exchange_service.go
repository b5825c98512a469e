package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swediversity/swediversity-api/internal/models"
	"github.com/swediversity/swediversity-api/pkg/config"
	appErrors "github.com/swediversity/swediversity-api/pkg/errors"
)

type exchangeCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ExchangeService keeps the SEK conversion rates fresh in Redis and serves
// them to tuition conversion. Rates are refreshed on a cron schedule; a
// fetch failure leaves the previous rate in place.
type ExchangeService struct {
	cache      exchangeCache
	httpClient *http.Client
	config     config.ExchangeConfig
	currencies []string
	logger     *zap.Logger
}

// ratePayload matches the upstream exchange API response shape.
type ratePayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// NewExchangeService constructs an ExchangeService instance.
func NewExchangeService(cache exchangeCache, cfg config.ExchangeConfig, logger *zap.Logger) *ExchangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExchangeService{
		cache:      cache,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		currencies: []string{"KRW"},
		logger:     logger,
	}
}

// Rate returns the cached rate for a currency.
func (s *ExchangeService) Rate(ctx context.Context, currency string) (*models.ExchangeRate, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "currency is required")
	}

	var rate models.ExchangeRate
	if err := s.cache.Get(ctx, rateKey(currency), &rate); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no exchange rate available for %s", currency))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read exchange rate")
	}
	return &rate, nil
}

// Refresh fetches the current rates and stores them in Redis. Errors are
// returned for logging by the scheduler but never abort the process; the
// stored rates carry no TTL so the last good value survives outages.
func (s *ExchangeService) Refresh(ctx context.Context) error {
	if s.config.URL == "" {
		return fmt.Errorf("exchange endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.URL, nil)
	if err != nil {
		return fmt.Errorf("build exchange request: %w", err)
	}
	if s.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange endpoint returned status %d", resp.StatusCode)
	}

	var payload ratePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode exchange response: %w", err)
	}

	now := time.Now().UTC()
	for _, currency := range s.currencies {
		value, ok := payload.Rates[currency]
		if !ok {
			s.logger.Warn("exchange response missing currency", zap.String("currency", currency))
			continue
		}
		rate := models.ExchangeRate{Currency: currency, Rate: value, FetchedAt: now}
		if err := s.cache.Set(ctx, rateKey(currency), rate, 0); err != nil {
			return fmt.Errorf("store exchange rate for %s: %w", currency, err)
		}
		s.logger.Info("exchange rate refreshed", zap.String("currency", currency), zap.Float64("rate", value))
	}
	return nil
}

func rateKey(currency string) string {
	return "exchange:rate:" + currency
}
