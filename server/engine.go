package server

import (
	"fmt"
	"log/slog"

	"github.com/Gobd/remap"
	"github.com/Gobd/remap/config"
	"github.com/Gobd/remap/currency"
	"github.com/Gobd/remap/transform"
)

// NewEngine builds the remapping engine described by cfg: a currency
// formatter for the configured locale, the built-in transforms, and one
// catalog entry per API.
func NewEngine(cfg *config.Config, logger *slog.Logger) (*remap.Engine, error) {
	f, err := currency.New(currency.Config{
		Locale:          currency.LocaleFor(cfg.Locale.Language, cfg.Locale.Region),
		DefaultCurrency: cfg.Currency.Default,
		Permission:      cfg.Currency.Permission,
	})
	if err != nil {
		return nil, fmt.Errorf("currency formatter: %w", err)
	}

	catalog := remap.NewCatalog()
	for _, api := range cfg.APIs {
		if err := catalog.Register(api.Name, api.Rules); err != nil {
			return nil, err
		}
	}

	return remap.New(
		remap.WithRegistry(transform.NewRegistry(transform.WithCurrencyFormatter(f))),
		remap.WithCatalog(catalog),
		remap.WithLogger(logger),
	), nil
}
