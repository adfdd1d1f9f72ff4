package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const minJWTSecretLen = 16

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.StreamBuffer < 1 {
		return errors.New("server.stream_buffer must be >= 1")
	}

	if c.Database.Enabled() && c.Database.MaxConns < 1 {
		return errors.New("database.max_conns must be >= 1")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes", minJWTSecretLen)
	}

	if err := c.Marketplace.validate("marketplace"); err != nil {
		return err
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	return nil
}

func (m *MarketplaceConfig) validate(prefix string) error {
	if len(m.Admins) == 0 {
		return fmt.Errorf("%s.admins must list at least one identity", prefix)
	}
	for _, admin := range m.Admins {
		if strings.TrimSpace(admin) == "" {
			return fmt.Errorf("%s.admins must not contain blank identities", prefix)
		}
	}
	if m.BulkLimit < 1 {
		return fmt.Errorf("%s.bulk_limit must be >= 1", prefix)
	}
	if m.DepositUnit < 1 {
		return fmt.Errorf("%s.deposit_unit must be >= 1", prefix)
	}
	if m.CommissionBPS < 0 || m.CommissionBPS > 10000 {
		return fmt.Errorf("%s.commission_bps must be between 0 and 10000, got %d", prefix, m.CommissionBPS)
	}
	if m.OrderBookCommissionBPS < 0 || m.OrderBookCommissionBPS > 10000 {
		return fmt.Errorf("%s.orderbook_commission_bps must be between 0 and 10000, got %d", prefix, m.OrderBookCommissionBPS)
	}
	if m.BasePrice < 1 {
		return fmt.Errorf("%s.base_price must be >= 1", prefix)
	}
	if m.PriceIncrement < 0 {
		return fmt.Errorf("%s.price_increment must be >= 0", prefix)
	}
	if m.CreditUnitPrice < 1 {
		return fmt.Errorf("%s.credit_unit_price must be >= 1", prefix)
	}
	return nil
}

// SlogLevel maps log.level onto a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", l.Level)
	}
}
