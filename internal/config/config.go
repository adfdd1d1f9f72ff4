// Package config loads the API configuration from a YAML file.
package config

import "time"

// Config is the root configuration for the API service.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	AMQP        AMQPConfig        `yaml:"amqp"`
	Auth        AuthConfig        `yaml:"auth"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// StreamBuffer is the per-client queue of the notification stream.
	StreamBuffer int `yaml:"stream_buffer"`
}

// DatabaseConfig is optional. Without a URL the identity registry and the
// audit journal stay in memory.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AMQPConfig is optional. Without a URL notifications are not sent to a broker.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

func (a AMQPConfig) Enabled() bool {
	return a.URL != ""
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// MarketplaceConfig holds the economic policy and the administrator list.
type MarketplaceConfig struct {
	Admins                 []string `yaml:"admins"`
	BulkLimit              int      `yaml:"bulk_limit"`
	DepositUnit            int64    `yaml:"deposit_unit"`
	CommissionBPS          int64    `yaml:"commission_bps"`
	OrderBookCommissionBPS int64    `yaml:"orderbook_commission_bps"`
	BasePrice              int64    `yaml:"base_price"`
	PriceIncrement         int64    `yaml:"price_increment"`
	CreditUnitPrice        int64    `yaml:"credit_unit_price"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
