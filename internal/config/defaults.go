package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort                   = 8080
	DefaultShutdownTimeout        = 10 * time.Second
	DefaultStreamBuffer           = 64
	DefaultMaxConns               = 4
	DefaultExchange               = "ticket-exchange.notifications"
	DefaultIssuer                 = "ticket-exchange"
	DefaultBulkLimit              = 4
	DefaultDepositUnit            = 50000
	DefaultCommissionBPS          = 500
	DefaultOrderBookCommissionBPS = 1000
	DefaultBasePrice              = 50000
	DefaultPriceIncrement         = 1000
	DefaultCreditUnitPrice        = 50000
	DefaultLogLevel               = "info"
	DefaultLogFormat              = "json"
)

var DefaultCORSOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}

// ApplyDefaults fills every zero-valued optional field.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = append([]string(nil), DefaultCORSOrigins...)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.StreamBuffer == 0 {
		c.Server.StreamBuffer = DefaultStreamBuffer
	}

	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = DefaultExchange
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = DefaultIssuer
	}

	m := &c.Marketplace
	if m.BulkLimit == 0 {
		m.BulkLimit = DefaultBulkLimit
	}
	if m.DepositUnit == 0 {
		m.DepositUnit = DefaultDepositUnit
	}
	if m.CommissionBPS == 0 {
		m.CommissionBPS = DefaultCommissionBPS
	}
	if m.OrderBookCommissionBPS == 0 {
		m.OrderBookCommissionBPS = DefaultOrderBookCommissionBPS
	}
	if m.BasePrice == 0 {
		m.BasePrice = DefaultBasePrice
	}
	if m.PriceIncrement == 0 {
		m.PriceIncrement = DefaultPriceIncrement
	}
	if m.CreditUnitPrice == 0 {
		m.CreditUnitPrice = DefaultCreditUnitPrice
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
