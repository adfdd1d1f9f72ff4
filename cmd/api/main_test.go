package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cimillas/ticket-exchange/internal/config"
)

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "text"}, buf)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=v") {
		t.Fatalf("expected text warn record, got %q", out)
	}

	if _, err := newLogger(config.LogConfig{Level: "loud"}, buf); err == nil {
		t.Fatalf("expected unknown level to fail")
	}
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := config.Config{Marketplace: config.MarketplaceConfig{Admins: []string{"root"}, CommissionBPS: 250}}
	cfg.ApplyDefaults()

	policy := policyFromConfig(cfg.Marketplace)
	if policy.CommissionBPS != 250 {
		t.Fatalf("expected commission 250, got %d", policy.CommissionBPS)
	}
	if policy.Pricing.Base != config.DefaultBasePrice || policy.Pricing.Increment != config.DefaultPriceIncrement {
		t.Fatalf("unexpected pricing %+v", policy.Pricing)
	}
	if len(policy.Admins) != 1 || policy.Admins[0] != "root" {
		t.Fatalf("unexpected admins %v", policy.Admins)
	}
}
