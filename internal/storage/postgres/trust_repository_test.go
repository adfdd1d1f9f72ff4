package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/cimillas/ticket-exchange/internal/domain"
	"github.com/cimillas/ticket-exchange/internal/testutil"
)

func TestTrustRepository_VerifyRequiresCertifiedVerifier(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewTrustRepository(pool)

	if err := repo.Verify(ctx, "seller", "notary"); !errors.Is(err, domain.ErrNotCertified) {
		t.Fatalf("expected ErrNotCertified, got %v", err)
	}

	testutil.InsertCertifiedVerifier(t, ctx, pool, "notary")
	if err := repo.Verify(ctx, "seller", "notary"); err != nil {
		t.Fatalf("verify: %v", err)
	}

	ok, err := repo.IsVerifiedSeller(ctx, "seller")
	if err != nil {
		t.Fatalf("is verified: %v", err)
	}
	if !ok {
		t.Fatalf("expected seller to be verified")
	}

	ident, err := repo.Identity(ctx, "seller")
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if ident.Verifier != "notary" || ident.Certified {
		t.Fatalf("unexpected identity %+v", ident)
	}
}

func TestTrustRepository_UnknownIdentityIsUnverified(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	ident, err := NewTrustRepository(pool).Identity(ctx, "nobody")
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if ident.Status != domain.TrustStatusUnverified || ident.Certified {
		t.Fatalf("unexpected identity %+v", ident)
	}
}

func TestTrustRepository_UncertifyKeepsVerification(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	repo := NewTrustRepository(pool)
	if err := repo.Certify(ctx, "notary"); err != nil {
		t.Fatalf("certify: %v", err)
	}
	if err := repo.Verify(ctx, "seller", "notary"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := repo.Uncertify(ctx, "notary"); err != nil {
		t.Fatalf("uncertify: %v", err)
	}

	certified, err := repo.IsCertified(ctx, "notary")
	if err != nil {
		t.Fatalf("is certified: %v", err)
	}
	if certified {
		t.Fatalf("expected notary to be uncertified")
	}
	if ok, _ := repo.IsVerifiedSeller(ctx, "seller"); !ok {
		t.Fatalf("expected earlier verification to stand")
	}
	if err := repo.Verify(ctx, "other", "notary"); !errors.Is(err, domain.ErrNotCertified) {
		t.Fatalf("expected ErrNotCertified, got %v", err)
	}
}
