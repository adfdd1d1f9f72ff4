package domain

import "fmt"

// PlatformIdentity owns tickets and credits held in platform custody.
const PlatformIdentity = "platform"

// Currency accounts held by the platform.
const (
	AccountTreasury      = "platform:treasury"
	AccountCreditReserve = "platform:credit-reserve"
)

func DepositAccount(eventID int64) string {
	return fmt.Sprintf("event:%d:deposit", eventID)
}

func RevenueAccount(eventID int64) string {
	return fmt.Sprintf("event:%d:revenue", eventID)
}

func BidEscrowAccount(eventID int64) string {
	return fmt.Sprintf("event:%d:bids", eventID)
}

// TrustStatus is the verification state of an identity.
type TrustStatus string

const (
	TrustStatusUnverified TrustStatus = "unverified"
	TrustStatusVerified   TrustStatus = "verified"
)

// Identity is the trust registry view of an account.
type Identity struct {
	ID        string
	Status    TrustStatus
	Verifier  string
	Certified bool
}
