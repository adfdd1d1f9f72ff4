// Package allocation resolves a sealed bidding round into ticket grants.
//
// Bids are ranked by stake (highest first) and then by submission sequence
// (earliest first). Each bid in turn receives as many of the remaining
// tickets as it asked for; whatever it could not receive is refunded,
// together with the matching share of its stake.
package allocation
