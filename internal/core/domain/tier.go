package domain

import "math"

// Tier classifies a wallet for transfer limits. Tier escalation is owned by
// the KYC approval workflow; this package only reads it.
type Tier string

const (
	TierOne   Tier = "TIER_1"
	TierTwo   Tier = "TIER_2"
	TierThree Tier = "TIER_3"
)

// TierLimits bounds daily outbound movement and the wallet balance.
// Amounts are in the minor currency unit.
type TierLimits struct {
	DailyLimit int64
	MaxBalance int64
}

// UnlimitedBalance marks a tier without a balance cap.
const UnlimitedBalance = int64(math.MaxInt64)

// LimitsFor maps a tier to its limits. An unrecognized tier gets zero
// limits, so it permits no movement at all.
func LimitsFor(t Tier) TierLimits {
	switch t {
	case TierOne:
		return TierLimits{DailyLimit: 50_000, MaxBalance: 300_000}
	case TierTwo:
		return TierLimits{DailyLimit: 200_000, MaxBalance: 500_000}
	case TierThree:
		return TierLimits{DailyLimit: 5_000_000, MaxBalance: UnlimitedBalance}
	default:
		return TierLimits{}
	}
}
