package cost

// Tier is a credit quality band.
type Tier string

// Credit tiers.
const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierPoor      Tier = "poor"
)

// TierFor maps a credit score onto its tier.
func TierFor(creditScore int) Tier {
	switch {
	case creditScore >= 750:
		return TierExcellent
	case creditScore >= 700:
		return TierGood
	case creditScore >= 650:
		return TierFair
	default:
		return TierPoor
	}
}

// RateAdjustment is the APR delta added to the base rate.
func (t Tier) RateAdjustment() float64 {
	switch t {
	case TierExcellent:
		return -0.02
	case TierGood:
		return 0
	case TierFair:
		return 0.02
	default:
		return 0.05
	}
}

// InsuranceMultiplier scales the base premium.
func (t Tier) InsuranceMultiplier() float64 {
	switch t {
	case TierExcellent:
		return 0.8
	case TierGood:
		return 1.0
	case TierFair:
		return 1.2
	default:
		return 1.5
	}
}

// APR is the base rate adjusted for credit tier.
func APR(baseRate float64, creditScore int) float64 {
	return baseRate + TierFor(creditScore).RateAdjustment()
}
