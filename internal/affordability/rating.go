package affordability

// Rating is the qualitative band of an overall score.
type Rating string

// Rating bands, best first.
const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingFair      Rating = "Fair"
	RatingPoor      Rating = "Poor"
	RatingVeryPoor  Rating = "Very Poor"
)

// RatingFor maps an overall score onto its band.
func RatingFor(score float64) Rating {
	switch {
	case score >= 90:
		return RatingExcellent
	case score >= 75:
		return RatingGood
	case score >= 60:
		return RatingFair
	case score >= 40:
		return RatingPoor
	default:
		return RatingVeryPoor
	}
}

// Recommendation is the advisory text attached to the band.
func (r Rating) Recommendation() string {
	switch r {
	case RatingExcellent:
		return "Highly recommended"
	case RatingGood:
		return "Recommended with minor adjustments"
	case RatingFair:
		return "Consider reducing vehicle price or increasing down payment"
	case RatingPoor:
		return "Not recommended - consider more affordable options"
	default:
		return "Strongly not recommended - financial risk too high"
	}
}
