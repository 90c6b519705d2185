package fare

import "baggage-checkin-service/internal/domain/entity"

// DefaultCurrency is used when no currency is configured
const DefaultCurrency = "USD"

// DefaultRuleSets are the desk's published rules: pieces bought online are
// discounted, pieces bought at the gate cost more and must be lighter.
func DefaultRuleSets() []entity.FareRuleSet {
	return []entity.FareRuleSet{
		{
			Moment:             entity.MomentWeb,
			SecondPieceFee:     2500,
			OverweightFee:      4500,
			SpecialCategoryFee: 9000,
			FreeWeightCeiling:  23,
			MaxWeightPerPiece:  32,
		},
		{
			Moment:             entity.MomentCheckIn,
			SecondPieceFee:     3000,
			OverweightFee:      5000,
			SpecialCategoryFee: 10000,
			FreeWeightCeiling:  23,
			MaxWeightPerPiece:  32,
		},
		{
			Moment:             entity.MomentBoarding,
			SecondPieceFee:     4000,
			OverweightFee:      6000,
			SpecialCategoryFee: 12000,
			FreeWeightCeiling:  23,
			MaxWeightPerPiece:  25,
		},
	}
}

// DefaultRuleTable builds a table from DefaultRuleSets
func DefaultRuleTable() *RuleTable {
	t, err := NewRuleTable(DefaultCurrency, DefaultRuleSets()...)
	if err != nil {
		panic(err)
	}
	return t
}
