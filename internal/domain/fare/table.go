// Package fare holds the baggage fare rule table and the pure fare calculator.
package fare

import (
	"fmt"

	"baggage-checkin-service/internal/domain/entity"
)

// RuleTable maps each purchase moment to its rule set.
// A table is an immutable value: build it once, inject it, never mutate it.
type RuleTable struct {
	currency string
	rules    map[entity.PurchaseMoment]entity.FareRuleSet
}

// NewRuleTable validates and freezes a set of rules. Every known moment must be covered.
func NewRuleTable(currency string, sets ...entity.FareRuleSet) (*RuleTable, error) {
	rules := make(map[entity.PurchaseMoment]entity.FareRuleSet, len(sets))
	for _, s := range sets {
		if _, err := entity.ParsePurchaseMoment(string(s.Moment)); err != nil {
			return nil, err
		}
		if _, dup := rules[s.Moment]; dup {
			return nil, fmt.Errorf("duplicate fare rules for moment %q", s.Moment)
		}
		if s.SecondPieceFee < 0 || s.OverweightFee < 0 || s.SpecialCategoryFee < 0 {
			return nil, fmt.Errorf("fare rules for moment %q: fees must not be negative", s.Moment)
		}
		if !(s.MaxWeightPerPiece > 0) || s.FreeWeightCeiling < 0 {
			return nil, fmt.Errorf("fare rules for moment %q: invalid weight limits", s.Moment)
		}
		rules[s.Moment] = s
	}
	for _, m := range entity.PurchaseMoments {
		if _, ok := rules[m]; !ok {
			return nil, fmt.Errorf("missing fare rules for moment %q", m)
		}
	}
	return &RuleTable{currency: currency, rules: rules}, nil
}

// RulesFor returns the rule set for moment or an UnknownMomentError
func (t *RuleTable) RulesFor(moment entity.PurchaseMoment) (entity.FareRuleSet, error) {
	s, ok := t.rules[moment]
	if !ok {
		return entity.FareRuleSet{}, &entity.UnknownMomentError{Moment: moment}
	}
	return s, nil
}

// Currency is the ISO code the fees are expressed in
func (t *RuleTable) Currency() string {
	return t.currency
}

// All returns the rule sets in moment order
func (t *RuleTable) All() []entity.FareRuleSet {
	out := make([]entity.FareRuleSet, 0, len(entity.PurchaseMoments))
	for _, m := range entity.PurchaseMoments {
		out = append(out, t.rules[m])
	}
	return out
}

// CheckWeight rejects a piece heavier than its own moment's maximum
func (t *RuleTable) CheckWeight(itemID uint, weight float64, moment entity.PurchaseMoment) error {
	rules, err := t.RulesFor(moment)
	if err != nil {
		return err
	}
	if weight > rules.MaxWeightPerPiece {
		return &entity.WeightExceedsMaximumError{
			ItemID:  itemID,
			Weight:  weight,
			Maximum: rules.MaxWeightPerPiece,
			Moment:  moment,
		}
	}
	return nil
}
