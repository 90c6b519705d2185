package fare

import (
	"fmt"
	"sort"

	"baggage-checkin-service/internal/domain/entity"
)

// Compute prices an item list. Items are ordered by key so the piece created
// first is the free one; the input slice is left untouched.
//
// The first piece only has its base fee waived. Special and overweight
// surcharges apply to every piece, each judged by its own purchase moment.
func Compute(table *RuleTable, items []*entity.BagItem) (*entity.FareBreakdown, error) {
	if len(items) == 0 {
		return nil, entity.ErrEmptyBaggageList
	}

	ordered := make([]*entity.BagItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	breakdown := &entity.FareBreakdown{Currency: table.Currency()}
	for i, item := range ordered {
		rules, err := table.RulesFor(item.PurchaseMoment)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", item.ID, err)
		}
		pos := i + 1

		if i == 0 {
			addLine(breakdown, entity.FareLine{
				ItemID:      item.ID,
				Position:    pos,
				Kind:        entity.LineFreePiece,
				Moment:      item.PurchaseMoment,
				Description: fmt.Sprintf("piece 1 free, moment = %s", item.PurchaseMoment),
			})
		} else {
			addLine(breakdown, entity.FareLine{
				ItemID:      item.ID,
				Position:    pos,
				Kind:        entity.LineBaseFee,
				Moment:      item.PurchaseMoment,
				Amount:      rules.SecondPieceFee,
				Description: fmt.Sprintf("piece %d base fee, moment = %s", pos, item.PurchaseMoment),
			})
		}

		if item.Category == entity.CategorySpecial {
			addLine(breakdown, entity.FareLine{
				ItemID:      item.ID,
				Position:    pos,
				Kind:        entity.LineSpecial,
				Moment:      item.PurchaseMoment,
				Amount:      rules.SpecialCategoryFee,
				Description: fmt.Sprintf("piece %d special category, moment = %s", pos, item.PurchaseMoment),
			})
		}

		if item.Weight > rules.FreeWeightCeiling {
			addLine(breakdown, entity.FareLine{
				ItemID:      item.ID,
				Position:    pos,
				Kind:        entity.LineOverweight,
				Moment:      item.PurchaseMoment,
				Amount:      rules.OverweightFee,
				Description: fmt.Sprintf("piece %d overweight %.2f kg > %.2f kg, moment = %s", pos, item.Weight, rules.FreeWeightCeiling, item.PurchaseMoment),
			})
		}
	}
	return breakdown, nil
}

func addLine(b *entity.FareBreakdown, line entity.FareLine) {
	b.Lines = append(b.Lines, line)
	b.Total += line.Amount
}
