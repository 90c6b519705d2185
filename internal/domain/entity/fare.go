package entity

// FareRuleSet holds the parameters that apply to pieces bought at one moment.
// Fees are in minor currency units (cents); weights in kg.
type FareRuleSet struct {
	Moment             PurchaseMoment `json:"moment"`
	SecondPieceFee     int64          `json:"second_piece_fee"`
	OverweightFee      int64          `json:"overweight_fee"`
	SpecialCategoryFee int64          `json:"special_category_fee"`
	FreeWeightCeiling  float64        `json:"free_weight_ceiling"`
	MaxWeightPerPiece  float64        `json:"max_weight_per_piece"`
}

// FareLineKind tells which rule produced a line
type FareLineKind string

const (
	LineFreePiece  FareLineKind = "free_piece"
	LineBaseFee    FareLineKind = "base_fee"
	LineSpecial    FareLineKind = "special"
	LineOverweight FareLineKind = "overweight"
)

// FareLine is one charge (or the zero-amount free-piece note) for one item
type FareLine struct {
	ItemID      uint           `json:"item_id"`
	Position    int            `json:"position"`
	Kind        FareLineKind   `json:"kind"`
	Moment      PurchaseMoment `json:"moment"`
	Amount      int64          `json:"amount"`
	Description string         `json:"description"`
}

// FareBreakdown is the itemized result of a fare computation
type FareBreakdown struct {
	Currency string     `json:"currency"`
	Lines    []FareLine `json:"lines"`
	Total    int64      `json:"total"`
}

// Invoice is the read-only document view of a record
type Invoice struct {
	Record    *BaggageRecord `json:"record"`
	Items     []*BagItem     `json:"items"`
	Breakdown *FareBreakdown `json:"breakdown"`
	Proforma  bool           `json:"proforma"`
}
