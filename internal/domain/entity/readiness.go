package entity

import "fmt"

// ReasonCode identifies why baggage is not ready
type ReasonCode string

const (
	ReasonNone             ReasonCode = ""
	ReasonNoItems          ReasonCode = "no_items"
	ReasonExcessWeight     ReasonCode = "excess_weight"
	ReasonAlreadyCheckedIn ReasonCode = "already_checked_in"
	ReasonNotCheckedIn     ReasonCode = "not_checked_in"
)

// Readiness is the answer to "can this baggage move on?"
type Readiness struct {
	Ready   bool       `json:"ready"`
	Code    ReasonCode `json:"code,omitempty"`
	Message string     `json:"reason,omitempty"`
	ItemID  uint       `json:"item_id,omitempty"`
}

// Ready is the passing answer
func Ready() Readiness {
	return Readiness{Ready: true}
}

// NoItems is returned for a record without live pieces
func NoItems() Readiness {
	return Readiness{Code: ReasonNoItems, Message: "no items"}
}

// ExcessWeight names the first piece above its moment's maximum
func ExcessWeight(item *BagItem, maximum float64) Readiness {
	return Readiness{
		Code:    ReasonExcessWeight,
		ItemID:  item.ID,
		Message: fmt.Sprintf("remove the %.2f kg piece #%d for moment=%s (maximum %.2f kg)", item.Weight, item.ID, item.PurchaseMoment, maximum),
	}
}

// AlreadyCheckedIn is returned once the record is finalized
func AlreadyCheckedIn() Readiness {
	return Readiness{Code: ReasonAlreadyCheckedIn, Message: "already checked in"}
}

// NotCheckedIn is the gate's answer for valid baggage nobody finalized yet
func NotCheckedIn() Readiness {
	return Readiness{Code: ReasonNotCheckedIn, Message: "baggage not checked in"}
}
