package entity

import (
	"strings"
	"time"
)

// Check-in event statuses
const (
	CheckInConfirmed = "confirmed"
)

// Reservation statuses that make a booking usable
const (
	ReservationConfirmed = "confirmed"
	ReservationPaid      = "paid"
)

// FlightCancelled is the flight status that deactivates its reservations
const FlightCancelled = "cancelled"

// Passenger is the traveller as seen by check-in
type Passenger struct {
	ID             uint
	FirstName      string
	LastName       string
	DocumentType   string
	DocumentNumber string
}

// FullName joins first and last name
func (p *Passenger) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Flight carries the schedule fields check-in shows to the operator
type Flight struct {
	ID           uint
	Number       string
	Status       string
	BoardingTime *string
	DepartureAt  *time.Time
	ArrivalAt    *time.Time
	OriginID     *uint
	DestID       *uint
}

// Reservation is owned by the booking side; check-in reads it and flips CheckInDone
type Reservation struct {
	ID          uint
	Code        string
	Status      string
	CheckInDone bool
	TicketID    *uint
	Passenger   *Passenger
	Flight      *Flight
}

// Complete reports whether passenger, ticket and flight are all resolved
func (r *Reservation) Complete() bool {
	return r.Passenger != nil && r.Flight != nil && r.TicketID != nil
}

// Active mirrors the desk's rule: confirmed or paid, flight not cancelled, not departed
func (r *Reservation) Active(now time.Time) bool {
	status := strings.ToLower(r.Status)
	if status != ReservationConfirmed && status != ReservationPaid {
		return false
	}
	if r.Flight == nil || strings.ToLower(r.Flight.Status) == FlightCancelled {
		return false
	}
	return r.Flight.DepartureAt != nil && !r.Flight.DepartureAt.Before(now)
}

// CheckInEvent records one flight check-in outcome for a reservation
type CheckInEvent struct {
	ID            uint      `json:"id"`
	ReservationID uint      `json:"reservation_id"`
	PassengerID   uint      `json:"passenger_id"`
	OperatorID    *string   `json:"operator,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
}

// ReservationSummary is what the check-in desk shows after a lookup
type ReservationSummary struct {
	ReservationID     uint          `json:"reservation_id"`
	Code              string        `json:"code"`
	PassengerID       uint          `json:"passenger_id"`
	TicketID          uint          `json:"ticket_id"`
	PassengerName     string        `json:"passenger_name"`
	PassengerDocument string        `json:"passenger_document"`
	FlightID          uint          `json:"flight_id"`
	FlightNumber      string        `json:"flight_number,omitempty"`
	FlightStatus      string        `json:"flight_status"`
	BoardingTime      *string       `json:"boarding_time,omitempty"`
	DepartureAt       *time.Time    `json:"departure_at,omitempty"`
	ArrivalAt         *time.Time    `json:"arrival_at,omitempty"`
	OriginID          *uint         `json:"origin_id,omitempty"`
	DestinationID     *uint         `json:"destination_id,omitempty"`
	LatestCheckIn     *CheckInEvent `json:"latest_check_in,omitempty"`
	CheckInConfirmed  bool          `json:"check_in_confirmed"`
	Active            bool          `json:"active"`
}
