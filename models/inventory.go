package models

import (
	"strings"
	"time"
)

// ReservationStatus is the booking state reported by the source system.
type ReservationStatus int

const (
	StatusOther ReservationStatus = iota
	StatusConfirmed
	StatusUnconfirmed
	StatusArrived
	StatusMaintenance
	StatusPencil
	StatusDeparted
	StatusCancelled
)

var statusNames = map[ReservationStatus]string{
	StatusOther:       "Other",
	StatusConfirmed:   "Confirmed",
	StatusUnconfirmed: "Unconfirmed",
	StatusArrived:     "Arrived",
	StatusMaintenance: "Maintenance",
	StatusPencil:      "Pencil",
	StatusDeparted:    "Departed",
	StatusCancelled:   "Cancelled",
}

func (s ReservationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Other"
}

// ParseReservationStatus maps a free-form status label onto a known status.
// Unrecognised labels map to StatusOther.
func ParseReservationStatus(raw string) ReservationStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch key {
	case "confirmed":
		return StatusConfirmed
	case "unconfirmed":
		return StatusUnconfirmed
	case "arrived":
		return StatusArrived
	case "maintenance", "ooo", "out of order":
		return StatusMaintenance
	case "pencil":
		return StatusPencil
	case "departed":
		return StatusDeparted
	case "cancelled", "canceled":
		return StatusCancelled
	}
	return StatusOther
}

// Unit is a single bookable room, site or cabin.
type Unit struct {
	ID         int64
	CategoryID int64
	Name       string
	Active     bool
}

// Category groups interchangeable units.
type Category struct {
	ID    int64
	Name  string
	Units []Unit
}

// ActiveUnits returns the active units in their declared order.
func (c Category) ActiveUnits() []Unit {
	out := make([]Unit, 0, len(c.Units))
	for _, u := range c.Units {
		if u.Active {
			out = append(out, u)
		}
	}
	return out
}

// Property is one site with its inventory.
type Property struct {
	ID         int64
	Name       string
	RegionCode string
	Categories []Category
}

// PropertyData is a property plus its unvalidated bookings, as read from a
// source.
type PropertyData struct {
	Property     Property
	Reservations []RawReservation
}

// Reservation occupies one unit over the half-open range [Arrival, Departure).
type Reservation struct {
	ID         int64
	UnitID     int64
	CategoryID int64
	Arrival    time.Time
	Departure  time.Time
	GuestLabel string
	Status     ReservationStatus
	Fixed      bool
}

// Nights is the length of stay.
func (r Reservation) Nights() int {
	return int(r.Departure.Sub(r.Arrival).Hours() / 24)
}

// RawReservation is a reservation as delivered by a source, before
// validation. Dates and status are unparsed strings.
type RawReservation struct {
	ID         int64
	UnitID     int64
	CategoryID int64
	Arrival    string
	Departure  string
	GuestLabel string
	Status     string
	Fixed      bool
}

// SkippedRecord explains why an input record was left out of an analysis.
type SkippedRecord struct {
	ReservationID int64
	Reason        string
}
