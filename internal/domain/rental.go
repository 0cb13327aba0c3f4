package domain

import "time"

// RentalUnit records how many physical units exist for a rental SKU.
type RentalUnit struct {
	SKU        string
	TotalUnits int
}

// Reservation holds rental inventory for [DateFrom, DateTo). DateTo is
// exclusive: a unit returned on day N can go out again on day N.
type Reservation struct {
	ID          string
	CheckoutRef string
	SKU         string
	Quantity    int
	DateFrom    time.Time
	DateTo      time.Time
	CreatedAt   time.Time
}

// Overlaps reports whether the reservation covers the given calendar day.
func (r Reservation) Overlaps(day time.Time) bool {
	return !day.Before(r.DateFrom) && day.Before(r.DateTo)
}
