package dto

import (
	"time"

	domainbooking "autofleet/internal/domain/booking"
)

type BookingView struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	VehicleID         string    `json:"vehicle_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	PickupLocationID  string    `json:"pickup_location_id"`
	DropoffLocationID string    `json:"dropoff_location_id"`
	TotalCostCents    int64     `json:"total_cost_cents"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
	Total int           `json:"total"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:                string(b.ID),
		UserID:            string(b.UserID),
		VehicleID:         string(b.VehicleID),
		StartDate:         b.Range.Start,
		EndDate:           b.Range.End,
		PickupLocationID:  string(b.PickupLocationID),
		DropoffLocationID: string(b.DropoffLocationID),
		TotalCostCents:    b.TotalCostCents,
		Status:            string(b.Status),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

func MapBookingCollection(items []*domainbooking.Booking, total int) BookingCollection {
	out := BookingCollection{Items: make([]BookingView, 0, len(items)), Total: total}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}
