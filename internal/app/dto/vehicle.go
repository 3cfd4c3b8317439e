package dto

import (
	"time"

	domainvehicle "autofleet/internal/domain/vehicle"
)

type VehicleView struct {
	ID             string    `json:"id"`
	Make           string    `json:"make"`
	Model          string    `json:"model"`
	Year           int       `json:"year"`
	Plate          string    `json:"plate"`
	Category       string    `json:"category,omitempty"`
	Seats          int       `json:"seats,omitempty"`
	Transmission   string    `json:"transmission,omitempty"`
	DailyRateCents int64     `json:"daily_rate_cents"`
	Label          string    `json:"availability_label"`
	ImageURL       string    `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type VehicleCollection struct {
	Items []VehicleView `json:"items"`
	Total int           `json:"total"`
}

func MapVehicle(v *domainvehicle.Vehicle) VehicleView {
	return VehicleView{
		ID:             string(v.ID),
		Make:           v.Make,
		Model:          v.Model,
		Year:           v.Year,
		Plate:          v.Plate,
		Category:       v.Category,
		Seats:          v.Seats,
		Transmission:   v.Transmission,
		DailyRateCents: v.DailyRateCents,
		Label:          string(v.Label),
		ImageURL:       v.ImageURL,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func MapVehicleCollection(items []*domainvehicle.Vehicle, total int) VehicleCollection {
	out := VehicleCollection{Items: make([]VehicleView, 0, len(items)), Total: total}
	for _, v := range items {
		out.Items = append(out.Items, MapVehicle(v))
	}
	return out
}
