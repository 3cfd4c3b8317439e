package dto

import (
	"time"

	domainlocation "autofleet/internal/domain/location"
)

type LocationView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	City      string    `json:"city"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LocationCollection struct {
	Items []LocationView `json:"items"`
}

func MapLocation(l *domainlocation.Location) LocationView {
	return LocationView{
		ID:        string(l.ID),
		Name:      l.Name,
		Address:   l.Address,
		City:      l.City,
		Country:   l.Country,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func MapLocationCollection(items []*domainlocation.Location) LocationCollection {
	out := LocationCollection{Items: make([]LocationView, 0, len(items))}
	for _, l := range items {
		out.Items = append(out.Items, MapLocation(l))
	}
	return out
}
