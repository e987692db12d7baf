package entities

import (
	"time"
)

// Item is a rentable listing as seen by the location search core.
// The surrounding marketplace owns writes, approval and availability.
type Item struct {
	ID          string     `json:"id" db:"id"`
	OwnerID     string     `json:"owner_id" db:"owner_id"`
	Name        string     `json:"name" db:"name"`
	Category    string     `json:"category" db:"category"`
	SearchType  SearchType `json:"search_type" db:"search_type"`
	Location    Coordinate `json:"location"`
	City        string     `json:"city" db:"city"`
	State       string     `json:"state" db:"state"`
	IsAvailable bool       `json:"is_available" db:"is_available"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// ItemWithDistance is a nearby-search result. The exact distance is kept
// unexported so it can order results without ever being disclosed; callers
// only see the band, its text, and optionally a fuzzed kilometre value.
type ItemWithDistance struct {
	Item            Item         `json:"item"`
	Band            DistanceBand `json:"distance_band"`
	BandText        string       `json:"distance_text"`
	FuzzedKm        *float64     `json:"approximate_km,omitempty"`
	exactDistanceKm float64
}

// NewItemWithDistance builds a result carrying the true distance internally
func NewItemWithDistance(item Item, exactKm float64, band DistanceBand, bandText string, fuzzedKm *float64) ItemWithDistance {
	return ItemWithDistance{
		Item:            item,
		Band:            band,
		BandText:        bandText,
		FuzzedKm:        fuzzedKm,
		exactDistanceKm: exactKm,
	}
}

// SortKey returns the true distance for ordering within the search core
func (i ItemWithDistance) SortKey() float64 {
	return i.exactDistanceKm
}
