package entities

import (
	"time"
)

// SearchType identifies what kind of entity a location search targets.
// It scopes rate limits and triangulation detection per target class.
type SearchType string

const (
	SearchTypeItem   SearchType = "item"
	SearchTypeBundle SearchType = "bundle"
	SearchTypeUser   SearchType = "user"
)

// SearchAuditEntry is one durable record of a location-revealing query.
// Created exactly once when a search is executed; never mutated afterwards.
type SearchAuditEntry struct {
	ID               string     `json:"id" db:"id"`
	UserID           *string    `json:"user_id,omitempty" db:"user_id"`
	TargetID         *string    `json:"target_id,omitempty" db:"target_id"`
	SearchType       SearchType `json:"search_type" db:"search_type"`
	Latitude         *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64   `json:"longitude,omitempty" db:"longitude"`
	SearchRadiusKm   *float64   `json:"search_radius_km,omitempty" db:"search_radius_km"`
	Query            *string    `json:"query,omitempty" db:"query"`
	UserAgent        string     `json:"user_agent" db:"user_agent"`
	IPAddress        string     `json:"ip_address" db:"ip_address"`
	SessionID        string     `json:"session_id" db:"session_id"`
	IsSuspicious     bool       `json:"is_suspicious" db:"is_suspicious"`
	SuspiciousReason *string    `json:"suspicious_reason,omitempty" db:"suspicious_reason"`
	ResultCount      int        `json:"result_count" db:"result_count"`
	ResponseTimeMs   int        `json:"response_time_ms" db:"response_time_ms"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	IsDeleted        bool       `json:"is_deleted" db:"is_deleted"`
}

// Coordinate returns the search coordinate if one was recorded
func (e *SearchAuditEntry) Coordinate() *Coordinate {
	if e.Latitude == nil || e.Longitude == nil {
		return nil
	}
	return &Coordinate{Latitude: *e.Latitude, Longitude: *e.Longitude}
}
