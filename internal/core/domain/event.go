package domain

import "time"

// AddressTypePOI is the address type every query is restricted to.
// Events geocoded to anything other than a point of interest are
// excluded from search and statistics.
const AddressTypePOI = "POI"

// CrimeEvent represents a single crime event record.
type CrimeEvent struct {
	// ID is the unique identifier for the event.
	ID string `json:"id"`

	// Title is a short human-readable summary.
	Title string `json:"title"`

	// Description is the full event description.
	Description string `json:"description,omitempty"`

	// Category is the crime category (e.g. "Theft", "Family Offense").
	Category string `json:"category"`

	// Risk is the coarse severity classification.
	Risk RiskLevel `json:"risk"`

	// CityPID identifies the city, as a "city,region" pair
	// (e.g. "milpitas,california").
	CityPID string `json:"city_pid"`

	// Zipcodes are the zip codes the event is associated with.
	// An event can span more than one.
	Zipcodes []string `json:"zipcodes"`

	// Latitude and Longitude locate the event.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// AddressType classifies the geocoded address. Queries only
	// consider AddressTypePOI events.
	AddressType string `json:"address_type"`

	// AudioDuration is the length in seconds of the source radio
	// audio clip, if any.
	AudioDuration float64 `json:"audio_duration,omitempty"`

	// CreatedAt is when the event was first recorded.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the event was last updated. Time-window
	// filtering and result ordering use this field.
	UpdatedAt time.Time `json:"updated_at"`
}
