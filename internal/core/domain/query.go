package domain

import (
	"fmt"
	"strings"
)

// Query defaults and limits.
const (
	// DefaultHoursBack is the time window applied when hours_back is absent.
	DefaultHoursBack = 24

	// DefaultLimit is the result cap applied when limit is absent.
	DefaultLimit = 10

	// MaxLimit is the hard cap on results; larger limits are clamped.
	MaxLimit = 100

	// DefaultRadiusKM is the search radius applied when a geo query
	// omits radius_km.
	DefaultRadiusKM = 5.0
)

// GeoPoint is a coordinate pair with a search radius.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKM  float64 `json:"radius_km"`
}

// RawSearchQuery carries the unvalidated inputs of a search request.
// Pointer fields distinguish "absent" from a supplied zero value.
type RawSearchQuery struct {
	// Zipcode is a single zip code or several separated by commas.
	Zipcode string

	// CityPID is a "city,region" identifier pair.
	CityPID string

	// Latitude and Longitude select the geographic location form.
	// Both must be supplied together.
	Latitude  *float64
	Longitude *float64

	// RadiusKM is the search radius for the geographic form.
	RadiusKM *float64

	// HoursBack is how far back in time to search.
	HoursBack *int

	// Limit is the maximum number of results.
	Limit *int

	// Category filters by crime category, case-insensitive.
	Category string

	// RiskLevel filters by risk level: low, medium, or high.
	RiskLevel string
}

// SearchQuery is the canonical, validated form of a search request.
// Exactly one location form is set: Zipcodes, CityPID, or Geo.
type SearchQuery struct {
	Zipcodes  []string
	CityPID   string
	Geo       *GeoPoint
	HoursBack int
	Limit     int
	Category  string
	Risk      RiskLevel
}

// RawStatsQuery carries the unvalidated inputs of a statistics request.
type RawStatsQuery struct {
	// Zipcode is a single zip code or several separated by commas.
	Zipcode string

	// CityPID is a "city,region" identifier pair.
	CityPID string

	// HoursBack is how far back in time to analyze.
	HoursBack *int
}

// StatsQuery is the canonical, validated form of a statistics request.
// Exactly one location form is set: Zipcodes or CityPID. There is no
// geographic form for statistics.
type StatsQuery struct {
	Zipcodes  []string
	CityPID   string
	HoursBack int
}

// NormalizeSearchQuery validates raw search inputs and produces a
// canonical SearchQuery with defaults applied and the limit clamped.
// It is a pure function; validation failures return one of
// ErrMissingLocation, ErrAmbiguousLocation, ErrInvalidRiskLevel, or
// ErrInvalidRange.
func NormalizeSearchQuery(raw RawSearchQuery) (SearchQuery, error) {
	var q SearchQuery

	zipcodes := splitZipcodes(raw.Zipcode)
	cityPID := strings.TrimSpace(raw.CityPID)

	geoPartial := (raw.Latitude != nil) != (raw.Longitude != nil)
	geoComplete := raw.Latitude != nil && raw.Longitude != nil

	forms := 0
	if len(zipcodes) > 0 {
		forms++
	}
	if cityPID != "" {
		forms++
	}
	if geoComplete {
		forms++
	}

	switch {
	case forms == 0 && geoPartial:
		return q, fmt.Errorf("%w: latitude and longitude must be supplied together", ErrMissingLocation)
	case forms == 0:
		return q, fmt.Errorf("%w: supply a zipcode, city PID, or latitude/longitude pair", ErrMissingLocation)
	case forms > 1:
		return q, fmt.Errorf("%w: supply only one of zipcode, city PID, or coordinates", ErrAmbiguousLocation)
	case geoPartial:
		// A full location form was given alongside a dangling coordinate.
		return q, fmt.Errorf("%w: a lone latitude or longitude conflicts with the other location form", ErrAmbiguousLocation)
	}

	switch {
	case len(zipcodes) > 0:
		q.Zipcodes = zipcodes
	case cityPID != "":
		q.CityPID = cityPID
	default:
		geo, err := normalizeGeo(*raw.Latitude, *raw.Longitude, raw.RadiusKM)
		if err != nil {
			return SearchQuery{}, err
		}
		q.Geo = geo
	}

	hours, err := normalizeHoursBack(raw.HoursBack)
	if err != nil {
		return SearchQuery{}, err
	}
	q.HoursBack = hours

	limit, err := normalizeLimit(raw.Limit)
	if err != nil {
		return SearchQuery{}, err
	}
	q.Limit = limit

	q.Category = strings.TrimSpace(raw.Category)

	if strings.TrimSpace(raw.RiskLevel) != "" {
		risk, err := ParseRiskLevel(raw.RiskLevel)
		if err != nil {
			return SearchQuery{}, err
		}
		q.Risk = risk
	}

	return q, nil
}

// NormalizeStatsQuery validates raw statistics inputs and produces a
// canonical StatsQuery. The geographic location form is not accepted
// for statistics; only zipcodes and city PIDs identify the location.
func NormalizeStatsQuery(raw RawStatsQuery) (StatsQuery, error) {
	var q StatsQuery

	zipcodes := splitZipcodes(raw.Zipcode)
	cityPID := strings.TrimSpace(raw.CityPID)

	switch {
	case len(zipcodes) == 0 && cityPID == "":
		return q, fmt.Errorf("%w: supply a zipcode or city PID", ErrMissingLocation)
	case len(zipcodes) > 0 && cityPID != "":
		return q, fmt.Errorf("%w: supply only one of zipcode or city PID", ErrAmbiguousLocation)
	case len(zipcodes) > 0:
		q.Zipcodes = zipcodes
	default:
		q.CityPID = cityPID
	}

	hours, err := normalizeHoursBack(raw.HoursBack)
	if err != nil {
		return StatsQuery{}, err
	}
	q.HoursBack = hours

	return q, nil
}

// splitZipcodes splits a comma-separated zipcode string, trimming
// whitespace and dropping empty entries. Order is preserved.
func splitZipcodes(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	zipcodes := make([]string, 0, len(parts))
	for _, p := range parts {
		if z := strings.TrimSpace(p); z != "" {
			zipcodes = append(zipcodes, z)
		}
	}
	return zipcodes
}

// normalizeGeo validates coordinates and applies the default radius.
func normalizeGeo(lat, lon float64, radius *float64) (*GeoPoint, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("%w: latitude %v is outside [-90, 90]", ErrInvalidRange, lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("%w: longitude %v is outside [-180, 180]", ErrInvalidRange, lon)
	}

	r := DefaultRadiusKM
	if radius != nil {
		r = *radius
	}
	if r <= 0 {
		return nil, fmt.Errorf("%w: radius_km must be positive, got %v", ErrInvalidRange, r)
	}

	return &GeoPoint{Latitude: lat, Longitude: lon, RadiusKM: r}, nil
}

// normalizeHoursBack applies the default time window and rejects
// non-positive values.
func normalizeHoursBack(hours *int) (int, error) {
	if hours == nil {
		return DefaultHoursBack, nil
	}
	if *hours <= 0 {
		return 0, fmt.Errorf("%w: hours_back must be positive, got %d", ErrInvalidRange, *hours)
	}
	return *hours, nil
}

// normalizeLimit applies the default limit, rejects limits below one,
// and clamps limits above MaxLimit.
func normalizeLimit(limit *int) (int, error) {
	if limit == nil {
		return DefaultLimit, nil
	}
	if *limit < 1 {
		return 0, fmt.Errorf("%w: limit must be at least 1, got %d", ErrInvalidRange, *limit)
	}
	if *limit > MaxLimit {
		return MaxLimit, nil
	}
	return *limit, nil
}
