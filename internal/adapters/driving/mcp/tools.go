package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
)

// SearchInput is the input schema for the search_crime_events tool.
type SearchInput struct {
	Zipcode   string   `json:"zipcode,omitempty" jsonschema:"zipcode to search crime events in, multiple zipcodes separated by commas"`
	CityPID   string   `json:"city_pid,omitempty" jsonschema:"city PID to search crime events in, a city,region pair like milpitas,california"`
	Latitude  *float64 `json:"latitude,omitempty" jsonschema:"latitude for location-based search, requires longitude"`
	Longitude *float64 `json:"longitude,omitempty" jsonschema:"longitude for location-based search, requires latitude"`
	RadiusKM  *float64 `json:"radius_km,omitempty" jsonschema:"search radius in kilometers for location-based search (default 5)"`
	HoursBack *int     `json:"hours_back,omitempty" jsonschema:"number of hours back to search (default 24)"`
	Limit     *int     `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10, max 100)"`
	Category  string   `json:"category,omitempty" jsonschema:"crime category to filter by, case-insensitive substring match"`
	RiskLevel string   `json:"risk_level,omitempty" jsonschema:"risk level to filter by: low, medium, or high"`
}

// SearchOutput is the output schema for the search_crime_events tool.
type SearchOutput struct {
	QueryParams  QueryParamsOutput `json:"query_params"`
	ResultsCount int               `json:"results_count"`
	Results      []EventOutput     `json:"results"`
}

// QueryParamsOutput echoes the query after normalization.
type QueryParamsOutput struct {
	Zipcode   string   `json:"zipcode,omitempty"`
	CityPID   string   `json:"city_pid,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	RadiusKM  *float64 `json:"radius_km,omitempty"`
	HoursBack int      `json:"hours_back"`
	Limit     int      `json:"limit"`
	Category  string   `json:"category,omitempty"`
	RiskLevel string   `json:"risk_level,omitempty"`
}

// EventOutput represents a single crime event result.
type EventOutput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Category      string   `json:"category"`
	Risk          string   `json:"risk"`
	CityPID       string   `json:"city_pid"`
	Zipcodes      []string `json:"zipcodes"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	AudioDuration float64  `json:"audio_duration,omitempty"`
	UpdatedAt     string   `json:"updated_at"`
}

// StatsInput is the input schema for the get_crime_stats tool.
type StatsInput struct {
	Zipcode   string `json:"zipcode,omitempty" jsonschema:"zipcode to get crime statistics for"`
	CityPID   string `json:"city_pid,omitempty" jsonschema:"city PID to get crime statistics for"`
	HoursBack *int   `json:"hours_back,omitempty" jsonschema:"number of hours back to analyze (default 24)"`
}

// StatsOutput is the output schema for the get_crime_stats tool.
type StatsOutput struct {
	Location        LocationOutput   `json:"location"`
	TimePeriodHours int              `json:"time_period_hours"`
	TotalEvents     int              `json:"total_events"`
	Statistics      StatisticsOutput `json:"statistics"`
}

// LocationOutput echoes the location the statistics cover.
type LocationOutput struct {
	Zipcode string `json:"zipcode,omitempty"`
	CityPID string `json:"city_pid,omitempty"`
}

// StatisticsOutput carries the aggregated figures.
type StatisticsOutput struct {
	Categories       []string       `json:"categories"`
	RiskDistribution map[string]int `json:"risk_distribution"`
	AvgAudioDuration float64        `json:"avg_audio_duration"`
	EarliestEvent    string         `json:"earliest_event,omitempty"`
	LatestEvent      string         `json:"latest_event,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_crime_events",
		Description: "Search crime events by location (zipcode, city PID, or coordinates) within a time window",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_crime_stats",
		Description: "Get crime statistics and summaries for a specific location within the specified time period",
	}, s.handleStats)
}

// handleSearch handles the search_crime_events tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	raw := domain.RawSearchQuery{
		Zipcode:   input.Zipcode,
		CityPID:   input.CityPID,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		RadiusKM:  input.RadiusKM,
		HoursBack: input.HoursBack,
		Limit:     input.Limit,
		Category:  input.Category,
		RiskLevel: input.RiskLevel,
	}

	result, err := s.ports.Events.Search(ctx, raw)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		QueryParams:  queryParams(result.Query),
		ResultsCount: result.Count,
		Results:      make([]EventOutput, len(result.Events)),
	}

	for i := range result.Events {
		output.Results[i] = eventOutput(&result.Events[i])
	}

	return nil, output, nil
}

// handleStats handles the get_crime_stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	raw := domain.RawStatsQuery{
		Zipcode:   input.Zipcode,
		CityPID:   input.CityPID,
		HoursBack: input.HoursBack,
	}

	result, err := s.ports.Events.Stats(ctx, raw)
	if err != nil {
		return nil, StatsOutput{}, err
	}

	stats := result.Stats
	output := StatsOutput{
		Location: LocationOutput{
			Zipcode: joinZipcodes(result.Query.Zipcodes),
			CityPID: result.Query.CityPID,
		},
		TimePeriodHours: result.Query.HoursBack,
		TotalEvents:     stats.TotalEvents,
		Statistics: StatisticsOutput{
			Categories:       stats.Categories,
			RiskDistribution: riskDistribution(stats.RiskDistribution),
			AvgAudioDuration: stats.AvgAudioDuration,
			EarliestEvent:    formatTime(stats.EarliestEvent),
			LatestEvent:      formatTime(stats.LatestEvent),
		},
	}

	return nil, output, nil
}

// queryParams echoes a normalized search query in wire form.
func queryParams(q domain.SearchQuery) QueryParamsOutput {
	out := QueryParamsOutput{
		Zipcode:   joinZipcodes(q.Zipcodes),
		CityPID:   q.CityPID,
		HoursBack: q.HoursBack,
		Limit:     q.Limit,
		Category:  q.Category,
		RiskLevel: string(q.Risk),
	}

	if q.Geo != nil {
		lat, lon, radius := q.Geo.Latitude, q.Geo.Longitude, q.Geo.RadiusKM
		out.Latitude = &lat
		out.Longitude = &lon
		out.RadiusKM = &radius
	}

	return out
}

// eventOutput converts a domain event to wire form.
func eventOutput(e *domain.CrimeEvent) EventOutput {
	return EventOutput{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Category:      e.Category,
		Risk:          string(e.Risk),
		CityPID:       e.CityPID,
		Zipcodes:      e.Zipcodes,
		Latitude:      e.Latitude,
		Longitude:     e.Longitude,
		AudioDuration: e.AudioDuration,
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
}

// riskDistribution converts risk keys to plain strings for the wire.
func riskDistribution(dist map[domain.RiskLevel]int) map[string]int {
	out := make(map[string]int, len(dist))
	for risk, n := range dist {
		out[string(risk)] = n
	}
	return out
}

// joinZipcodes renders a zipcode list back to comma-separated form.
func joinZipcodes(zipcodes []string) string {
	return strings.Join(zipcodes, ",")
}

// formatTime renders an optional timestamp as RFC 3339, empty when nil.
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
