package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
)

var (
	searchZipcode   string
	searchCityPID   string
	searchLatitude  float64
	searchLongitude float64
	searchRadius    float64
	searchHours     int
	searchLimit     int
	searchCategory  string
	searchRisk      string
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search crime events by location",
	Long: `Searches crime events near a location within a time window.

Exactly one location form must be given: a zipcode (or several separated
by commas), a city PID, or a latitude/longitude pair with an optional
radius.

Examples:
  crimeradar search --zipcode 95035
  crimeradar search --zipcode "95035,95036" --hours 48 --risk high
  crimeradar search --city-pid milpitas,california --category theft
  crimeradar search --lat 37.43 --lon -121.90 --radius 3`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchZipcode, "zipcode", "", "zipcode(s) to search, comma-separated")
	searchCmd.Flags().StringVar(&searchCityPID, "city-pid", "", "city PID to search (city,region)")
	searchCmd.Flags().Float64Var(&searchLatitude, "lat", 0, "latitude for coordinate search")
	searchCmd.Flags().Float64Var(&searchLongitude, "lon", 0, "longitude for coordinate search")
	searchCmd.Flags().Float64Var(&searchRadius, "radius", 0, "search radius in km (default 5)")
	searchCmd.Flags().IntVar(&searchHours, "hours", 0, "hours back to search (default 24)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default 10, max 100)")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "crime category filter")
	searchCmd.Flags().StringVar(&searchRisk, "risk", "", "risk level filter: low, medium, or high")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	if eventService == nil {
		return errors.New("event service not configured")
	}

	raw := domain.RawSearchQuery{
		Zipcode:   searchZipcode,
		CityPID:   searchCityPID,
		Category:  searchCategory,
		RiskLevel: searchRisk,
	}

	// Changed() distinguishes an absent flag from an explicit zero.
	flags := cmd.Flags()
	if flags.Changed("lat") {
		raw.Latitude = &searchLatitude
	}
	if flags.Changed("lon") {
		raw.Longitude = &searchLongitude
	}
	if flags.Changed("radius") {
		raw.RadiusKM = &searchRadius
	}
	if flags.Changed("hours") {
		raw.HoursBack = &searchHours
	}
	if flags.Changed("limit") {
		raw.Limit = &searchLimit
	}

	result, err := eventService.Search(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, result)
	}

	return outputSearchTable(cmd, result)
}

func outputSearchJSON(cmd *cobra.Command, result *driving.SearchResult) error {
	data, err := json.MarshalIndent(result.Events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *driving.SearchResult) error {
	if result.Count == 0 {
		cmd.Println("No events found.")
		return nil
	}

	cmd.Printf("Events (last %dh):\n", result.Query.HoursBack)
	cmd.Println()
	for i := range result.Events {
		e := &result.Events[i]

		cmd.Printf("  [%d] %s (%s, %s)\n", i+1, e.Title, e.Category, e.Risk)
		cmd.Printf("      Updated: %s\n", e.UpdatedAt.Format("2006-01-02 15:04 MST"))
		if len(e.Zipcodes) > 0 {
			cmd.Printf("      Zipcodes: %s\n", strings.Join(e.Zipcodes, ", "))
		}
		if e.Description != "" {
			cmd.Printf("      %s\n", e.Description)
		}
		cmd.Println()
	}

	return nil
}
