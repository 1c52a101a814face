package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/crimeradar/crimeradar-cli/internal/core/domain"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
)

var (
	statsZipcode string
	statsCityPID string
	statsHours   int
	statsJSON    bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show crime statistics for a location",
	Long: `Aggregates crime events for a location within a time window.

One location form must be given: a zipcode (or several separated by
commas) or a city PID.

Examples:
  crimeradar stats --zipcode 95035
  crimeradar stats --city-pid milpitas,california --hours 72`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsZipcode, "zipcode", "", "zipcode(s) to analyze, comma-separated")
	statsCmd.Flags().StringVar(&statsCityPID, "city-pid", "", "city PID to analyze (city,region)")
	statsCmd.Flags().IntVar(&statsHours, "hours", 0, "hours back to analyze (default 24)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if eventService == nil {
		return errors.New("event service not configured")
	}

	raw := domain.RawStatsQuery{
		Zipcode: statsZipcode,
		CityPID: statsCityPID,
	}
	if cmd.Flags().Changed("hours") {
		raw.HoursBack = &statsHours
	}

	result, err := eventService.Stats(cmd.Context(), raw)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(result.Stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal statistics: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputStatsTable(cmd, result)
}

func outputStatsTable(cmd *cobra.Command, result *driving.StatsResult) error {
	stats := result.Stats

	cmd.Printf("Crime Statistics (last %dh)\n", result.Query.HoursBack)
	cmd.Println("===========================")
	cmd.Println()
	cmd.Printf("Total events: %d\n", stats.TotalEvents)

	if stats.TotalEvents == 0 {
		return nil
	}

	if len(stats.Categories) > 0 {
		cmd.Println()
		cmd.Println("Categories:")
		for _, c := range stats.Categories {
			cmd.Printf("  %s\n", c)
		}
	}

	if len(stats.RiskDistribution) > 0 {
		cmd.Println()
		cmd.Println("Risk distribution:")
		for _, risk := range sortedRisks(stats.RiskDistribution) {
			cmd.Printf("  %-6s %d\n", risk, stats.RiskDistribution[risk])
		}
	}

	if stats.AvgAudioDuration > 0 {
		cmd.Println()
		cmd.Printf("Average audio duration: %.2fs\n", stats.AvgAudioDuration)
	}

	if stats.EarliestEvent != nil && stats.LatestEvent != nil {
		cmd.Println()
		cmd.Printf("Earliest event: %s\n", stats.EarliestEvent.Format(time.RFC3339))
		cmd.Printf("Latest event:   %s\n", stats.LatestEvent.Format(time.RFC3339))
	}

	return nil
}

// sortedRisks orders risk levels from low to high for display.
func sortedRisks(dist map[domain.RiskLevel]int) []domain.RiskLevel {
	order := map[domain.RiskLevel]int{
		domain.RiskLow:    0,
		domain.RiskMedium: 1,
		domain.RiskHigh:   2,
	}

	risks := make([]domain.RiskLevel, 0, len(dist))
	for risk := range dist {
		risks = append(risks, risk)
	}
	sort.Slice(risks, func(i, j int) bool {
		return order[risks[i]] < order[risks[j]]
	})
	return risks
}
