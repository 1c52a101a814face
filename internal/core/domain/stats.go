package domain

import "time"

// CrimeStats summarises crime events for a location and time window.
type CrimeStats struct {
	// TotalEvents is the number of events matched.
	TotalEvents int `json:"total_events"`

	// Categories are the distinct crime categories seen.
	Categories []string `json:"categories"`

	// RiskDistribution counts events per risk level.
	RiskDistribution map[RiskLevel]int `json:"risk_distribution"`

	// AvgAudioDuration is the mean audio clip length in seconds,
	// rounded to two decimals. Zero when no events carry audio.
	AvgAudioDuration float64 `json:"avg_audio_duration"`

	// EarliestEvent and LatestEvent bound the matched events by
	// update time. Nil when no events matched.
	EarliestEvent *time.Time `json:"earliest_event,omitempty"`
	LatestEvent   *time.Time `json:"latest_event,omitempty"`
}
