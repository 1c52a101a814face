// Package domain contains the core business entities and rules for
// crimeradar: crime events, query normalization, and statistics.
// It has no dependencies on adapters or external services.
package domain
