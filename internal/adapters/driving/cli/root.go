// Package cli implements the crimeradar command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimeradar/crimeradar-cli/internal/adapters/driven/config/file"
	"github.com/crimeradar/crimeradar-cli/internal/adapters/driven/storage/sqlite"
	"github.com/crimeradar/crimeradar-cli/internal/core/ports/driving"
	"github.com/crimeradar/crimeradar-cli/internal/core/services"
	"github.com/crimeradar/crimeradar-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// Persistent flags.
var (
	verbose   bool
	dataDir   string
	configDir string
)

// Shared services, wired before command execution.
var (
	configStore  *file.ConfigStore
	sqliteStore  *sqlite.Store
	eventService driving.EventService
)

var rootCmd = &cobra.Command{
	Use:   "crimeradar",
	Short: "Query local crime events",
	Long: `CrimeRadar indexes crime events and answers location-scoped queries
over them, either directly from the command line or through an MCP
server for AI assistant integration.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for the event database (default ~/.crimeradar/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory for configuration (default ~/.crimeradar)")
}

// Execute runs the root command with the given context. The context
// is cancelled on interrupt so long-running commands shut down cleanly.
func Execute(ctx context.Context) error {
	defer func() {
		if sqliteStore != nil {
			sqliteStore.Close() //nolint:errcheck
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// initServices wires the config store, event store, and event service.
// Commands that never touch the store skip the wiring.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	var err error
	configStore, err = file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	dir := dataDir
	if dir == "" {
		dir = configStore.GetString(file.KeyDataDir)
	}

	sqliteStore, err = sqlite.NewStore(dir)
	if err != nil {
		return fmt.Errorf("opening event store: %w", err)
	}
	logger.Debug("Event store at %s", sqliteStore.Path())

	service := services.NewEventService(sqliteStore.EventStore())
	if rps := configStore.GetFloat(file.KeyRateLimit); rps > 0 {
		burst := configStore.GetInt(file.KeyRateBurst)
		if burst < 1 {
			burst = 1
		}
		service.SetRateLimit(rps, burst)
	}

	eventService = service
	return nil
}
