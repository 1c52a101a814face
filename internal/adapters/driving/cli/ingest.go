package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crimeradar/crimeradar-cli/internal/adapters/driven/config/file"
	"github.com/crimeradar/crimeradar-cli/internal/adapters/driving/ingest"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Load crime events from JSON files",
	Long: `Loads crime events from JSON files into the local store.

Each file holds either a JSON array of events or a single event object.
Events without an ID are assigned one; events with an ID overwrite any
stored event with the same ID.

With --watch, ingests the given directory's JSON files and then keeps
watching it, loading new files as they appear.

Examples:
  crimeradar ingest events.json
  crimeradar ingest --watch /srv/crimeradar/incoming`,
	Args: cobra.ArbitraryArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "watch a directory for new event files")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if eventService == nil {
		return errors.New("event service not configured")
	}

	if ingestWatch {
		return runIngestWatch(cmd, args)
	}

	if len(args) == 0 {
		return errors.New("no files given; pass one or more JSON files or use --watch")
	}

	total := 0
	for _, path := range args {
		n, err := ingest.LoadFile(cmd.Context(), eventService, path)
		if err != nil {
			return err
		}
		cmd.Printf("Ingested %d events from %s\n", n, path)
		total += n
	}

	cmd.Printf("Done: %d events.\n", total)
	return nil
}

func runIngestWatch(cmd *cobra.Command, args []string) error {
	dir := ""
	switch {
	case len(args) == 1:
		dir = args[0]
	case len(args) > 1:
		return errors.New("--watch takes a single directory")
	default:
		dir = configStore.GetString(file.KeyWatchDir)
		if dir == "" {
			return errors.New("no watch directory given and ingest.watch_dir is not configured")
		}
	}

	watcher, err := ingest.NewWatcher(eventService, dir)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", dir)
	if err := watcher.Run(cmd.Context()); err != nil && !errors.Is(err, cmd.Context().Err()) {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}
