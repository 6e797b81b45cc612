package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edseed",
	Short: "Load education statistics CSV exports into PostgreSQL",
	Long: `edseed reads the public education statistics exports (attendance, enrollment,
assessment results and the school directory), validates every row and upserts
the valid records into PostgreSQL by natural key. Re-running a load is safe.

The database is taken from the environment:
  EDSEED_DATABASE_URL  (or DATABASE_URL)   connection URL or project URL
  EDSEED_SERVICE_KEY   (or PGPASSWORD)     credential used as the password
  EDSEED_AUTH          standard | aws | azure | google
A .env file in the working directory is loaded first.

Load the school directory before the other domains, or use 'edseed all'.

Exit Codes:
  0  - Success
  1  - Failure (missing source, connection error, or records not written)
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error`,
	SilenceUsage: true,
}

// stdout receives the console log and the summary; tests swap it.
var stdout io.Writer = os.Stdout

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(stdout)
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&seedFlags.configPath, "config", "",
		"Path to edseed.yaml or the directory holding it (default: ./edseed.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&seedFlags.dryRun, "dry-run", false,
		"Validate and preview records without writing to the database")
	rootCmd.PersistentFlags().IntVar(&seedFlags.batchSize, "batch-size", 0,
		"Records per upsert statement (default from config, else 100)")
	rootCmd.PersistentFlags().StringVar(&seedFlags.logDir, "log-dir", "",
		"Directory for seed_<domain>.log files (default from config, else ./scripts)")
	rootCmd.PersistentFlags().DurationVar(&seedFlags.timeout, "timeout", 0,
		"Upper bound for each domain load, e.g. 10m (default from config, else 30m)")
}

// getVerboseFlag safely retrieves the verbose flag value
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
