package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vvka-141/edseed/internal/config"
	"github.com/vvka-141/edseed/internal/logging"
	"github.com/vvka-141/edseed/internal/pipeline"
	"github.com/vvka-141/edseed/internal/record"
	"github.com/vvka-141/edseed/internal/report"
	"github.com/vvka-141/edseed/pkg/edseed"
)

type seedFlagValues struct {
	configPath string
	dryRun     bool
	batchSize  int
	logDir     string
	timeout    time.Duration
	csv        []string
}

var seedFlags seedFlagValues

func resetSeedFlags() {
	seedFlags = seedFlagValues{}
}

// openSink is replaced in tests; nil selects the PostgreSQL sink.
var openSink pipeline.OpenSinkFunc

type domainRunner func(ctx context.Context, cfg edseed.RunConfig, deps pipeline.Deps) (*pipeline.Result, error)

type domainCommand struct {
	name    string
	aliases []string
	short   string
	long    string
	run     domainRunner
}

// seedOrder is the order `all` loads in: the directory first, since the
// other tables reference it.
var seedOrder = []domainCommand{
	{
		name:  record.DomainSchools,
		short: "Load the school and district directory",
		long: `Builds the school directory from several exports. Each file contributes the
distinct (ORG_CODE, ORG_NAME, DIST_CODE, DIST_NAME, ORG_TYPE) tuples it contains;
files are read in the configured order and a later file's entry replaces an
earlier one with the same ORG_CODE. Missing files are skipped with a warning.`,
		run: func(ctx context.Context, cfg edseed.RunConfig, deps pipeline.Deps) (*pipeline.Result, error) {
			return pipeline.Run(ctx, record.SchoolDomain, cfg, deps)
		},
	},
	{
		name:  record.DomainEnrollment,
		short: "Load enrollment by grade, race/ethnicity, gender and population",
		run: func(ctx context.Context, cfg edseed.RunConfig, deps pipeline.Deps) (*pipeline.Result, error) {
			return pipeline.Run(ctx, record.EnrollmentDomain, cfg, deps)
		},
	},
	{
		name:  record.DomainAttendance,
		short: "Load student attendance metrics",
		run: func(ctx context.Context, cfg edseed.RunConfig, deps pipeline.Deps) (*pipeline.Result, error) {
			return pipeline.Run(ctx, record.AttendanceDomain, cfg, deps)
		},
	},
	{
		name:    record.DomainAssessments,
		aliases: []string{"mcas"},
		short:   "Load statewide assessment achievement results",
		run: func(ctx context.Context, cfg edseed.RunConfig, deps pipeline.Deps) (*pipeline.Result, error) {
			return pipeline.Run(ctx, record.AssessmentDomain, cfg, deps)
		},
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Load every domain, school directory first",
	Long: `Runs schools, enrollment, attendance and assessments in that order. A domain
with rows that could not be written does not stop the rest; any other failure
does, since later tables reference the directory.`,
	Args: cobra.NoArgs,
	RunE: runAll,
}

func init() {
	for _, d := range seedOrder {
		d := d
		cmd := &cobra.Command{
			Use:     d.name,
			Aliases: d.aliases,
			Short:   d.short,
			Long:    d.long,
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDomains(cmd, []domainCommand{d})
			},
		}
		help := "Source CSV path, overriding the configured one"
		if d.name == record.DomainSchools {
			help = "Source CSV path (repeatable, in priority order), replacing the configured list"
		}
		cmd.Flags().StringArrayVar(&seedFlags.csv, "csv", nil, help)
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(allCmd)
}

func runAll(cmd *cobra.Command, args []string) error {
	return runDomains(cmd, seedOrder)
}

// loadProjectConfig reads edseed.yaml. A missing file is only an error
// when --config named it explicitly.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	path := seedFlags.configPath
	explicit := cmd.Flags().Changed("config")
	if path == "" {
		path = "."
	}

	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrConfigNotFound) && !explicit:
		cfg = config.Default()
	case err != nil:
		return nil, fmt.Errorf("failed to load %s: %w: %w", path, edseed.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRunConfig merges flags over the project file for one domain.
func buildRunConfig(cmd *cobra.Command, project *config.ProjectConfig, domain string) (edseed.RunConfig, error) {
	sources := seedFlags.csv
	if len(sources) == 0 {
		var err error
		if sources, err = project.SourcesFor(domain); err != nil {
			return edseed.RunConfig{}, err
		}
	}

	batchSize := project.BatchSize
	if cmd.Flags().Changed("batch-size") {
		batchSize = seedFlags.batchSize
	}

	logDir := project.LogDir
	if seedFlags.logDir != "" {
		logDir = seedFlags.logDir
	}

	timeout, err := project.TimeoutDuration()
	if err != nil {
		return edseed.RunConfig{}, err
	}
	if cmd.Flags().Changed("timeout") {
		timeout = seedFlags.timeout
	}

	sink, err := config.SinkFromEnv(project.Connection, os.Getenv)
	if err != nil {
		return edseed.RunConfig{}, err
	}

	return edseed.RunConfig{
		Domain:    domain,
		Sources:   sources,
		BatchSize: batchSize,
		DryRun:    seedFlags.dryRun,
		Verbose:   getVerboseFlag(cmd),
		Timeout:   timeout,
		LogDir:    logDir,
		Sink:      sink,
	}, nil
}

func runDomains(cmd *cobra.Command, domains []domainCommand) error {
	project, err := loadProjectConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling load...")
			cancel()
		case <-ctx.Done():
		}
	}()

	runID := uuid.NewString()
	var entries []report.Entry
	var errs []error

	for _, d := range domains {
		res, err := runDomain(ctx, cmd, project, d, runID)
		entries = append(entries, report.Entry{Domain: d.name, Result: res, Err: err})
		if err == nil {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
		if !errors.Is(err, edseed.ErrLoadIncomplete) {
			break
		}
	}

	report.Print(stdout, entries, runID)
	return errors.Join(errs...)
}

func runDomain(ctx context.Context, cmd *cobra.Command, project *config.ProjectConfig, d domainCommand, runID string) (*pipeline.Result, error) {
	cfg, err := buildRunConfig(cmd, project, d.name)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewZerologLogger(logging.Options{
		Domain:  d.name,
		LogDir:  cfg.LogDir,
		Verbose: cfg.Verbose,
		RunID:   runID,
		Console: stdout,
	})
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	return d.run(ctx, cfg, pipeline.Deps{Logger: logger, OpenSink: openSink})
}
