// Package pipeline drives one domain load: extract, merge, connect, load.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vvka-141/edseed/internal/db"
	"github.com/vvka-141/edseed/internal/dedupe"
	"github.com/vvka-141/edseed/internal/extract"
	"github.com/vvka-141/edseed/internal/loader"
	"github.com/vvka-141/edseed/internal/record"
	"github.com/vvka-141/edseed/internal/sink"
	"github.com/vvka-141/edseed/internal/source"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// OpenSinkFunc connects to the store. The returned close function is
// called once the load is finished.
type OpenSinkFunc func(ctx context.Context, cfg edseed.SinkConfig, logger edseed.Logger) (edseed.Sink, func(), error)

// Deps are the pipeline's collaborators. Zero values select the
// production implementations.
type Deps struct {
	Logger    edseed.Logger
	OpenSink  OpenSinkFunc
	NewSource func(path string) edseed.TableSource
}

func (d Deps) withDefaults() Deps {
	if d.OpenSink == nil {
		d.OpenSink = OpenPostgresSink
	}
	if d.NewSource == nil {
		d.NewSource = func(path string) edseed.TableSource { return source.NewCSVFile(path) }
	}
	return d
}

// Result summarizes a run. It is returned alongside any error reached
// after extraction.
type Result struct {
	Domain      string
	Table       string
	Rows        int
	Invalid     int
	Records     int
	Overwritten int
	Read        []string
	Skipped     []string
	Load        loader.Summary
	Duration    time.Duration
}

// Run loads one domain. Zero valid records end the run with ErrNoRecords
// before the sink is contacted; a dry run never contacts it.
func Run[R record.Record](ctx context.Context, domain record.Domain[R], cfg edseed.RunConfig, deps Deps) (*Result, error) {
	start := time.Now()
	deps = deps.withDefaults()
	logger := deps.Logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	result := &Result{Domain: domain.Name, Table: domain.Table}
	defer func() { result.Duration = time.Since(start) }()

	if cfg.DryRun {
		logger.Info("Seeding %s data (dry run)", domain.Name)
	} else {
		logger.Info("Seeding %s data", domain.Name)
	}

	records, err := collect(ctx, domain, cfg.Sources, deps, result)
	if err != nil {
		return result, err
	}
	result.Records = len(records)
	if len(records) == 0 {
		logger.Warn("No valid records to insert")
		return result, fmt.Errorf("%s: %w", domain.Name, edseed.ErrNoRecords)
	}

	var target edseed.Sink
	if !cfg.DryRun {
		s, closeSink, err := deps.OpenSink(ctx, cfg.Sink, logger)
		if err != nil {
			return result, fmt.Errorf("%w: %w", edseed.ErrConnectionFailed, err)
		}
		defer closeSink()
		target = s
	}

	l := loader.New[R](target, loader.Options{
		Table:       domain.Table,
		Columns:     domain.Columns,
		ConflictKey: domain.ConflictKey,
		BatchSize:   cfg.BatchSize,
		DryRun:      cfg.DryRun,
	}, logger)

	sum, err := l.Load(ctx, records)
	result.Load = sum
	if err != nil {
		return result, err
	}

	if cfg.DryRun {
		logger.Info("Dry run complete: %d records validated", sum.Total)
		return result, nil
	}
	logger.Info("Seeding complete: %d successful, %d errors", sum.Succeeded, sum.Failed)
	if !sum.OK() {
		return result, fmt.Errorf("%d of %d %s records not written: %w", sum.Failed, sum.Total, domain.Name, edseed.ErrLoadIncomplete)
	}
	return result, nil
}

// collect extracts the single source of most domains, or merges every
// source of a domain that reduces to distinct tuples.
func collect[R record.Record](ctx context.Context, domain record.Domain[R], paths []string, deps Deps, result *Result) ([]R, error) {
	ex := extract.New(domain, deps.Logger)

	if len(domain.Distinct) == 0 {
		if len(paths) != 1 {
			return nil, fmt.Errorf("%s takes exactly one source, got %d: %w", domain.Name, len(paths), edseed.ErrInvalidConfig)
		}
		src := deps.NewSource(paths[0])
		res, err := ex.Extract(ctx, src)
		if err != nil {
			if errors.Is(err, edseed.ErrSourceNotFound) {
				deps.Logger.Error("CSV file not found: %s", paths[0])
			}
			return nil, err
		}
		result.Rows = res.Rows
		result.Invalid = res.Invalid
		result.Read = []string{res.Source}
		return res.Records, nil
	}

	sources := make([]edseed.TableSource, len(paths))
	for i, p := range paths {
		sources[i] = deps.NewSource(p)
	}
	sum, err := dedupe.Collect(ctx, ex, sources, deps.Logger)
	if err != nil {
		return nil, err
	}
	result.Rows = sum.Rows
	result.Invalid = sum.Invalid
	result.Overwritten = sum.Overwritten
	result.Read = sum.Read
	result.Skipped = sum.Skipped
	return sum.Records, nil
}

// OpenPostgresSink resolves cfg, connects with the configured auth method
// and wraps the pool in a PostgresSink.
func OpenPostgresSink(ctx context.Context, cfg edseed.SinkConfig, logger edseed.Logger) (edseed.Sink, func(), error) {
	conn, err := db.ResolveConnection(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Verbose("Connecting to %s:%d/%s as %s (%s)", conn.Host, conn.Port, conn.Database, conn.Username, conn.AuthMethod)

	connector, err := db.NewConnector(conn, logger)
	if err != nil {
		return nil, nil, err
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to %s", conn.Host)

	closeFn := func() {
		pool.Close()
		if c, ok := connector.(interface{ Close() error }); ok {
			_ = c.Close()
		}
	}
	return sink.NewPostgresSink(pool, logger), closeFn, nil
}
