package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wflint-dev/wflint/internal/config"
	"github.com/wflint-dev/wflint/internal/discovery"
	"github.com/wflint-dev/wflint/internal/engine"
	"github.com/wflint-dev/wflint/internal/observability"
	"github.com/wflint-dev/wflint/internal/reporting"
)

// errFindingsReported signals that analysis ran to completion and found
// defects. Execute maps it to a distinct exit code.
var errFindingsReported = errors.New("findings reported")

// newCheckCmd creates and configures the `check` command.
func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Analyzes the given files or directories and reports findings",
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values override
			// the config file and environment with the right precedence.
			if err := viper.BindPFlag("check.format", cmd.Flags().Lookup("format")); err != nil {
				return err
			}
			if err := viper.BindPFlag("check.output", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			if err := viper.BindPFlag("check.exit_zero", cmd.Flags().Lookup("exit-zero")); err != nil {
				return err
			}
			return viper.BindPFlag("engine.worker_concurrency", cmd.Flags().Lookup("concurrency"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to unmarshal config with flag overrides: %w", err)
			}

			files, err := discovery.SourceFiles(args, cfg.Check.Extensions)
			if err != nil {
				return fmt.Errorf("discovering sources: %w", err)
			}
			if len(files) == 0 {
				logger.Warn("no analyzable sources found", zap.Strings("paths", args))
			}

			logger.Info("starting check",
				zap.Int("files", len(files)),
				zap.Int("concurrency", cfg.Engine.WorkerConcurrency),
				zap.String("format", cfg.Check.Format),
			)

			findings, err := runAnalysis(ctx, logger, cfg.Engine, files)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return fmt.Errorf("check aborted by user signal")
				}
				return err
			}
			reporting.Sort(findings)

			reporter, err := reporting.New(cfg.Check.Format, cfg.Check.Output)
			if err != nil {
				return err
			}
			for _, f := range findings {
				if werr := reporter.Write(f); werr != nil {
					reporter.Close()
					return fmt.Errorf("writing report: %w", werr)
				}
			}
			if err := reporter.Close(); err != nil {
				return fmt.Errorf("finalizing report: %w", err)
			}

			logger.Info("check complete",
				zap.Int("files", len(files)),
				zap.Int("findings", len(findings)),
			)

			if len(findings) > 0 && !cfg.Check.ExitZero {
				return errFindingsReported
			}
			return nil
		},
	}

	checkCmd.Flags().StringP("format", "f", "text", "Report format ('text', 'json', 'checkstyle'). (Overrides config/env)")
	checkCmd.Flags().StringP("output", "o", "", "Output file path for the report. Defaults to stdout.")
	checkCmd.Flags().IntP("concurrency", "j", 0, "Number of files analyzed concurrently. (Overrides config/env)")
	checkCmd.Flags().Bool("exit-zero", false, "Exit 0 even when findings are reported.")

	return checkCmd
}

// runAnalysis fans the file list out over a bounded worker group. Each
// file is parsed and analyzed independently; one file failing to read or
// parse fails the run, while detector-level faults inside a file surface
// as internal-analysis-error findings instead.
func runAnalysis(ctx context.Context, logger *zap.Logger, engCfg config.EngineConfig, files []string) ([]reporting.Finding, error) {
	eng := engine.New(logger)
	catalog := engine.MessageCatalog()

	var mu sync.Mutex
	var findings []reporting.Finding

	g, gctx := errgroup.WithContext(ctx)
	limit := engCfg.WorkerConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, path := range files {
		path := path
		g.Go(func() error {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			diags, err := eng.AnalyzeSource(gctx, path, content)
			if err != nil {
				return fmt.Errorf("analyzing %s: %w", path, err)
			}
			if len(diags) == 0 {
				return nil
			}
			batch := reporting.FromDiagnostics(catalog, diags)
			mu.Lock()
			findings = append(findings, batch...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return findings, nil
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
}
