// Command compendium analyzes studies and samples against the full
// collection: statistical comparisons, top-abundance rankings, outlier
// detection and compendium-wide summaries, all behind a durable cache.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"compendium/adapters/cachestore"
	"compendium/adapters/tables"
	"compendium/app"
	"compendium/domain/core"
	"compendium/internal"
	"compendium/internal/cache"
	"compendium/internal/config"
	"compendium/ports"
)

func main() {
	godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type services struct {
	studies  *app.StudyService
	samples  *app.SampleService
	stats    *app.StatsService
	coverage *app.CoverageService
	layered  *cache.Layered
	closer   func() error
}

func buildServices() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := internal.DefaultLogger

	source := tables.NewFileSource(cfg.DataDir, log)

	var store ports.CacheStore
	closer := func() error { return nil }
	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		sqlStore, err := cachestore.NewSQLStore(filepath.Join(cfg.CacheDir, "analysis_cache.db"))
		if err != nil {
			return nil, err
		}
		store, closer = sqlStore, sqlStore.Close
	default:
		fileStore, err := cachestore.NewFileStore(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	}

	layered := cache.NewLayered(store, log)
	opts := app.OptionsFromConfig(cfg)
	studies := app.NewStudyService(source, layered, log, opts)

	return &services{
		studies:  studies,
		samples:  app.NewSampleService(source, layered, studies, log),
		stats:    app.NewStatsService(source, log, opts),
		coverage: app.NewCoverageService(source, log, opts),
		layered:  layered,
		closer:   closer,
	}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "compendium",
		Short:         "Statistical comparison of studies and samples against the compendium",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newStudyCmd(),
		newSampleCmd(),
		newWarmCmd(),
		newCoverageCmd(),
		newVariableCmd(),
		newEcosystemCmd(),
		newOmicsCmd(),
		newTaxonomicCmd(),
		newTimelineCmd(),
		newInvalidateCmd(),
	)
	return root
}

func withServices(run func(*services, []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return err
		}
		defer svcs.closer()

		result, err := run(svcs, args)
		if err != nil {
			return err
		}
		return printJSON(result)
	}
}

func newStudyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "study <id>",
		Short: "Analyze one study against the rest of the compendium",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(s *services, args []string) (any, error) {
			id, err := core.ParseStudyID(args[0])
			if err != nil {
				return nil, err
			}
			return s.studies.Analyze(cmdContext(), id)
		}),
	}
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample <id>",
		Short: "Project a study's analysis onto one sample",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(s *services, args []string) (any, error) {
			id, err := core.ParseSampleID(args[0])
			if err != nil {
				return nil, err
			}
			return s.samples.Analyze(cmdContext(), id)
		}),
	}
}

func newWarmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Precompute and cache the analysis of every study",
		Args:  cobra.NoArgs,
		RunE: withServices(func(s *services, _ []string) (any, error) {
			warmed, err := s.studies.WarmAll(cmdContext())
			if err != nil {
				return nil, err
			}
			return map[string]int{"studies_warmed": warmed}, nil
		}),
	}
}

func newCoverageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "Report per-study data coverage across the compendium",
		Args:  cobra.NoArgs,
		RunE: withServices(func(s *services, _ []string) (any, error) {
			return s.coverage.Report(cmdContext())
		}),
	}
}

func newVariableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variable <name>",
		Short: "Describe one physical variable across every sample",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(s *services, args []string) (any, error) {
			return s.stats.VariableStatistics(cmdContext(), args[0])
		}),
	}
}

func newEcosystemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ecosystem <name>",
		Short: "Count the values of one ecosystem variable across every sample",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(s *services, args []string) (any, error) {
			return s.stats.EcosystemStatistics(cmdContext(), args[0])
		}),
	}
}

func newOmicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "omics <category>",
		Short: "Rank the top entities of one omics category across every sample",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(s *services, args []string) (any, error) {
			return s.stats.OmicsStatistics(cmdContext(), args[0])
		}),
	}
}

func newTaxonomicCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomic <tool>",
		Short: "Rank the top entities per rank for one classification tool",
		Args:  cobra.ExactArgs(1),
		RunE: withServices(func(s *services, args []string) (any, error) {
			return s.stats.TaxonomicStatistics(cmdContext(), args[0])
		}),
	}
}

func newTimelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "List per-study collection windows and dated samples",
		Args:  cobra.NoArgs,
		RunE: withServices(func(s *services, _ []string) (any, error) {
			return s.stats.Timeline(cmdContext())
		}),
	}
}

func newInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Drop every cached analysis",
		Args:  cobra.NoArgs,
		RunE: withServices(func(s *services, _ []string) (any, error) {
			if err := s.layered.InvalidateAll(cmdContext()); err != nil {
				return nil, err
			}
			return map[string]string{"status": "cache cleared"}, nil
		}),
	}
}

func cmdContext() context.Context { return context.Background() }

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
