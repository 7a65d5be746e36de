package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/postgres/pkg/engine"
	"github.com/flanksource/postgres/pkg/profile"
	"github.com/flanksource/postgres/pkg/report"
	"github.com/flanksource/postgres/pkg/snapshot/pgprovider"
	"github.com/flanksource/postgres/pkg/suggestion"
)

func createAnalyzeCommand() *cobra.Command {
	var (
		dsn            string
		tier           string
		computeProfile string
		workloadHint   string
		format         string
		workloadLimit  int
		severityFloor  string
		enableWorkload bool
		outputFile     string
		debug          bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one or more PostgreSQL instances",
		Long: `Analyze connects to each configured PostgreSQL instance, snapshots its
configuration and statistics, and renders a report of suggestions and
findings. With --dsn it analyzes a single instance; with --config it
reads a YAML file listing multiple instances, each analyzed concurrently
and independently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cmd.Flags().Changed("format") {
				cfg.Format = format
			}
			if cmd.Flags().Changed("workload-limit") {
				cfg.WorkloadLimit = workloadLimit
			}
			if cmd.Flags().Changed("severity-floor") {
				cfg.SeverityFloor = severityFloor
			}

			instances := cfg.Instances
			if dsn != "" {
				instances = []InstanceConfig{{
					Name: "default", DSN: dsn, Tier: tier,
					ComputeProfile: computeProfile, WorkloadHint: workloadHint,
				}}
			}
			if len(instances) == 0 {
				return fmt.Errorf("no instances configured: pass --dsn or --config")
			}

			floor, err := parseSeverityFloor(cfg.SeverityFloor)
			if err != nil {
				return err
			}

			var wg sync.WaitGroup
			results := make([]instanceResult, len(instances))
			for i, inst := range instances {
				wg.Add(1)
				go func(i int, inst InstanceConfig) {
					defer wg.Done()
					rep, err := analyzeInstance(cmd.Context(), inst, engine.AnalyzerOptions{
						WorkloadLimit:  uint32(cfg.WorkloadLimit),
						EnableWorkload: enableWorkload,
						SeverityFloor:  floor,
					}, debug)
					results[i] = instanceResult{name: inst.Name, report: rep, err: err}
				}(i, inst)
			}
			wg.Wait()

			var firstErr error
			for _, res := range results {
				if res.err != nil {
					logger.Errorf("analyzing %s: %v", res.name, res.err)
					if firstErr == nil {
						firstErr = res.err
					}
					continue
				}
				rendered, err := report.Render(res.report, report.Format(cfg.Format))
				if err != nil {
					return fmt.Errorf("rendering report for %s: %w", res.name, err)
				}
				if err := writeSink(outputFile, res.name, res.report, rendered); err != nil {
					return fmt.Errorf("writing report for %s: %w", res.name, err)
				}
			}

			return firstErr
		},
	}

	cmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string for a single target")
	cmd.Flags().StringVar(&tier, "tier", "", "Compute tier: small, medium, large")
	cmd.Flags().StringVar(&computeProfile, "compute-profile", "", `Custom compute profile, e.g. "8vCPU-64GB"`)
	cmd.Flags().StringVar(&workloadHint, "workload-hint", "", "Workload mix: oltp, olap, mixed")
	cmd.Flags().StringVar(&format, "format", "text", "Report format: json, markdown, text")
	cmd.Flags().IntVar(&workloadLimit, "workload-limit", 20, "Number of slow statements to analyze")
	cmd.Flags().StringVar(&severityFloor, "severity-floor", "info", "Minimum severity to include: info, recommended, important, critical")
	cmd.Flags().BoolVar(&enableWorkload, "enable-workload", true, "Analyze pg_stat_statements for index candidates")
	cmd.Flags().StringVar(&outputFile, "output", "", "Write reports to this directory instead of stdout")
	cmd.Flags().BoolVar(&debug, "debug", false, "Dump the resolved compute profile for each instance before analyzing")

	return cmd
}

type instanceResult struct {
	name   string
	report suggestion.Report
	err    error
}

func analyzeInstance(ctx context.Context, inst InstanceConfig, opts engine.AnalyzerOptions, debug bool) (suggestion.Report, error) {
	if inst.DSN == "" {
		return suggestion.Report{}, fmt.Errorf("instance %q has no dsn configured", inst.Name)
	}

	db, err := sql.Open("postgres", inst.DSN)
	if err != nil {
		return suggestion.Report{}, fmt.Errorf("failed to open connection: %w", err)
	}
	defer db.Close()

	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)

	queryCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	prof, profErr := profile.Resolve(inst.ComputeProfile, inst.Tier, inst.WorkloadHint)

	if debug {
		fmt.Printf("%s: resolved profile %s\n", inst.Name, clicky.MustFormat(prof))
	}

	provider := pgprovider.New(db)
	rep, err := engine.Analyze(queryCtx, provider, prof, opts)
	if err != nil {
		return suggestion.Report{}, err
	}

	if profErr != nil {
		logger.Warnf("instance %s: %v", inst.Name, profErr)
		rep.Warnings = append(rep.Warnings, suggestion.Warning{
			ID: "profile.fallback", Message: profErr.Error(), Scope: inst.Name,
		})
	}

	return rep, nil
}

func parseSeverityFloor(s string) (suggestion.Level, error) {
	switch s {
	case "", "info":
		return suggestion.Info, nil
	case "recommended":
		return suggestion.Recommended, nil
	case "important":
		return suggestion.Important, nil
	case "critical":
		return suggestion.Critical, nil
	default:
		return suggestion.Info, fmt.Errorf("unknown severity floor %q (valid: info, recommended, important, critical)", s)
	}
}

// writeSink renders to stdout, or to "<dir>/<name>.report" when dir is set —
// the only two Sink implementations the CLI needs; pkg/report stays
// oblivious to where its output ends up. A terminal also gets a colored
// level-count banner ahead of the rendered report; a saved file gets the
// rendered bytes only, since report.Render's output must stay byte-stable
// regardless of where it's written.
func writeSink(dir, name string, rep suggestion.Report, rendered string) error {
	if dir == "" {
		if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			fmt.Println(levelBanner(name, rep))
		}
		fmt.Println(rendered)
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%s.report", dir, name)
	return os.WriteFile(path, []byte(rendered), 0644)
}

// levelBanner renders a one-line, color-coded count of suggestions per
// level for inst, in the style of the teacher's clicky.Text().Append() CLI
// banners (e.g. pkg/server/upgrade.go's upgrade-in-progress line).
func levelBanner(inst string, rep suggestion.Report) string {
	counts := map[suggestion.Level]int{}
	for _, s := range rep.Suggestions {
		counts[s.Level]++
	}
	t := clicky.Text(inst, "font-bold").Append(": ").
		Append(fmt.Sprintf("%d critical", counts[suggestion.Critical]), "text-red-500").
		Append(", ").
		Append(fmt.Sprintf("%d important", counts[suggestion.Important]), "text-orange-500").
		Append(", ").
		Append(fmt.Sprintf("%d recommended", counts[suggestion.Recommended]), "text-yellow-500").
		Append(", ").
		Append(fmt.Sprintf("%d info", counts[suggestion.Info]), "text-muted")
	return t.String()
}
