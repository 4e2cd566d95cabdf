package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/scuc/core/formulation"
	coremetrics "github.com/kilianp07/scuc/core/metrics"
	"github.com/kilianp07/scuc/core/model"
	"github.com/kilianp07/scuc/infra/logger"
	"github.com/kilianp07/scuc/infra/metrics"
	"github.com/kilianp07/scuc/pkg/export"
)

var (
	lpPath string
	named  bool
)

var buildCmd = &cobra.Command{
	Use:   "build instance.json [instance.json...]",
	Short: "Formulate the unit-commitment model from instance files",
	Long: `Build reads one or more instance files (plain or gzipped JSON), merges
them into a multi-scenario instance and formulates the complete MILP.
With --lp the model is written out in CPLEX LP format.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&lpPath, "lp", "", "write the model in LP format to this file")
	buildCmd.Flags().BoolVar(&named, "named", false, "assign diagnostic names to variables and constraints")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Logging.Apply()
	logg := logger.NewZerologLogger("build", logger.Options{Console: cfg.Logging.Console()})

	sink := coremetrics.BuildSink(coremetrics.NopSink{})
	if cfg.Metrics.PrometheusEnabled {
		ps, err := metrics.NewPromSink()
		if err != nil {
			return fmt.Errorf("prometheus sink: %w", err)
		}
		sink = ps
		go func() {
			if err := metrics.StartPromServer(cfg.Metrics.PrometheusPort); err != nil {
				logg.Errorf("metrics server: %v", err)
			}
		}()
	}

	in, err := model.ReadFiles(args)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}

	m, err := formulation.Build(in, formulation.Options{
		Sensitivity: cfg.Engine.Sensitivity(),
		Naming:      named || cfg.Engine.Naming,
		Logger:      logg,
		Metrics:     sink,
	})
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	logg.Infof("model %s: %d variables, %d constraints", m.BuildID, m.NumVars(), m.NumConstrs())

	if lpPath != "" {
		f, err := os.Create(lpPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", lpPath, err)
		}
		if err := export.WriteLP(f, m); err != nil {
			f.Close()
			return fmt.Errorf("write lp: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		logg.Infof("wrote %s", lpPath)
	}
	return nil
}
