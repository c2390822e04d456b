package main

import (
	"fmt"
	"io"
	"os"

	"github.com/iwvelando/vehicle-afford/internal/config"
	"github.com/iwvelando/vehicle-afford/internal/profile"
	"github.com/iwvelando/vehicle-afford/pkg/constants"
	"github.com/iwvelando/vehicle-afford/pkg/output"
	"github.com/iwvelando/vehicle-afford/pkg/reference"
	"github.com/iwvelando/vehicle-afford/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// app holds the state shared by every subcommand once the root has loaded
// configuration.
type app struct {
	out io.Writer

	configPath   string
	logLevel     string
	outputFormat string

	cfg    *config.Configuration
	logger *zap.Logger
	tables *reference.Tables
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "vehicle-afford",
		Short:         "Toyota vehicle affordability calculator",
		Long:          "Estimate net pay, monthly ownership cost, affordability and resale value, and rank Toyota trims for a buyer.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file (defaults plus VEHICLE_AFFORD_* environment when empty)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	root.AddCommand(
		a.newServeCmd(),
		a.newNetPayCmd(),
		a.newCostCmd(),
		a.newScoreCmd(),
		a.newForecastCmd(),
		a.newRecommendCmd(),
		a.newBacktestCmd(),
		a.newMaxPriceCmd(),
		a.newModelsCmd(),
	)
	return root
}

// load reads configuration, builds the logger and loads the reference tables.
func (a *app) load() error {
	cfg, err := config.LoadConfiguration(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}
	a.cfg = cfg

	logger, err := initializeLogger(cfg.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	if a.outputFormat == "" {
		a.outputFormat = cfg.Output.Format
	}
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}

	tables, err := reference.Load(cfg.Reference.File)
	if err != nil {
		return fmt.Errorf("failed to load reference tables: %w", err)
	}
	a.tables = tables

	a.logger.Debug("configuration loaded",
		zap.String("op", "main.load"),
		zap.String("config", a.configPath),
		zap.String("reference", cfg.Reference.File),
		zap.String("output_format", a.outputFormat),
	)
	return nil
}

// readRequest decodes a YAML or JSON request file; "-" reads standard input.
func readRequest(path string, stdin io.Reader) (profile.Request, error) {
	var req profile.Request

	var data []byte
	var err error
	switch path {
	case "":
		return req, fmt.Errorf("an --input file is required")
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("failed to read request %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("failed to parse request %s: %w", path, err)
	}
	req.Normalize()
	return req, nil
}

// loadRequest reads and validates the --input request, logging any warnings.
func (a *app) loadRequest(cmd *cobra.Command, path string) (profile.Request, error) {
	req, err := readRequest(path, cmd.InOrStdin())
	if err != nil {
		return req, err
	}

	warnings, err := req.Validate(a.tables.Models())
	if err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	for _, warning := range warnings {
		a.logger.Warn("Request warning: "+warning,
			zap.String("op", "main.loadRequest"),
		)
	}
	return req, nil
}

func (a *app) write(title string, v any) error {
	return output.Write(a.out, a.outputFormat, title, v)
}
