// Package cli implements the famgraph CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/famgraph/internal/config"
	"github.com/rcliao/famgraph/internal/family"
	"github.com/rcliao/famgraph/internal/logging"
	"github.com/rcliao/famgraph/internal/metrics"
	"github.com/rcliao/famgraph/internal/store"
	"github.com/rcliao/famgraph/internal/validate"
)

var (
	dbPath      string
	configPath  string
	logLevel    string
	metricsFile string

	// meter is set by openService and flushed on exit.
	meter *metrics.Metrics
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "famgraph",
	Short: "Family tree graph with kinship queries",
	Long:  "Store persons and their parent/partner relations in SQLite and ask who is whose cousin, aunt or mother-in-law.",
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushMetrics()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $FAMGRAPH_DB or ~/.famgraph/famgraph.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default: $FAMGRAPH_CONFIG)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus metrics to this textfile after the command")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// openService wires config, logger, store and validator into a service.
// The returned func releases everything.
func openService() (*family.Service, func()) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		exitErr("init logger", err)
	}

	s, err := store.NewSQLiteStore(cfg.Database.Path, store.WithTimeout(cfg.Database.Timeout))
	if err != nil {
		exitErr("open store", err)
	}

	v, err := validate.New(validate.Options{
		DateFormat: cfg.Validator.BirthDateFormat,
		MinDate:    cfg.Validator.BirthDateMin,
	})
	if err != nil {
		s.Close()
		exitErr("init validator", err)
	}

	meter = metrics.New(prometheus.NewRegistry())
	svc := family.New(s, v, family.Rules{
		MaxParents:        cfg.Rules.MaxParents,
		MaxPartners:       cfg.Rules.MaxPartners,
		ForbiddenPartners: cfg.Rules.Forbidden(),
	}, family.WithLogger(log), family.WithMetrics(meter))

	log.Debug("service ready", zap.String("db", cfg.Database.Path))
	return svc, func() {
		s.Close()
		_ = log.Sync()
	}
}

func flushMetrics() {
	if metricsFile == "" || meter == nil {
		return
	}
	if err := meter.WriteTextfile(metricsFile); err != nil {
		fmt.Fprintf(os.Stderr, "warning: write metrics: %v\n", err)
	}
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	flushMetrics()
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
