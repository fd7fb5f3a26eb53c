package main

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"signal-io/internal/config"
	"signal-io/internal/observability"
)

var (
	cfg     *config.Config
	metrics *observability.Metrics
)

var rootCmd = &cobra.Command{
	Use:   "signal-io",
	Short: "Normalize raw event logs into canonical signals",
	Long: "Reads social, outreach, on-chain and season JSONL captures, maps each record " +
		"into a canonical signal envelope with a deterministic ID, and writes the ordered " +
		"result to JSONL files and database sinks.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		metrics = observability.NewMetrics(prometheus.NewRegistry(), cfg.Metrics.Namespace)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			zap.L().Warn("metrics textfile not written", zap.Error(err))
		}
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
