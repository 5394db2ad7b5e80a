package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nfvri/ris-simulator/pkg/manager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ris-simulator",
		Short: "STAR-RIS assisted CoMP NOMA downlink simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(viper.GetString("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("log-level", "info", "logging level")
	_ = viper.BindPFlag("log-level", cmd.PersistentFlags().Lookup("log-level"))
	cmd.AddCommand(newRunCommand())
	return cmd
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate one setting of a scenario",
		RunE:  runSimulation,
	}
	flags := cmd.Flags()
	flags.String("config", "", "scenario file, searched as star-ris.yaml when empty")
	flags.String("setting", manager.DefaultSetting, "scenario setting to simulate")
	flags.Int("realizations", 0, "channel realizations per run, scenario value when zero")
	flags.Int("runs", 1, "independent runs to average")
	flags.Int("workers", 1, "runs simulated in parallel")
	flags.Uint64("seed", 0, "base random seed")
	flags.String("plots", "", "directory for the rate and outage plots")
	flags.Bool("redis", false, "store results in redis")
	flags.String("redis-address", "", "redis address, REDIS_HOST:REDIS_PORT when empty")
	flags.String("metrics-address", "", "serve prometheus metrics on this address")
	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix("RIS")
	viper.AutomaticEnv()
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if addr := viper.GetString("metrics-address"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
				log.Errorf("metrics server: %v", err)
			}
		}()
	}

	mgr, err := manager.NewManager(&manager.Config{
		ScenarioPath: viper.GetString("config"),
		Setting:      viper.GetString("setting"),
		Realizations: viper.GetInt("realizations"),
		Runs:         viper.GetInt("runs"),
		Workers:      viper.GetInt("workers"),
		Seed:         viper.GetUint64("seed"),
		PlotPath:     viper.GetString("plots"),
		RedisEnabled: viper.GetBool("redis"),
		RedisAddress: viper.GetString("redis-address"),
		Registerer:   prometheus.DefaultRegisterer,
	})
	if err != nil {
		return err
	}
	runID, results, err := mgr.Run(ctx)
	if err != nil {
		return err
	}
	last := len(results.TxPower) - 1
	log.WithFields(log.Fields{
		"run":     runID,
		"txPower": results.TxPower[last],
		"sumRate": results.SumRate[last],
		"ee":      results.EnergyEfficiency[last],
	}).Info("simulation complete")
	return nil
}
