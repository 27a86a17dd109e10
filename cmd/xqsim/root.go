package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	xqsim "github.com/seitsubo413/XQsim-library"
	"github.com/seitsubo413/XQsim-library/internal/adapters/process"
	"github.com/seitsubo413/XQsim-library/internal/config"
	"github.com/seitsubo413/XQsim-library/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "xqsim",
	Short: "xqsim produces execution traces from surface-code control processor simulations",
	Long: `xqsim wraps the external QASM compilation toolchain and cycle-accurate
simulator backend, condensing a full run into one compact trace: patch
events, logical qubit mapping, and a per-gate execution correlation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config-file", "", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("compiler", "xqsim-compile", "Compiler toolchain command")
	rootCmd.PersistentFlags().String("simulator", "xqsim-backend", "Simulator backend command")
}

// buildService assembles the trace service from flags and configuration.
func buildService(cmd *cobra.Command, extra ...xqsim.Option) (*xqsim.Service, *config.Config, *slog.Logger, error) {
	cfgPath, _ := cmd.Flags().GetString("config-file")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := logging.New(level, cfg.LogJSON)

	compilerCmd, _ := cmd.Flags().GetString("compiler")
	simulatorCmd, _ := cmd.Flags().GetString("simulator")

	opts := []xqsim.Option{
		xqsim.WithLogger(logger),
		xqsim.WithLimits(xqsim.Limits{
			MaxQASMSizeBytes: cfg.MaxQASMSizeBytes,
			MaxQubits:        cfg.MaxQASMQubits,
			MaxGates:         cfg.MaxQASMGates,
		}),
		xqsim.WithMaxCycles(cfg.MaxCycles),
		xqsim.WithStabilityWindow(int(cfg.StabilityWindow)),
		xqsim.WithTimeout(cfg.TraceTimeout),
		xqsim.WithSimConfig(cfg.SimConfig),
		xqsim.WithWorkdirRoot(cfg.WorkdirRoot),
	}
	opts = append(opts, extra...)

	svc := xqsim.New(
		process.NewCompiler(compilerCmd),
		process.NewFactory(simulatorCmd),
		opts...,
	)
	return svc, cfg, logger, nil
}
