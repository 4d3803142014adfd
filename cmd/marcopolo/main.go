// Package main provides the entry point for the MARCO/POLO responder
// simulator.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sarchlab/marcopolo/emu"
	"github.com/sarchlab/marcopolo/harness"
)

var (
	configPath  string
	verbose     bool
	jsonOutput  bool
	parallelism int

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "marcopolo",
	Short: "Cycle-accurate simulator of the MARCO/POLO UART responder",
	Long: `marcopolo simulates a clocked UART responder that answers the command
"MARCO" with "\n\rPOLO!\n\r" at 9600 baud from a 50 MHz clock.

Use "run" to execute the verification scenarios against the cycle-accurate
model, or "emulate" to feed bytes through the functional model.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run [scenario...]",
	Short: "Run verification scenarios (all by default)",
	RunE:  runScenarios,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available scenarios",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range harness.Scenarios() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", s.Name, s.Description)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config [path]",
	Short: "Print the default harness config, or save it to a .json/.yaml file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := harness.DefaultConfig()
		if len(args) == 1 {
			return config.SaveConfig(args[0])
		}
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize harness config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var emulateCmd = &cobra.Command{
	Use:   "emulate",
	Short: "Feed stdin through the functional model and write replies to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := emu.NewEmulator(emu.WithOutput(cmd.OutOrStdout()))
		in := bufio.NewReader(cmd.InOrStdin())
		for {
			b, err := in.ReadByte()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if res := e.Feed(b); res.Reply != nil {
				e.Complete()
			}
		}
		logger.Debug("emulation finished",
			zap.Uint64("bytes", e.BytesFed()),
			zap.Uint64("replies", e.Replies()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to harness configuration (.json or .yaml)")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	runCmd.Flags().IntVar(&parallelism, "parallel", 0, "Maximum scenarios run at once (0 = all)")

	rootCmd.AddCommand(runCmd, listCmd, configCmd, emulateCmd)
}

func runScenarios(cmd *cobra.Command, args []string) error {
	config := harness.DefaultConfig()
	if configPath != "" {
		var err error
		config, err = harness.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	h := harness.New(config,
		harness.WithLogger(logger),
		harness.WithOutput(cmd.OutOrStdout()),
		harness.WithParallelism(parallelism),
	)

	results, err := h.Run(ctx, args...)
	if err != nil {
		return err
	}

	if jsonOutput {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize results: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		h.PrintResults(results)
	}

	if !harness.AllPassed(results) {
		return fmt.Errorf("one or more scenarios failed")
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
