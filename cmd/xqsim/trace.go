package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	xqsim "github.com/seitsubo413/XQsim-library"
)

var traceCmd = &cobra.Command{
	Use:   "trace [qasm-file]",
	Short: "Compile and simulate one QASM program, printing the trace as JSON",
	Long: `Runs the full pipeline for a single OpenQASM 2.0 program and writes the
resulting trace to stdout (or --output). Reads the program from stdin when
no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetBool("keep-artifacts")
		svc, _, _, err := buildService(cmd, xqsim.WithKeepArtifacts(keep))
		if err != nil {
			return err
		}

		var qasm []byte
		if len(args) == 1 {
			qasm, err = os.ReadFile(args[0])
		} else {
			qasm, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("failed to read qasm program: %w", err)
		}

		simConfig, _ := cmd.Flags().GetString("sim-config")
		res, err := svc.ProduceTrace(cmd.Context(), xqsim.TraceRequest{
			QASM:   string(qasm),
			Config: simConfig,
		})
		if err != nil {
			return err
		}

		out := os.Stdout
		if path, _ := cmd.Flags().GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(res)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().StringP("output", "o", "", "Write the trace JSON to a file instead of stdout")
	traceCmd.Flags().String("sim-config", "", "Simulator configuration preset (overrides config file)")
	traceCmd.Flags().Bool("pretty", false, "Indent the JSON output")
	traceCmd.Flags().Bool("keep-artifacts", false, "Keep the session working directory after the run")
}
