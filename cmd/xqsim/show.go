package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seitsubo413/XQsim-library/internal/adapters/file"
	"github.com/seitsubo413/XQsim-library/internal/presentation"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

var showCmd = &cobra.Command{
	Use:   "show <trace.json | trace-id>",
	Short: "Print a human-readable summary of a trace result",
	Long: `Reads a trace result, either a JSON file produced by "trace" or an id
from the local trace store (--store-dir), and prints the run summary, the
initial patch grid, and the event list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadResult(cmd, args[0])
		if err != nil {
			return err
		}

		fmt.Print(presentation.Summary(res))
		if grid := presentation.Grid(res.Patch.Initial, res.Meta.PatchGrid.Rows, res.Meta.PatchGrid.Cols); grid != "" {
			fmt.Println("\ninitial grid:")
			fmt.Print(grid)
		}
		if len(res.Patch.Events) > 0 {
			fmt.Println("\nevents:")
			fmt.Print(presentation.Events(res.Patch.Events))
		}
		return nil
	},
}

func loadResult(cmd *cobra.Command, arg string) (*domain.TraceResult, error) {
	if data, err := os.ReadFile(arg); err == nil {
		var res domain.TraceResult
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("failed to parse trace file %s: %w", arg, err)
		}
		return &res, nil
	}

	storeDir, _ := cmd.Flags().GetString("store-dir")
	return file.New(storeDir).Load(cmd.Context(), arg)
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().String("store-dir", "", "Local trace store directory")
}
