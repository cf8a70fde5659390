package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"microct/pkg/pipeline"
)

// filterDirCmd represents the filter-dir command
var filterDirCmd = &cobra.Command{
	Use:   "filter-dir <sinogram-dir> <output-dir>",
	Short: "Remove ring artefacts from every sinogram of a directory",
	Long: `Ring-filter every BINSINO file of a directory in parallel and write the
results under the same names to another directory.

Example:
  microct filter-dir sinos/ sinos_filtered/ --levels 6`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := cfg.FilterDirParams(args[0], args[1])
		if err != nil {
			return err
		}
		params.Filter = filterParams(cmd.Flags())
		params.Logger = slog.Default()

		man, err := pipeline.FilterDirectory(cmd.Context(), params)
		if err != nil {
			return err
		}
		cmd.Printf("Filtered %d sinograms into %s (run %s)\n", len(man.Outputs), man.OutputDir, man.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filterDirCmd)
	addFilterFlags(filterDirCmd.Flags())
}
