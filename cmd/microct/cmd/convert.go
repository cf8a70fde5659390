package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"microct/pkg/formats"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert between BIM, BIN and BINSINO files",
	Long: `Convert a file to the format selected by the output extension.

Metadata is kept when both files are BIM and synthesized when a BIM is
written from another format. Writing a BINSINO needs an input that carries
angles.

Example:
  microct convert proj_0001.bim proj_0001.binprj`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		opts, err := cfg.FormatOptions()
		if err != nil {
			return err
		}
		if _, err := formats.DetectFormat(out); err != nil {
			return err
		}

		doc, err := formats.ReadAny(in, opts...)
		if err != nil {
			return err
		}
		if err := formats.WriteAny(out, doc, opts...); err != nil {
			return err
		}
		slog.Info("convert: done", "in", in, "out", out, "rows", doc.Image.Rows, "cols", doc.Image.Cols)
		cmd.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
