package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"microct/pkg/formats"
	"microct/pkg/pipeline"
	"microct/pkg/visualization"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <file|dir> <output>",
	Short: "Render quicklook PNGs of a file or a projection stack",
	Long: `Render a file as an 8-bit PNG scaled to its value range, or render slices of
a directory of equally sized images along x, y or z into an output
directory. Slices along y of a projection stack are its sinograms.

Examples:
  microct preview sino_0100.binsino sino_0100.png
  microct preview scan/ previews/ --axis y --size 512 --palette viridis`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		opts, err := cfg.FormatOptions()
		if err != nil {
			return err
		}
		size := cfg.Output.PreviewSize
		if cmd.Flags().Changed("size") {
			size, _ = cmd.Flags().GetInt("size")
		}
		paletteName := cfg.Output.Palette
		if cmd.Flags().Changed("palette") {
			paletteName, _ = cmd.Flags().GetString("palette")
		}
		palette, err := visualization.NewPalette(paletteName)
		if err != nil {
			return err
		}

		stat, err := os.Stat(in)
		if err != nil {
			return err
		}
		if !stat.IsDir() {
			doc, err := formats.ReadAny(in, opts...)
			if err != nil {
				return err
			}
			if err := visualization.Quicklook(doc.Image, out, size, palette); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", out)
			return nil
		}

		ext, _ := cmd.Flags().GetString("ext")
		if ext == "" {
			ext = cfg.Sinogram.InputExt
		}
		axis, _ := cmd.Flags().GetString("axis")

		files, err := pipeline.ListFiles(in, ext)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no %s files in %s", ext, in)
		}
		stack, err := pipeline.ReadStack(cmd.Context(), files, cfg.Processing.NumCores, opts...)
		if err != nil {
			return err
		}
		viewer, err := visualization.NewViewer(stack, size)
		if err != nil {
			return err
		}
		viewer.SetPalette(palette)
		names, err := viewer.SaveSliceSequence(axis, out)
		if err != nil {
			return err
		}
		cmd.Printf("Wrote %d slices to %s\n", len(names), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().Int("size", 0, "Longest side in pixels, 0 for full size (default: output.previewSize)")
	previewCmd.Flags().String("axis", "z", "Slice axis for directories: x, y or z")
	previewCmd.Flags().String("ext", "", "Image extension for directories (default: sinogram.inputExt)")
	previewCmd.Flags().String("palette", "", "gray, viridis, inferno or hot (default: output.palette)")
}
