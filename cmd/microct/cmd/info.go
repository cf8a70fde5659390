package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"microct/internal/models"
	"microct/pkg/formats"
)

// fileInfo is the summary printed by the info command
type fileInfo struct {
	File     string           `yaml:"file"`
	Format   string           `yaml:"format"`
	Rows     int              `yaml:"rows"`
	Cols     int              `yaml:"cols"`
	Min      float32          `yaml:"min"`
	Max      float32          `yaml:"max"`
	Angles   int              `yaml:"angles,omitempty"`
	Metadata *models.Metadata `yaml:"metadata,omitempty"`
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Print the shape, value range and metadata of files",
	Long: `Print a YAML summary of one or more BIM, BIN or BINSINO files.

Example:
  microct info proj_0001.bim sino_0100.binsino`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cfg.FormatOptions()
		if err != nil {
			return err
		}
		for _, path := range args {
			doc, err := formats.ReadAny(path, opts...)
			if err != nil {
				return err
			}
			if err := printInfo(cmd.OutOrStdout(), path, doc); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(w io.Writer, path string, doc *formats.Document) error {
	lo, hi := doc.Image.MinMax()
	info := fileInfo{
		File:     path,
		Format:   doc.Format.String(),
		Rows:     doc.Image.Rows,
		Cols:     doc.Image.Cols,
		Min:      lo,
		Max:      hi,
		Angles:   len(doc.Angles),
		Metadata: doc.Metadata,
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(info); err != nil {
		return fmt.Errorf("print %s: %w", path, err)
	}
	return nil
}
