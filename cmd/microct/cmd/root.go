package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"microct/pkg/config"
)

var (
	cfgFile string
	verbose bool
	cores   int

	// cfg is loaded before every command runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "microct",
	Short: "microCT file conversion and ring artefact removal",
	Long: `microct reads and writes the BIM, BIN and BINSINO file formats used by
microCT acquisitions, builds sinograms from projection stacks and removes
ring artefacts with a combined wavelet-Fourier filter.

Settings are read from a YAML file (see "microct config init"); command line
flags override them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("cores") {
			loaded.Processing.NumCores = cores
		}
		cfg = loaded
		setupLogging(cmd.ErrOrStderr(), verbose || cfg.Output.Verbose)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "microct.yaml", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages")
	rootCmd.PersistentFlags().IntVar(&cores, "cores", 0, "Worker goroutines (default: processing.numCores)")
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
