package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"microct/pkg/config"
)

// configCmd groups configuration subcommands. It does not load the
// configuration itself so that a broken file can be replaced.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), verbose)
		return nil
	},
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Long: `Write the default configuration to the file named by --config.

Example:
  microct config init --config ./microct.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(cfgFile); err == nil && !force {
			cmd.Printf("Configuration %s already exists. Use --force to overwrite.\n", cfgFile)
			return nil
		}
		if err := config.CreateDefaultConfigFile(cfgFile); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", cfgFile)
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		data, err := loaded.Marshal()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
