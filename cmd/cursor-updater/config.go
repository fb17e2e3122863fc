package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/cursor-updater/internal/config"
)

var (
	configInitForce bool
	configInitPath  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configPathCmd)

	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "Overwrite an existing file")
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "Write to this path instead of the global config file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configInitPath
	if path == "" {
		path = configPath
	}

	written, err := internalconfig.NewWriter().WriteDefault(path, configInitForce)
	if err != nil {
		if errors.Is(err, internalconfig.ErrConfigExists) {
			cmd.PrintErrln("use --force to overwrite it")
		}

		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", written)

	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configPath != "" {
		fmt.Fprintln(cmd.OutOrStdout(), configPath)

		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), internalconfig.NewWriter().GlobalConfigPath())

	return nil
}
