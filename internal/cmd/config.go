package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/lbsim/internal/config"
)

func newConfigCmd(fs afero.Fs) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or create lbsim configuration",
		Long: `View or create lbsim configuration.

Without arguments, displays the effective configuration after the config
file and LBSIM_ environment overrides are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, fs, "text")
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, fs, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", "text", "output format: text or yaml")

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a default config file",
		Long: `Create a commented key=value config file with every option at its
default value. The file is written to ./` + config.DefaultFile + ` unless a path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) == 1 {
				path = args[0]
			}
			return runConfigInit(cmd, fs, path, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	configCmd.AddCommand(showCmd, initCmd)
	return configCmd
}

func runConfigShow(cmd *cobra.Command, fs afero.Fs, format string) error {
	res, err := loadConfig(cmd, fs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch format {
	case "text":
		if res.File != "" {
			fmt.Fprintf(out, "Config file: %s\n\n", res.File)
		} else {
			fmt.Fprintf(out, "Config file: (none - using defaults)\n\n")
		}
		return res.Config.Print(out)
	case "yaml":
		data, err := res.Config.YAML()
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		_, err = out.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q: expected text or yaml", format)
	}
}

func runConfigInit(cmd *cobra.Command, fs afero.Fs, path string, force bool) error {
	if err := config.WriteDefaultFile(fs, path, force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w\nUse --force to overwrite", err)
		}
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
	return nil
}
