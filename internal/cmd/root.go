// Package cmd implements the lbsim command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/lbsim/internal/config"
)

// NewRootCmd builds the lbsim command tree. Every file the commands read or
// write goes through fs.
func NewRootCmd(fs afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:   "lbsim",
		Short: "Self-scaling worker pool simulator",
		Long: `lbsim simulates a pool of request-processing workers fed by a synthetic
workload. Each clock cycle may bring a new request; idle workers take
requests from a FIFO queue, and the pool grows or shrinks with queue
pressure, subject to a cooldown between changes.

Every event is written to a text journal and optionally echoed to the
console.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is ./"+config.DefaultFile+" when present)")

	root.AddCommand(newRunCmd(fs))
	root.AddCommand(newConfigCmd(fs))
	return root
}

// loadConfig reads the file named by --config, which must exist, or the
// default file when it is present.
func loadConfig(cmd *cobra.Command, fs afero.Fs) (*config.Result, error) {
	path, _ := cmd.Flags().GetString("config")
	required := path != ""
	if !required {
		path = config.DefaultFile
	}

	res, err := config.Load(fs, path, required)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		cmd.PrintErrf("warning: %s; using default\n", w.Error())
	}
	return res, nil
}

// Execute runs the root command until it finishes or the process receives
// an interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd(afero.NewOsFs()).ExecuteContext(ctx)
}
