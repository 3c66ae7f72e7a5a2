// Command lbsim runs the self-scaling worker pool simulator.
package main

import (
	"os"

	"github.com/Iron-Ham/lbsim/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
