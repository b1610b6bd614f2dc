// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command isotpconsole is a demonstration operator console for driving an
// isotp.Session against a real serial-attached CAN/LIN adapter -- the bus
// driver and operator console stay external collaborators of the session
// engine, never part of the core package itself.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

var profilePath string

// rootCmd is the isotpconsole entry point.
var rootCmd = &cobra.Command{
	Use:   "isotpconsole",
	Short: "drive an ISO-TP session over a serial-attached bus adapter",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "session.yaml", "path to a YAML session profile")
	rootCmd.AddCommand(sendCmd, listenCmd, monitorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
}
