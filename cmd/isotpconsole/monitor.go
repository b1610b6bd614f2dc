// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorlane/isotp/internal/serialbus"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "run the session loop and periodically dump the recent raw-frame trace",
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := LoadSessionProfile(profilePath)
		if err != nil {
			return err
		}
		bus, err := serialbus.Open(serialbus.Config{Device: profile.Device, BaudRate: profile.BaudRate})
		if err != nil {
			return err
		}
		defer bus.Close()

		console, err := NewConsole(profile, bus, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigStop := make(chan os.Signal, 1)
		signal.Notify(sigStop, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigStop
			cancel()
		}()

		errc := make(chan error, 1)
		go func() { errc <- console.Run(ctx) }()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case err := <-errc:
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			case <-ticker.C:
				dumpTrace(console)
			}
		}
	},
}

func dumpTrace(console *Console) {
	for _, e := range console.Trace().Recent() {
		dir := "tx"
		if e.RX {
			dir = "rx"
		}
		fmt.Fprintf(os.Stderr, "#%d %s %s\n", e.Seq, dir, hex.EncodeToString(e.Frame))
	}
}
