// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vectorlane/isotp"
	"github.com/vectorlane/isotp/internal/serialbus"
)

var sendHex string

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "send one payload over the configured session and exit once it drains",
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := hex.DecodeString(sendHex)
		if err != nil {
			return fmt.Errorf("decoding --data as hex: %w", err)
		}

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
		if _, err := console.Send(payload); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		logger.Info("sending", "bytes", payload)

		errc := make(chan error, 1)
		go func() { errc <- console.Run(ctx) }()

		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case err := <-errc:
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			case <-ticker.C:
				if console.State() == isotp.StateIdle {
					cancel()
					<-errc
					logger.Info("send complete")
					return nil
				}
			}
		}
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendHex, "data", "", "hex-encoded payload to send")
	_ = sendCmd.MarkFlagRequired("data")
}
