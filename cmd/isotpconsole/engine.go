// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vectorlane/isotp"
	"github.com/vectorlane/isotp/internal/serialbus"
)

// pollInterval is how long the outbound pump waits before asking CanTx
// again after a call that produced no frame.
const pollInterval = 2 * time.Millisecond

// logSink adapts isotp.EventSink onto a charmbracelet/log logger: every
// protocol notification becomes one structured log line instead of being
// silently dropped, which is the whole point of a demonstration console.
type logSink struct {
	isotp.NoopEventSink
	log *log.Logger
}

func (s *logSink) OnTransmissionRx(sess *isotp.Session) {
	s.log.Info("transmission received", "length", sess.TransmissionLength())
}

func (s *logSink) OnMemAssign(_ *isotp.Session, indicatedLength uint32) {
	s.log.Debug("peer declared length", "length", indicatedLength)
}

func (s *logSink) OnCanTx(_ *isotp.Session, frame []byte) {
	s.log.Debug("frame transmitted", "bytes", frame)
}

func (s *logSink) OnInvalidFrame(_ *isotp.Session, kind isotp.Kind, raw []byte) {
	s.log.Warn("invalid frame", "kind", kind, "bytes", raw)
}

func (s *logSink) OnUnexpectedFrameType(_ *isotp.Session, raw []byte) {
	s.log.Warn("unexpected frame for current state", "bytes", raw)
}

func (s *logSink) OnPartnerAbortedTransfer(_ *isotp.Session, raw []byte) {
	s.log.Error("partner aborted transfer", "bytes", raw)
}

func (s *logSink) OnTransmissionTooLarge(_ *isotp.Session, _ []byte, requested uint32) {
	s.log.Error("declared transmission too large for rx buffer", "requested", requested)
}

func (s *logSink) OnConsecutiveOutOfOrder(_ *isotp.Session, _ []byte, expected, received uint8) {
	s.log.Warn("consecutive frame out of order", "expected", expected, "received", received)
}

var _ isotp.EventSink = (*logSink)(nil)

// Console drives one isotp.Session against a BusTransport: an inbound pump
// feeding CanRx from the bus, and an outbound pump draining CanTx onto it.
// Both pumps serialize access to the Session through mu, honoring its
// single-threaded-access requirement while letting the two directions run
// concurrently.
type Console struct {
	mu      sync.Mutex
	session *isotp.Session
	bus     serialbus.BusTransport
	trace   *serialbus.Trace
	log     *log.Logger
	budget  int
}

// NewConsole builds a Console bound to an already-open bus transport and a
// configured session profile.
func NewConsole(profile *SessionProfile, bus serialbus.BusTransport, logger *log.Logger) (*Console, error) {
	format, err := profile.WireFormat()
	if err != nil {
		return nil, err
	}
	budget := profile.frameBudget()
	txBuf := make([]byte, 1<<20)
	rxBuf := make([]byte, 1<<20)

	c := &Console{
		bus:    bus,
		trace:  serialbus.NewTrace(256),
		log:    logger,
		budget: budget,
	}
	sink := &logSink{log: logger}
	session, err := isotp.New(format, sink, txBuf, rxBuf, profile.Options()...)
	if err != nil {
		return nil, err
	}
	c.session = session
	return c, nil
}

// Send accepts one outbound application payload; the outbound pump drains it
// as ISO-TP frames once Run is underway.
func (c *Console) Send(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Send(data)
}

// Received returns the most recently completed inbound message, if any, and
// whether the session is currently holding one.
func (c *Console) Received() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.State() != isotp.StateReceived {
		return nil, false
	}
	n := c.session.TransmissionLength()
	out := make([]byte, n)
	copy(out, c.session.RxBuffer()[:n])
	return out, true
}

// AckReceived returns the session to Idle after the caller has consumed a
// completed inbound message.
func (c *Console) AckReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Idle()
}

// Trace exposes the recent-frame ring for the monitor command.
func (c *Console) Trace() *serialbus.Trace { return c.trace }

// State reports the underlying session's current state.
func (c *Console) State() isotp.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

// Run drives the inbound and outbound pumps until ctx is canceled or either
// pump hits a transport error.
func (c *Console) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return c.pumpInbound(ctx) })
	eg.Go(func() error { return c.pumpOutbound(ctx) })
	return eg.Wait()
}

func (c *Console) pumpInbound(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		frame, err := c.bus.ReadFrame()
		if err != nil {
			return err
		}
		if len(frame) == 0 {
			continue
		}
		c.trace.Record(true, frame)
		c.mu.Lock()
		c.session.CanRx(frame)
		c.mu.Unlock()
	}
}

func (c *Console) pumpOutbound(ctx context.Context) error {
	out := make([]byte, c.budget)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		c.mu.Lock()
		n, sepUs := c.session.CanTx(out)
		c.mu.Unlock()

		if n == 0 {
			time.Sleep(pollInterval)
			continue
		}
		if err := c.bus.WriteFrame(out[:n]); err != nil {
			return err
		}
		c.trace.Record(false, out[:n])
		if sepUs > 0 {
			time.Sleep(time.Duration(sepUs) * time.Microsecond)
		}
	}
}
