// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package isotp implements one endpoint of an ISO-TP (ISO 15765-2 / ISO
// 17987-2) transport-layer session: segmentation and reassembly of
// arbitrarily large application payloads over a frame-oriented bus whose
// payload per frame is at most 8 bytes (classic CAN), 64 bytes (CAN-FD), or
// 8 bytes (LIN).
//
// Semantics and design:
//   - Single endpoint: a Session is one side of a bidirectional peer pair.
//     Multiplexing several peers means instantiating several Sessions; the
//     package does not address-demux inbound frames for you.
//   - No allocation, no I/O: Session holds borrowed TX/RX buffers supplied
//     by the caller at New/UseRxBuffer time. It never dials a bus, never
//     sleeps, and never allocates on the CanRx/CanTx hot path.
//   - Pull, don't push: the caller feeds inbound bytes through CanRx and
//     polls CanTx for the next outbound frame (and the separation time to
//     wait before calling CanTx again). The package does no scheduling.
//   - Not reentrant: a single Session must be driven from one goroutine (or
//     externally serialized) at a time; see the package-level concurrency
//     notes in Session's doc comment.
//
// Wire format (classic/FD/LIN, big-endian length fields where present): the
// upper nibble of byte 0 of every frame carries the frame kind (Single,
// First, Consecutive, Flow-Control); see the encode*/decode* functions in
// frame.go for the full per-kind byte layout.
package isotp
