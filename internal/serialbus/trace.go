// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package serialbus

import "github.com/vectorlane/isotp/internal/bo"

// Trace is a small fixed-capacity ring of recently seen frames, used by the
// console's monitor command to print a rolling history without growing
// without bound. Entries are never sent back over the wire, so the sequence
// stamp packed into each one uses the host's native byte order rather than a
// fixed wire endianness -- there is no cross-machine consumer to agree with.
type Trace struct {
	entries []traceEntry
	next    int
	seq     uint64
}

type traceEntry struct {
	seqStamp [8]byte
	rx       bool
	frame    []byte
}

// NewTrace allocates a ring holding up to capacity frames.
func NewTrace(capacity int) *Trace {
	return &Trace{entries: make([]traceEntry, capacity)}
}

// Record appends one frame observation, evicting the oldest entry once the
// ring is full.
func (t *Trace) Record(rx bool, frame []byte) {
	var stamp [8]byte
	bo.Native().PutUint64(stamp[:], t.seq)
	t.seq++

	cp := append([]byte(nil), frame...)
	t.entries[t.next%len(t.entries)] = traceEntry{seqStamp: stamp, rx: rx, frame: cp}
	t.next++
}

// TraceEntry is the caller-facing view of one recorded frame.
type TraceEntry struct {
	Seq   uint64
	RX    bool
	Frame []byte
}

// Recent returns up to len(entries) most recent frames, oldest first.
func (t *Trace) Recent() []TraceEntry {
	n := t.next
	cap := len(t.entries)
	count := n
	if count > cap {
		count = cap
	}
	out := make([]TraceEntry, 0, count)
	start := n - count
	for i := start; i < n; i++ {
		e := t.entries[i%cap]
		out = append(out, TraceEntry{
			Seq:   bo.Native().Uint64(e.seqStamp[:]),
			RX:    e.rx,
			Frame: e.frame,
		})
	}
	return out
}
