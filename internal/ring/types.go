/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2024 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package ring is the io_uring-driven scan engine: a slot pool, a buffer
// pool, and the single-threaded fill/submit/drain loop that pushes per-IP
// operation chains and dispatches their completions to a scan capability.
package ring

import (
	"net/netip"
	"time"
)

// BufferDirection names which pre-registered arena a BufferHandle was
// carved from.
type BufferDirection uint8

const (
	// BufferRX is the receive-buffer arena.
	BufferRX BufferDirection = iota
	// BufferTX is the send-buffer arena.
	BufferTX
)

// BufferHandle identifies a buffer carved from one of the pool's two
// pre-registered arenas.
type BufferHandle struct {
	Index     int
	Direction BufferDirection
}

// SlotID is the 64-bit user-data tag carried on every submitted SQE and
// echoed back on its CQE.
type SlotID uint64

// SlotInfo is everything a capability needs to interpret a completion: the
// shared target address, which step of the chain this slot represents, the
// optional buffer it owns, the socket file descriptor, and when the chain
// started (for hit-latency reporting).
type SlotInfo struct {
	IP    netip.Addr
	Step  uint8
	Buf   *BufferHandle
	FD    int
	Start time.Time
}

// Timeouts bounds the connect, read, and write phases of a chain. Each is
// converted to a kernel Timespec when building the LinkTimeout SQE for that
// phase.
type Timeouts struct {
	Connect time.Duration
	Read    time.Duration
	Write   time.Duration
}
