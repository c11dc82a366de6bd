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

package ring

import (
	"net/netip"

	"github.com/pawelgaczynski/giouring"
)

// Capability is one of the three scan types (tcp-connect, ssh-version,
// http-header-match): it knows how many ring operations a single IP needs,
// how to build that chain of SQEs, and how to interpret each completion.
type Capability interface {
	// Name identifies the capability in log lines.
	Name() string

	// RequiredOpcodes lists the io_uring opcodes this capability's chain
	// depends on, checked once at startup against the kernel's probe.
	RequiredOpcodes() []uint8

	// OpsPerIP is the number of chained SQEs pushed per target address.
	OpsPerIP() int

	// MaxTxSize is the largest send buffer this capability needs, or 0 if
	// it never sends.
	MaxTxSize() int

	// Socket creates the file descriptor used for one target's chain.
	Socket() (int, error)

	// PushOps allocates this IP's slots and submits its operation chain
	// against eng for fd. A buffer should be attached (via SlotInfo.Buf) to
	// exactly one slot: the one whose completion is its last use. The slot
	// pool releases that buffer automatically when that slot is freed, so
	// a capability never frees a buffer itself.
	PushOps(eng *Engine, fd int, ip netip.Addr, timeouts Timeouts) error

	// ProcessCompletion interprets one CQE belonging to slot id/info. The
	// slot itself, and any buffer attached to it, are freed by the caller
	// unconditionally once this returns. The returned bool reports whether
	// this completion finished the whole per-IP chain (the Close step),
	// for callers tracking targets rather than raw operations.
	ProcessCompletion(eng *Engine, id SlotID, info SlotInfo, cqe *giouring.CompletionQueueEvent) (finished bool)
}
