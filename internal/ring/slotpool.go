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

import "github.com/sabouaram/ringscan/internal/errs"

// SlotPool is a fixed-capacity pool of SlotInfo descriptors indexed by
// SlotID, backed by a LIFO free-list. It is accessed from a single
// goroutine only; there is no internal locking.
//
// A slot may own a buffer carved from buffers; Free releases that buffer
// along with the slot itself, the same way the chain entry and its buffer
// are released together, so a capability never has to remember to free a
// buffer by hand.
type SlotPool struct {
	slots    []SlotInfo
	occupied []bool
	free     []SlotID
	buffers  *BufferPool
}

// NewSlotPool allocates a pool with room for capacity in-flight slots,
// releasing any buffer a freed slot owns back to buffers.
func NewSlotPool(capacity int, buffers *BufferPool) *SlotPool {
	p := &SlotPool{
		slots:    make([]SlotInfo, capacity),
		occupied: make([]bool, capacity),
		free:     make([]SlotID, capacity),
		buffers:  buffers,
	}

	for i := 0; i < capacity; i++ {
		p.free[i] = SlotID(capacity - 1 - i)
	}

	return p
}

// HasFree reports whether at least n slots are free.
func (p *SlotPool) HasFree(n int) bool {
	return len(p.free) >= n
}

// AllocatedCount returns the number of slots currently in use.
func (p *SlotPool) AllocatedCount() int {
	return len(p.slots) - len(p.free)
}

// Alloc pops a free slot, stores info in it, and returns its SlotID. It is
// a driver invariant violation to call Alloc when the pool has no free
// slot: the admission gate (Engine.CanPush) exists precisely to prevent
// this, so exhaustion here means the gate was bypassed.
func (p *SlotPool) Alloc(info SlotInfo) SlotID {
	if len(p.free) == 0 {
		errs.Invariant("slot pool exhausted", nil)
	}

	id := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	p.slots[id] = info
	p.occupied[id] = true

	return id
}

// Get returns the SlotInfo stored at id. It is a driver invariant
// violation to look up a slot that was never allocated or was already
// freed: every SlotID reaching this point comes from a kernel CQE whose
// user_data was set by a prior Alloc.
func (p *SlotPool) Get(id SlotID) SlotInfo {
	if int(id) >= len(p.slots) || !p.occupied[id] {
		errs.Invariant("completion referenced an unallocated slot", nil)
	}
	return p.slots[id]
}

// Free releases any buffer the slot owns, then returns id to the
// free-list.
func (p *SlotPool) Free(id SlotID) {
	if int(id) >= len(p.slots) || !p.occupied[id] {
		errs.Invariant("double free of slot", nil)
	}

	if buf := p.slots[id].Buf; buf != nil {
		p.buffers.Free(*buf)
	}

	p.occupied[id] = false
	p.free = append(p.free, id)
}
