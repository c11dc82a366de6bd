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

// BufferPool holds two pre-allocated byte arenas (RX and TX) and free-lists
// over their fixed-size slices. Buffer addresses never move; when the TX
// arena is in use, Engine's registerBuffers registers both arenas with the
// kernel once.
type BufferPool struct {
	rx       []byte
	tx       []byte
	rxSize   int
	txSize   int
	freeRX   []int
	freeTX   []int
}

// NewBufferPool allocates count buffers of rxSize bytes in the RX arena and
// count buffers of txSize bytes in the TX arena.
func NewBufferPool(count, rxSize, txSize int) *BufferPool {
	p := &BufferPool{
		rx:     make([]byte, count*rxSize),
		tx:     make([]byte, count*txSize),
		rxSize: rxSize,
		txSize: txSize,
		freeRX: make([]int, count),
		freeTX: make([]int, count),
	}

	for i := 0; i < count; i++ {
		p.freeRX[i] = count - 1 - i
		p.freeTX[i] = count - 1 - i
	}

	return p
}

// RXArena returns the full RX arena, for one-time kernel buffer
// registration.
func (p *BufferPool) RXArena() []byte { return p.rx }

// TXArena returns the full TX arena, for one-time kernel buffer
// registration.
func (p *BufferPool) TXArena() []byte { return p.tx }

// HasFree reports whether the given direction's free-list is non-empty.
func (p *BufferPool) HasFree(dir BufferDirection) bool {
	if dir == BufferRX {
		return len(p.freeRX) > 0
	}
	return len(p.freeTX) > 0
}

// Alloc pops a free buffer index from the given arena's free-list. Calling
// Alloc against an exhausted arena is a driver invariant violation: the
// per-IP operation chains never request more buffers than the admission
// gate accounted for.
func (p *BufferPool) Alloc(dir BufferDirection) BufferHandle {
	if dir == BufferRX {
		if len(p.freeRX) == 0 {
			errs.Invariant("rx buffer pool exhausted", nil)
		}
		idx := p.freeRX[len(p.freeRX)-1]
		p.freeRX = p.freeRX[:len(p.freeRX)-1]
		return BufferHandle{Index: idx, Direction: BufferRX}
	}

	if len(p.freeTX) == 0 {
		errs.Invariant("tx buffer pool exhausted", nil)
	}
	idx := p.freeTX[len(p.freeTX)-1]
	p.freeTX = p.freeTX[:len(p.freeTX)-1]
	return BufferHandle{Index: idx, Direction: BufferTX}
}

// Free returns h to its arena's free-list.
func (p *BufferPool) Free(h BufferHandle) {
	if h.Direction == BufferRX {
		p.freeRX = append(p.freeRX, h.Index)
	} else {
		p.freeTX = append(p.freeTX, h.Index)
	}
}

// Get returns the byte slice backing h, valid until the matching Free.
func (p *BufferPool) Get(h BufferHandle) []byte {
	if h.Direction == BufferRX {
		return p.rx[h.Index*p.rxSize : (h.Index+1)*p.rxSize]
	}
	return p.tx[h.Index*p.txSize : (h.Index+1)*p.txSize]
}
