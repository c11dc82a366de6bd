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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotPool_AllocFreeRoundTrip(t *testing.T) {
	p := NewSlotPool(4, NewBufferPool(1, 8, 8))
	require.True(t, p.HasFree(4))
	require.False(t, p.HasFree(5))

	ip := netip.MustParseAddr("10.0.0.1")
	id := p.Alloc(SlotInfo{IP: ip, Step: 0})

	assert.Equal(t, 1, p.AllocatedCount())
	assert.True(t, p.HasFree(3))
	assert.False(t, p.HasFree(4))

	got := p.Get(id)
	assert.Equal(t, ip, got.IP)

	p.Free(id)
	assert.Equal(t, 0, p.AllocatedCount())
	assert.True(t, p.HasFree(4))
}

func TestSlotPool_LIFOReuse(t *testing.T) {
	p := NewSlotPool(2, NewBufferPool(1, 8, 8))

	a := p.Alloc(SlotInfo{Step: 0})
	b := p.Alloc(SlotInfo{Step: 1})
	p.Free(b)

	c := p.Alloc(SlotInfo{Step: 2})
	assert.Equal(t, b, c, "the most recently freed slot should be reused first")
	assert.NotEqual(t, a, c)
}

func TestSlotPool_AllocPanicsOnExhaustion(t *testing.T) {
	p := NewSlotPool(1, NewBufferPool(1, 8, 8))
	p.Alloc(SlotInfo{})

	assert.Panics(t, func() {
		p.Alloc(SlotInfo{})
	})
}

func TestSlotPool_GetPanicsOnUnallocated(t *testing.T) {
	p := NewSlotPool(2, NewBufferPool(1, 8, 8))

	assert.Panics(t, func() {
		p.Get(SlotID(0))
	})
}

func TestSlotPool_FreePanicsOnDoubleFree(t *testing.T) {
	p := NewSlotPool(1, NewBufferPool(1, 8, 8))
	id := p.Alloc(SlotInfo{})
	p.Free(id)

	assert.Panics(t, func() {
		p.Free(id)
	})
}

func TestSlotPool_FreeReleasesOwnedBuffer(t *testing.T) {
	bufs := NewBufferPool(1, 8, 8)
	p := NewSlotPool(1, bufs)

	require.True(t, bufs.HasFree(BufferRX))
	buf := bufs.Alloc(BufferRX)
	require.False(t, bufs.HasFree(BufferRX))

	id := p.Alloc(SlotInfo{Buf: &buf})
	p.Free(id)

	assert.True(t, bufs.HasFree(BufferRX), "freeing a slot should release the buffer it owns")
}
