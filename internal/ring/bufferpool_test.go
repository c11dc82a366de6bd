/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
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

package ring_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/ringscan/internal/ring"
)

var _ = Describe("BufferPool", func() {
	Context("allocating from a fresh pool", func() {
		It("hands out distinct buffers from each arena", func() {
			p := ring.NewBufferPool(2, 16, 8)

			rx := p.Alloc(ring.BufferRX)
			tx := p.Alloc(ring.BufferTX)

			Expect(rx.Direction).To(Equal(ring.BufferRX))
			Expect(tx.Direction).To(Equal(ring.BufferTX))
			Expect(p.Get(rx)).To(HaveLen(16))
			Expect(p.Get(tx)).To(HaveLen(8))
		})

		It("reports no free buffers once exhausted", func() {
			p := ring.NewBufferPool(1, 4, 4)

			Expect(p.HasFree(ring.BufferRX)).To(BeTrue())
			p.Alloc(ring.BufferRX)
			Expect(p.HasFree(ring.BufferRX)).To(BeFalse())
		})

		It("panics when allocating past exhaustion", func() {
			p := ring.NewBufferPool(1, 4, 4)
			p.Alloc(ring.BufferRX)

			Expect(func() { p.Alloc(ring.BufferRX) }).To(Panic())
		})
	})

	Context("freeing a buffer", func() {
		It("makes the slot available for reuse", func() {
			p := ring.NewBufferPool(1, 4, 4)

			h := p.Alloc(ring.BufferRX)
			p.Free(h)

			Expect(p.HasFree(ring.BufferRX)).To(BeTrue())
			again := p.Alloc(ring.BufferRX)
			Expect(again).To(Equal(h))
		})
	})
})
