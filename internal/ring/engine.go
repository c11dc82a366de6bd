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
	"context"
	"net/netip"
	"time"
	"unsafe"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/ringscan/internal/errs"
	"github.com/sabouaram/ringscan/internal/logger"
)

// Engine owns the kernel ring plus the slot and buffer pools drawn from it.
// It is driven from a single goroutine: fill the submission queue while
// CanPush allows it, submit and wait, drain completions, repeat.
type Engine struct {
	ring      *giouring.Ring
	slots     *SlotPool
	buffers   *BufferPool
	ringSize  uint32
	batchSize uint32
	log       logger.Logger
}

// Config bounds the engine's ring and pool sizing.
type Config struct {
	RingSize     uint32
	RingBatch    uint32
	OpsPerIP     int
	BufferCount  int
	MaxReadSize  int
	MaxWriteSize int
}

// NewEngine creates the io_uring instance with room for RingSize whole
// chains (RingSize × OpsPerIP submission entries) and sizes the slot pool to
// hold RingSize chains worth of operations. The RX/TX buffer arenas are
// registered with the kernel only when the capability sends
// (MaxWriteSize > 0); otherwise no buffers are registered.
func NewEngine(cfg Config, log logger.Logger) (*Engine, error) {
	r, err := giouring.CreateRing(cfg.RingSize * uint32(cfg.OpsPerIP))
	if err != nil {
		return nil, errs.New(errs.ErrRingCreate, "failed to create io_uring instance", err)
	}

	slotCapacity := int(cfg.RingSize) * cfg.OpsPerIP
	buffers := NewBufferPool(cfg.BufferCount, cfg.MaxReadSize, cfg.MaxWriteSize)
	e := &Engine{
		ring:      r,
		slots:     NewSlotPool(slotCapacity, buffers),
		buffers:   buffers,
		ringSize:  cfg.RingSize,
		batchSize: cfg.RingBatch,
		log:       log,
	}

	if cfg.MaxWriteSize > 0 {
		if err := e.registerBuffers(); err != nil {
			r.QueueExit()
			return nil, err
		}
	}

	return e, nil
}

// registerBuffers registers both arenas with the kernel as a single fixed
// buffer table, once, before any operation references them by index.
func (e *Engine) registerBuffers() error {
	iov := []unix.Iovec{
		{Base: &e.buffers.rx[0], Len: uint64(len(e.buffers.rx))},
		{Base: &e.buffers.tx[0], Len: uint64(len(e.buffers.tx))},
	}

	if err := e.ring.RegisterBuffers(iov); err != nil {
		return errs.New(errs.ErrRegisterBuffers, "failed to register fixed buffers", err)
	}

	return nil
}

// Close releases the kernel ring.
func (e *Engine) Close() {
	e.ring.QueueExit()
}

// CanPush is the admission gate (spec invariant): there must be enough
// free slots AND enough submission-queue room for a whole chain before the
// fill phase is allowed to start one. This bounds memory independent of
// how many targets remain.
func (e *Engine) CanPush(opsPerIP int) bool {
	return e.slots.HasFree(opsPerIP) && int(e.ring.SQSpaceLeft()) >= opsPerIP
}

// NextSQE pulls the next free submission queue entry.
func (e *Engine) NextSQE() *giouring.SubmissionQueueEntry {
	return e.ring.GetSQE()
}

// AllocSlot stores info in a free slot and returns its id.
func (e *Engine) AllocSlot(info SlotInfo) SlotID {
	return e.slots.Alloc(info)
}

// FreeSlot returns id to the pool.
func (e *Engine) FreeSlot(id SlotID) {
	e.slots.Free(id)
}

// GetSlot returns the info stored at id.
func (e *Engine) GetSlot(id SlotID) SlotInfo {
	return e.slots.Get(id)
}

// AllocBuffer carves a buffer from the given arena.
func (e *Engine) AllocBuffer(dir BufferDirection) BufferHandle {
	return e.buffers.Alloc(dir)
}

// FreeBuffer returns h to its arena.
func (e *Engine) FreeBuffer(h BufferHandle) {
	e.buffers.Free(h)
}

// GetBuffer returns the bytes backing h.
func (e *Engine) GetBuffer(h BufferHandle) []byte {
	return e.buffers.Get(h)
}

// SockaddrIn builds the raw IPv4 sockaddr a Connect SQE points at.
func SockaddrIn(ip netip.Addr, port uint16) *unix.RawSockaddrInet4 {
	a4 := ip.As4()
	sa := &unix.RawSockaddrInet4{
		Family: unix.AF_INET,
		Addr:   a4,
	}
	sa.Port = (port << 8) | (port >> 8)
	return sa
}

// PrepareConnect fills sqe with a Connect operation against addr, flagged
// IO_LINK so the chain's next entry (a ConnectTimeout) governs it.
func (e *Engine) PrepareConnect(sqe *giouring.SubmissionQueueEntry, fd int, addr *unix.RawSockaddrInet4, id SlotID) {
	sqe.PrepareConnect(int32(fd), (*unix.RawSockaddrAny)(unsafe.Pointer(addr)), unix.SizeofSockaddrInet4)
	sqe.UserData = uint64(id)
	sqe.Flags |= giouring.SqeIOLinkBit
}

// PrepareLinkTimeout fills sqe with a LinkTimeout bounding the previous
// chain entry, flagged IO_LINK unless last is true.
func (e *Engine) PrepareLinkTimeout(sqe *giouring.SubmissionQueueEntry, d time.Duration, id SlotID, last bool) {
	ts := unix.NsecToTimespec(d.Nanoseconds())
	sqe.PrepareLinkTimeout(&giouring.Timespec{Sec: uint64(ts.Sec), Nsec: uint64(ts.Nsec)}, 0)
	sqe.UserData = uint64(id)
	if !last {
		sqe.Flags |= giouring.SqeIOLinkBit
	}
}

// PrepareRecv fills sqe with a Recv into buf, flagged IO_LINK unless last.
func (e *Engine) PrepareRecv(sqe *giouring.SubmissionQueueEntry, fd int, buf []byte, id SlotID, last bool) {
	sqe.PrepareRecv(int32(fd), buf, 0)
	sqe.UserData = uint64(id)
	if !last {
		sqe.Flags |= giouring.SqeIOLinkBit
	}
}

// PrepareSend fills sqe with a Send of buf, flagged IO_LINK unless last.
func (e *Engine) PrepareSend(sqe *giouring.SubmissionQueueEntry, fd int, buf []byte, id SlotID, last bool) {
	sqe.PrepareSend(int32(fd), buf, 0)
	sqe.UserData = uint64(id)
	if !last {
		sqe.Flags |= giouring.SqeIOLinkBit
	}
}

// PrepareClose fills sqe with a Close of fd, never linked: it is always
// the terminal entry in a chain.
func (e *Engine) PrepareClose(sqe *giouring.SubmissionQueueEntry, fd int, id SlotID) {
	sqe.PrepareClose(int32(fd))
	sqe.UserData = uint64(id)
}

// Run is the single-threaded drive loop (spec §4.4): fill the submission
// queue with new chains while CanPush and hosts remain, submit and wait for
// at least one completion, dispatch every ready completion to cap, and
// repeat until both the host source and the in-flight set are empty.
// onFinish is invoked once per host address whose chain has fully
// completed (cap.ProcessCompletion returned true for its Close step), for
// progress reporting.
func (e *Engine) Run(ctx context.Context, next func() (netip.Addr, bool), cap Capability, timeouts Timeouts, onFinish func(netip.Addr)) error {
	opsPerIP := cap.OpsPerIP()
	exhausted := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		for !exhausted && e.CanPush(opsPerIP) {
			ip, ok := next()
			if !ok {
				exhausted = true
				break
			}

			fd, err := cap.Socket()
			if err != nil {
				e.log.WithFields(logger.Fields{"ip": ip.String()}).Debug("socket: " + err.Error())
				continue
			}

			if err := cap.PushOps(e, fd, ip, timeouts); err != nil {
				e.log.WithFields(logger.Fields{"ip": ip.String()}).Debug("push ops: " + err.Error())
				continue
			}
		}

		if exhausted && e.slots.AllocatedCount() == 0 {
			return nil
		}

		waitNr := e.batchSize
		if inFlight := uint32(e.slots.AllocatedCount()); inFlight < waitNr {
			waitNr = inFlight
		}
		if waitNr == 0 {
			waitNr = 1
		}

		if _, err := e.ring.SubmitAndWait(waitNr); err != nil {
			return err
		}

		for {
			cqe, err := e.ring.PeekCQE()
			if err != nil || cqe == nil {
				break
			}

			id := SlotID(cqe.UserData)
			info := e.slots.Get(id)

			// Every chain entry owns exactly one slot; it is freed here as
			// soon as its own completion has been dispatched, regardless of
			// whether the chain as a whole is finished. The capability's
			// returned bool instead tells us whether this completion was
			// the chain's terminal Close, at which point progress advances.
			finished := cap.ProcessCompletion(e, id, info, cqe)
			e.slots.Free(id)

			if finished {
				onFinish(info.IP)
			}

			e.ring.CQESeen(cqe)
		}
	}
}
