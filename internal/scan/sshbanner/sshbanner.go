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

// Package sshbanner scans for SSH servers by connecting and checking that
// the first bytes of the peer's banner line start with "SSH-".
package sshbanner

import (
	"bytes"
	"fmt"
	"net/netip"
	"time"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/ringscan/internal/logger"
	"github.com/sabouaram/ringscan/internal/ring"
)

const bannerPrefix = "SSH-"

type step uint8

const (
	stepConnect step = iota
	stepConnectTimeout
	stepRecv
	stepReadTimeout
	stepClose
)

func (s step) String() string {
	switch s {
	case stepConnect:
		return "Connect"
	case stepConnectTimeout:
		return "ConnectTimeout"
	case stepRecv:
		return "Recv"
	case stepReadTimeout:
		return "ReadTimeout"
	case stepClose:
		return "Close"
	default:
		return "unknown"
	}
}

// Capability implements ring.Capability for the SSH banner-grab scan.
type Capability struct {
	port   uint16
	bufLen int
	log    logger.Logger
}

// New builds an ssh-banner capability targeting port, reading up to
// maxReadSize bytes of banner.
func New(port uint16, maxReadSize int, log logger.Logger) *Capability {
	return &Capability{port: port, bufLen: maxReadSize, log: log}
}

func (c *Capability) Name() string { return "ssh-version" }

func (c *Capability) RequiredOpcodes() []uint8 {
	return []uint8{giouring.OpConnect, giouring.OpLinkTimeout, giouring.OpRecv, giouring.OpClose}
}

func (c *Capability) OpsPerIP() int { return 5 }

func (c *Capability) MaxTxSize() int { return 0 }

func (c *Capability) Socket() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
}

// PushOps builds Connect -> ConnectTimeout -> Recv -> ReadTimeout -> Close,
// all but Close IO_LINK'd in sequence.
func (c *Capability) PushOps(eng *ring.Engine, fd int, ip netip.Addr, timeouts ring.Timeouts) error {
	addr := ring.SockaddrIn(ip, c.port)
	start := time.Now()
	buf := eng.AllocBuffer(ring.BufferRX)

	connectID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepConnect), FD: fd, Start: start})
	eng.PrepareConnect(eng.NextSQE(), fd, addr, connectID)

	connTimeoutID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepConnectTimeout), FD: fd, Start: start})
	eng.PrepareLinkTimeout(eng.NextSQE(), timeouts.Connect, connTimeoutID, false)

	recvID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepRecv), FD: fd, Start: start, Buf: &buf})
	eng.PrepareRecv(eng.NextSQE(), fd, eng.GetBuffer(buf), recvID, false)

	readTimeoutID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepReadTimeout), FD: fd, Start: start})
	eng.PrepareLinkTimeout(eng.NextSQE(), timeouts.Read, readTimeoutID, false)

	closeID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepClose), FD: fd, Start: start})
	eng.PrepareClose(eng.NextSQE(), fd, closeID)

	return nil
}

// ProcessCompletion checks the Recv completion's payload against the SSH
// banner prefix and finalizes the chain on Close. The RX buffer is attached
// only to the Recv slot, its last use, so the slot pool releases it
// automatically once that completion is dispatched.
func (c *Capability) ProcessCompletion(eng *ring.Engine, id ring.SlotID, info ring.SlotInfo, cqe *giouring.CompletionQueueEvent) bool {
	s := step(info.Step)
	errno := -cqe.Res

	c.log.WithFields(logger.Fields{
		"op":     uint64(id),
		"step":   s.String(),
		"ip":     info.IP.String(),
		"result": cqe.Res,
		"errno":  errno,
	}).Debug(fmt.Sprintf("op #%d (%s %s) returned %d (%d)", id, s, info.IP, cqe.Res, errno))

	switch s {
	case stepRecv:
		if cqe.Res > 0 && info.Buf != nil {
			n := int(cqe.Res)
			if n > c.bufLen {
				n = c.bufLen
			}
			data := eng.GetBuffer(*info.Buf)[:n]
			c.log.WithFields(logger.Fields{"ip": info.IP.String()}).Debug("buf: " + string(data))

			if bytes.HasPrefix(data, []byte(bannerPrefix)) {
				c.log.Info(fmt.Sprintf("%s \t delay: %dms \t %s", info.IP, time.Since(info.Start).Milliseconds(), bytes.TrimRight(data, "\r\n")))
			}
		}
		return false

	case stepConnectTimeout, stepReadTimeout:
		return false

	case stepClose:
		if cqe.Res == -int32(unix.ECANCELED) {
			_ = unix.Close(info.FD)
		}
		return true

	default:
		return false
	}
}
