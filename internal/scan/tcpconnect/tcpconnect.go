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

// Package tcpconnect is the bare TCP-connect scan capability: a target is a
// hit the instant its Connect SQE completes with result 0.
package tcpconnect

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/ringscan/internal/logger"
	"github.com/sabouaram/ringscan/internal/ring"
)

// step names the position of a completion within one IP's chain.
type step uint8

const (
	stepConnect step = iota
	stepConnectTimeout
	stepClose
)

func (s step) String() string {
	switch s {
	case stepConnect:
		return "Connect"
	case stepConnectTimeout:
		return "ConnectTimeout"
	case stepClose:
		return "Close"
	default:
		return "unknown"
	}
}

// Capability implements ring.Capability for a plain TCP connect scan. It
// keeps a dedup set so a target already reported a hit is not reported
// again (spec's open question on duplicate suppression, resolved in favor
// of keeping it).
type Capability struct {
	port uint16
	log  logger.Logger
	seen map[netip.Addr]struct{}
}

// New builds a tcp-connect capability targeting port on every scanned host.
func New(port uint16, log logger.Logger) *Capability {
	return &Capability{
		port: port,
		log:  log,
		seen: make(map[netip.Addr]struct{}),
	}
}

func (c *Capability) Name() string { return "tcp-connect" }

func (c *Capability) RequiredOpcodes() []uint8 {
	return []uint8{giouring.OpConnect, giouring.OpLinkTimeout, giouring.OpClose}
}

func (c *Capability) OpsPerIP() int { return 3 }

func (c *Capability) MaxTxSize() int { return 0 }

func (c *Capability) Socket() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
}

// PushOps builds the three-entry Connect -> ConnectTimeout -> Close chain,
// the first two IO_LINK'd together so the timeout governs the connect.
func (c *Capability) PushOps(eng *ring.Engine, fd int, ip netip.Addr, timeouts ring.Timeouts) error {
	addr := ring.SockaddrIn(ip, c.port)
	start := time.Now()

	connectID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepConnect), FD: fd, Start: start})
	sqeConnect := eng.NextSQE()
	eng.PrepareConnect(sqeConnect, fd, addr, connectID)

	timeoutID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepConnectTimeout), FD: fd, Start: start})
	sqeTimeout := eng.NextSQE()
	eng.PrepareLinkTimeout(sqeTimeout, timeouts.Connect, timeoutID, false)

	closeID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepClose), FD: fd, Start: start})
	sqeClose := eng.NextSQE()
	eng.PrepareClose(sqeClose, fd, closeID)

	return nil
}

// ProcessCompletion interprets one CQE of the chain. A successful Connect
// (result 0) is a hit, logged once per address. A Close completing with
// -ECANCELED means the connect timed out mid-flight and the kernel never
// actually closed the descriptor on our behalf, so it is closed explicitly.
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
	case stepConnect:
		if cqe.Res == 0 {
			if _, dup := c.seen[info.IP]; !dup {
				c.seen[info.IP] = struct{}{}
				elapsed := time.Since(info.Start)
				c.log.Info(fmt.Sprintf("%s \t delay: %dms", info.IP, elapsed.Milliseconds()))
			}
		}
		return false

	case stepConnectTimeout:
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
