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

// Package httpmatch sends a minimal HTTP/1.0 request and reports a hit when
// the response header block matches a caller-supplied regular expression.
package httpmatch

import (
	"bytes"
	"fmt"
	"net/netip"
	"regexp"
	"time"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/sabouaram/ringscan/internal/logger"
	"github.com/sabouaram/ringscan/internal/ring"
)

type step uint8

const (
	stepConnect step = iota
	stepConnectTimeout
	stepSend
	stepWriteTimeout
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
	case stepSend:
		return "Send"
	case stepWriteTimeout:
		return "WriteTimeout"
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

// Capability implements ring.Capability for the HTTP header-match scan.
type Capability struct {
	port    uint16
	bufLen  int
	request []byte
	match   *regexp.Regexp
	log     logger.Logger
}

// New builds an http-header-match capability. request is the full HTTP/1.0
// request line and headers sent verbatim on every connection; match is
// evaluated against each line of the response header block (the received
// bytes up to the first blank line).
func New(port uint16, path string, headerRegex string, maxReadSize int, log logger.Logger) (*Capability, error) {
	re, err := regexp.Compile(headerRegex)
	if err != nil {
		return nil, fmt.Errorf("invalid header regex: %w", err)
	}

	req := fmt.Sprintf("GET %s HTTP/1.0\r\nHost: scan\r\nConnection: close\r\n\r\n", path)

	return &Capability{
		port:    port,
		bufLen:  maxReadSize,
		request: []byte(req),
		match:   re,
		log:     log,
	}, nil
}

func (c *Capability) Name() string { return "http-header-match" }

func (c *Capability) RequiredOpcodes() []uint8 {
	return []uint8{giouring.OpConnect, giouring.OpLinkTimeout, giouring.OpSend, giouring.OpRecv, giouring.OpClose}
}

func (c *Capability) OpsPerIP() int { return 7 }

func (c *Capability) MaxTxSize() int { return len(c.request) }

func (c *Capability) Socket() (int, error) {
	return unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
}

// PushOps builds Connect -> ConnectTimeout -> Send -> WriteTimeout -> Recv
// -> ReadTimeout -> Close, all but Close IO_LINK'd in sequence.
func (c *Capability) PushOps(eng *ring.Engine, fd int, ip netip.Addr, timeouts ring.Timeouts) error {
	addr := ring.SockaddrIn(ip, c.port)
	start := time.Now()

	txBuf := eng.AllocBuffer(ring.BufferTX)
	copy(eng.GetBuffer(txBuf), c.request)
	rxBuf := eng.AllocBuffer(ring.BufferRX)

	connectID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepConnect), FD: fd, Start: start})
	eng.PrepareConnect(eng.NextSQE(), fd, addr, connectID)

	connTimeoutID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepConnectTimeout), FD: fd, Start: start})
	eng.PrepareLinkTimeout(eng.NextSQE(), timeouts.Connect, connTimeoutID, false)

	sendID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepSend), FD: fd, Start: start, Buf: &txBuf})
	eng.PrepareSend(eng.NextSQE(), fd, eng.GetBuffer(txBuf)[:len(c.request)], sendID, false)

	writeTimeoutID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepWriteTimeout), FD: fd, Start: start})
	eng.PrepareLinkTimeout(eng.NextSQE(), timeouts.Write, writeTimeoutID, false)

	recvID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepRecv), FD: fd, Start: start, Buf: &rxBuf})
	eng.PrepareRecv(eng.NextSQE(), fd, eng.GetBuffer(rxBuf), recvID, false)

	readTimeoutID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepReadTimeout), FD: fd, Start: start})
	eng.PrepareLinkTimeout(eng.NextSQE(), timeouts.Read, readTimeoutID, false)

	closeID := eng.AllocSlot(ring.SlotInfo{IP: ip, Step: uint8(stepClose), FD: fd, Start: start})
	eng.PrepareClose(eng.NextSQE(), fd, closeID)

	return nil
}

// ProcessCompletion matches the regex against each header line the Recv
// completion returned, logging the first matching line, and finalizes the
// chain on Close. The TX and RX buffers are each
// attached only to the slot of their last use (Send, Recv), so the slot
// pool releases them automatically once that completion is dispatched.
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
	case stepSend:
		return false

	case stepRecv:
		if cqe.Res > 0 && info.Buf != nil {
			n := int(cqe.Res)
			if n > c.bufLen {
				n = c.bufLen
			}
			data := eng.GetBuffer(*info.Buf)[:n]
			c.log.WithFields(logger.Fields{"ip": info.IP.String()}).Debug("buf: " + string(data))

			for _, line := range bytes.Split(data, []byte("\n")) {
				line = bytes.TrimRight(line, "\r")
				if len(line) == 0 {
					break
				}
				if c.match.Match(line) {
					c.log.Info(fmt.Sprintf("%s \t delay: %dms \t %s", info.IP, time.Since(info.Start).Milliseconds(), line))
					break
				}
			}
		}
		return false

	case stepConnectTimeout, stepWriteTimeout, stepReadTimeout:
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
