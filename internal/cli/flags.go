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

// Package cli wires the cobra command surface, rlimit bumping, and progress
// display around the ring engine and scan capabilities.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sabouaram/ringscan/internal/ipsource"
	"github.com/sabouaram/ringscan/internal/ring"
)

// scanFlags holds the flag values every subcommand shares.
type scanFlags struct {
	subnets            []string
	port               uint16
	ringSize           uint32
	ringBatch          uint32
	maxReadSize        int
	maxWriteSize       int
	timeoutConnectSecs int
	timeoutReadSecs    int
	timeoutWriteSecs   int
}

// addCommonFlags registers the flags shared by every scan subcommand.
func addCommonFlags(cmd *cobra.Command, f *scanFlags) {
	cmd.Flags().StringArrayVar(&f.subnets, "ip-subnets", nil, "CIDR subnet to scan (repeatable)")
	cmd.Flags().Uint16Var(&f.port, "port", 0, "TCP port to scan")
	cmd.Flags().Uint32Var(&f.ringSize, "ring-size", 64, "number of in-flight target chains")
	cmd.Flags().Uint32Var(&f.ringBatch, "ring-batch-size", 32, "minimum completions to wait for per submit")
	cmd.Flags().IntVar(&f.maxReadSize, "max-read-size", 512, "bytes to read per target")
	cmd.Flags().IntVar(&f.timeoutConnectSecs, "timeout-connect-secs", 3, "connect phase timeout, in seconds")
	cmd.Flags().IntVar(&f.timeoutReadSecs, "timeout-read-secs", 3, "read phase timeout, in seconds")
	cmd.Flags().IntVar(&f.timeoutWriteSecs, "timeout-write-secs", 3, "write phase timeout, in seconds")

	_ = cmd.MarkFlagRequired("ip-subnets")
	_ = cmd.MarkFlagRequired("port")
}

func (f *scanFlags) timeouts() ring.Timeouts {
	return ring.Timeouts{
		Connect: time.Duration(f.timeoutConnectSecs) * time.Second,
		Read:    time.Duration(f.timeoutReadSecs) * time.Second,
		Write:   time.Duration(f.timeoutWriteSecs) * time.Second,
	}
}

func (f *scanFlags) loadHosts() (*ipsource.Set, error) {
	if f.port == 0 {
		return nil, fmt.Errorf("--port must be between 1 and 65535")
	}
	return ipsource.Parse(f.subnets)
}

func (f *scanFlags) engineConfig(opsPerIP, bufCount int) ring.Config {
	return ring.Config{
		RingSize:     f.ringSize,
		RingBatch:    f.ringBatch,
		OpsPerIP:     opsPerIP,
		BufferCount:  bufCount,
		MaxReadSize:  f.maxReadSize,
		MaxWriteSize: f.maxWriteSize,
	}
}
