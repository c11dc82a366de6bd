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

package cli

import (
	"context"
	"net/netip"

	"github.com/sabouaram/ringscan/internal/logger"
	"github.com/sabouaram/ringscan/internal/ring"
)

// runScan is the shared body of every subcommand's RunE: bump the file
// descriptor limit, parse the CIDR set, create the ring engine, check its
// probe against cap's required opcodes, then drive the fill/submit/drain
// loop while advancing a progress bar.
func runScan(ctx context.Context, f *scanFlags, log logger.Logger, cap ring.Capability) error {
	if err := bumpNoFileLimit(log); err != nil {
		return err
	}

	hosts, err := f.loadHosts()
	if err != nil {
		return err
	}

	f.maxWriteSize = cap.MaxTxSize()

	eng, err := ring.NewEngine(f.engineConfig(cap.OpsPerIP(), int(f.ringSize)), log)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.CheckProbe(cap, log); err != nil {
		return err
	}

	progress := newScanProgress(hosts.TotalHosts())
	defer progress.Wait()

	cursor := hosts.Cursor()
	next := func() (netip.Addr, bool) {
		return cursor.Next()
	}

	return eng.Run(ctx, next, cap, f.timeouts(), func(netip.Addr) {
		progress.Advance()
	})
}
