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
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// scanProgress wraps a single mpb bar tracking finished hosts against the
// set's total, with an exponentially-smoothed rate and ETA the way the
// original scanner's indicatif bar does (its smoothed_eta/smoothed_per_sec
// template keys), rather than a raw instantaneous rate.
type scanProgress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	last      time.Time
}

func newScanProgress(total uint64) *scanProgress {
	p := mpb.New(mpb.WithWidth(64))

	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.EwmaSpeed(decor.UnitsDefault, "% .1f hosts/s", 30),
			decor.OnComplete(decor.EwmaETA(decor.ET_STYLE_GO, 30), "done"),
		),
	)

	return &scanProgress{container: p, bar: bar, last: time.Now()}
}

// Advance increments the bar by one host and feeds the elapsed wall-clock
// time into the ewma decorators.
func (s *scanProgress) Advance() {
	now := time.Now()
	s.bar.EwmaIncrement(now.Sub(s.last))
	s.last = now
}

// Wait blocks until the bar has finished rendering its final frame.
func (s *scanProgress) Wait() {
	s.container.Wait()
}
