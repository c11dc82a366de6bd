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
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/ringscan/internal/errs"
	"github.com/sabouaram/ringscan/internal/logger"
)

// bumpNoFileLimit raises RLIMIT_NOFILE from its soft value to its hard
// value, unconditionally, the way the original scanner does before
// building sockets for every in-flight chain.
func bumpNoFileLimit(log logger.Logger) error {
	var rlim unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return errs.New(errs.ErrRlimit, "failed to read RLIMIT_NOFILE", err)
	}

	before := rlim.Cur
	rlim.Cur = rlim.Max

	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
		return errs.New(errs.ErrRlimit, "failed to raise RLIMIT_NOFILE", err)
	}

	log.Info(fmt.Sprintf("RLIMIT_NOFILE raised from %d to %d", before, rlim.Cur))

	return nil
}
