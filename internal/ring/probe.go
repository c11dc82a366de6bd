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
	"fmt"

	"github.com/sabouaram/ringscan/internal/errs"
	"github.com/sabouaram/ringscan/internal/logger"
)

// CheckProbe registers a kernel probe once at startup and verifies every
// opcode cap's chain depends on is supported, logging each unsupported
// opcode before returning an ErrRingProbe-tagged failure.
func (e *Engine) CheckProbe(cap Capability, log logger.Logger) error {
	probe, err := e.ring.GetProbe()
	if err != nil {
		return errs.New(errs.ErrRingProbe, "failed to register io_uring probe", err)
	}
	defer probe.Free()

	ok := true
	for _, op := range cap.RequiredOpcodes() {
		if !probe.IsSupported(op) {
			log.Error(fmt.Sprintf("%s: opcode %d is not supported by this kernel", cap.Name(), op))
			ok = false
		}
	}

	if !ok {
		return errs.New(errs.ErrRingProbe, fmt.Sprintf("%s: kernel is missing required io_uring opcodes", cap.Name()), nil)
	}

	return nil
}
