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

// Package errs carries the three error classes the scanner distinguishes:
// startup failures that carry a CodeError and terminate the process,
// per-operation kernel errors that stay plain errors and never terminate a
// scan, and driver invariant violations that panic with a CodeError tag.
package errs

// CodeError tags a startup failure or an invariant violation with a stable,
// loggable identity. It carries no HTTP-style numbering convention; each
// value names the subsystem that failed.
type CodeError uint16

const (
	// UnknownError is the zero value, never returned by this package.
	UnknownError CodeError = iota

	// ErrCIDR marks a failure parsing or merging a CIDR subnet argument.
	ErrCIDR

	// ErrRingCreate marks failure to create the io_uring instance.
	ErrRingCreate

	// ErrRingProbe marks failure to register or evaluate an io_uring probe.
	ErrRingProbe

	// ErrRlimit marks failure to read or raise RLIMIT_NOFILE.
	ErrRlimit

	// ErrRegisterBuffers marks failure to register the fixed RX/TX buffers
	// with the kernel ring.
	ErrRegisterBuffers

	// ErrInvariant marks a driver invariant violation: slot or buffer pool
	// exhaustion where the admission gate should have prevented it, or a
	// completion referencing a slot that was never allocated. This class
	// always panics; there is no safe way to continue the scan.
	ErrInvariant
)

// String names the code for log lines and panic messages.
func (c CodeError) String() string {
	switch c {
	case ErrCIDR:
		return "ErrCIDR"
	case ErrRingCreate:
		return "ErrRingCreate"
	case ErrRingProbe:
		return "ErrRingProbe"
	case ErrRlimit:
		return "ErrRlimit"
	case ErrRegisterBuffers:
		return "ErrRegisterBuffers"
	case ErrInvariant:
		return "ErrInvariant"
	default:
		return "UnknownError"
	}
}
