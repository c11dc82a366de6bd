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

// Package ipsource turns the CLI's repeated --ip-subnets argument into a
// merged, deduplicated, lazily-enumerable sequence of IPv4 host addresses.
// CIDR parsing and range merging is done with inet.af/netaddr; the public
// surface speaks net/netip, the idiomatic Go address type.
package ipsource

import (
	"fmt"
	"net/netip"

	"inet.af/netaddr"

	"github.com/sabouaram/ringscan/internal/errs"
)

// Set is a merged, deduplicated collection of IPv4 CIDR blocks.
type Set struct {
	prefixes []netaddr.IPPrefix
	total    uint64
}

// Parse parses each CIDR string, merges overlapping or adjacent blocks, and
// rejects anything that is not a valid IPv4 prefix.
func Parse(subnets []string) (*Set, error) {
	var b netaddr.IPSetBuilder

	for _, s := range subnets {
		p, err := netaddr.ParseIPPrefix(s)
		if err != nil {
			return nil, errs.New(errs.ErrCIDR, fmt.Sprintf("invalid CIDR %q", s), err)
		}
		if !p.IP().Is4() {
			return nil, errs.New(errs.ErrCIDR, fmt.Sprintf("not an IPv4 CIDR: %q", s), nil)
		}
		if err := b.AddPrefix(p.Masked()); err != nil {
			return nil, errs.New(errs.ErrCIDR, fmt.Sprintf("failed to add CIDR %q", s), err)
		}
	}

	ipset, err := b.IPSet()
	if err != nil {
		return nil, errs.New(errs.ErrCIDR, "failed to merge CIDR blocks", err)
	}

	set := &Set{prefixes: ipset.Prefixes()}
	for _, p := range set.prefixes {
		set.total += hostCount(p)
	}

	return set, nil
}

// TotalHosts returns the number of host addresses Hosts will yield, for an
// eager progress-bar total.
func (s *Set) TotalHosts() uint64 {
	return s.total
}

// hostCount returns the number of scannable host addresses in p: network and
// broadcast excluded for prefixes shorter than /31, both addresses counted
// for /31 (point-to-point), zero for /32.
func hostCount(p netaddr.IPPrefix) uint64 {
	bits := p.Bits()
	switch {
	case bits >= 32:
		return 0
	case bits == 31:
		return 2
	default:
		return (uint64(1) << (32 - bits)) - 2
	}
}

// Hosts calls yield once per host address in the set, in ascending order,
// stopping early if yield returns false. It never materializes the full
// address list, so cardinality is bounded only by wall-clock time, not
// memory.
func (s *Set) Hosts(yield func(netip.Addr) bool) {
	for _, p := range s.prefixes {
		if !hostsInPrefix(p, yield) {
			return
		}
	}
}

func hostsInPrefix(p netaddr.IPPrefix, yield func(netip.Addr) bool) bool {
	bits := p.Bits()
	if bits >= 32 {
		return true
	}

	first := p.IP()
	last := lastAddr(p)

	var start, end netaddr.IP
	if bits == 31 {
		start, end = first, last
	} else {
		start, end = first.Next(), last.Prior()
	}

	for ip := start; ; ip = ip.Next() {
		if !yield(toNetip(ip)) {
			return false
		}
		if ip == end {
			break
		}
	}

	return true
}

func lastAddr(p netaddr.IPPrefix) netaddr.IP {
	a := p.IP().As4()
	bits := p.Bits()
	mask := uint32(0xFFFFFFFF)
	if bits < 32 {
		mask = ^(uint32(0xFFFFFFFF) >> bits)
	}
	ipv4 := uint32(a[0])<<24 | uint32(a[1])<<16 | uint32(a[2])<<8 | uint32(a[3])
	last := ipv4 | ^mask
	return netaddr.IPv4(byte(last>>24), byte(last>>16), byte(last>>8), byte(last))
}

func toNetip(ip netaddr.IP) netip.Addr {
	return netip.AddrFrom4(ip.As4())
}

// Cursor pulls host addresses one at a time, in ascending order, without
// materializing the set. The ring engine's fill phase calls Next once per
// admitted IP.
type Cursor struct {
	prefixes []netaddr.IPPrefix
	pi       int
	cur      netaddr.IP
	end      netaddr.IP
	started  bool
	done     bool
}

// Cursor returns a fresh pull-style iterator over s.
func (s *Set) Cursor() *Cursor {
	return &Cursor{prefixes: s.prefixes}
}

// Next returns the next host address and true, or the zero value and false
// once every prefix has been exhausted.
func (c *Cursor) Next() (netip.Addr, bool) {
	for {
		if c.done {
			return netip.Addr{}, false
		}

		if !c.started {
			if !c.enterPrefix() {
				return netip.Addr{}, false
			}
		}

		ip := c.cur
		if c.cur == c.end {
			c.started = false
			c.pi++
		} else {
			c.cur = c.cur.Next()
		}

		return toNetip(ip), true
	}
}

// enterPrefix advances pi past any zero-host prefixes (/32) and sets up
// cur/end for the first usable prefix found, returning false when no
// prefix remains.
func (c *Cursor) enterPrefix() bool {
	for {
		if c.pi >= len(c.prefixes) {
			c.done = true
			return false
		}

		p := c.prefixes[c.pi]
		if hostCount(p) == 0 {
			c.pi++
			continue
		}

		bits := p.Bits()
		first := p.IP()
		last := lastAddr(p)

		if bits == 31 {
			c.cur, c.end = first, last
		} else {
			c.cur, c.end = first.Next(), last.Prior()
		}

		c.started = true
		return true
	}
}
