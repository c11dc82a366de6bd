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

package ipsource_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabouaram/ringscan/internal/ipsource"
)

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := ipsource.Parse([]string{"not-a-cidr"})
	require.Error(t, err)
}

func TestParse_RejectsIPv6(t *testing.T) {
	_, err := ipsource.Parse([]string{"2001:db8::/32"})
	require.Error(t, err)
}

func TestSet_Slash30ExcludesNetworkAndBroadcast(t *testing.T) {
	s, err := ipsource.Parse([]string{"192.168.1.0/30"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.TotalHosts())

	var got []netip.Addr
	s.Hosts(func(a netip.Addr) bool {
		got = append(got, a)
		return true
	})

	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("192.168.1.1"),
		netip.MustParseAddr("192.168.1.2"),
	}, got)
}

func TestSet_Slash31BothAddressesAreHosts(t *testing.T) {
	s, err := ipsource.Parse([]string{"10.0.0.0/31"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.TotalHosts())
}

func TestSet_Slash32HasZeroHosts(t *testing.T) {
	s, err := ipsource.Parse([]string{"10.0.0.5/32"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, s.TotalHosts())

	count := 0
	s.Hosts(func(netip.Addr) bool {
		count++
		return true
	})
	assert.Zero(t, count)
}

func TestSet_MergesAdjacentBlocks(t *testing.T) {
	s, err := ipsource.Parse([]string{"10.0.0.0/25", "10.0.0.128/25"})
	require.NoError(t, err)
	assert.EqualValues(t, 254, s.TotalHosts())
}

func TestCursor_MatchesHostsOrder(t *testing.T) {
	s, err := ipsource.Parse([]string{"172.16.0.0/29"})
	require.NoError(t, err)

	var viaHosts []netip.Addr
	s.Hosts(func(a netip.Addr) bool {
		viaHosts = append(viaHosts, a)
		return true
	})

	var viaCursor []netip.Addr
	c := s.Cursor()
	for {
		a, ok := c.Next()
		if !ok {
			break
		}
		viaCursor = append(viaCursor, a)
	}

	assert.Equal(t, viaHosts, viaCursor)
}

func TestCursor_StopsAfterExhaustion(t *testing.T) {
	s, err := ipsource.Parse([]string{"10.0.0.0/31"})
	require.NoError(t, err)

	c := s.Cursor()
	_, ok := c.Next()
	require.True(t, ok)
	_, ok = c.Next()
	require.True(t, ok)
	_, ok = c.Next()
	require.False(t, ok)
}
