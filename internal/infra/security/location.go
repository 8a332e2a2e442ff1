package security

import (
	"fmt"
	"net/netip"
)

// LocationGate classifies a caller's network address as inside or outside
// the approved physical perimeter. The allow-list and CIDR set are static
// configuration; there is no registration API.
//
// Matching is IPv4-only by design: an IPv6 candidate (other than a mapped
// IPv4 or ::1) never matches a CIDR rule.
type LocationGate struct {
	exact  map[netip.Addr]struct{}
	ranges []netip.Prefix
}

// NewLocationGate parses the configured exact addresses and CIDR ranges.
func NewLocationGate(allowedIPs, allowedCIDRs []string) (*LocationGate, error) {
	gate := &LocationGate{
		exact: make(map[netip.Addr]struct{}, len(allowedIPs)),
	}

	for _, raw := range allowedIPs {
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("parse allowed ip %q: %w", raw, err)
		}
		gate.exact[normalize(addr)] = struct{}{}
	}

	for _, raw := range allowedCIDRs {
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("parse allowed cidr %q: %w", raw, err)
		}
		gate.ranges = append(gate.ranges, prefix.Masked())
	}

	return gate, nil
}

// IsApproved reports whether the source address is inside the perimeter.
// Unparseable addresses are outside. Pure predicate, no mutation.
func (g *LocationGate) IsApproved(sourceAddress string) bool {
	addr, err := netip.ParseAddr(sourceAddress)
	if err != nil {
		return false
	}
	addr = normalize(addr)

	if _, ok := g.exact[addr]; ok {
		return true
	}

	if !addr.Is4() {
		return false
	}

	for _, prefix := range g.ranges {
		if !prefix.Addr().Is4() {
			continue
		}
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

// normalize collapses IPv4-mapped IPv6 literals to IPv4 and treats the
// IPv6 loopback as 127.0.0.1.
func normalize(addr netip.Addr) netip.Addr {
	addr = addr.Unmap()
	if addr == netip.IPv6Loopback() {
		return netip.AddrFrom4([4]byte{127, 0, 0, 1})
	}
	return addr
}
