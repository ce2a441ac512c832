package config

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// AllocateSubnets carves consecutive blocks of the given prefix lengths out
// of network, in order. Each block is aligned to its own size, so a larger
// block following a smaller one skips the unaligned gap.
//
// Only IPv4 networks are supported.
func AllocateSubnets(network string, masks []int) ([]netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(network)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("only IPv4 addresses are supported, got %s", network)
	}
	prefix = prefix.Masked()

	start := uint64(addrToUint32(prefix.Addr()))
	end := start + uint64(1)<<(32-prefix.Bits())
	cursor := start

	subnets := make([]netip.Prefix, 0, len(masks))
	for _, mask := range masks {
		if mask < prefix.Bits() || mask > 32 {
			return nil, fmt.Errorf("subnet mask /%d does not fit in %s", mask, prefix)
		}
		size := uint64(1) << (32 - mask)
		if rem := cursor % size; rem != 0 {
			cursor += size - rem
		}
		if cursor+size > end {
			return nil, fmt.Errorf("%s has no room for subnet %d (/%d)", prefix, len(subnets)+1, mask)
		}
		// #nosec G115 -- cursor < end <= 1<<32
		subnets = append(subnets, netip.PrefixFrom(uint32ToAddr(uint32(cursor)), mask))
		cursor += size
	}
	return subnets, nil
}

// SubnetCIDRs allocates one block per zone for every subnet group, groups
// first: public a, public b, private a, private b.
func (n NetworkTopology) SubnetCIDRs() ([]netip.Prefix, error) {
	var masks []int
	for _, s := range n.Subnets {
		for range n.AvailabilityZones {
			masks = append(masks, s.CIDRMask)
		}
	}
	return AllocateSubnets(n.CIDR, masks)
}

func addrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return binary.BigEndian.Uint32(b[:])
}

func uint32ToAddr(v uint32) netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return netip.AddrFrom4(b)
}
