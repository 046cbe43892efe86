package dhcpv4

import (
	"encoding/binary"
	"net"
)

// IPToBytes converts a net.IP to its 4-byte network-order wire form.
func IPToBytes(ip net.IP) []byte {
	ip4 := ip.To4()
	if ip4 == nil {
		return []byte{0, 0, 0, 0}
	}
	return []byte(ip4)
}

// BytesToIP converts a 4-byte network-order wire form to a net.IP.
func BytesToIP(b []byte) net.IP {
	if len(b) != 4 {
		return nil
	}
	return net.IPv4(b[0], b[1], b[2], b[3])
}

// Uint32ToBytes converts a uint32 to 4 bytes (big-endian).
func Uint32ToBytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// IPToValue converts a 4-byte network-order address into the 32-bit
// host-natural integer form used for pool arithmetic (min/max/next).
// The four bytes are read big-endian (the byte reversal a network-to-host
// conversion performs on a little-endian host): network-order byte 0 (the
// most significant octet, e.g. 192 in 192.168.1.1) becomes the most
// significant byte of the returned value, matching the reading a human
// gives an IPv4 address.
func IPToValue(ip net.IP) uint32 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip4)
}

// ValueToIP is the inverse of IPToValue.
func ValueToIP(v uint32) net.IP {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return net.IPv4(b[0], b[1], b[2], b[3])
}
