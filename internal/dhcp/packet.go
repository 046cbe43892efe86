// Package dhcp implements the DHCPv4 message engine: wire codec, binding
// store, address allocator, and message-type dispatch (RFC 2131 / RFC 2132).
package dhcp

import (
	"encoding/binary"
	"fmt"
	"net"

	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// Packet represents a decoded DHCPv4 packet (RFC 2131 §2).
type Packet struct {
	Op      dhcpv4.OpCode
	HType   dhcpv4.HardwareType
	HLen    byte
	Hops    byte
	XID     uint32
	Secs    uint16
	Flags   uint16
	CIAddr  net.IP
	YIAddr  net.IP
	SIAddr  net.IP
	GIAddr  net.IP
	CHAddr  [16]byte // full chaddr field; the client identifier falls back to
	// these 16 bytes verbatim when option 61 is absent, so it must not be
	// trimmed to HLen.
	SName   [64]byte
	File    [128]byte
	Options Options
}

// DecodePacket parses a raw DHCPv4 datagram. Validation happens in the
// order RFC 2131 implies a real client would notice trouble: size first,
// then the op code, then the magic cookie. Any failure is reported as a
// plain error; the caller drops the datagram without a reply.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < dhcpv4.MinPacketSize {
		return nil, fmt.Errorf("packet too short: %d bytes (minimum %d)", len(data), dhcpv4.MinPacketSize)
	}

	p := &Packet{}
	p.Op = dhcpv4.OpCode(data[0])
	if p.Op != dhcpv4.OpCodeBootRequest {
		return nil, fmt.Errorf("unexpected op code %d: want BOOTREQUEST", p.Op)
	}

	cookie := data[dhcpv4.FixedHeaderSize : dhcpv4.FixedHeaderSize+4]
	if cookie[0] != dhcpv4.MagicCookie[0] || cookie[1] != dhcpv4.MagicCookie[1] ||
		cookie[2] != dhcpv4.MagicCookie[2] || cookie[3] != dhcpv4.MagicCookie[3] {
		return nil, fmt.Errorf("invalid magic cookie: %v", cookie)
	}

	p.HType = dhcpv4.HardwareType(data[1])
	p.HLen = data[2]
	p.Hops = data[3]
	p.XID = binary.BigEndian.Uint32(data[4:8])
	p.Secs = binary.BigEndian.Uint16(data[8:10])
	p.Flags = binary.BigEndian.Uint16(data[10:12])
	p.CIAddr = dhcpv4.BytesToIP(data[12:16])
	p.YIAddr = dhcpv4.BytesToIP(data[16:20])
	p.SIAddr = dhcpv4.BytesToIP(data[20:24])
	p.GIAddr = dhcpv4.BytesToIP(data[24:28])
	copy(p.CHAddr[:], data[28:44])
	copy(p.SName[:], data[44:108])
	copy(p.File[:], data[108:236])

	opts, err := DecodeOptions(data[dhcpv4.MinPacketSize:])
	if err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	p.Options = opts

	return p, nil
}

// MessageType returns the DHCP message type carried in option 53, or 0 if
// absent or malformed.
func (p *Packet) MessageType() dhcpv4.MessageType {
	if data, ok := p.Options[dhcpv4.OptionDHCPMessageType]; ok && len(data) == 1 {
		return dhcpv4.MessageType(data[0])
	}
	return 0
}

// RequestedIP returns the requested IP address from option 50, or nil.
func (p *Packet) RequestedIP() net.IP {
	if data, ok := p.Options[dhcpv4.OptionRequestedIP]; ok && len(data) == 4 {
		return dhcpv4.BytesToIP(data)
	}
	return nil
}

// ServerIdentifier returns the server identifier from option 54, or nil.
func (p *Packet) ServerIdentifier() net.IP {
	if data, ok := p.Options[dhcpv4.OptionServerIdentifier]; ok && len(data) == 4 {
		return dhcpv4.BytesToIP(data)
	}
	return nil
}

// HasServerIdentifier reports whether option 54 is present at all,
// independent of its value — the REQUEST sub-case split hinges on presence,
// not just on a parsed address.
func (p *Packet) HasServerIdentifier() bool {
	return p.Options.Has(dhcpv4.OptionServerIdentifier)
}

// ClientIdentifier returns the client identifier: option 61's raw bytes if
// present, otherwise the packet's 16-byte chaddr field.
func (p *Packet) ClientIdentifier() []byte {
	if data, ok := p.Options[dhcpv4.OptionClientIdentifier]; ok {
		return data
	}
	id := make([]byte, 16)
	copy(id, p.CHAddr[:])
	return id
}

// Hostname returns the decoded value of option 12, capped at 255 bytes of
// data so a null terminator is always available to downstream consumers
// that treat it as a C string.
func (p *Packet) Hostname() string {
	data, ok := p.Options[dhcpv4.OptionHostname]
	if !ok {
		return ""
	}
	if len(data) > 255 {
		data = data[:255]
	}
	return string(data)
}

// IsBroadcast returns true if the broadcast flag is set.
func (p *Packet) IsBroadcast() bool {
	return p.Flags&0x8000 != 0
}

// IsRelayed returns true if the packet arrived via a relay agent (GIAddr
// non-zero).
func (p *Packet) IsRelayed() bool {
	return !p.GIAddr.Equal(net.IPv4zero)
}
