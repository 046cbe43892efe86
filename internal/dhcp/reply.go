package dhcp

import (
	"encoding/binary"
	"net"

	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// Reply is the server's response to a request: a BOOTREPLY whose options
// block has the fixed layout described in §4.1 — cookie, message type,
// lease time, subnet mask, server identifier, END — and nothing else.
// Every Reply encodes to exactly dhcpv4.ReplySize bytes.
type Reply struct {
	HType dhcpv4.HardwareType
	HLen  byte
	XID   uint32
	Flags uint16
	CHAddr [16]byte

	CIAddr net.IP
	YIAddr net.IP
	GIAddr net.IP

	SName string

	MsgType      dhcpv4.MessageType
	ServerID     net.IP
	LeaseSeconds uint32
	SubnetMask   net.IP

	// NAK, when true, zeroes the lease-time and subnet-mask TLVs in the
	// encoded options block (RFC 2131 §4.3.2): their tag bytes become PAD.
	NAK bool
}

// NewReply builds a Reply skeleton from the originating request, copying
// the fields RFC 2131 §4.3.1 requires the server to echo back.
func NewReply(req *Packet, msgType dhcpv4.MessageType, serverID net.IP, serverName string) *Reply {
	return &Reply{
		HType:    req.HType,
		HLen:     req.HLen,
		XID:      req.XID,
		Flags:    req.Flags,
		CHAddr:   req.CHAddr,
		CIAddr:   net.IPv4zero,
		YIAddr:   net.IPv4zero,
		GIAddr:   req.GIAddr,
		SName:    serverName,
		MsgType:  msgType,
		ServerID: serverID,
	}
}

// SetBroadcastFlag sets the reply's broadcast flag, used when relaying
// through a giaddr so the relay agent broadcasts on the target link.
func (r *Reply) SetBroadcastFlag() {
	r.Flags |= 0x8000
}

// Encode serializes the reply to its fixed dhcpv4.ReplySize-byte wire form.
func (r *Reply) Encode() []byte {
	buf := make([]byte, dhcpv4.ReplySize)

	buf[0] = byte(dhcpv4.OpCodeBootReply)
	buf[1] = byte(r.HType)
	buf[2] = r.HLen
	buf[3] = 0 // hops
	binary.BigEndian.PutUint32(buf[4:8], r.XID)
	binary.BigEndian.PutUint16(buf[8:10], 0) // secs
	binary.BigEndian.PutUint16(buf[10:12], r.Flags)
	copy(buf[12:16], dhcpv4.IPToBytes(r.CIAddr))
	copy(buf[16:20], dhcpv4.IPToBytes(r.YIAddr))
	copy(buf[20:24], dhcpv4.IPToBytes(r.ServerID))
	copy(buf[24:28], dhcpv4.IPToBytes(r.GIAddr))
	copy(buf[28:44], r.CHAddr[:])

	name := r.SName
	if len(name) > 63 {
		name = name[:63]
	}
	copy(buf[44:108], []byte(name)) // remainder stays zero: null-terminated

	copy(buf[236:240], dhcpv4.MagicCookie[:])

	i := 240
	i += putTLV(buf[i:], dhcpv4.OptionDHCPMessageType, []byte{byte(r.MsgType)})

	if r.NAK {
		// Zero the lease-time and subnet-mask TLVs: tag byte 0 == PAD.
		i += 6 // leaseTime TLV: tag+len+4 bytes value
		i += 6 // subnetMask TLV: tag+len+4 bytes value
	} else {
		leaseBytes := dhcpv4.Uint32ToBytes(r.LeaseSeconds)
		i += putTLV(buf[i:], dhcpv4.OptionIPLeaseTime, leaseBytes)
		i += putTLV(buf[i:], dhcpv4.OptionSubnetMask, dhcpv4.IPToBytes(r.SubnetMask))
	}

	i += putTLV(buf[i:], dhcpv4.OptionServerIdentifier, dhcpv4.IPToBytes(r.ServerID))
	buf[i] = byte(dhcpv4.OptionEnd)

	return buf
}

// putTLV writes a tag(1) len(1) value(len) option into buf and returns the
// number of bytes written.
func putTLV(buf []byte, code dhcpv4.OptionCode, value []byte) int {
	buf[0] = byte(code)
	buf[1] = byte(len(value))
	copy(buf[2:], value)
	return 2 + len(value)
}
