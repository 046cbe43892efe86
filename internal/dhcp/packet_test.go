package dhcp

import (
	"net"
	"testing"

	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// buildTestDiscover builds a minimal DHCPDISCOVER packet for testing.
func buildTestDiscover(chaddr [6]byte, xid uint32) []byte {
	pkt := make([]byte, dhcpv4.MinPacketSize+4)
	pkt[0] = byte(dhcpv4.OpCodeBootRequest)
	pkt[1] = byte(dhcpv4.HardwareTypeEthernet)
	pkt[2] = 6 // HLen
	pkt[3] = 0 // Hops

	pkt[4] = byte(xid >> 24)
	pkt[5] = byte(xid >> 16)
	pkt[6] = byte(xid >> 8)
	pkt[7] = byte(xid)

	copy(pkt[28:34], chaddr[:])

	copy(pkt[236:240], dhcpv4.MagicCookie[:])

	pkt[240] = byte(dhcpv4.OptionDHCPMessageType)
	pkt[241] = 1
	pkt[242] = byte(dhcpv4.MessageTypeDiscover)
	pkt[243] = byte(dhcpv4.OptionEnd)

	return pkt
}

func TestDecodePacket(t *testing.T) {
	mac := [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	data := buildTestDiscover(mac, 0xDEADBEEF)

	pkt, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("DecodePacket error: %v", err)
	}

	if pkt.Op != dhcpv4.OpCodeBootRequest {
		t.Errorf("Op = %d, want %d", pkt.Op, dhcpv4.OpCodeBootRequest)
	}
	if pkt.HType != dhcpv4.HardwareTypeEthernet {
		t.Errorf("HType = %d, want %d", pkt.HType, dhcpv4.HardwareTypeEthernet)
	}
	if pkt.HLen != 6 {
		t.Errorf("HLen = %d, want 6", pkt.HLen)
	}
	if pkt.XID != 0xDEADBEEF {
		t.Errorf("XID = 0x%08X, want 0xDEADBEEF", pkt.XID)
	}
	if [6]byte(pkt.CHAddr[:6]) != mac {
		t.Errorf("CHAddr = %v, want %v", pkt.CHAddr[:6], mac)
	}
	if pkt.MessageType() != dhcpv4.MessageTypeDiscover {
		t.Errorf("MessageType = %d, want DISCOVER(%d)", pkt.MessageType(), dhcpv4.MessageTypeDiscover)
	}
}

func TestDecodePacketTooShort(t *testing.T) {
	data := make([]byte, 100)
	_, err := DecodePacket(data)
	if err == nil {
		t.Error("expected error for short packet, got nil")
	}
}

func TestDecodePacketWrongOp(t *testing.T) {
	data := make([]byte, dhcpv4.MinPacketSize)
	data[0] = byte(dhcpv4.OpCodeBootReply) // wrong op for a request
	copy(data[236:240], dhcpv4.MagicCookie[:])

	_, err := DecodePacket(data)
	if err == nil {
		t.Error("expected error for non-BOOTREQUEST op, got nil")
	}
}

func TestDecodePacketBadMagicCookie(t *testing.T) {
	data := make([]byte, dhcpv4.MinPacketSize)
	data[0] = byte(dhcpv4.OpCodeBootRequest)
	data[1] = 1
	data[2] = 6
	data[236] = 0xFF
	data[237] = 0xFF
	data[238] = 0xFF
	data[239] = 0xFF

	_, err := DecodePacket(data)
	if err == nil {
		t.Error("expected error for bad magic cookie, got nil")
	}
}

func TestPacketMessageType(t *testing.T) {
	tests := []struct {
		name    string
		msgType dhcpv4.MessageType
	}{
		{"Discover", dhcpv4.MessageTypeDiscover},
		{"Offer", dhcpv4.MessageTypeOffer},
		{"Request", dhcpv4.MessageTypeRequest},
		{"Ack", dhcpv4.MessageTypeAck},
		{"Nak", dhcpv4.MessageTypeNak},
		{"Release", dhcpv4.MessageTypeRelease},
		{"Decline", dhcpv4.MessageTypeDecline},
		{"Inform", dhcpv4.MessageTypeInform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkt := &Packet{
				Options: Options{
					dhcpv4.OptionDHCPMessageType: {byte(tt.msgType)},
				},
			}
			if got := pkt.MessageType(); got != tt.msgType {
				t.Errorf("MessageType() = %d, want %d", got, tt.msgType)
			}
		})
	}
}

func TestPacketIsBroadcast(t *testing.T) {
	pkt := &Packet{Flags: 0x8000}
	if !pkt.IsBroadcast() {
		t.Error("expected IsBroadcast() = true")
	}
	pkt.Flags = 0x0000
	if pkt.IsBroadcast() {
		t.Error("expected IsBroadcast() = false")
	}
}

func TestPacketIsRelayed(t *testing.T) {
	pkt := &Packet{GIAddr: net.IPv4(192, 168, 1, 1)}
	if !pkt.IsRelayed() {
		t.Error("expected IsRelayed() = true")
	}
	pkt.GIAddr = net.IPv4zero
	if pkt.IsRelayed() {
		t.Error("expected IsRelayed() = false")
	}
}

func TestPacketRequestedIP(t *testing.T) {
	pkt := &Packet{
		Options: Options{
			dhcpv4.OptionRequestedIP: {192, 168, 1, 100},
		},
	}
	got := pkt.RequestedIP()
	if !got.Equal(net.IPv4(192, 168, 1, 100)) {
		t.Errorf("RequestedIP() = %s, want 192.168.1.100", got)
	}

	pkt2 := &Packet{Options: Options{}}
	if got := pkt2.RequestedIP(); got != nil {
		t.Errorf("RequestedIP() = %s, want nil", got)
	}
}

func TestPacketHostname(t *testing.T) {
	pkt := &Packet{
		Options: Options{
			dhcpv4.OptionHostname: []byte("myhost"),
		},
	}
	if got := pkt.Hostname(); got != "myhost" {
		t.Errorf("Hostname() = %q, want %q", got, "myhost")
	}
}

func TestPacketClientIdentifierFallsBackToCHAddr(t *testing.T) {
	pkt := &Packet{
		CHAddr:  [16]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Options: Options{},
	}
	id := pkt.ClientIdentifier()
	if len(id) != 16 {
		t.Fatalf("ClientIdentifier() length = %d, want 16", len(id))
	}
	for i, b := range pkt.CHAddr {
		if id[i] != b {
			t.Errorf("ClientIdentifier()[%d] = %x, want %x", i, id[i], b)
		}
	}
}

func TestPacketClientIdentifierPrefersOption61(t *testing.T) {
	pkt := &Packet{
		CHAddr: [16]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
		Options: Options{
			dhcpv4.OptionClientIdentifier: {0x01, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66},
		},
	}
	id := pkt.ClientIdentifier()
	want := []byte{0x01, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
	if len(id) != len(want) {
		t.Fatalf("ClientIdentifier() = %v, want %v", id, want)
	}
	for i := range want {
		if id[i] != want[i] {
			t.Errorf("ClientIdentifier()[%d] = %x, want %x", i, id[i], want[i])
		}
	}
}
