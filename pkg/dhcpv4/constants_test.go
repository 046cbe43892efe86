package dhcpv4

import "testing"

func TestMessageTypeString(t *testing.T) {
	tests := []struct {
		mt   MessageType
		want string
	}{
		{MessageTypeDiscover, "DHCPDISCOVER"},
		{MessageTypeOffer, "DHCPOFFER"},
		{MessageTypeRequest, "DHCPREQUEST"},
		{MessageTypeDecline, "DHCPDECLINE"},
		{MessageTypeAck, "DHCPACK"},
		{MessageTypeNak, "DHCPNAK"},
		{MessageTypeRelease, "DHCPRELEASE"},
		{MessageTypeInform, "DHCPINFORM"},
		{MessageType(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.mt.String(); got != tt.want {
			t.Errorf("MessageType(%d).String() = %q, want %q", tt.mt, got, tt.want)
		}
	}
}

func TestOptionCodeValues(t *testing.T) {
	tests := []struct {
		code OptionCode
		want byte
	}{
		{OptionPad, 0},
		{OptionSubnetMask, 1},
		{OptionHostname, 12},
		{OptionRequestedIP, 50},
		{OptionIPLeaseTime, 51},
		{OptionDHCPMessageType, 53},
		{OptionServerIdentifier, 54},
		{OptionClientIdentifier, 61},
		{OptionEnd, 255},
	}
	for _, tt := range tests {
		if byte(tt.code) != tt.want {
			t.Errorf("OptionCode %d: got %d, want %d", tt.code, byte(tt.code), tt.want)
		}
	}
}

func TestPacketSizeConstants(t *testing.T) {
	if FixedHeaderSize != 236 {
		t.Errorf("FixedHeaderSize = %d, want 236", FixedHeaderSize)
	}
	if MinPacketSize != 240 {
		t.Errorf("MinPacketSize = %d, want 240", MinPacketSize)
	}
	if ReplySize != 262 {
		t.Errorf("ReplySize = %d, want 262", ReplySize)
	}
	if ServerPort != 67 {
		t.Errorf("ServerPort = %d, want 67", ServerPort)
	}
	if ClientPort != 68 {
		t.Errorf("ClientPort = %d, want 68", ClientPort)
	}
}

func TestMagicCookie(t *testing.T) {
	expected := [4]byte{99, 130, 83, 99}
	if MagicCookie != expected {
		t.Errorf("MagicCookie = %v, want %v", MagicCookie, expected)
	}
}
