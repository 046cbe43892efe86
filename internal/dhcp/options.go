package dhcp

import (
	"fmt"

	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// Options is a map of DHCP option code to raw option data.
type Options map[dhcpv4.OptionCode][]byte

// DecodeOptions parses the options section of a DHCP packet.
// RFC 2132 — options are TLV (type-length-value) encoded.
func DecodeOptions(data []byte) (Options, error) {
	opts := make(Options)
	i := 0
	for i < len(data) {
		code := dhcpv4.OptionCode(data[i])
		i++

		// Pad option (RFC 2132 §3.1)
		if code == dhcpv4.OptionPad {
			continue
		}

		// End option (RFC 2132 §3.2)
		if code == dhcpv4.OptionEnd {
			break
		}

		// TLV: need at least 1 byte for length
		if i >= len(data) {
			return nil, fmt.Errorf("truncated option %d: no length byte", code)
		}

		length := int(data[i])
		i++

		if i+length > len(data) {
			return nil, fmt.Errorf("truncated option %d: need %d bytes, have %d", code, length, len(data)-i)
		}

		value := make([]byte, length)
		copy(value, data[i:i+length])
		opts[code] = value
		i += length
	}

	return opts, nil
}

// Has returns true if the option is present.
func (opts Options) Has(code dhcpv4.OptionCode) bool {
	_, ok := opts[code]
	return ok
}
