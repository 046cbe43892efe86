// Package netiface is the host-platform network-interface collaborator:
// it resolves a named interface to its first IPv4 address, so the core
// handler never imports net directly for discovery.
package netiface

import (
	"fmt"
	"net"
)

// IPv4Addr returns the first IPv4 address bound to the named interface.
func IPv4Addr(name string) (net.IP, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("looking up interface %q: %w", name, err)
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("reading addresses for interface %q: %w", name, err)
	}
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		}
		if ip4 := ip.To4(); ip4 != nil {
			return ip4, nil
		}
	}
	return nil, fmt.Errorf("interface %q has no IPv4 address", name)
}
