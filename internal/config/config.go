// Package config handles TOML configuration parsing and validation for
// dhcpd's single subnet pool.
package config

import (
	"fmt"
	"net"

	"github.com/BurntSushi/toml"

	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// Config is the top-level configuration for dhcpd.
type Config struct {
	Server ServerConfig `toml:"server"`
}

// ServerConfig holds the server and subnet-pool settings recognized by
// this server.
type ServerConfig struct {
	Interface    string `toml:"interface"`
	BindAddress  string `toml:"bind_address"`
	ServerAddr   string `toml:"server_addr"`
	Mask         string `toml:"mask"`
	MinAddr      string `toml:"min_addr"`
	MaxAddr      string `toml:"max_addr"`
	ServerName   string `toml:"server_name"`
	LeaseSeconds uint32 `toml:"lease_seconds"`
	LogLevel     string `toml:"log_level"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// Load reads and parses a TOML configuration file, applying defaults for
// the interface, log level, server name, lease seconds and metrics address
// when left unset. It does not call Validate.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Interface == "" {
		cfg.Server.Interface = DefaultInterface
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = DefaultLogLevel
	}
	if cfg.Server.ServerName == "" {
		cfg.Server.ServerName = DefaultServerName
	}
	if cfg.Server.LeaseSeconds == 0 {
		cfg.Server.LeaseSeconds = DefaultLeaseSeconds
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = DefaultMetricsAddr
	}
}

// Pool is the parsed, validated subnet-pool configuration ready to build a
// dhcp.Handler from.
type Pool struct {
	ServerAddr net.IP
	Mask       net.IP
	Min        net.IP
	Max        net.IP
}

// Validate parses the address fields, derives min/max from server_addr &
// mask when not explicitly overridden, and enforces the pool invariant
// min_value ≤ server_value ≤ max_value.
func (c *Config) Validate() (*Pool, error) {
	serverAddr := net.ParseIP(c.Server.ServerAddr).To4()
	if serverAddr == nil {
		return nil, fmt.Errorf("malformed-config: server_addr %q is not a valid IPv4 address", c.Server.ServerAddr)
	}
	mask := net.ParseIP(c.Server.Mask).To4()
	if mask == nil {
		return nil, fmt.Errorf("malformed-config: mask %q is not a valid IPv4 address", c.Server.Mask)
	}

	serverValue := dhcpv4.IPToValue(serverAddr)
	maskValue := dhcpv4.IPToValue(mask)
	netBase := serverValue & maskValue

	minValue := netBase | 2
	if c.Server.MinAddr != "" {
		min := net.ParseIP(c.Server.MinAddr).To4()
		if min == nil {
			return nil, fmt.Errorf("malformed-config: min_addr %q is not a valid IPv4 address", c.Server.MinAddr)
		}
		minValue = dhcpv4.IPToValue(min)
	}

	maxValue := (netBase | ^maskValue) &^ 1
	if c.Server.MaxAddr != "" {
		max := net.ParseIP(c.Server.MaxAddr).To4()
		if max == nil {
			return nil, fmt.Errorf("malformed-config: max_addr %q is not a valid IPv4 address", c.Server.MaxAddr)
		}
		maxValue = dhcpv4.IPToValue(max)
	}

	if minValue > maxValue {
		return nil, fmt.Errorf("malformed-config: min_addr (%s) is greater than max_addr (%s)",
			dhcpv4.ValueToIP(minValue), dhcpv4.ValueToIP(maxValue))
	}
	if serverValue < minValue || serverValue > maxValue {
		return nil, fmt.Errorf("malformed-config: server_addr %s falls outside [%s, %s]",
			serverAddr, dhcpv4.ValueToIP(minValue), dhcpv4.ValueToIP(maxValue))
	}

	return &Pool{
		ServerAddr: serverAddr,
		Mask:       mask,
		Min:        dhcpv4.ValueToIP(minValue),
		Max:        dhcpv4.ValueToIP(maxValue),
	}, nil
}
