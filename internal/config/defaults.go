package config

// Default configuration values.
const (
	DefaultInterface    = ""
	DefaultLogLevel     = "info"
	DefaultServerName   = "dhcpd"
	DefaultLeaseSeconds = 3600
	DefaultMetricsAddr  = "127.0.0.1:9090"
)
