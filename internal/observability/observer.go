// Package observability wires the core handler's Observer interface to
// structured logging and Prometheus metrics — the ambient concerns the
// core deliberately does not know about.
package observability

import (
	"log/slog"
	"net"

	"github.com/quietsubnet/dhcpd/internal/dhcp"
	"github.com/quietsubnet/dhcpd/internal/metrics"
)

// LoggingObserver implements dhcp.Observer by logging each event. Pool
// exhaustion and drops also increment their Prometheus counters; offers,
// acks and naks are only logged here.
type LoggingObserver struct {
	Logger *slog.Logger
}

func (o LoggingObserver) OnOffer(clientHostName string, offered net.IP) {
	o.Logger.Info("offer", "host", clientHostName, "addr", offered.String())
}

func (o LoggingObserver) OnAck(clientHostName string, assigned net.IP) {
	o.Logger.Info("ack", "host", clientHostName, "addr", assigned.String())
}

func (o LoggingObserver) OnNak(clientHostName string, previousOrUnknown net.IP) {
	addr := "unknown"
	if previousOrUnknown != nil {
		addr = previousOrUnknown.String()
	}
	o.Logger.Info("nak", "host", clientHostName, "previous_addr", addr)
}

func (o LoggingObserver) OnPoolExhausted() {
	metrics.PoolExhausted.Inc()
	o.Logger.Warn("pool exhausted")
}

func (o LoggingObserver) OnDrop(reason dhcp.DropReason) {
	metrics.PacketsDropped.WithLabelValues(string(reason)).Inc()
	o.Logger.Debug("dropped datagram", "reason", string(reason))
}
