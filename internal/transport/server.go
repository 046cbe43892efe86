// Package transport owns the UDP socket: binding it with the broadcast
// and address-reuse options a DHCP server needs, running the single
// read loop, and handing decoded requests to the handler.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/quietsubnet/dhcpd/internal/dhcp"
	"github.com/quietsubnet/dhcpd/internal/metrics"
	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// soBindToDevice pins the socket to a specific interface (Linux only,
// value 25). The setsockopt call fails harmlessly on other platforms.
const soBindToDevice = 25

// Server binds the configured address and runs the single-threaded read
// loop described in the concurrency model: one goroutine owns the socket
// and the handler's binding store, so no locking is required anywhere in
// the request path.
type Server struct {
	conn    *net.UDPConn
	handler *dhcp.Handler
	logger  *slog.Logger
	addr    string
	iface   string
}

// NewServer builds a Server. addr is the local bind address (host:port or
// :67); iface, if non-empty, pins the socket to that interface.
func NewServer(handler *dhcp.Handler, iface, addr string, logger *slog.Logger) *Server {
	if addr == "" {
		addr = fmt.Sprintf(":%d", dhcpv4.ServerPort)
	}
	return &Server{handler: handler, logger: logger, addr: addr, iface: iface}
}

// Start binds the socket. It does not run the read loop — call Serve for
// that, typically from the caller's main goroutine so shutdown ordering
// stays simple.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var firstErr error
			ctlErr := c.Control(func(fd uintptr) {
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
					firstErr = err
					return
				}
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1); err != nil {
					firstErr = err
					return
				}
				if s.iface != "" {
					if err := syscall.SetsockoptString(int(fd), syscall.SOL_SOCKET, soBindToDevice, s.iface); err != nil {
						s.logger.Debug("SO_BINDTODEVICE not available", "interface", s.iface, "error", err)
					}
				}
			})
			if ctlErr != nil {
				return ctlErr
			}
			return firstErr
		},
	}

	pc, err := lc.ListenPacket(ctx, "udp4", s.addr)
	if err != nil {
		return dhcp.NewFatalError(dhcp.KindBindFailed, err)
	}
	s.conn = pc.(*net.UDPConn)
	s.logger.Info("dhcp server listening", "address", s.addr, "interface", s.iface)
	return nil
}

// Serve runs the read loop until the socket is closed (clean shutdown) or
// a receive error other than a closed/interrupted socket occurs (fatal).
func (s *Server) Serve() error {
	buf := make([]byte, dhcpv4.MaxPacketSize)
	for {
		n, src, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("dhcp server stopped")
				return nil
			}
			var sysErr *net.OpError
			if errors.As(err, &sysErr) && sysErr.Temporary() {
				continue
			}
			return dhcp.NewFatalError(dhcp.KindReceiveFailed, err)
		}

		s.processDatagram(buf[:n], src)
	}
}

func (s *Server) processDatagram(data []byte, src *net.UDPAddr) {
	req, err := dhcp.DecodePacket(data)
	if err != nil {
		metrics.PacketsDropped.WithLabelValues("decode-error").Inc()
		s.logger.Debug("dropping malformed datagram", "error", err, "src", src.String())
		return
	}

	metrics.PacketsReceived.WithLabelValues(req.MessageType().String()).Inc()
	start := time.Now()
	reply, dest, ok := s.handler.Handle(req)
	metrics.ProcessingDuration.WithLabelValues(req.MessageType().String()).Observe(time.Since(start).Seconds())
	metrics.BindingsTotal.Set(float64(s.handler.BindingCount()))
	if !ok {
		return
	}

	replyBytes := reply.Encode()
	udpDest := &net.UDPAddr{IP: dest.IP, Port: dest.Port}
	if _, err := s.conn.WriteToUDP(replyBytes, udpDest); err != nil {
		metrics.PacketsDropped.WithLabelValues("send-error").Inc()
		s.logger.Warn("sending reply", "error", err, "dst", udpDest.String())
		return
	}
	metrics.PacketsSent.WithLabelValues(reply.MsgType.String()).Inc()
}

// Stop closes the socket, unblocking Serve's read with net.ErrClosed.
func (s *Server) Stop() {
	if s.conn != nil {
		s.conn.Close()
	}
}
