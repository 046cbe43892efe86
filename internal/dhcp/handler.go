package dhcp

import (
	"net"
	"strings"

	"github.com/quietsubnet/dhcpd/pkg/dhcpv4"
)

// Destination describes where and on which port a reply must be sent.
type Destination struct {
	IP   net.IP
	Port int
}

// Config is the immutable subnet-pool configuration a Handler is built
// from. Invariant: Min ≤ ServerValue ≤ Max. NewHandler does not check it;
// config.Validate rejects configurations that break it.
type Config struct {
	ServerAddr   net.IP
	Mask         net.IP
	Min          net.IP
	Max          net.IP
	ServerName   string
	LeaseSeconds uint32
	// SelfHostName is this host's own name, used only for the self-match
	// guard applied to every request — not copied into replies.
	SelfHostName string
}

// Handler implements the DISCOVER/REQUEST/DECLINE/RELEASE/INFORM dispatch
// and reply-destination selection of RFC 2131 §4. All handling is
// per-datagram; the handler keeps no per-client state beyond the binding
// store.
type Handler struct {
	serverValue uint32
	serverAddr  net.IP
	mask        net.IP
	serverName  string
	leaseSecs   uint32
	selfHost    string

	store     *BindingStore
	allocator *Allocator
	observer  Observer
}

// NewHandler builds a Handler from cfg, inserting the reserved server
// self-binding so the allocator never offers the server's own address.
func NewHandler(cfg Config, observer Observer) *Handler {
	if observer == nil {
		observer = NoopObserver{}
	}

	store := NewBindingStore()
	serverValue := dhcpv4.IPToValue(cfg.ServerAddr)
	store.Insert(Binding{AddrValue: serverValue})

	minValue := dhcpv4.IPToValue(cfg.Min)
	maxValue := dhcpv4.IPToValue(cfg.Max)

	return &Handler{
		serverValue: serverValue,
		serverAddr:  cfg.ServerAddr,
		mask:        cfg.Mask,
		serverName:  cfg.ServerName,
		leaseSecs:   cfg.LeaseSeconds,
		selfHost:    cfg.SelfHostName,
		store:       store,
		allocator:   NewAllocator(minValue, maxValue, store),
		observer:    observer,
	}
}

// BindingCount returns the number of bindings currently held, including
// the server's own self-binding. Exported for the transport layer to feed
// into the bindings-total gauge; the handler itself has no metrics import.
func (h *Handler) BindingCount() int {
	return h.store.Len()
}

// Handle processes one decoded request and returns the reply to send, if
// any, along with its destination. ok is false when the datagram is
// dropped without a reply — that is never an error, just silence.
func (h *Handler) Handle(req *Packet) (reply *Reply, dest Destination, ok bool) {
	if h.selfHost != "" && strings.EqualFold(req.Hostname(), h.selfHost) {
		h.observer.OnDrop(DropSelfSent)
		return nil, Destination{}, false
	}

	switch req.MessageType() {
	case dhcpv4.MessageTypeDiscover:
		reply, ok = h.handleDiscover(req)
	case dhcpv4.MessageTypeRequest:
		reply, ok = h.handleRequest(req)
	case dhcpv4.MessageTypeDecline, dhcpv4.MessageTypeRelease, dhcpv4.MessageTypeInform:
		// Accepted but currently no-ops: addresses are never reclaimed and
		// INFORM needs no lease-carrying reply in this server.
		return nil, Destination{}, false
	default:
		h.observer.OnDrop(DropUnexpectedMsgType)
		return nil, Destination{}, false
	}
	if !ok {
		return nil, Destination{}, false
	}

	return reply, h.replyDestination(req, reply), true
}

func (h *Handler) handleDiscover(req *Packet) (*Reply, bool) {
	clientID := req.ClientIdentifier()
	idx := h.store.FindByClientID(clientID)

	var existing *Binding
	if idx != -1 {
		b := h.store.Get(idx)
		existing = &b
	}

	addr, err := h.allocator.Next(existing)
	if err != nil {
		h.observer.OnPoolExhausted()
		return nil, false
	}

	if existing == nil {
		h.store.Insert(Binding{AddrValue: addr, ClientID: clientID})
	}
	h.allocator.Commit(addr)

	yiaddr := dhcpv4.ValueToIP(addr)
	reply := NewReply(req, dhcpv4.MessageTypeOffer, h.serverAddr, h.serverName)
	reply.YIAddr = yiaddr
	reply.LeaseSeconds = h.leaseSecs
	reply.SubnetMask = h.mask

	h.observer.OnOffer(req.Hostname(), yiaddr)
	return reply, true
}

func (h *Handler) handleRequest(req *Packet) (*Reply, bool) {
	clientID := req.ClientIdentifier()
	idx := h.store.FindByClientID(clientID)

	if req.HasServerIdentifier() {
		// Responding to an OFFER (selecting).
		sid := req.ServerIdentifier()
		if sid == nil || !sid.Equal(h.serverAddr) {
			h.observer.OnDrop(DropServerIDMismatch)
			return nil, false
		}
		if !req.CIAddr.Equal(net.IPv4zero) {
			h.observer.OnDrop(DropMalformedRequest)
			return nil, false
		}
		if idx == -1 {
			return h.buildNak(req), true
		}
		return h.buildAck(req, h.store.Get(idx)), true
	}

	// Verify/extend (init-reboot / renewing / rebinding).
	requestedIP := req.RequestedIP()
	initReboot := requestedIP != nil
	renewing := requestedIP == nil && !req.CIAddr.Equal(net.IPv4zero)
	if !initReboot && !renewing {
		h.observer.OnDrop(DropMalformedRequest)
		return nil, false
	}

	if idx == -1 {
		return h.buildNak(req), true
	}
	binding := h.store.Get(idx)
	storedIP := dhcpv4.ValueToIP(binding.AddrValue)
	if (requestedIP != nil && storedIP.Equal(requestedIP)) || storedIP.Equal(req.CIAddr) {
		return h.buildAck(req, binding), true
	}
	return h.buildNak(req), true
}

func (h *Handler) buildAck(req *Packet, binding Binding) *Reply {
	addr := dhcpv4.ValueToIP(binding.AddrValue)
	reply := NewReply(req, dhcpv4.MessageTypeAck, h.serverAddr, h.serverName)
	reply.CIAddr = addr
	reply.YIAddr = addr
	reply.LeaseSeconds = h.leaseSecs
	reply.SubnetMask = h.mask
	h.observer.OnAck(req.Hostname(), addr)
	return reply
}

func (h *Handler) buildNak(req *Packet) *Reply {
	reply := NewReply(req, dhcpv4.MessageTypeNak, h.serverAddr, h.serverName)
	reply.NAK = true
	var prev net.IP
	if idx := h.store.FindByClientID(req.ClientIdentifier()); idx != -1 {
		prev = dhcpv4.ValueToIP(h.store.Get(idx).AddrValue)
	}
	h.observer.OnNak(req.Hostname(), prev)
	return reply
}

// replyDestination implements RFC 2131 §4.1's reply-destination selection.
func (h *Handler) replyDestination(req *Packet, reply *Reply) Destination {
	if req.IsRelayed() {
		reply.SetBroadcastFlag()
		return Destination{IP: req.GIAddr, Port: dhcpv4.ServerPort}
	}
	if reply.MsgType == dhcpv4.MessageTypeNak {
		return Destination{IP: net.IPv4bcast, Port: dhcpv4.ClientPort}
	}
	if !req.CIAddr.Equal(net.IPv4zero) {
		return Destination{IP: req.CIAddr, Port: dhcpv4.ClientPort}
	}
	if req.IsBroadcast() {
		return Destination{IP: net.IPv4bcast, Port: dhcpv4.ClientPort}
	}
	if !reply.YIAddr.Equal(net.IPv4zero) {
		return Destination{IP: reply.YIAddr, Port: dhcpv4.ClientPort}
	}
	return Destination{IP: net.IPv4bcast, Port: dhcpv4.ClientPort}
}
