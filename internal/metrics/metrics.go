// Package metrics defines the Prometheus metrics for dhcpd. All metrics
// use the "dhcpd_" prefix.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dhcpd"

var (
	// PacketsReceived counts datagrams accepted past the wire codec, by
	// message type.
	PacketsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_received_total",
		Help:      "Total DHCP datagrams received, by message type.",
	}, []string{"msg_type"})

	// PacketsSent counts replies actually written to the socket, by
	// message type.
	PacketsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_sent_total",
		Help:      "Total DHCP replies sent, by message type.",
	}, []string{"msg_type"})

	// PacketsDropped counts datagrams dropped without a reply, by reason.
	PacketsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "packets_dropped_total",
		Help:      "Total datagrams dropped without a reply, by reason.",
	}, []string{"reason"})

	// ProcessingDuration tracks per-datagram handling latency.
	ProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "packet_processing_duration_seconds",
		Help:      "Datagram processing duration in seconds.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	}, []string{"msg_type"})

	// PoolExhausted counts pool-exhaustion events surfaced to the
	// observer.
	PoolExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pool_exhausted_total",
		Help:      "Total times a DISCOVER found no free address in the pool.",
	})

	// BindingsTotal is a gauge of bindings currently held, including the
	// server's own self-binding.
	BindingsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bindings_total",
		Help:      "Current number of bindings in the store.",
	})
)
