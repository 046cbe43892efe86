package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	PacketsReceived.WithLabelValues("DHCPDISCOVER").Inc()
	PacketsSent.WithLabelValues("DHCPOFFER").Inc()
	PacketsDropped.WithLabelValues("decode-error").Inc()
	PoolExhausted.Inc()
	BindingsTotal.Set(3)

	if got := testutil.ToFloat64(PoolExhausted); got != 1 {
		t.Errorf("PoolExhausted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(BindingsTotal); got != 3 {
		t.Errorf("BindingsTotal = %v, want 3", got)
	}
}

func TestMetricsNamespace(t *testing.T) {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	for _, mf := range mfs {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") ||
			strings.HasPrefix(name, "process_") ||
			strings.HasPrefix(name, "promhttp_") {
			continue
		}
		if !strings.HasPrefix(name, "dhcpd_") {
			t.Errorf("metric %q does not have dhcpd_ prefix", name)
		}
	}
}
