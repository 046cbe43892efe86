// dhcpd — a minimal single-subnet DHCPv4 server conforming to RFC 2131 /
// RFC 2132.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	nethttp "net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quietsubnet/dhcpd/internal/config"
	"github.com/quietsubnet/dhcpd/internal/dhcp"
	"github.com/quietsubnet/dhcpd/internal/lifecycle"
	"github.com/quietsubnet/dhcpd/internal/logging"
	"github.com/quietsubnet/dhcpd/internal/netiface"
	"github.com/quietsubnet/dhcpd/internal/observability"
	"github.com/quietsubnet/dhcpd/internal/transport"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "/etc/dhcpd/config.toml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return 1
	}

	logger := logging.Setup(cfg.Server.LogLevel, os.Stdout)

	pool, err := cfg.Validate()
	if err != nil {
		fatal := dhcp.NewFatalError(dhcp.KindMalformedConfig, err)
		logger.Error("malformed config", "error", fatal)
		return 1
	}

	selfHost, err := os.Hostname()
	if err != nil {
		logger.Warn("could not determine own hostname; self-match guard disabled", "error", err)
		selfHost = ""
	}

	if cfg.Server.Interface != "" {
		if ip, err := netiface.IPv4Addr(cfg.Server.Interface); err != nil {
			logger.Warn("could not resolve interface address", "interface", cfg.Server.Interface, "error", err)
		} else {
			logger.Info("interface resolved", "interface", cfg.Server.Interface, "address", ip.String())
		}
	}

	handler := dhcp.NewHandler(dhcp.Config{
		ServerAddr:   pool.ServerAddr,
		Mask:         pool.Mask,
		Min:          pool.Min,
		Max:          pool.Max,
		ServerName:   cfg.Server.ServerName,
		LeaseSeconds: cfg.Server.LeaseSeconds,
		SelfHostName: selfHost,
	}, observability.LoggingObserver{Logger: logger})

	if cfg.Server.MetricsAddr != "" {
		go serveMetrics(cfg.Server.MetricsAddr, logger)
	}

	srv := transport.NewServer(handler, cfg.Server.Interface, cfg.Server.BindAddress, logger)

	ctx := context.Background()
	if err := srv.Start(ctx); err != nil {
		logger.Error("starting server", "error", err)
		return exitCodeFor(err)
	}

	stop := lifecycle.NotifyShutdown(func(sig os.Signal) {
		logger.Info("shutting down", "signal", sig.String())
		srv.Stop()
	})
	defer stop()

	if err := srv.Serve(); err != nil {
		logger.Error("server terminated", "error", err)
		return exitCodeFor(err)
	}
	return 0
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := nethttp.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", "error", err)
	}
}

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
