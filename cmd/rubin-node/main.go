package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"rubin.dev/node/node"
	"rubin.dev/node/node/addrbook"
	"rubin.dev/node/node/chain"
	"rubin.dev/node/node/txrelay"
)

const tickInterval = 2 * time.Second

type multiStringFlag []string

func (m *multiStringFlag) String() string {
	if m == nil {
		return ""
	}
	return strings.Join(*m, ",")
}

func (m *multiStringFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// noopChannel is the bundled Channel implementation: it has no peers and
// drops every Send. It lets the state engine and relay manager run (and be
// exercised by Tick) without a real transport wired in.
type noopChannel struct{}

func (noopChannel) AvailableConnections() []txrelay.PeerAddr { return nil }
func (noopChannel) Send(txrelay.Command) error               { return nil }

func run(args []string, stdout, stderr io.Writer) int {
	defaults := node.DefaultConfig()
	var peers multiStringFlag

	cfg := defaults
	fs := flag.NewFlagSet("rubin-node", flag.ContinueOnError)
	fs.SetOutput(stderr)

	peerCSV := fs.String("peers", "", "bootstrap peers, comma-separated host:port")
	fs.Var(&peers, "peer", "single bootstrap peer host:port (repeatable)")
	fs.StringVar(&cfg.Network, "network", defaults.Network, "network name (mainnet/testnet/regtest/devnet/signet)")
	fs.StringVar(&cfg.DataDir, "datadir", defaults.DataDir, "node data directory (holds the peer address book; chain state is in-memory)")
	fs.StringVar(&cfg.BindAddr, "bind", defaults.BindAddr, "bind address host:port")
	fs.StringVar(&cfg.LogLevel, "log-level", defaults.LogLevel, "log level: debug|info|warn|error")
	fs.IntVar(&cfg.MaxPeers, "max-peers", defaults.MaxPeers, "max connected peers")
	metricsAddr := fs.String("metrics-addr", "", "address to serve /metrics on (empty disables)")
	dryRun := fs.Bool("dry-run", false, "print effective config and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Peers = node.NormalizePeers(append([]string{*peerCSV}, peers...)...)
	if err := node.ValidateConfig(cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, cfg.LogLevel)

	network, err := chain.ParseNetwork(cfg.Network)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid network: %v\n", err)
		return 2
	}
	chainID, err := chain.ChainID(network)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "chain id derivation failed: %v\n", err)
		return 2
	}

	registry := prometheus.NewRegistry()
	chainMetrics := chain.NewMetrics(registry)
	txMetrics := txrelay.NewMetrics(registry)

	state, err := chain.NewBlockchainState(network, &chain.DefaultValidator{}, chainMetrics)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "chain state init failed: %v\n", err)
		return 2
	}
	txManager := txrelay.NewTransactionManager(logger, txMetrics)

	if err := printConfig(stdout, cfg); err != nil {
		_, _ = fmt.Fprintf(stderr, "config encode failed: %v\n", err)
		return 1
	}
	tip := state.GetActiveChainTip()
	_, _ = fmt.Fprintf(stdout, "chain: network=%s chain_id=%x tip_height=%d tip_hash=%x\n", network, chainID, tip.Height, tip.Hash)
	_, _ = fmt.Fprintf(stdout, "txrelay: cache_size=%d\n", txManager.Size())
	if *dryRun {
		return 0
	}

	book, err := addrbook.Open(cfg.DataDir, fmt.Sprintf("%x", chainID))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "address book open failed: %v\n", err)
		return 1
	}
	defer func() { _ = book.Close() }()
	for _, peer := range cfg.Peers {
		if err := book.Record(peer, time.Now()); err != nil {
			logger.Warn().Err(err).Str("peer", peer).Msg("address book record failed")
		}
	}
	if known, err := book.Addresses(); err == nil {
		logger.Info().Int("known_peers", len(known)).Str("path", book.Path()).Msg("address book loaded")
	}

	var metricsServer *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: *metricsAddr, Handler: mux}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		logger.Info().Str("addr", *metricsAddr).Msg("serving metrics")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channel := noopChannel{}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	_, _ = fmt.Fprintln(stdout, "rubin-node running")
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			txManager.Tick(channel)
		}
	}
	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsServer.Shutdown(shutdownCtx)
		cancel()
	}
	_, _ = fmt.Fprintln(stdout, "rubin-node stopped")
	return 0
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

func printConfig(w io.Writer, cfg node.Config) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg)
}
