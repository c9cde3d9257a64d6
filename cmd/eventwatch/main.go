// eventwatch connects to the scan server's push channel and streams
// decoded events to the console.
// Usage: go run ./cmd/eventwatch --config configs/client.local.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chillbot-io/openlabels-go/cache"
	"github.com/chillbot-io/openlabels-go/config"
	"github.com/chillbot-io/openlabels-go/events"
	"github.com/chillbot-io/openlabels-go/internal/version"
	"github.com/chillbot-io/openlabels-go/page"
)

func main() {
	configPath := flag.String("config", "configs/client.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full event JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	logger.Info("eventwatch starting", "version", version.String())

	// Load config
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Pull side: one snapshot up front so a dead server is obvious
	// before we sit waiting for pushes.
	pullClient := page.NewClient(cfg.Server.BaseURL,
		page.WithTimeout(cfg.Pull.Timeout),
		page.WithRetries(cfg.Pull.MaxRetries, cfg.Pull.RetryBackoff),
		page.WithPageSize(cfg.Pull.PageSize),
		page.WithLogger(logger),
	)
	snapCtx, snapCancel := context.WithTimeout(ctx, cfg.Pull.Timeout)
	stats, err := pullClient.DashboardStats(snapCtx)
	snapCancel()
	if err != nil {
		logger.Warn("dashboard snapshot failed", "error", err)
	} else {
		logger.Info("dashboard snapshot",
			"total_files", stats.TotalFiles,
			"flagged_files", stats.FlaggedFiles,
			"active_scans", stats.ActiveScans,
		)
	}

	// Push side.
	pushURL, err := cfg.PushURL()
	if err != nil {
		logger.Error("failed to derive push URL", "error", err)
		os.Exit(1)
	}
	manager := events.NewManager(events.ManagerConfig{
		URL:                pushURL,
		ReconnectBaseDelay: cfg.Push.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Push.ReconnectMaxDelay,
		HandshakeTimeout:   cfg.Push.HandshakeTimeout,
	}, logger)

	// Keep a cache wired in so its effect counters show up in /metrics.
	store := cache.NewStore()
	sync := cache.NewSynchronizer(store, manager,
		cache.WithLogger(logger),
		cache.WithNotify(func(n cache.Notification) {
			fmt.Printf("[notify] %s: %s\n", n.Kind, n.Message)
		}),
	)
	defer sync.Close()

	printEvent := func(ev events.Event) {
		if *verbose {
			raw, err := json.Marshal(ev)
			if err != nil {
				logger.Error("marshal event", "error", err)
				return
			}
			fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05.000"), ev.EventType(), raw)
			return
		}
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), ev.EventType())
	}

	for _, typ := range []events.Type{
		events.TypeScanProgress,
		events.TypeScanCompleted,
		events.TypeScanFailed,
		events.TypeLabelApplied,
		events.TypeRemediationCompleted,
		events.TypeJobStatus,
		events.TypeHealthUpdate,
		events.TypeFileAccess,
	} {
		manager.Subscribe(typ, printEvent)
	}
	manager.Subscribe(events.TypeConnection, func(ev events.Event) {
		if cc, ok := ev.(events.ConnectionChange); ok {
			fmt.Printf("[%s] connected=%v\n", time.Now().Format("15:04:05.000"), cc.Connected)
		}
	})

	// Metrics endpoint.
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		logger.Info("metrics listening", "addr", metricsSrv.Addr, "path", cfg.Metrics.Path)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	logger.Info("connecting push channel", "url", pushURL)
	manager.Connect()

	<-ctx.Done()

	manager.Disconnect()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown", "error", err)
	}
	logger.Info("eventwatch stopped")
}
