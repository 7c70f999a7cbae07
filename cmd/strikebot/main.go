package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alejandrodnm/strikebot/config"
	"github.com/alejandrodnm/strikebot/internal/adapters/binance"
	"github.com/alejandrodnm/strikebot/internal/adapters/kalshi"
	"github.com/alejandrodnm/strikebot/internal/adapters/notify"
	"github.com/alejandrodnm/strikebot/internal/adapters/polymarket"
	"github.com/alejandrodnm/strikebot/internal/adapters/storage"
	"github.com/alejandrodnm/strikebot/internal/engine"
	"github.com/alejandrodnm/strikebot/internal/ports"
	"github.com/alejandrodnm/strikebot/internal/server"
	"github.com/alejandrodnm/strikebot/internal/server/ws"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	scan := flag.Bool("scan", false, "run one arbitrage scan and exit")
	report := flag.Bool("report", false, "print per-series history stats and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("strikebot starting",
		"config", *configPath,
		"tick", cfg.TickInterval(),
		"policy", cfg.Policy(),
		"series", len(cfg.Series),
		"scan", *scan,
		"report", *report,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	polyClient := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)
	provider := polymarket.NewProvider(polyClient)
	var notifier ports.Notifier = notify.NewConsole()

	if *report {
		runReport(ctx, cfg, notifier)
		return
	}

	arbSvc := engine.NewArbService(
		polymarket.NewReferenceProvider(
			provider,
			binance.NewClient(cfg.API.BinanceBase, cfg.API.BinanceSymbol),
			polymarket.SeriesHourly,
		),
		kalshi.NewClient(cfg.API.KalshiBase, cfg.API.KalshiSeries),
	)

	if *scan {
		runScan(ctx, arbSvc, notifier)
		return
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.ApplySchema(ctx); err != nil {
		slog.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}

	hub := ws.NewHub()

	drivers := make(map[string]*engine.Driver, len(cfg.Series))
	for _, sc := range cfg.Series {
		d := engine.New(engine.Config{
			Series:       sc.Name,
			TickInterval: cfg.TickInterval(),
			SeedBalance:  cfg.Simulator.SeedBalance,
			Policy:       cfg.Policy(),
			Controller:   cfg.Controller(),
			WindowSize:   cfg.Simulator.WindowSize,
		}, provider, store)
		d.OnState(func(st engine.State) {
			hub.Broadcast("simulation", server.SimulationPayload(st))
		})
		drivers[sc.Name] = d
	}

	srv := server.NewServer(
		server.Config{Port: cfg.Server.Port, CORSOrigins: cfg.Server.CORSOrigins},
		server.NewSimHandler(drivers, cfg.DefaultSeries()),
		server.NewArbHandler(arbSvc),
		hub,
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()

	for _, d := range drivers {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Start(); err != nil {
			slog.Error("server exited with error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown error", "err", err)
	}

	wg.Wait()
	slog.Info("strikebot stopped cleanly")
}

// runScan executes a single arbitrage scan cycle and prints the report.
func runScan(ctx context.Context, svc *engine.ArbService, notifier ports.Notifier) {
	report, err := svc.Scan(ctx)
	if err != nil {
		slog.Error("scan failed", "err", err)
		os.Exit(1)
	}
	if err := notifier.Notify(ctx, *report); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// runReport prints the aggregated per-series history from storage.
func runReport(ctx context.Context, cfg *config.Config, notifier ports.Notifier) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.ApplySchema(ctx); err != nil {
		slog.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}

	stats, err := store.GetSeriesStats(ctx)
	if err != nil {
		slog.Error("failed to read stats", "err", err)
		os.Exit(1)
	}
	notifier.PrintStats(stats)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
