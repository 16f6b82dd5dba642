package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/opinionbot/config"
	"github.com/alejandrodnm/opinionbot/internal/adapters/notify"
	"github.com/alejandrodnm/opinionbot/internal/adapters/opinion"
	"github.com/alejandrodnm/opinionbot/internal/adapters/orderservice"
	"github.com/alejandrodnm/opinionbot/internal/application/catalog"
	"github.com/alejandrodnm/opinionbot/internal/application/execution"
	"github.com/alejandrodnm/opinionbot/internal/application/orders"
	"github.com/alejandrodnm/opinionbot/internal/metrics"
	"github.com/alejandrodnm/opinionbot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	limit := flag.Int("limit", 0, "topics to load (overrides order.topic_limit)")
	topicType := flag.String("type", "", "topic type: ALL|REGULAR|INDICATOR (overrides order.type_filter)")
	selectExpr := flag.String("select", "", `topics to trade: "all" or "1,3,5-7" (prompts if empty)`)
	amount := flag.Float64("amount", 0, "USDT per order (overrides order.amount_usdt)")
	safeRate := flag.Float64("safe-rate", -1, "apply safe price with this margin, e.g. 0.05 (overrides order.safe_rate)")
	listOnly := flag.Bool("list", false, "load and print the catalog, then exit")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus /metrics on this address (overrides metrics.addr)")
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
	if *limit != 0 {
		cfg.Order.TopicLimit = *limit
	}
	if *topicType != "" {
		cfg.Order.TypeFilter = *topicType
	}
	if *amount != 0 {
		cfg.Order.AmountUSDT = *amount
	}
	if *safeRate >= 0 {
		cfg.Order.SafeRate = *safeRate
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	slog.Info("opinionbot starting",
		"config", *configPath,
		"api_key", config.Redact(cfg.API.Key),
		"signer", cfg.Account.SignerAddress,
		"maker", cfg.Account.MakerAddress,
		"amount_usdt", cfg.QuoteAmount().String(),
		"limit", cfg.Order.TopicLimit,
		"type", cfg.Order.TypeFilter,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	console := notify.NewConsole()
	reporters := []ports.Reporter{console}
	if cfg.Metrics.Addr != "" {
		rec := metrics.NewRecorder()
		reporters = append(reporters, rec)
		go func() {
			if err := rec.Serve(ctx, cfg.Metrics.Addr); err != nil {
				slog.Error("metrics listener failed", "err", err, "addr", cfg.Metrics.Addr)
			}
		}()
	}
	reporter := notify.NewFanout(reporters...)

	s := &session{
		cfg:     cfg,
		console: console,
		loader:  catalog.New(opinion.NewClient(cfg.MarketDataURL(), cfg.API.Key), catalog.WithReporter(reporter)),
		engine: execution.New(
			orders.NewAdapter(orderservice.NewClient(cfg.API.OrderServiceURL, orderservice.Credentials{
				APIKey:        cfg.API.Key,
				SignerAddress: cfg.Account.SignerAddress,
				MakerAddress:  cfg.Account.MakerAddress,
				RPCURL:        cfg.Chain.RPCURL,
				ChainID:       cfg.Chain.ChainID,
			})),
			execution.WithReporter(reporter),
		),
		in:  os.Stdin,
		out: os.Stdout,
	}

	err = s.run(ctx, *selectExpr, *yes, *listOnly)
	if errors.Is(err, errAborted) {
		slog.Info("no orders placed", "reason", err)
		return
	}
	if err != nil {
		slog.Error("opinionbot exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("opinionbot stopped cleanly")
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
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
