package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/quotelab/stockplay/internal/config"
	"github.com/quotelab/stockplay/internal/database"
	"github.com/quotelab/stockplay/internal/engine"
	"github.com/quotelab/stockplay/internal/executor"
	"github.com/quotelab/stockplay/internal/ledger"
	"github.com/quotelab/stockplay/internal/model"
	"github.com/quotelab/stockplay/internal/quote"
	"github.com/quotelab/stockplay/internal/refresher"
	"github.com/quotelab/stockplay/internal/report"
	"github.com/quotelab/stockplay/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/stockplay.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting stockplayd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.URL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected")

	store := ledger.NewPostgresStore(pool)

	// Quote client and cache
	client := quote.NewClient(
		cfg.API.URL,
		cfg.API.Key,
		quote.WithTimeout(cfg.API.Timeout),
		quote.WithRateLimit(cfg.API.RatePerMinute),
		quote.WithLogger(logger),
	)
	cache := quote.NewCache(store, client, logger)

	// Trade engine and report builder
	eng := engine.New(engine.Config{
		StartBalanceCents: cfg.Game.StartBalanceDollars * 100,
		TradeFreshness:    cfg.Game.TradeFreshness,
	}, store, cache, logger)

	builder := report.NewBuilder(report.Config{
		ReportFreshness: cfg.Game.ReportFreshness,
	}, store, cache, logger)

	// Console notifier stands in for the chat layer.
	notify := executor.NotifierFunc(func(replyTo, text string) {
		fmt.Printf("[%s] %s\n", replyTo, text)
	})

	execCfg := executor.DefaultConfig()
	execCfg.IdleWait = cfg.Game.IdleWait
	execCfg.HousekeepingInterval = cfg.Game.HousekeepingInterval
	execCfg.MidnightOffset = cfg.Game.MidnightOffset
	exec := executor.New(execCfg, eng, builder, store, notify, logger)

	refrCfg := refresher.DefaultConfig()
	refrCfg.Interval = cfg.Game.RefreshInterval
	refr := refresher.New(refrCfg, store, cache, logger)

	if err := exec.Start(ctx); err != nil {
		logger.Error("failed to start executor", "error", err)
		os.Exit(1)
	}
	if err := refr.Start(ctx); err != nil {
		logger.Error("failed to start refresher", "error", err)
		os.Exit(1)
	}

	go readCommands(exec, cancel, logger)

	logger.Info("stockplayd running")
	<-ctx.Done()

	// Graceful shutdown
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := refr.Stop(stopCtx); err != nil {
		logger.Warn("refresher stop failed", "error", err)
	}
	if err := exec.Stop(stopCtx); err != nil {
		logger.Warn("executor stop failed", "error", err)
	}

	logger.Info("stockplayd stopped")
}

// readCommands serves a line-oriented front end on stdin:
//
//	buy <nick> <count> <symbol>
//	sell <nick> <count> <symbol>
//	port <nick> [full]
//	quit
func readCommands(exec *executor.Executor, quit context.CancelFunc, logger *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch cmd := fields[0]; cmd {
		case "buy", "sell":
			err = submitTrade(exec, cmd, fields[1:])
		case "port":
			err = submitReport(exec, fields[1:])
		case "quit":
			quit()
			return
		default:
			err = fmt.Errorf("unknown command %q", cmd)
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("stdin read failed", "error", err)
	}
}

func submitTrade(exec *executor.Executor, cmd string, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: %s <nick> <count> <symbol>", cmd)
	}
	count, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad count %q", args[1])
	}
	side := model.Buy
	if cmd == "sell" {
		side = model.Sell
	}
	return exec.SubmitTrade(model.TradeRequest{
		Nick:    args[0],
		Side:    side,
		Symbol:  args[2],
		Count:   count,
		ReplyTo: "console",
	})
}

func submitReport(exec *executor.Executor, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: port <nick> [full]")
	}
	full := len(args) == 2 && args[1] == "full"
	return exec.SubmitReport(model.ReportRequest{
		Nick:      args[0],
		Requester: args[0],
		ReplyTo:   "console",
		Full:      full,
	})
}
