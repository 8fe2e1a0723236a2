package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/predictpark/predictpark/internal/marketfeed"
	"github.com/predictpark/predictpark/internal/metrics"
	"github.com/predictpark/predictpark/internal/server"
	"github.com/predictpark/predictpark/pkg/config"
	"github.com/predictpark/predictpark/pkg/logger"
	"github.com/predictpark/predictpark/pkg/shutdown"
)

func main() {
	// .env 可选，缺失时只用真实环境变量
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	var (
		configPath  = flag.String("config", os.Getenv("PREDICTPARK_CONFIG"), "config file (yaml/json)")
		listenAddr  = flag.String("listen", "", "HTTP listen address (overrides config)")
		metricsAddr = flag.String("metrics-listen", "", "expvar/pprof listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *listenAddr != "" {
		cfg.Server.Listen = *listenAddr
	}
	if *metricsAddr != "" {
		cfg.Server.MetricsListen = *metricsAddr
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		OutputFile: cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
		Console:    true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}

	srv, err := server.New(server.Config{
		Source:             marketfeed.NewMockSource(),
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
		Metrics:            metrics.NewRegistry(),
	})
	if err != nil {
		logger.Errorf("init server failed: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sm := shutdown.NewManager()
	sm.OnClose("logger", logger.Close)

	if cfg.Server.MetricsListen != "" {
		if _, err := metrics.StartAsync(ctx, cfg.Server.MetricsListen); err != nil {
			logger.Warnf("debug server not started: %v", err)
		}
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	sm.OnShutdown("http", httpSrv.Shutdown)

	go func() {
		logger.Infof("%s market provider listening on %s", cfg.Site.Name, cfg.Server.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("http server error: %v", err)
			cancel()
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	select {
	case <-stopCh:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = sm.Shutdown(shutdownCtx)

	fmt.Println("server stopped")
}
