package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/predictpark/predictpark/internal/domain"
	"github.com/predictpark/predictpark/internal/feedclient"
	"github.com/predictpark/predictpark/internal/identity"
	"github.com/predictpark/predictpark/internal/journal"
	"github.com/predictpark/predictpark/internal/marketfeed"
	"github.com/predictpark/predictpark/internal/marketquery"
	"github.com/predictpark/predictpark/internal/metrics"
	"github.com/predictpark/predictpark/internal/tui"
	"github.com/predictpark/predictpark/pkg/config"
	"github.com/predictpark/predictpark/pkg/logger"
	"github.com/predictpark/predictpark/pkg/shutdown"
)

var swipeDummy bool

var swipeCmd = &cobra.Command{
	Use:   "swipe",
	Short: "Open the swipe deck",
	Long: `Open the interactive deck. Drag a card with the mouse or use the arrow keys.

Examples:
  predictpark swipe
  predictpark swipe --dummy`,
	RunE: runSwipe,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	swipeCmd.Flags().BoolVar(&swipeDummy, "dummy", false, "use the built-in five-market deck instead of the feed")
}

func runSwipe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 配置错误不退出，交给界面显示阻塞页
	cfg, cfgErr := loadConfig()
	if cfgErr != nil {
		cfg = config.Default()
	}
	if swipeDummy {
		cfg.Deck.Source = config.DeckSourceDummy
	}
	if err := initLogger(cfg, false); err != nil {
		return err
	}

	sm := shutdown.NewManager()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sm.Shutdown(shutdownCtx)
	}()
	sm.OnClose("logger", logger.Close)

	if cfg.Server.MetricsListen != "" {
		if _, err := metrics.StartAsync(ctx, cfg.Server.MetricsListen); err != nil {
			logger.Warnf("debug server not started: %v", err)
		}
	}

	opts := tui.Options{
		ConfigErr:       cfgErr,
		CommitThreshold: cfg.Deck.CommitThreshold,
		AdvanceDelay:    cfg.Deck.AdvanceDelay,
		SiteName:        cfg.Site.Name,
	}

	if cfgErr == nil {
		provider, err := openIdentity(cfg, sm)
		if err != nil {
			opts.ConfigErr = err
		}
		opts.Identity = provider
	}

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warnf("journal disabled: %v", err)
		} else {
			sm.OnClose("journal", j.Close)
			opts.Journal = j
		}
	}

	switch cfg.Deck.Source {
	case config.DeckSourceDummy:
		opts.Markets = marketfeed.DummyDeck()
	default:
		client := feedclient.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout)
		q := marketquery.New(client.Source(feedFilters(cfg)), marketquery.Options{
			RefetchInterval: cfg.Feed.RefetchInterval,
			StaleTime:       cfg.Feed.StaleTime,
		})
		sm.OnClose("query", func() error { q.Stop(); return nil })
		opts.Query = q
		if opts.ConfigErr == nil {
			q.Start(ctx)
		}
	}

	m := tui.New(opts)
	sm.OnClose("deck", m.Close)

	logger.Infof("swipe client started: source=%s", cfg.Deck.Source)
	return tui.Run(ctx, m)
}

// openIdentity 打开会话存储并恢复登录状态
func openIdentity(cfg *config.Config, sm *shutdown.Manager) (identity.Provider, error) {
	if cfg.Identity.AppID == "" {
		return nil, identity.ErrMissingAppID
	}
	store, err := identity.OpenSessionStore(identity.OpenOptions{Path: cfg.Identity.SessionDir})
	if err != nil {
		return nil, err
	}
	sm.OnClose("session-store", store.Close)
	p, err := identity.NewLocalProvider(identity.LocalConfig{
		AppID:         cfg.Identity.AppID,
		Email:         cfg.Identity.Email,
		WalletAddress: cfg.Identity.WalletAddress,
	}, store)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func feedFilters(cfg *config.Config) domain.Filters {
	return domain.Filters{
		CryptoAsset:  cfg.Feed.Assets,
		MinVolume:    cfg.Feed.MinVolume,
		MinLiquidity: cfg.Feed.MinLiquidity,
		Search:       cfg.Feed.Search,
	}
}
