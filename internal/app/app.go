package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/hitoshi/scrimbot/internal/catalog"
	"github.com/hitoshi/scrimbot/internal/config"
	"github.com/hitoshi/scrimbot/internal/database"
	"github.com/hitoshi/scrimbot/internal/discord"
	"github.com/hitoshi/scrimbot/internal/handler"
	"github.com/hitoshi/scrimbot/internal/listing"
	"github.com/hitoshi/scrimbot/internal/logger"
	"github.com/hitoshi/scrimbot/internal/metrics"
	"github.com/hitoshi/scrimbot/internal/middleware"
	"github.com/hitoshi/scrimbot/internal/notify"
	"github.com/hitoshi/scrimbot/internal/profile"
	"github.com/hitoshi/scrimbot/internal/repository"
	"github.com/hitoshi/scrimbot/internal/session"
	"github.com/hitoshi/scrimbot/internal/settings"
	"github.com/hitoshi/scrimbot/internal/wizard"
	"github.com/hitoshi/scrimbot/internal/worker/reaper"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。サブコマンドを省略した場合はserveとして動作する。
func Run(w io.Writer, args []string) error {
	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.Execute()
}

// openDB はDB接続を開き、疎通を確認する。
// 戻り値のdriverはマイグレーションのドライバ選択に使う。
func openDB(ctx context.Context, cfg *config.Config) (db *sql.DB, driver string, err error) {
	driver, _, err = database.ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, "", err
	}
	db, err = database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established", slog.String("driver", driver))
	return db, driver, nil
}

// reaperConfig は設定からReaperの設定を組み立てる。
// スケジュールが不正な場合は警告を出してデフォルトに戻す。
func reaperConfig(cfg *config.Config) reaper.Config {
	rc := reaper.Config{
		Schedule:     cfg.CleanupSchedule,
		StartupDelay: cfg.CleanupStartupDelay,
		Pacing:       cfg.CleanupPacing,
		StaleAfter:   cfg.StaleAfter,
	}
	if _, err := reaper.ParseSchedule(rc.Schedule); err != nil {
		slog.Warn("invalid CLEANUP_INTERVAL, falling back to default",
			slog.String("schedule", rc.Schedule),
			slog.String("default", reaper.DefaultSchedule),
			slog.String("error", err.Error()),
		)
		rc.Schedule = reaper.DefaultSchedule
	}
	return rc
}

// runServe はボットを起動する。
// DB接続を開き、全依存関係をワイヤリングし、ゲートウェイ接続と運用HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. DB接続とマイグレーション
	db, driver, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.MigrateDB(db, driver); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 2. リポジトリの初期化
	scrimRepo := repository.NewSQLScrimRepo(db)
	mapRepo := repository.NewSQLMapRepo(db)
	profileRepo := repository.NewSQLProfileRepo(db)
	alertRepo := repository.NewSQLAlertRepo(db)
	settingRepo := repository.NewSQLSettingRepo(db)

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// 4. プラットフォーム
	dg, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	messenger := discord.NewMessenger(dg)

	// 5. セッションストアとレート制限
	drafts := session.NewStore[wizard.Draft]()
	pages := session.NewStore[listing.State]()
	sweeper := session.NewSweeper(map[string]session.Sweepable{
		"drafts": drafts,
		"pages":  pages,
	}, cfg.SessionTTL, cfg.SessionSweepInterval, slog.Default(), collector.SetActiveSessions)

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(cfg.ScrimPostLimit), slog.Default())
	defer rateLimiter.Stop()

	// 6. ドメインサービスの初期化
	settingsService := settings.NewService(settingRepo, cfg.ScrimChannelID, slog.Default())
	profileService := profile.NewService(profileRepo, slog.Default())
	catalogService := catalog.NewService(mapRepo, slog.Default())

	notifier := notify.NewNotifier(scrimRepo, alertRepo, messenger, collector, slog.Default(), notify.Config{
		MaxRecipients: cfg.NotifyMaxRecipients,
		Rate:          rate.Limit(cfg.NotifyRate),
		Burst:         1,
		ArchiveDelay:  notify.DefaultArchiveDelay,
	})

	wizardService := wizard.NewService(wizard.Deps{
		Drafts:      drafts,
		Profiles:    profileService,
		Maps:        catalogService,
		Channels:    settingsService,
		Scrims:      scrimRepo,
		Messenger:   messenger,
		Broadcaster: notifier,
		Limiter:     rateLimiter,
		Metrics:     collector,
		Logger:      slog.Default(),
	})

	listingService := listing.NewService(scrimRepo, pages)
	scrimReaper := reaper.New(scrimRepo, messenger, collector, slog.Default(), reaperConfig(cfg))

	// 7. イベントハンドラの構築
	router := handler.NewRouter(handler.RouterDeps{
		Wizard:    wizardService,
		Actions:   notifier,
		Cleanup:   scrimReaper,
		Listing:   listingService,
		Profiles:  profileService,
		Catalog:   catalogService,
		Settings:  settingsService,
		Scrims:    scrimRepo,
		Messenger: messenger,
	}, slog.Default())

	interactions := handler.NewInteractionHandler(router, slog.Default(),
		middleware.Log(slog.Default(), collector),
		rateLimiter.Middleware(),
	)
	bot := discord.NewBot(dg, interactions, discord.ParseAdminIDs(cfg.AdminIDs), slog.Default())

	// 8. 運用HTTPサーバー
	server := &http.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: handler.NewOpsRouter(handler.OpsDeps{
			DB:       db,
			Gateway:  bot,
			Gatherer: registry,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	go func() {
		<-stop
		slog.Info("shutting down bot...")
		cancel()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sweeper.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := scrimReaper.Start(ctx); err != nil {
			slog.Error("reaper stopped", slog.String("error", err.Error()))
		}
	}()

	go func() {
		slog.Info("ops server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	// ゲートウェイ接続をメインgoroutineで実行（ブロッキング）
	runErr := bot.Run(ctx)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	wg.Wait()

	if runErr != nil {
		return runErr
	}
	slog.Info("bot stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runRegisterCommands はスラッシュコマンドを登録する。
// ゲートウェイには接続せず、REST APIのみを使う。
func runRegisterCommands(ctx context.Context, cfg *config.Config, out io.Writer) error {
	dg, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		return err
	}
	n, err := discord.RegisterCommands(ctx, dg, cfg.DiscordAppID, cfg.GuildID)
	if err != nil {
		return err
	}

	scope := "global"
	if cfg.GuildID != "" {
		scope = "guild " + cfg.GuildID
	}
	slog.Info("slash commands registered", slog.Int("count", n), slog.String("scope", scope))
	fmt.Fprintf(out, "registered %d commands (%s)\n", n, scope)
	return nil
}

// runMapsImport はYAMLファイルからマップを一括登録する。
func runMapsImport(ctx context.Context, cfg *config.Config, r io.Reader, out io.Writer) error {
	db, _, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := catalog.NewService(repository.NewSQLMapRepo(db), slog.Default())
	res, err := svc.Import(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "added %d maps, skipped %d\n", len(res.Added), len(res.Skipped))
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "  skipped: %s\n", s)
	}
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
