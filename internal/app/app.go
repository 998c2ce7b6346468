// Package app はアプリケーションの起動と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/formdeck/internal/auth"
	"github.com/hitoshi/formdeck/internal/config"
	"github.com/hitoshi/formdeck/internal/database"
	"github.com/hitoshi/formdeck/internal/form"
	"github.com/hitoshi/formdeck/internal/handler"
	"github.com/hitoshi/formdeck/internal/logger"
	"github.com/hitoshi/formdeck/internal/metrics"
	"github.com/hitoshi/formdeck/internal/middleware"
	"github.com/hitoshi/formdeck/internal/model"
	"github.com/hitoshi/formdeck/internal/repository"
	"github.com/hitoshi/formdeck/internal/seed"
	"github.com/hitoshi/formdeck/internal/token"
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
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandSeed:
		return runSeed(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// ストア接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()

	// 1. ストア接続
	client, err := database.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer client.Close()

	slog.Info("store connection established", slog.String("addr", cfg.RedisAddr))

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. 埋め込みデータセットの読み込み
	seedForms, err := seed.Forms()
	if err != nil {
		return fmt.Errorf("failed to load seed dataset: %w", err)
	}
	users, err := seed.Users()
	if err != nil {
		return fmt.Errorf("failed to load user directory: %w", err)
	}

	// 4. リポジトリとドメインサービスの初期化
	kv := repository.NewRedisKV(client)
	formRepo := repository.NewFormRepo(kv, seedForms, collector)
	formService := form.NewService(formRepo)

	codec := token.NewCodec(cfg.JWTSecret, time.Duration(cfg.TokenMaxAge)*time.Second)
	authService := auth.NewService(users, codec)
	gate := auth.NewGate(codec)

	// 5. レート制限の初期化（configはreq/min単位、rate.Limitはreq/sec単位）
	rlCfg := middleware.DefaultRateLimiterConfig()
	rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rlCfg.GeneralBurst = cfg.RateLimitGeneral
	rlCfg.LoginRate = rate.Limit(float64(cfg.RateLimitLogin) / 60.0)
	rlCfg.LoginBurst = cfg.RateLimitLogin

	rateLimiter := middleware.NewRateLimiter(rlCfg)
	defer rateLimiter.Stop()

	// 6. ハンドラーとルーターの構築
	authHandler := handler.NewAuthHandler(authService, collector, handler.CookieSettings{
		MaxAge: cfg.TokenMaxAge,
		Secure: cfg.CookieSecure,
		Domain: cfg.CookieDomain,
	})
	formHandler := handler.NewFormHandler(formService, gate)

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		HTTPRecorder:      collector,
		AccessVerify:      accessVerifier(codec),

		AuthHandler: authHandler,
		FormHandler: formHandler,

		Pinger:         kv,
		MetricsHandler: metrics.Handler(registry),

		StaticDir: cfg.StaticDir,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runSeed はシードデータセットをストアのレコードキーに書き込む。
// 既存のレコードセットは上書きされる（運用時のリセット用）。
func runSeed(cfg *config.Config) error {
	ctx := context.Background()

	client, err := database.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer client.Close()

	forms, err := seed.Forms()
	if err != nil {
		return fmt.Errorf("failed to load seed dataset: %w", err)
	}

	data, err := json.Marshal(forms)
	if err != nil {
		return fmt.Errorf("failed to serialize seed dataset: %w", err)
	}

	kv := repository.NewRedisKV(client)
	if err := kv.Set(ctx, repository.FormsKey, string(data)); err != nil {
		return fmt.Errorf("failed to write seed dataset: %w", err)
	}

	slog.Info("seed dataset written",
		slog.String("key", repository.FormsKey),
		slog.Int("count", len(forms)),
	)
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

// accessVerifier はトークン検証をページアクセスポリシー用の関数に適合させる。
func accessVerifier(codec *token.Codec) middleware.VerifyRole {
	return func(tokenString string) (model.Role, error) {
		claims, err := codec.Verify(tokenString)
		if err != nil {
			return "", err
		}
		return claims.Role, nil
	}
}
