package handler

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/formdeck/internal/middleware"
)

// Pinger はバックエンドストアの疎通確認インターフェース。
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	HTTPRecorder      middleware.HTTPRecorder // nil可
	AccessVerify      middleware.VerifyRole

	// ハンドラー
	AuthHandler *AuthHandler
	FormHandler *FormHandler

	// 運用エンドポイント
	Pinger         Pinger
	MetricsHandler http.Handler

	// ページ配信
	StaticDir string // 空の場合はページルートを配信しない
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	SecurityHeaders → CORS → Recovery → Logging → RateLimit(エンドポイント別)
//
// アクセスポリシーはページルートのグループにのみ適用する（/api、/health、
// /metricsには適用しない）。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.HTTPRecorder))

	// --- 認証ルート ---
	r.Route("/api/auth", func(r chi.Router) {
		// ログインはブルートフォース対策の専用レート制限を適用
		r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", deps.AuthHandler.Login)
		r.Post("/logout", deps.AuthHandler.Logout)
	})

	// --- フォーム管理ルート ---
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/forms", func(r chi.Router) {
			r.Get("/", deps.FormHandler.ListForms)
			r.Post("/", deps.FormHandler.CreateForm)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", deps.FormHandler.GetForm)
				r.Put("/", deps.FormHandler.UpdateForm)
				r.Delete("/", deps.FormHandler.DeleteForm)
			})
		})
	})

	// --- 運用エンドポイント ---
	r.Get("/health", newHealthHandler(deps.Pinger))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- ページルート ---
	// APIにマッチしなかったパスはすべてページとして扱い、
	// アクセスポリシーを通してから静的ファイルを配信する。
	if deps.StaticDir != "" {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAccessPolicyMiddleware(deps.AccessVerify))
			r.Handle("/*", newStaticHandler(deps.StaticDir))
		})
	}

	return r
}

// newHealthHandler はバックエンドストアの疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, "Store unavailable")
			return
		}

		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// newStaticHandler はフロントエンドバンドルを配信するハンドラーを返す。
// 要求されたファイルが存在しない場合はindex.htmlにフォールバックする
// （クライアントサイドルーティング対応）。
func newStaticHandler(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(staticDir, filepath.Clean(r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}
