package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/formdeck/internal/auth"
	"github.com/hitoshi/formdeck/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Authenticate はメールアドレスとロールの組でユーザーを認証し、トークンを発行する。
	Authenticate(email string, role model.Role) (string, *model.User, error)
}

// LoginRecorder はログイン試行の成否をメトリクスとして記録する。
type LoginRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// CookieSettings は認証Cookieの発行に必要な設定を保持する。
type CookieSettings struct {
	MaxAge int  // 有効期間（秒）。トークンの有効期限と一致させる
	Secure bool // HTTPSでのみ送信するか
	Domain string
}

// AuthHandler は認証のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	recorder LoginRecorder // nil可
	cookie   CookieSettings
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, recorder LoginRecorder, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
		cookie:   cookie,
	}
}

// loginResponse はログイン成功時のレスポンス。
type loginResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    model.User `json:"user"`
}

// logoutResponse はログアウトのレスポンス。
type logoutResponse struct {
	Success bool `json:"success"`
}

// Login はログインを処理する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in model.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleServiceError(w, model.NewValidationError("Invalid request body"))
		return
	}

	if err := in.Validate(); err != nil {
		handleServiceError(w, err)
		return
	}

	tok, user, err := h.service.Authenticate(in.Email, in.Role)
	if err != nil {
		if h.recorder != nil {
			h.recorder.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordLoginSuccess()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    tok,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   h.cookie.MaxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSONResponse(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   tok,
		User:    *user,
	})
}

// Logout はログアウトを処理する。Cookieを削除し、常に成功を返す。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSONResponse(w, http.StatusOK, logoutResponse{Success: true})
}
