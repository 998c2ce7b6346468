package auth

import (
	"net/http"

	"github.com/hitoshi/formdeck/internal/model"
	"github.com/hitoshi/formdeck/internal/token"
)

// TokenCookieName は認証トークンを運ぶCookie名。
const TokenCookieName = "token"

// TokenVerifier はトークン検証のインターフェース。
// token.Codecの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Gate はリクエスト境界での認可ガードを提供する。
// 状態を変更する全ハンドラーはRequireAdminを前提条件として呼び出す。
type Gate struct {
	verifier TokenVerifier
}

// NewGate はGateを生成する。
func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// Identify はリクエストのCookieからトークンを取り出し、検証済みクレームを返す。
// Cookieが存在しない場合はAuthRequiredエラー、検証失敗はCodecのエラーをそのまま返す。
func (g *Gate) Identify(r *http.Request) (*token.Claims, error) {
	cookie, err := r.Cookie(TokenCookieName)
	if err != nil || cookie.Value == "" {
		return nil, model.NewAuthRequiredError()
	}
	return g.verifier.Verify(cookie.Value)
}

// RequireAdmin はIdentifyに加えてロールがadminであることを要求する。
// ロールが不足している場合はAdminRequiredエラーを返す。
func (g *Gate) RequireAdmin(r *http.Request) (*token.Claims, error) {
	claims, err := g.Identify(r)
	if err != nil {
		return nil, err
	}
	if claims.Role != model.RoleAdmin {
		return nil, model.NewAdminRequiredError()
	}
	return claims, nil
}
