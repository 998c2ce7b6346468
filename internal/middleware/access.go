// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/hitoshi/formdeck/internal/auth"
	"github.com/hitoshi/formdeck/internal/model"
)

// VerifyRole はトークン文字列を検証し、埋め込まれたロールを返す関数。
// 検証に失敗した場合はエラーを返す。
type VerifyRole func(tokenString string) (model.Role, error)

// Decision はルートアクセス判定の結果を表す。
// Allowがfalseの場合、Redirectにリダイレクト先パスが設定される。
type Decision struct {
	Allow    bool
	Redirect string
}

// editFormPathPattern は数値IDによるフォーム編集ページのパスにマッチする。
var editFormPathPattern = regexp.MustCompile(`^/forms/\d+$`)

// Decide はパス・トークンの有無・（管理者ページの場合のみ）検証済みロールから
// アクセス可否を判定する純粋な決定関数。すべてのパスをallowまたはredirectに
// 写像し、レコードストアには一切触れない。
//
// 判定規則:
//   - "/" と "/login" は公開ページ
//   - トークンなしで非公開ページ → "/login" へ
//   - トークンありで "/login" → "/dashboard" へ（ログイン済みユーザーに
//     ログイン画面を見せない）
//   - "/forms/new" と "/forms/{数値id}" は管理者専用。トークンが検証できない
//     場合は "/login" へ、検証できてもロールがadminでなければ
//     "/forms?error=admin_required" へ（UIがメッセージを表示できるようにする）
func Decide(path, tokenString string, verify VerifyRole) Decision {
	isPublic := path == "/" || path == "/login"

	if tokenString == "" && !isPublic {
		return Decision{Redirect: "/login"}
	}

	if tokenString != "" && path == "/login" {
		return Decision{Redirect: "/dashboard"}
	}

	if isAdminPath(path) {
		role, err := verify(tokenString)
		if err != nil {
			return Decision{Redirect: "/login"}
		}
		if role != model.RoleAdmin {
			return Decision{Redirect: "/forms?error=admin_required"}
		}
	}

	return Decision{Allow: true}
}

// isAdminPath は管理者ロールを要求するページパスかどうかを判定する。
func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/forms/new") || editFormPathPattern.MatchString(path)
}

// NewAccessPolicyMiddleware はページルートのアクセス制御ミドルウェアを返す。
// リクエストごとにDecideを1回評価し、許可ならそのまま通過、
// それ以外は判定結果のパスへ307リダイレクトする。
// APIルートには適用しないこと（APIは各ハンドラーがGateで認可する）。
func NewAccessPolicyMiddleware(verify VerifyRole) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""
			if cookie, err := r.Cookie(auth.TokenCookieName); err == nil {
				tokenString = cookie.Value
			}

			d := Decide(r.URL.Path, tokenString, verify)
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
