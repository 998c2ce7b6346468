// Package token は署名付き・期限付きの認証トークンの発行と検証を提供する。
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/formdeck/internal/model"
)

// Claims はトークンに埋め込む認証済みユーザー情報を表す。
type Claims struct {
	UserID string     `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Codec はHS256による対称鍵署名でトークンを発行・検証する。
// 秘密鍵はプロセス起動時に1回読み込み、以後変更しない。
// 署名・検証以外の副作用を持たない。
type Codec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewCodec はCodecを生成する。
// maxAgeは発行するトークンの有効期間。
func NewCodec(secret string, maxAge time.Duration) *Codec {
	return &Codec{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue は3つのクレームと有効期限を埋め込んだ署名付きトークンを発行する。
func (c *Codec) Issue(userID, email string, role model.Role) (string, error) {
	now := c.now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 署名不正・形式不正・期限切れはすべて同一のInvalidTokenエラーに畳み込む
// （呼び出し側に区別を提供しない方針）。
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// 署名方式の確認。HS256以外は受け付けない。
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.NewInvalidTokenError()
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return c.now() }))

	if err != nil || !parsed.Valid {
		return nil, model.NewInvalidTokenError()
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, model.NewInvalidTokenError()
	}

	// クレームの形状検証。3フィールドが揃っていないトークンは拒否する。
	if claims.UserID == "" || claims.Email == "" || !model.ValidRole(claims.Role) {
		return nil, model.NewInvalidTokenError()
	}

	return claims, nil
}
