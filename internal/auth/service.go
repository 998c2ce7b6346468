// Package auth は認証・認可のドメインロジックを提供する。
package auth

import (
	"log/slog"
	"strconv"

	"github.com/hitoshi/formdeck/internal/model"
)

// TokenIssuer はトークン発行のインターフェース。
// token.Codecの部分集合として定義する。
type TokenIssuer interface {
	Issue(userID, email string, role model.Role) (string, error)
}

// Service は組み込みユーザーディレクトリに対する認証を提供する。
// ユーザーはサーバー側に永続化されず、起動時に読み込んだ固定のセットを使う。
type Service struct {
	users  []model.User
	issuer TokenIssuer
}

// NewService はServiceを生成する。
func NewService(users []model.User, issuer TokenIssuer) *Service {
	return &Service{
		users:  users,
		issuer: issuer,
	}
}

// Authenticate はメールアドレスとロールの組でユーザーを検索し、トークンを発行する。
// 一致するユーザーがいない場合はInvalidCredentialsエラーを返す。
// メールアドレスが登録済みかどうかをエラーから判別できないよう、
// 不一致の理由は区別しない。
func (s *Service) Authenticate(email string, role model.Role) (string, *model.User, error) {
	var found *model.User
	for i := range s.users {
		if s.users[i].Email == email && s.users[i].Role == role {
			found = &s.users[i]
			break
		}
	}

	if found == nil {
		slog.Warn("login rejected", slog.String("role", string(role)))
		return "", nil, model.NewInvalidCredentialsError()
	}

	tok, err := s.issuer.Issue(strconv.Itoa(found.ID), found.Email, found.Role)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user logged in",
		slog.Int("user_id", found.ID),
		slog.String("role", string(found.Role)),
	)

	return tok, found, nil
}
