// Package seed はバイナリに埋め込まれた初期データセットを提供する。
// フォームデータは外部ストアが空のときの遅延シードに、
// ユーザーデータはログイン時の組み込みディレクトリとして使用する。
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/formdeck/internal/model"
)

//go:embed forms.json
var formsJSON []byte

//go:embed users.json
var usersJSON []byte

// Forms は埋め込みのフォームシードデータセットを返す。
// 各レコードはFormの形状に対して検証され、1件でも不正があればエラーを返す。
func Forms() ([]model.Form, error) {
	var forms []model.Form
	if err := json.Unmarshal(formsJSON, &forms); err != nil {
		return nil, fmt.Errorf("failed to parse embedded forms dataset: %w", err)
	}

	for i := range forms {
		if err := forms[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid seed form (id=%d): %w", forms[i].ID, err)
		}
	}

	return forms, nil
}

// Users は組み込みユーザーディレクトリを返す。
func Users() ([]model.User, error) {
	var users []model.User
	if err := json.Unmarshal(usersJSON, &users); err != nil {
		return nil, fmt.Errorf("failed to parse embedded users dataset: %w", err)
	}

	for i := range users {
		u := &users[i]
		if u.ID <= 0 || u.Email == "" || !model.ValidRole(u.Role) {
			return nil, fmt.Errorf("invalid seed user (id=%d)", u.ID)
		}
	}

	return users, nil
}
