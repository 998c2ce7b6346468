// Package model はドメインモデルを定義する。
package model

import "strings"

// Role はユーザーの権限ロールを表す。
type Role string

const (
	// RoleIndividual は一般ユーザーを示す。
	RoleIndividual Role = "individual"
	// RoleAdmin はフォームの作成・編集・削除を許可された管理者を示す。
	RoleAdmin Role = "admin"
)

// ValidRole はロール値がenumのいずれかであるかを判定する。
func ValidRole(r Role) bool {
	return r == RoleIndividual || r == RoleAdmin
}

// User はログイン可能なユーザーを表す。
// ユーザーは組み込みディレクトリで管理され、サーバー側には永続化されない。
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// LoginInput はログインリクエストの入力を表す。
type LoginInput struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Validate はログイン入力を検証する。
// 最初に検出した違反のメッセージを持つValidationErrorを返す。
func (in *LoginInput) Validate() *APIError {
	if in.Email == "" {
		return NewValidationError("Email is required")
	}
	if !validEmail(in.Email) {
		return NewValidationError("Please enter a valid email address")
	}
	if !ValidRole(in.Role) {
		return NewValidationError("Invalid role")
	}
	return nil
}

// validEmail はメールアドレスの形式を簡易チェックする。
// local@domain の形で、ドメインにドットを含むことのみ要求する。
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
