// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはそのままユーザーに表示される。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeAuthRequired       = "AUTH_REQUIRED"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAdminRequired      = "ADMIN_REQUIRED"
	ErrCodeFormNotFound       = "FORM_NOT_FOUND"
)

// NewValidationError は入力検証エラーを生成する。
// メッセージには最初に検出した違反の内容をそのまま設定する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewAuthRequiredError は認証トークン未提示エラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodeAuthRequired,
		Message: "Authentication required",
	}
}

// NewInvalidTokenError はトークン検証失敗エラーを生成する。
// 署名不正と期限切れは区別せず、同一のメッセージに畳み込む。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidToken,
		Message: "Invalid or expired token",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレスの存在有無を漏らさないよう、メッセージは常に同一にする。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// NewAdminRequiredError は管理者権限不足エラーを生成する。
func NewAdminRequiredError() *APIError {
	return &APIError{
		Code:    ErrCodeAdminRequired,
		Message: "Admin access required",
	}
}

// NewFormNotFoundError はフォーム未検出エラーを生成する。
func NewFormNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeFormNotFound,
		Message: "Form not found",
	}
}
