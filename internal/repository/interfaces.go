// Package repository はデータ永続化のインターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/formdeck/internal/model"
)

// KeyValue は外部キーバリューストアへの最小インターフェース。
// 単一キーに対するget/setのみを要求する。
type KeyValue interface {
	// Get は指定キーの値を取得する。キーが存在しない場合はErrKeyNotFoundを返す。
	Get(ctx context.Context, key string) (string, error)
	// Set は指定キーに値を書き込む。
	Set(ctx context.Context, key, value string) error
}

// FormRepository はフォームレコードの永続化インターフェース。
// すべての操作はコレクション全体の読み出し・書き戻しで実現される。
type FormRepository interface {
	// GetAll は全レコードを取得する。ストアが空の場合はシードデータで初期化する。
	GetAll(ctx context.Context) ([]model.Form, error)

	// GetByID は指定IDのレコードを取得する。見つからない場合はnilを返す。
	GetByID(ctx context.Context, id int) (*model.Form, error)

	// Create はレコードをコレクション末尾に追加して書き戻す。
	Create(ctx context.Context, form model.Form) error

	// Update は指定IDのレコードを置き換えて書き戻す。
	// IDが見つからない場合は何もしない（呼び出し側が存在確認済みであることを想定）。
	Update(ctx context.Context, id int, form model.Form) error

	// Delete は指定IDのレコードを取り除いて書き戻す。
	Delete(ctx context.Context, id int) error

	// MaxID はコレクション中の最大IDを返す。空の場合は0を返す。
	MaxID(ctx context.Context) (int, error)
}
