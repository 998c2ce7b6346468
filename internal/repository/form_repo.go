package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/formdeck/internal/model"
)

// FormsKey はレコードセット全体を格納するストア上のキー。
const FormsKey = "forms:all"

// SeedRecorder はシード実行の記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type SeedRecorder interface {
	RecordStoreSeed()
}

// FormRepo はFormRepositoryのKeyValueストア実装。
// レコードセット全体を1つのJSON配列として単一キーに保存する。
// 全操作がread-modify-writeであり、複数プロセスからの同時書き込みは
// ストアのlast-write-winsに従う（管理者のみの低頻度書き込みを前提とする）。
type FormRepo struct {
	kv   KeyValue
	seed []model.Form
	rec  SeedRecorder // nil可
}

// NewFormRepo はFormRepoを生成する。
// seedFormsはストアが空のときの遅延シードに使用する。recはnilでもよい。
func NewFormRepo(kv KeyValue, seedForms []model.Form, rec SeedRecorder) *FormRepo {
	return &FormRepo{
		kv:   kv,
		seed: seedForms,
		rec:  rec,
	}
}

// GetAll は全レコードを取得する。
// キーが存在しない、またはコレクションが空の場合はシードデータを書き戻してから返す。
// 複数プロセスが同時に空のストアへ最初にアクセスすると両方がシードし得るが、
// シードは決定的なのでlast-write-winsで問題にならない（既知のレース）。
func (r *FormRepo) GetAll(ctx context.Context) ([]model.Form, error) {
	raw, err := r.kv.Get(ctx, FormsKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return r.seedStore(ctx)
		}
		return nil, fmt.Errorf("failed to read record set: %w", err)
	}

	var forms []model.Form
	if err := json.Unmarshal([]byte(raw), &forms); err != nil {
		return nil, fmt.Errorf("malformed record set payload: %w", err)
	}

	if len(forms) == 0 {
		return r.seedStore(ctx)
	}

	return forms, nil
}

// GetByID は指定IDのレコードを線形探索で取得する。見つからない場合はnilを返す。
func (r *FormRepo) GetByID(ctx context.Context, id int) (*model.Form, error) {
	forms, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range forms {
		if forms[i].ID == id {
			return &forms[i], nil
		}
	}
	return nil, nil
}

// Create はレコードをコレクション末尾に追加して全体を書き戻す。
func (r *FormRepo) Create(ctx context.Context, form model.Form) error {
	forms, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	forms = append(forms, form)
	return r.writeAll(ctx, forms)
}

// Update は指定IDのレコードを置き換えて全体を書き戻す。
// IDが見つからない場合は書き戻しを行わず、エラーも返さない。
func (r *FormRepo) Update(ctx context.Context, id int, form model.Form) error {
	forms, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	for i := range forms {
		if forms[i].ID == id {
			forms[i] = form
			return r.writeAll(ctx, forms)
		}
	}

	slog.Warn("update target not found in record set", slog.Int("form_id", id))
	return nil
}

// Delete は指定IDのレコードを取り除いて全体を書き戻す。
func (r *FormRepo) Delete(ctx context.Context, id int) error {
	forms, err := r.GetAll(ctx)
	if err != nil {
		return err
	}

	filtered := forms[:0:0]
	for i := range forms {
		if forms[i].ID != id {
			filtered = append(filtered, forms[i])
		}
	}

	return r.writeAll(ctx, filtered)
}

// MaxID はコレクション中の最大IDを返す。空の場合は0を返す。
func (r *FormRepo) MaxID(ctx context.Context) (int, error) {
	forms, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	maxID := 0
	for i := range forms {
		if forms[i].ID > maxID {
			maxID = forms[i].ID
		}
	}
	return maxID, nil
}

// seedStore はシードデータをストアに書き込み、そのコピーを返す。
func (r *FormRepo) seedStore(ctx context.Context) ([]model.Form, error) {
	forms := make([]model.Form, len(r.seed))
	copy(forms, r.seed)

	if err := r.writeAll(ctx, forms); err != nil {
		return nil, fmt.Errorf("failed to seed record set: %w", err)
	}

	slog.Info("record set seeded", slog.Int("count", len(forms)))
	if r.rec != nil {
		r.rec.RecordStoreSeed()
	}

	return forms, nil
}

// writeAll はコレクション全体をJSONとして書き戻す。
func (r *FormRepo) writeAll(ctx context.Context, forms []model.Form) error {
	data, err := json.Marshal(forms)
	if err != nil {
		return fmt.Errorf("failed to serialize record set: %w", err)
	}
	if err := r.kv.Set(ctx, FormsKey, string(data)); err != nil {
		return fmt.Errorf("failed to write record set: %w", err)
	}
	return nil
}
