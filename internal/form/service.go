// Package form はフォームレコードの照会とライフサイクルのドメインロジックを提供する。
package form

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hitoshi/formdeck/internal/model"
	"github.com/hitoshi/formdeck/internal/repository"
)

// SortKey はソート対象のフィールドを表す。
type SortKey string

const (
	// SortByUpdatedAt は更新日時でソートする。
	SortByUpdatedAt SortKey = "updatedAt"
	// SortByCreatedAt は作成日時でソートする。
	SortByCreatedAt SortKey = "createdAt"
	// SortByTitle はタイトルの辞書順でソートする。
	SortByTitle SortKey = "title"
)

// SortOrder はソート方向を表す。
type SortOrder string

const (
	// SortAsc は昇順を示す。
	SortAsc SortOrder = "asc"
	// SortDesc は降順を示す。
	SortDesc SortOrder = "desc"
)

// ListOptions は一覧取得のフィルタ・ソート条件を表す。
// ゼロ値は「全ステータス、更新日時の降順」を意味する。
type ListOptions struct {
	Status    model.FormStatus // 空文字は全件
	SortBy    SortKey
	SortOrder SortOrder
}

// Service はフォームレコードのサービス層。
type Service struct {
	repo repository.FormRepository
	now  func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.FormRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// List は全レコードを取得し、ステータスでフィルタしてソートした結果を返す。
// 結果は呼び出しごとに新しく計算され、キャッシュされない。
// ソートは安定であり、キーが等しいレコードは元のコレクション順を保つ。
func (s *Service) List(ctx context.Context, opts ListOptions) ([]model.Form, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	forms := make([]model.Form, 0, len(all))
	for _, f := range all {
		if opts.Status != "" && f.Status != opts.Status {
			continue
		}
		forms = append(forms, f)
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortByUpdatedAt
	}
	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = SortDesc
	}

	sort.SliceStable(forms, func(i, j int) bool {
		c := compareForms(&forms[i], &forms[j], sortBy)
		if sortOrder == SortDesc {
			return c > 0
		}
		return c < 0
	})

	return forms, nil
}

// Get は指定IDのレコードを取得する。存在しない場合はFormNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id int) (*model.Form, error) {
	form, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return nil, model.NewFormNotFoundError()
	}
	return form, nil
}

// Create は可変フィールドセットを検証し、新しいIDを割り当ててレコードを作成する。
// IDは現在の最大ID+1。作成・更新タイムスタンプはともに現在時刻を設定する。
func (s *Service) Create(ctx context.Context, in model.FormInput) (*model.Form, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	maxID, err := s.repo.MaxID(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Format(time.RFC3339)
	form := model.Form{
		ID:          maxID + 1,
		Title:       in.Title,
		Description: in.Description,
		FieldsCount: in.FieldsCount,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, form); err != nil {
		return nil, err
	}

	slog.Info("form created",
		slog.Int("form_id", form.ID),
		slog.String("status", string(form.Status)),
	)

	return &form, nil
}

// Update は指定IDのレコードの可変フィールドを置き換える。
// IDとCreatedAtは保持し、UpdatedAtのみ現在時刻に更新する。
// レコードが存在しない場合はFormNotFoundエラーを返す。
func (s *Service) Update(ctx context.Context, id int, in model.FormInput) (*model.Form, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, model.NewFormNotFoundError()
	}

	updated := model.Form{
		ID:          existing.ID,
		Title:       in.Title,
		Description: in.Description,
		FieldsCount: in.FieldsCount,
		Status:      in.Status,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   s.now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.Update(ctx, id, updated); err != nil {
		return nil, err
	}

	slog.Info("form updated", slog.Int("form_id", id))

	return &updated, nil
}

// Delete は指定IDのレコードを完全に削除する（ソフトデリートなし）。
// レコードが存在しない場合はFormNotFoundエラーを返す。
func (s *Service) Delete(ctx context.Context, id int) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return model.NewFormNotFoundError()
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("form deleted", slog.Int("form_id", id))
	return nil
}

// compareForms は2レコードを指定キーで比較する。
// 負: a < b、0: 等しい、正: a > b。
func compareForms(a, b *model.Form, key SortKey) int {
	switch key {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByCreatedAt:
		return compareTimes(a.CreatedAt, b.CreatedAt)
	default:
		return compareTimes(a.UpdatedAt, b.UpdatedAt)
	}
}

// compareTimes はISO-8601タイムスタンプ文字列を数値比較する。
// 欠落またはパース不能な値はエポック0として扱う。
func compareTimes(a, b string) int {
	ta := parseTimeOrZero(a)
	tb := parseTimeOrZero(b)
	switch {
	case ta < tb:
		return -1
	case ta > tb:
		return 1
	default:
		return 0
	}
}

func parseTimeOrZero(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
