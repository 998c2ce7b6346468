package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/formdeck/internal/form"
	"github.com/hitoshi/formdeck/internal/model"
	"github.com/hitoshi/formdeck/internal/token"
)

// FormServiceInterface はフォームハンドラーが必要とするサービスインターフェース。
type FormServiceInterface interface {
	// List はフィルタ・ソート条件に従いレコード一覧を返す。
	List(ctx context.Context, opts form.ListOptions) ([]model.Form, error)
	// Get は指定IDのレコードを返す。
	Get(ctx context.Context, id int) (*model.Form, error)
	// Create は新しいレコードを作成する。
	Create(ctx context.Context, in model.FormInput) (*model.Form, error)
	// Update は指定IDのレコードを更新する。
	Update(ctx context.Context, id int, in model.FormInput) (*model.Form, error)
	// Delete は指定IDのレコードを削除する。
	Delete(ctx context.Context, id int) error
}

// Authorizer はリクエスト境界での認可インターフェース。
// auth.Gateの部分集合として定義する。
type Authorizer interface {
	// Identify は認証済みユーザーのクレームを返す。
	Identify(r *http.Request) (*token.Claims, error)
	// RequireAdmin は認証に加えて管理者ロールを要求する。
	RequireAdmin(r *http.Request) (*token.Claims, error)
}

// FormHandler はフォーム管理のHTTPハンドラー。
// 読み取りは認証のみ、状態を変更する操作は管理者ロールを要求する。
type FormHandler struct {
	service FormServiceInterface
	gate    Authorizer
}

// NewFormHandler はFormHandlerを生成する。
func NewFormHandler(service FormServiceInterface, gate Authorizer) *FormHandler {
	return &FormHandler{
		service: service,
		gate:    gate,
	}
}

// listFormsResponse はフォーム一覧のレスポンス。
type listFormsResponse struct {
	Success bool         `json:"success"`
	Forms   []model.Form `json:"forms"`
}

// formResponse は単一フォームのレスポンス。
type formResponse struct {
	Success bool       `json:"success"`
	Form    model.Form `json:"form"`
}

// deleteFormResponse はフォーム削除のレスポンス。
type deleteFormResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListForms はフォーム一覧を取得する。
// GET /api/forms?status=&sort=
func (h *FormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.Identify(r); err != nil {
		handleServiceError(w, err)
		return
	}

	opts := parseListOptions(r.URL.Query().Get("status"), r.URL.Query().Get("sort"))

	forms, err := h.service.List(r.Context(), opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, listFormsResponse{
		Success: true,
		Forms:   forms,
	})
}

// GetForm はフォーム詳細を取得する。
// GET /api/forms/{id}
func (h *FormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.Identify(r); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := formIDFromRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, formResponse{Success: true, Form: *f})
}

// CreateForm は新しいフォームを作成する。管理者専用。
// POST /api/forms
func (h *FormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAdmin(r); err != nil {
		handleServiceError(w, err)
		return
	}

	var in model.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleServiceError(w, model.NewValidationError("Invalid request body"))
		return
	}

	f, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, formResponse{Success: true, Form: *f})
}

// UpdateForm はフォームの可変フィールドを置き換える。管理者専用。
// PUT /api/forms/{id}
func (h *FormHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAdmin(r); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := formIDFromRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	var in model.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleServiceError(w, model.NewValidationError("Invalid request body"))
		return
	}

	f, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, formResponse{Success: true, Form: *f})
}

// DeleteForm はフォームを削除する。管理者専用。
// DELETE /api/forms/{id}
func (h *FormHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.gate.RequireAdmin(r); err != nil {
		handleServiceError(w, err)
		return
	}

	id, err := formIDFromRequest(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, deleteFormResponse{
		Success: true,
		Message: "Form deleted successfully",
	})
}

// --- ヘルパー関数 ---

// formIDFromRequest はパスパラメータからフォームIDを取り出す。
// 数値でない場合はFormNotFoundエラーを返す。
func formIDFromRequest(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, model.NewFormNotFoundError()
	}
	return id, nil
}

// parseListOptions はクエリパラメータを一覧取得条件に変換する。
// statusが"all"または空の場合は全件。sortは"<field>-<asc|desc>"形式。
// 不明な値は既定値（updatedAtの降順）にフォールバックし、エラーにはしない。
func parseListOptions(status, sortParam string) form.ListOptions {
	opts := form.ListOptions{}

	if status != "" && status != "all" && model.ValidFormStatus(model.FormStatus(status)) {
		opts.Status = model.FormStatus(status)
	}

	field, order, ok := strings.Cut(sortParam, "-")
	if !ok {
		return opts
	}

	switch form.SortKey(field) {
	case form.SortByUpdatedAt, form.SortByCreatedAt, form.SortByTitle:
		opts.SortBy = form.SortKey(field)
	default:
		return opts
	}

	switch form.SortOrder(order) {
	case form.SortAsc, form.SortDesc:
		opts.SortOrder = form.SortOrder(order)
	default:
		opts.SortBy = ""
	}

	return opts
}
