package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/formdeck/internal/form"
	"github.com/hitoshi/formdeck/internal/model"
	"github.com/hitoshi/formdeck/internal/token"
)

// --- モック定義 ---

// mockFormService はFormServiceInterfaceのモック実装。
type mockFormService struct {
	listFn   func(ctx context.Context, opts form.ListOptions) ([]model.Form, error)
	getFn    func(ctx context.Context, id int) (*model.Form, error)
	createFn func(ctx context.Context, in model.FormInput) (*model.Form, error)
	updateFn func(ctx context.Context, id int, in model.FormInput) (*model.Form, error)
	deleteFn func(ctx context.Context, id int) error
}

func (m *mockFormService) List(ctx context.Context, opts form.ListOptions) ([]model.Form, error) {
	if m.listFn != nil {
		return m.listFn(ctx, opts)
	}
	return nil, nil
}

func (m *mockFormService) Get(ctx context.Context, id int) (*model.Form, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockFormService) Create(ctx context.Context, in model.FormInput) (*model.Form, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return nil, nil
}

func (m *mockFormService) Update(ctx context.Context, id int, in model.FormInput) (*model.Form, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in)
	}
	return nil, nil
}

func (m *mockFormService) Delete(ctx context.Context, id int) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockAuthorizer はAuthorizerのモック実装。
type mockAuthorizer struct {
	identifyFn     func(r *http.Request) (*token.Claims, error)
	requireAdminFn func(r *http.Request) (*token.Claims, error)
}

func (m *mockAuthorizer) Identify(r *http.Request) (*token.Claims, error) {
	if m.identifyFn != nil {
		return m.identifyFn(r)
	}
	return &token.Claims{UserID: "1", Email: "user@example.com", Role: model.RoleIndividual}, nil
}

func (m *mockAuthorizer) RequireAdmin(r *http.Request) (*token.Claims, error) {
	if m.requireAdminFn != nil {
		return m.requireAdminFn(r)
	}
	return &token.Claims{UserID: "1", Email: "admin@example.com", Role: model.RoleAdmin}, nil
}

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func denyAll(err error) *mockAuthorizer {
	return &mockAuthorizer{
		identifyFn:     func(*http.Request) (*token.Claims, error) { return nil, err },
		requireAdminFn: func(*http.Request) (*token.Claims, error) { return nil, err },
	}
}

// --- GET /api/forms テスト ---

func TestFormHandler_ListForms_Success(t *testing.T) {
	svc := &mockFormService{
		listFn: func(ctx context.Context, opts form.ListOptions) ([]model.Form, error) {
			if opts.Status != model.FormStatusActive {
				t.Errorf("status = %q, want active", opts.Status)
			}
			if opts.SortBy != form.SortByTitle || opts.SortOrder != form.SortAsc {
				t.Errorf("sort = %q/%q, want title/asc", opts.SortBy, opts.SortOrder)
			}
			return []model.Form{{ID: 1, Title: "Survey"}}, nil
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	req := httptest.NewRequest(http.MethodGet, "/api/forms?status=active&sort=title-asc", nil)
	w := httptest.NewRecorder()
	h.ListForms(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp listFormsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || len(resp.Forms) != 1 || resp.Forms[0].ID != 1 {
		t.Errorf("response = %+v, want one form with id 1", resp)
	}
}

func TestFormHandler_ListForms_WithoutToken_Returns401(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, denyAll(model.NewAuthRequiredError()))

	req := httptest.NewRequest(http.MethodGet, "/api/forms", nil)
	w := httptest.NewRecorder()
	h.ListForms(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	resp := parseErrorResponse(t, w)
	if resp.Error != "Authentication required" {
		t.Errorf("error = %q, want Authentication required", resp.Error)
	}
}

func TestParseListOptions_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		status string
		sort   string
		want   form.ListOptions
	}{
		{"empty", "", "", form.ListOptions{}},
		{"all status", "all", "", form.ListOptions{}},
		{"unknown status", "bogus", "", form.ListOptions{}},
		{"valid", "draft", "createdAt-asc", form.ListOptions{Status: model.FormStatusDraft, SortBy: form.SortByCreatedAt, SortOrder: form.SortAsc}},
		{"unknown sort field", "", "owner-asc", form.ListOptions{}},
		{"unknown sort order", "", "title-sideways", form.ListOptions{}},
		{"missing separator", "", "title", form.ListOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseListOptions(tt.status, tt.sort); got != tt.want {
				t.Errorf("parseListOptions(%q, %q) = %+v, want %+v", tt.status, tt.sort, got, tt.want)
			}
		})
	}
}

// --- GET /api/forms/{id} テスト ---

func TestFormHandler_GetForm_Success(t *testing.T) {
	svc := &mockFormService{
		getFn: func(ctx context.Context, id int) (*model.Form, error) {
			if id != 3 {
				t.Errorf("id = %d, want 3", id)
			}
			return &model.Form{ID: 3, Title: "Feedback"}, nil
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/forms/3", nil), "id", "3")
	w := httptest.NewRecorder()
	h.GetForm(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp formResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Form.ID != 3 {
		t.Errorf("form id = %d, want 3", resp.Form.ID)
	}
}

func TestFormHandler_GetForm_NotFound_Returns404(t *testing.T) {
	svc := &mockFormService{
		getFn: func(ctx context.Context, id int) (*model.Form, error) {
			return nil, model.NewFormNotFoundError()
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/forms/999", nil), "id", "999")
	w := httptest.NewRecorder()
	h.GetForm(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	resp := parseErrorResponse(t, w)
	if resp.Error != "Form not found" {
		t.Errorf("error = %q, want Form not found", resp.Error)
	}
}

func TestFormHandler_GetForm_NonNumericID_Returns404(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, &mockAuthorizer{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/forms/abc", nil), "id", "abc")
	w := httptest.NewRecorder()
	h.GetForm(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// --- POST /api/forms テスト ---

func TestFormHandler_CreateForm_Success(t *testing.T) {
	svc := &mockFormService{
		createFn: func(ctx context.Context, in model.FormInput) (*model.Form, error) {
			if in.Title != "New Survey" {
				t.Errorf("title = %q, want New Survey", in.Title)
			}
			return &model.Form{ID: 7, Title: in.Title, Status: in.Status}, nil
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	body, _ := json.Marshal(model.FormInput{Title: "New Survey", FieldsCount: 5, Status: model.FormStatusDraft})
	req := httptest.NewRequest(http.MethodPost, "/api/forms", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.CreateForm(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var resp formResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Form.ID != 7 {
		t.Errorf("response = %+v, want created form with id 7", resp)
	}
}

func TestFormHandler_CreateForm_NonAdmin_Returns403(t *testing.T) {
	svc := &mockFormService{
		createFn: func(ctx context.Context, in model.FormInput) (*model.Form, error) {
			t.Fatal("Create must not be called without admin role")
			return nil, nil
		},
	}
	h := NewFormHandler(svc, denyAll(model.NewAdminRequiredError()))

	body, _ := json.Marshal(model.FormInput{Title: "New Survey", Status: model.FormStatusDraft})
	req := httptest.NewRequest(http.MethodPost, "/api/forms", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.CreateForm(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	resp := parseErrorResponse(t, w)
	if resp.Error != "Admin access required" {
		t.Errorf("error = %q, want Admin access required", resp.Error)
	}
}

func TestFormHandler_CreateForm_ValidationError_Returns400(t *testing.T) {
	svc := &mockFormService{
		createFn: func(ctx context.Context, in model.FormInput) (*model.Form, error) {
			return nil, model.NewValidationError("Title must be at least 3 characters")
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	body, _ := json.Marshal(model.FormInput{Title: "ab", Status: model.FormStatusDraft})
	req := httptest.NewRequest(http.MethodPost, "/api/forms", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.CreateForm(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	resp := parseErrorResponse(t, w)
	if resp.Error != "Title must be at least 3 characters" {
		t.Errorf("error = %q, want verbatim validation message", resp.Error)
	}
}

// --- PUT /api/forms/{id} テスト ---

func TestFormHandler_UpdateForm_Success(t *testing.T) {
	svc := &mockFormService{
		updateFn: func(ctx context.Context, id int, in model.FormInput) (*model.Form, error) {
			if id != 2 {
				t.Errorf("id = %d, want 2", id)
			}
			return &model.Form{ID: 2, Title: in.Title, Status: in.Status}, nil
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	body, _ := json.Marshal(model.FormInput{Title: "Renamed", FieldsCount: 3, Status: model.FormStatusActive})
	req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/api/forms/2", bytes.NewReader(body)), "id", "2")
	w := httptest.NewRecorder()
	h.UpdateForm(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp formResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Form.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", resp.Form.Title)
	}
}

func TestFormHandler_UpdateForm_NotFound_Returns404(t *testing.T) {
	svc := &mockFormService{
		updateFn: func(ctx context.Context, id int, in model.FormInput) (*model.Form, error) {
			return nil, model.NewFormNotFoundError()
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	body, _ := json.Marshal(model.FormInput{Title: "Renamed", Status: model.FormStatusActive})
	req := withChiURLParam(httptest.NewRequest(http.MethodPut, "/api/forms/999", bytes.NewReader(body)), "id", "999")
	w := httptest.NewRecorder()
	h.UpdateForm(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// --- DELETE /api/forms/{id} テスト ---

func TestFormHandler_DeleteForm_Success(t *testing.T) {
	deleted := 0
	svc := &mockFormService{
		deleteFn: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	h := NewFormHandler(svc, &mockAuthorizer{})

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/forms/4", nil), "id", "4")
	w := httptest.NewRecorder()
	h.DeleteForm(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if deleted != 4 {
		t.Errorf("deleted id = %d, want 4", deleted)
	}

	var resp deleteFormResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Message != "Form deleted successfully" {
		t.Errorf("response = %+v, want delete success message", resp)
	}
}

func TestFormHandler_DeleteForm_NonAdmin_Returns403(t *testing.T) {
	h := NewFormHandler(&mockFormService{}, denyAll(model.NewAdminRequiredError()))

	req := withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/forms/4", nil), "id", "4")
	w := httptest.NewRecorder()
	h.DeleteForm(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}
