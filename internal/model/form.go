// Package model はドメインモデルを定義する。
package model

import "unicode/utf8"

// FormStatus はフォームの公開状態を表す。
type FormStatus string

const (
	// FormStatusDraft は下書き状態を示す。
	FormStatusDraft FormStatus = "draft"
	// FormStatusActive は公開中の状態を示す。
	FormStatusActive FormStatus = "active"
	// FormStatusArchived はアーカイブ済みの状態を示す。
	FormStatusArchived FormStatus = "archived"
)

// ValidFormStatus はステータス値がenumのいずれかであるかを判定する。
func ValidFormStatus(s FormStatus) bool {
	switch s {
	case FormStatusDraft, FormStatusActive, FormStatusArchived:
		return true
	}
	return false
}

// Form はフォームレコードを表す。
// IDは一度割り当てられたら不変で、レコードセット全体で一意。
// CreatedAt / UpdatedAt はISO-8601（RFC3339）形式の文字列として保持する。
type Form struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	FieldsCount int        `json:"fieldsCount"`
	Status      FormStatus `json:"status"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	UpdatedAt   string     `json:"updatedAt,omitempty"`
}

// FormInput はフォームの可変フィールドセット（作成・更新の入力）を表す。
type FormInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	FieldsCount int        `json:"fieldsCount"`
	Status      FormStatus `json:"status"`
}

// Validate は可変フィールドセットを検証する。
// 最初に検出した違反のメッセージをそのまま持つValidationErrorを返す。
// 長さの上限・下限はバイト数ではなく文字数で数える。
func (in *FormInput) Validate() *APIError {
	if utf8.RuneCountInString(in.Title) < 3 {
		return NewValidationError("Title must be at least 3 characters")
	}
	if utf8.RuneCountInString(in.Title) > 100 {
		return NewValidationError("Title must be less than 100 characters")
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		return NewValidationError("Description must be less than 500 characters")
	}
	if in.FieldsCount < 0 {
		return NewValidationError("Must be at least 0")
	}
	if in.FieldsCount > 50 {
		return NewValidationError("Must be at most 50")
	}
	if !ValidFormStatus(in.Status) {
		return NewValidationError("Please select a valid status")
	}
	return nil
}

// Validate はフルレコード（ID・タイムスタンプ込み）を検証する。
// シードデータの読み込みや書き戻し前の整合性チェックに使用する。
func (f *Form) Validate() *APIError {
	if f.ID <= 0 {
		return NewValidationError("Form id must be a positive integer")
	}
	in := FormInput{
		Title:       f.Title,
		Description: f.Description,
		FieldsCount: f.FieldsCount,
		Status:      f.Status,
	}
	return in.Validate()
}
