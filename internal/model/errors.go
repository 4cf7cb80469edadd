// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// AppError はユーザーに提示する統一エラーフォーマットを表す。
// 原因カテゴリと対処方法を含む。
type AppError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, state, permission, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	CategoryValidation = "validation"
	CategoryState      = "state"
	CategoryPermission = "permission"
	CategorySystem     = "system"
)

// 定義済みエラーコード
const (
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeSessionExpired       = "SESSION_EXPIRED"
	ErrCodeNoMaps               = "NO_MAPS"
	ErrCodeScrimNotActive       = "SCRIM_NOT_ACTIVE"
	ErrCodeOwnScrim             = "OWN_SCRIM"
	ErrCodeNotOwner             = "NOT_OWNER"
	ErrCodeAdminOnly            = "ADMIN_ONLY"
	ErrCodeChannelNotConfigured = "CHANNEL_NOT_CONFIGURED"
	ErrCodeCleanupInProgress    = "CLEANUP_IN_PROGRESS"
	ErrCodeMapExists            = "MAP_EXISTS"
	ErrCodeMapNotFound          = "MAP_NOT_FOUND"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeListExpired          = "LIST_EXPIRED"
	ErrCodeProfileNotFound      = "PROFILE_NOT_FOUND"
)

// AsAppError はerrのチェーンからAppErrorを取り出す。
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewValidationError は入力値エラーを生成する。
func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:     ErrCodeInvalidInput,
		Message:  reason,
		Category: CategoryValidation,
		Action:   "Please check your input and submit again.",
	}
}

// NewSessionExpiredError はウィザードのセッションが存在しない場合のエラーを生成する。
func NewSessionExpiredError() *AppError {
	return &AppError{
		Code:     ErrCodeSessionExpired,
		Message:  "Session expired.",
		Category: CategoryState,
		Action:   "Please start over with `/scrim`.",
	}
}

// NewNoMapsError はマップカタログが空の場合のエラーを生成する。
func NewNoMapsError() *AppError {
	return &AppError{
		Code:     ErrCodeNoMaps,
		Message:  "No maps available.",
		Category: CategoryState,
		Action:   "Please contact an admin to add maps.",
	}
}

// NewScrimNotActiveError は対象スクリムが既に終端状態の場合のエラーを生成する。
func NewScrimNotActiveError() *AppError {
	return &AppError{
		Code:     ErrCodeScrimNotActive,
		Message:  "This scrim is no longer active.",
		Category: CategoryState,
		Action:   "Use `/scrimlist` to see active scrims.",
	}
}

// NewOwnScrimError は自分の募集に興味を示そうとした場合のエラーを生成する。
func NewOwnScrimError() *AppError {
	return &AppError{
		Code:     ErrCodeOwnScrim,
		Message:  "You cannot show interest in your own scrim request.",
		Category: CategoryValidation,
	}
}

// NewNotOwnerError はオーナーでも管理者でもないユーザーが状態を変更しようとした場合のエラーを生成する。
func NewNotOwnerError(action string) *AppError {
	return &AppError{
		Code:     ErrCodeNotOwner,
		Message:  fmt.Sprintf("Only the scrim creator or admins can %s.", action),
		Category: CategoryPermission,
	}
}

// NewAdminOnlyError は管理者専用操作のエラーを生成する。
func NewAdminOnlyError() *AppError {
	return &AppError{
		Code:     ErrCodeAdminOnly,
		Message:  "You need Administrator permissions to use this command.",
		Category: CategoryPermission,
	}
}

// NewChannelNotConfiguredError は投稿先チャンネルが未設定の場合のエラーを生成する。
func NewChannelNotConfiguredError() *AppError {
	return &AppError{
		Code:     ErrCodeChannelNotConfigured,
		Message:  "Scrim channel not found.",
		Category: CategorySystem,
		Action:   "Please contact an admin to run `/setup channel`.",
	}
}

// NewCleanupInProgressError はクリーンアップが実行中の場合のエラーを生成する。
func NewCleanupInProgressError() *AppError {
	return &AppError{
		Code:     ErrCodeCleanupInProgress,
		Message:  "A cleanup pass is already running.",
		Category: CategoryState,
		Action:   "Please try again in a few minutes.",
	}
}

// NewMapExistsError はマップが既に登録済みの場合のエラーを生成する。
func NewMapExistsError(name string) *AppError {
	return &AppError{
		Code:     ErrCodeMapExists,
		Message:  fmt.Sprintf("Map %q already exists.", name),
		Category: CategoryValidation,
	}
}

// NewMapNotFoundError はマップが存在しない場合のエラーを生成する。
func NewMapNotFoundError(name string) *AppError {
	return &AppError{
		Code:     ErrCodeMapNotFound,
		Message:  fmt.Sprintf("Map %q was not found.", name),
		Category: CategoryValidation,
		Action:   "Use `/editmaps list` to see the current maps.",
	}
}

// NewRateLimitedError は投稿レート制限に達した場合のエラーを生成する。
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:     ErrCodeRateLimited,
		Message:  "You are creating scrims too quickly.",
		Category: CategoryValidation,
		Action:   "Please wait a while before posting another scrim.",
	}
}

// NewListExpiredError は一覧のページ状態が失われた場合のエラーを生成する。
func NewListExpiredError() *AppError {
	return &AppError{
		Code:     ErrCodeListExpired,
		Message:  "Pagination data not found.",
		Category: CategoryState,
		Action:   "Please run `/scrimlist` again.",
	}
}

// NewProfileNotFoundError はプロフィール未登録のエラーを生成する。
func NewProfileNotFoundError() *AppError {
	return &AppError{
		Code:     ErrCodeProfileNotFound,
		Message:  "You don't have a saved profile yet.",
		Category: CategoryState,
		Action:   "Use `/profile edit` to create one.",
	}
}

// NewTooManyRequestsError はイベント全般のレート制限に達した場合のエラーを生成する。
func NewTooManyRequestsError() *AppError {
	return &AppError{
		Code:     ErrCodeRateLimited,
		Message:  "You are sending commands too quickly.",
		Category: CategoryValidation,
		Action:   "Please wait a moment and try again.",
	}
}
