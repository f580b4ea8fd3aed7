// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, event, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserExists         = "USER_ALREADY_EXISTS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserNotVerified    = "USER_NOT_VERIFIED"
	ErrCodeAlreadyVerified    = "ALREADY_VERIFIED"
	ErrCodeOTPNotFound        = "OTP_NOT_FOUND"
	ErrCodeOTPExpired         = "OTP_EXPIRED"
	ErrCodeInvalidOTP         = "INVALID_OTP"
	ErrCodeEventNotFound      = "EVENT_NOT_FOUND"
	ErrCodeInvalidEvent       = "INVALID_EVENT"
	ErrCodeInvalidReminder    = "INVALID_REMINDER"
)

// NewUserExistsError は登録済みメールアドレスでの再登録エラーを生成する。
func NewUserExistsError() *APIError {
	return &APIError{
		Code:     ErrCodeUserExists,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "メールアドレスを確認してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレス不存在とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUserNotVerifiedError はメール未確認ユーザーのログイン試行エラーを生成する。
func NewUserNotVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotVerified,
		Message:  "メールアドレスの確認が完了していません。",
		Category: "auth",
		Action:   "受信したワンタイムコードで確認を完了してください。",
	}
}

// NewAlreadyVerifiedError は確認済みユーザーへのOTP操作エラーを生成する。
func NewAlreadyVerifiedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyVerified,
		Message:  "このユーザーは既に確認済みです。",
		Category: "auth",
		Action:   "そのままログインしてください。",
	}
}

// NewOTPNotFoundError は有効なOTPが存在しない場合のエラーを生成する。
func NewOTPNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeOTPNotFound,
		Message:  "有効なワンタイムコードがありません。",
		Category: "auth",
		Action:   "コードの再送を依頼してください。",
	}
}

// NewOTPExpiredError は期限切れOTPのエラーを生成する。
func NewOTPExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeOTPExpired,
		Message:  "ワンタイムコードの有効期限が切れています。",
		Category: "auth",
		Action:   "コードの再送を依頼してください。",
	}
}

// NewInvalidOTPError はOTP不一致のエラーを生成する。
func NewInvalidOTPError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidOTP,
		Message:  "ワンタイムコードが正しくありません。",
		Category: "auth",
		Action:   "受信したコードを確認して再入力してください。",
	}
}

// NewEventNotFoundError はイベント未検出エラーを生成する。
// 他ユーザーのイベントへのアクセスも存在しないものとして扱う。
func NewEventNotFoundError(eventID string) *APIError {
	return &APIError{
		Code:     ErrCodeEventNotFound,
		Message:  fmt.Sprintf("指定されたイベントが見つかりません: %s", eventID),
		Category: "event",
		Action:   "イベントIDを確認してください。",
	}
}

// NewInvalidEventError はイベントの入力値エラーを生成する。
func NewInvalidEventError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEvent,
		Message:  fmt.Sprintf("イベントの入力値が不正です: %s", reason),
		Category: "validation",
		Action:   "タイトル、日付（YYYY-MM-DD）、時刻（HH:mm）を確認してください。",
	}
}

// NewInvalidReminderError はリマインダーの入力値エラーを生成する。
func NewInvalidReminderError(minutesBefore int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidReminder,
		Message:  fmt.Sprintf("リマインダーのオフセットが不正です: %d分", minutesBefore),
		Category: "validation",
		Action:   "minutesBeforeには0以上の整数を指定してください。",
	}
}
