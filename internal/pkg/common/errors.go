package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以穿透原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，使包裝過的預定義錯誤仍可用 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Wrap 以預定義錯誤為模板附加原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ToResponse 將任意錯誤轉為 HTTP 狀態碼與響應內容
func ToResponse(err error) (int, ErrorResponse) {
	var ce *CustomError
	if errors.As(err, &ce) {
		resp := ErrorResponse{Code: ce.Code, Message: ce.Message}
		if ce.Err != nil {
			resp.Details = ce.Err.Error()
		}
		return ce.Status, resp
	}
	if IsValidationError(err) {
		return http.StatusBadRequest, ErrorResponse{Code: ErrCodeInvalidRequest, Message: err.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Code: ErrCodeInternalError, Message: "internal server error"}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeNotFound        = "NOT_FOUND"         // 404
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE" // 413
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 504

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503

	// 業務錯誤
	ErrCodeFormulaNotFound    = "FORMULA_NOT_FOUND"
	ErrCodeDraftNotFound      = "DRAFT_NOT_FOUND"
	ErrCodeEmptyFormula       = "EMPTY_FORMULA"
	ErrCodeUnknownCanonical   = "UNKNOWN_CANONICAL"
	ErrCodeInvalidFormulaJSON = "INVALID_FORMULA_JSON"
	ErrCodeStorage            = "STORAGE_ERROR"
	ErrCodeCatalogLoad        = "CATALOG_LOAD_ERROR"
	ErrCodeAliasConflict      = "ALIAS_CONFLICT"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrRequestTooLarge = NewError(ErrCodeRequestTooLarge, "請求內容過大", http.StatusRequestEntityTooLarge, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求逾時", http.StatusGatewayTimeout, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)

	// 業務錯誤
	ErrFormulaNotFound    = NewError(ErrCodeFormulaNotFound, "配方不存在", http.StatusNotFound, nil)
	ErrDraftNotFound      = NewError(ErrCodeDraftNotFound, "草稿不存在", http.StatusNotFound, nil)
	ErrEmptyFormula       = NewError(ErrCodeEmptyFormula, "配方至少需要一種原料", http.StatusBadRequest, nil)
	ErrUnknownCanonical   = NewError(ErrCodeUnknownCanonical, "目錄中找不到對應的標準名稱", http.StatusBadRequest, nil)
	ErrInvalidFormulaJSON = NewError(ErrCodeInvalidFormulaJSON, "無效的配方 JSON", http.StatusBadRequest, nil)
	ErrStorage            = NewError(ErrCodeStorage, "儲存失敗", http.StatusInternalServerError, nil)
	ErrCatalogLoad        = NewError(ErrCodeCatalogLoad, "原料目錄載入失敗", http.StatusInternalServerError, nil)
	ErrAliasConflict      = NewError(ErrCodeAliasConflict, "別名與目錄中的名稱衝突", http.StatusConflict, nil)
)
