package util

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 业务错误分类，controller 依此映射 HTTP 状态码
type ErrorKind string

const (
	KindNotFound            ErrorKind = "not_found"
	KindValidation          ErrorKind = "validation_error"
	KindInUse               ErrorKind = "in_use"
	KindHasResponses        ErrorKind = "has_responses"
	KindFiling              ErrorKind = "filing_error"
	KindUnknownQuestionType ErrorKind = "unknown_question_type"
	KindForbidden           ErrorKind = "forbidden"
	KindUnauthorized        ErrorKind = "unauthorized"
)

// AppError 可以直接展示给用户的错误，Err 保存底层原因仅用于日志
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewNotFoundError(format string, args ...interface{}) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...interface{}) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewInUseError(format string, args ...interface{}) error {
	return &AppError{Kind: KindInUse, Message: fmt.Sprintf(format, args...)}
}

func NewHasResponsesError(format string, args ...interface{}) error {
	return &AppError{Kind: KindHasResponses, Message: fmt.Sprintf(format, args...)}
}

func NewFilingError(cause error, format string, args ...interface{}) error {
	return &AppError{Kind: KindFiling, Message: fmt.Sprintf(format, args...), Err: cause}
}

func NewUnknownQuestionTypeError(name string) error {
	return &AppError{Kind: KindUnknownQuestionType, Message: fmt.Sprintf("unknown question type %q", name)}
}

func NewForbiddenError(format string, args ...interface{}) error {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(format string, args ...interface{}) error {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind 判断错误链中是否包含指定分类的 AppError
func IsKind(err error, kind ErrorKind) bool {
	ae, ok := AsAppError(err)
	return ok && ae.Kind == kind
}

// StatusFor 错误分类对应的 HTTP 状态码
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindUnknownQuestionType, KindFiling:
		return http.StatusUnprocessableEntity
	case KindInUse, KindHasResponses:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
