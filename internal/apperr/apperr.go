// Package apperr 定义了业务层向 HTTP 边界传递的结构化错误。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindQuery
)

// 内部错误码，与 HTTP 状态码分开维护。
const (
	CodeParamsError = 400
	CodeServerError = 500
)

// 哨兵错误，配合 errors.Is 判断分类。
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrQuery      = errors.New("query error")
)

// Error 携带面向用户的提示信息、HTTP 状态码和内部错误码。
type Error struct {
	Kind       Kind
	Message    string
	HTTPStatus int
	Code       int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrNotFound) 等判断按分类生效。
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrQuery:
		return e.Kind == KindQuery
	}
	return false
}

// Validation 输入违反约束，请求被拒绝且不产生任何写入。
func Validation(format string, args ...any) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusBadRequest,
		Code:       CodeParamsError,
	}
}

// NotFound 引用的 id 不存在。对外与参数错误使用相同的状态码。
func NotFound(format string, args ...any) *Error {
	return &Error{
		Kind:       KindNotFound,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusBadRequest,
		Code:       CodeParamsError,
	}
}

// Query 包装存储层拒绝执行的查询错误，不重试。
func Query(err error, format string, args ...any) *Error {
	return &Error{
		Kind:       KindQuery,
		Message:    fmt.Sprintf(format, args...),
		HTTPStatus: http.StatusInternalServerError,
		Code:       CodeServerError,
		Err:        err,
	}
}

// As 提取 *Error，不是结构化错误时返回 false。
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
