package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindBadRequest      Kind = "bad_request"
	KindInternal        Kind = "internal"
)

const (
	MsgUnauthenticated = "Unauthenticated User!"
	MsgUnknown         = "An unknown error occured!"
)

// Error 业务错误：Msg 给客户端，Err 只进日志
type Error struct {
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, status int, msg string, err error) *Error {
	return &Error{Kind: k, Status: status, Msg: msg, Err: err}
}

func Validation(msg string) *Error { return newErr(KindValidation, http.StatusUnprocessableEntity, msg, nil) }
func NotFound(msg string) *Error   { return newErr(KindNotFound, http.StatusNotFound, msg, nil) }
func BadRequest(msg string) *Error { return newErr(KindBadRequest, http.StatusBadRequest, msg, nil) }
func Conflict(msg string) *Error   { return newErr(KindConflict, http.StatusConflict, msg, nil) }

func Unauthenticated(msg string) *Error {
	if msg == "" {
		msg = MsgUnauthenticated
	}
	return newErr(KindUnauthenticated, http.StatusUnauthorized, msg, nil)
}

// NotOwner 操作他人的实体：对外按 404 处理，不暴露存在性
func NotOwner(msg string) *Error { return newErr(KindForbidden, http.StatusNotFound, msg, nil) }

func Internal(msg string, err error) *Error {
	if msg == "" {
		msg = MsgUnknown
	}
	return newErr(KindInternal, http.StatusInternalServerError, msg, err)
}

// Wrap 已是 *Error 的原样返回，否则包成 Internal(msg)
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Internal(msg, err)
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func Is(err error, k Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == k
}

// Status 未知错误统一 500
func Status(err error) (int, string) {
	if e, ok := As(err); ok {
		return e.Status, e.Msg
	}
	return http.StatusInternalServerError, MsgUnknown
}
