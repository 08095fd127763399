package service

import (
	"errors"
	"fmt"
)

// ErrorKind 是對外可見的錯誤分類，handler 依此決定狀態碼與固定訊息
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindNotFound
	KindUnauthorized
	KindChallengeRequired
	KindStoreFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindUnauthorized:
		return "Unauthorized"
	case KindChallengeRequired:
		return "ChallengeRequired"
	case KindStoreFailure:
		return "StoreFailure"
	default:
		return "Internal"
	}
}

// Error 帶著分類與原始錯誤，原始錯誤只寫進 log
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf 取出錯誤分類，非 *Error 一律視為 KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
