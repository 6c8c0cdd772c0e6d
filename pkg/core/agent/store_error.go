package agent

import (
	"errors"
	"fmt"
)

// storeError 持久化存储错误（内部使用）
// 由握手层翻译为 store_error 错误码
type storeError struct {
	message string
	cause   error
}

func (e *storeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *storeError) Unwrap() error {
	return e.cause
}

// isStoreError 判断错误是否来自持久化存储
func isStoreError(err error) bool {
	var se *storeError
	return errors.As(err, &se)
}
