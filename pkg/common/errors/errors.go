// pkg/common/errors/errors.go

/*
  - 使用实例
    // 在 handler 中记录内部错误，由日志中间件统一输出:
    c.Error(errors.Private(err))

    // 判断存储层错误:
    if errors.Is(err, apperrors.ErrDuplicateEntry) {
    // ...
    }
*/
package errors

import (
	"errors"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// 存储层统一错误
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrDatabaseInternal = errors.New("database internal error")
)

// Private 包装成 Hertz 私有错误，只写日志不返回给客户端
func Private(err error) *hzte.Error {
	return hzte.New(err, hzte.ErrorTypePrivate, nil)
}

// Public 包装成 Hertz 公开错误，可选附加元数据
func Public(err error, meta interface{}) *hzte.Error {
	return hzte.New(err, hzte.ErrorTypePublic, meta)
}
