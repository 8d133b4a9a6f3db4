package errcode

import "fmt"

// Err 业务错误码
// Code 用于前端/客户端判断错误类型, Msg 为展示信息
type Err struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Error 实现 error 接口
func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// NewErr 创建指定错误码的错误
func NewErr(code int, msg string) *Err {
	return &Err{Code: code, Msg: msg}
}

// NewCustomErr 创建自定义错误 (统一使用自定义错误码)
func NewCustomErr(msg string) *Err {
	return NewErr(CodeCustom, msg)
}

const (
	CodeOK            = 200
	CodeCustom        = 10000 // 自定义错误
	CodeInvalidParams = 10001 // 参数错误
	CodeUnauthorized  = 10002 // 无权限
	CodePaused        = 10003 // 系统暂停
	CodeNotFound      = 10004 // 记录不存在
	CodeConflict      = 10005 // 状态冲突
	CodeInsufficient  = 10006 // 资金不足
	CodeUnexpected    = 10500 // 服务内部错误
)

var (
	ErrInvalidParams = NewErr(CodeInvalidParams, "invalid params")
	ErrUnauthorized  = NewErr(CodeUnauthorized, "unauthorized account")
	ErrSystemPaused  = NewErr(CodePaused, "system paused")
	ErrNotFound      = NewErr(CodeNotFound, "record not found")
	ErrUnexpected    = NewErr(CodeUnexpected, "internal server error")
)
