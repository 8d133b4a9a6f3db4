package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/ProjectsTask/EasySwapMarket/src/pkg/errcode"
)

// Response 统一响应结构
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// OkJson 返回成功响应
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: errcode.CodeOK,
		Msg:  "success",
		Data: data,
	})
}

// Error 返回错误响应
// 如果 err 是 *errcode.Err 则透传错误码, 否则包装为内部错误
func Error(c *gin.Context, err error) {
	var e *errcode.Err
	if !errors.As(err, &e) {
		e = errcode.NewErr(errcode.CodeUnexpected, err.Error())
	}
	c.JSON(http.StatusOK, Response{
		Code: e.Code,
		Msg:  e.Msg,
	})
}
