package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProjectsTask/EasySwapMarket/src/pkg/errcode"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xhttp"
	"github.com/ProjectsTask/EasySwapMarket/src/service/accesscontrol"
	"github.com/ProjectsTask/EasySwapMarket/src/service/comm"
	"github.com/ProjectsTask/EasySwapMarket/src/service/svc"
)

const testAdmin = "0xA000000000000000000000000000000000000001"

func newAccessCtx() *svc.ServerCtx {
	access := accesscontrol.New(comm.SystemClock{}, nil, time.Hour, testAdmin)
	return &svc.ServerCtx{Access: access}
}

// postJSON 直接驱动 handler, 返回解析后的统一响应
func postJSON(t *testing.T, handler gin.HandlerFunc, body interface{}) xhttp.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)

	var resp xhttp.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGrantRoleHandlerValidatesAddress(t *testing.T) {
	svcCtx := newAccessCtx()

	// 非法地址在进入领域服务之前被拒绝
	resp := postJSON(t, GrantRoleHandler(svcCtx), map[string]string{
		"caller":  testAdmin,
		"role":    "MINTER",
		"account": "not-an-address",
	})
	assert.Equal(t, errcode.CodeInvalidParams, resp.Code)
	assert.False(t, svcCtx.Access.CanMint("not-an-address"))

	// 合法地址正常放行
	account := "0xB000000000000000000000000000000000000001"
	resp = postJSON(t, GrantRoleHandler(svcCtx), map[string]string{
		"caller":  testAdmin,
		"role":    "MINTER",
		"account": account,
	})
	assert.Equal(t, errcode.CodeOK, resp.Code)
	assert.True(t, svcCtx.Access.CanMint(account))
}

func TestAuthorizeContractHandlerValidatesAddress(t *testing.T) {
	svcCtx := newAccessCtx()

	// 长度不合法的合约地址被拒绝
	resp := postJSON(t, AuthorizeContractHandler(svcCtx), map[string]string{
		"caller":        testAdmin,
		"contract_addr": "0x123",
	})
	assert.Equal(t, errcode.CodeInvalidParams, resp.Code)
	assert.False(t, svcCtx.Access.IsAuthorizedContract("0x123"))
}

func TestPauseHandlerValidatesCaller(t *testing.T) {
	svcCtx := newAccessCtx()

	resp := postJSON(t, PauseHandler(svcCtx), map[string]string{
		"caller": "bogus",
	})
	assert.Equal(t, errcode.CodeInvalidParams, resp.Code)
	assert.False(t, svcCtx.Access.IsPaused())
}
