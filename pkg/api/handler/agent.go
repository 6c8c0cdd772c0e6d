package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
)

// AgentHandler 监督方握手API处理器
type AgentHandler struct {
	agent *agent.TaskDependencyAgent
}

// NewAgentHandler 创建AgentHandler
func NewAgentHandler(a *agent.TaskDependencyAgent) *AgentHandler {
	return &AgentHandler{agent: a}
}

// Resolve 处理握手请求
// POST /api/v1/agent/resolve
// 请求体无法解析时同样返回握手格式的错误响应，保持契约统一
func (h *AgentHandler) Resolve(c *gin.Context) {
	var req dto.AgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := dto.NewAgentErrorResponse(
			req.RequestID, h.agent.Name(), agent.ErrCodeInvalidInput,
			"请求体不是合法的JSON握手载荷")
		c.JSON(httpStatusFor(resp), resp)
		return
	}

	resp := h.agent.HandleRequest(c.Request.Context(), &req)
	c.JSON(httpStatusFor(resp), resp)
}

// httpStatusFor 握手响应到HTTP状态码的映射
// 软错误（阻塞、环）随success返回200；硬错误按错误码区分4xx/5xx
func httpStatusFor(resp *dto.AgentResponse) int {
	if resp.Status == dto.StatusSuccess {
		return http.StatusOK
	}
	if resp.Error == nil {
		return http.StatusInternalServerError
	}
	switch resp.Error.Code {
	case agent.ErrCodeInvalidAgent, agent.ErrCodeUnsupportedIntent, agent.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case agent.ErrCodeOracleError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
