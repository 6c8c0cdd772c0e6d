package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/agent"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/storage"
)

// TaskHandler 任务库API处理器
type TaskHandler struct {
	repo  storage.TaskRepository
	agent *agent.TaskDependencyAgent
}

// NewTaskHandler 创建TaskHandler
func NewTaskHandler(repo storage.TaskRepository, a *agent.TaskDependencyAgent) *TaskHandler {
	return &TaskHandler{repo: repo, agent: a}
}

// List 列出数据库中的全部任务
// GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQueryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("查询参数错误: %v", err)))
		return
	}

	if h.repo == nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "存储未配置"))
		return
	}

	tasks, err := h.repo.GetAllTasks(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("查询任务失败: %v", err)))
		return
	}

	// 按状态过滤
	filtered := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if query.Status != "" && t.Status != query.Status {
			continue
		}
		filtered = append(filtered, t)
	}

	// 分页
	limit := query.GetDefaultLimit()
	offset := query.Offset
	total := len(filtered)

	if offset >= total {
		filtered = []task.Task{}
	} else {
		end := offset + limit
		if end > total {
			end = total
		}
		filtered = filtered[offset:end]
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TaskListResponse{
		Total: total,
		Items: filtered,
	}))
}

// Create 保存单个任务
// POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var t task.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求体错误: %v", err)))
		return
	}
	if t.ID == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, "任务ID不能为空"))
		return
	}

	if h.repo == nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, "存储未配置"))
		return
	}

	if err := h.repo.SaveTask(ctx, t); err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("保存任务失败: %v", err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"message": "任务已保存",
		"id":      t.ID,
	}))
}

// ResolveFromStore 触发数据库端到端解析工作流
// POST /api/v1/tasks/resolve
func (h *TaskHandler) ResolveFromStore(c *gin.Context) {
	outcome, err := h.agent.ProcessFromStore(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, fmt.Sprintf("数据库工作流失败: %v", err)))
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.AgentOutput{
		Result:     outcome.Result,
		Confidence: outcome.Confidence,
		Details:    outcome.Details,
	}))
}
