package agentclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/api/dto"
	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// AgentClient HTTP API客户端
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建AgentClient客户端
func New(baseURL string) *AgentClient {
	return &AgentClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ========== Agent API ==========

// Resolve 提交握手请求
func (c *AgentClient) Resolve(req *dto.AgentRequest) (*dto.AgentResponse, error) {
	var resp dto.AgentResponse
	if err := c.post("/api/v1/agent/resolve", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ========== Task API ==========

// ListTasks 列出数据库中的任务
func (c *AgentClient) ListTasks(status string, limit, offset int) (*dto.TaskListResponse, error) {
	params := url.Values{}
	if status != "" {
		params.Set("status", status)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		params.Set("offset", fmt.Sprintf("%d", offset))
	}

	path := "/api/v1/tasks"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp dto.APIResponse[dto.TaskListResponse]
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// SaveTask 保存单个任务
func (c *AgentClient) SaveTask(t task.Task) error {
	var resp dto.APIResponse[map[string]string]
	if err := c.post("/api/v1/tasks", t, &resp); err != nil {
		return err
	}
	if resp.Code != 0 {
		return fmt.Errorf("%s", resp.Message)
	}
	return nil
}

// ResolveFromStore 触发数据库端到端解析工作流
func (c *AgentClient) ResolveFromStore() (*dto.AgentOutput, error) {
	var resp dto.APIResponse[dto.AgentOutput]
	if err := c.post("/api/v1/tasks/resolve", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// ========== Health API ==========

// Health 健康检查
func (c *AgentClient) Health() (*dto.HealthResponse, error) {
	var resp dto.APIResponse[dto.HealthResponse]
	if err := c.get("/health", &resp); err != nil {
		return nil, err
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("%s", resp.Message)
	}
	return &resp.Data, nil
}

// ========== HTTP Methods ==========

func (c *AgentClient) get(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp, result)
}

func (c *AgentClient) post(path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", reqBody)
	if err != nil {
		return fmt.Errorf("HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp, result)
}

func (c *AgentClient) parseResponse(resp *http.Response, result interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应体失败: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("解析响应失败: %w, body: %s", err, string(body))
	}
	return nil
}
