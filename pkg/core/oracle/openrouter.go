package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
)

// DefaultBaseURL OpenRouter API地址
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterConfig OpenRouter客户端配置（对外导出）
type OpenRouterConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenRouterOracle 基于OpenRouter的依赖推理实现（对外导出）
// OpenRouter暴露OpenAI兼容接口，复用openai客户端并替换BaseURL即可
type OpenRouterOracle struct {
	client  *openai.LLM
	model   string
	timeout time.Duration
}

// NewOpenRouterOracle 创建OpenRouter推理客户端
// APIKey为空时回退到 OPENROUTER_API_KEY 环境变量，仍为空则报错
func NewOpenRouterOracle(cfg OpenRouterConfig) (*OpenRouterOracle, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("未配置OpenRouter API Key（设置 OPENROUTER_API_KEY 环境变量或配置文件）")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "openai/gpt-4"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("创建OpenRouter客户端失败: %w", err)
	}

	return &OpenRouterOracle{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Infer 调用模型推理任务依赖
func (o *OpenRouterOracle) Infer(ctx context.Context, tasks []task.Task) (map[string][]string, float64, error) {
	if len(tasks) == 0 {
		return map[string][]string{}, 0, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemMessage),
		llms.TextParts(llms.ChatMessageTypeHuman, buildPrompt(tasks)),
	}

	resp, err := o.client.GenerateContent(callCtx, messages)
	if err != nil {
		return nil, 0, translateError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, 0, NewOracleError(CodeMalformedOutput, "模型回复不含choices", false, nil)
	}

	deps, confidence, err := parseDependencies(resp.Choices[0].Content)
	if err != nil {
		return nil, 0, err
	}

	return deps, confidence, nil
}

// inferenceReply 模型回复的预期结构（内部使用）
type inferenceReply struct {
	Dependencies map[string][]string `json:"dependencies"`
	Confidence   float64             `json:"confidence"`
}

// parseDependencies 解析模型回复中的依赖映射与置信度
// 回复可能被Markdown围栏包裹，先做JSON提取再反序列化
func parseDependencies(content string) (map[string][]string, float64, error) {
	jsonStr, ok := extractJSON(content)
	if !ok {
		return nil, 0, NewOracleError(CodeMalformedOutput, "模型回复中未找到合法JSON", false, nil)
	}

	var reply inferenceReply
	if err := json.Unmarshal([]byte(jsonStr), &reply); err != nil {
		return nil, 0, NewOracleError(CodeMalformedOutput, "解析模型回复失败", false, err)
	}
	if reply.Dependencies == nil {
		return nil, 0, NewOracleError(CodeMalformedOutput, "模型回复缺少 dependencies 字段", false, nil)
	}

	return reply.Dependencies, reply.Confidence, nil
}

// translateError 将底层调用错误翻译为带错误码的OracleError
// langchaingo不提供结构化错误，只能按错误文本归类
func translateError(err error) *OracleError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key"):
		return NewOracleError(CodeAuthFailed, "OpenRouter认证失败，请检查API Key", false, err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return NewOracleError(CodeRateLimited, "OpenRouter限流", true, err)
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504"):
		return NewOracleError(CodeNetworkFailed, "OpenRouter服务端错误", true, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "connection"):
		return NewOracleError(CodeNetworkFailed, "连接OpenRouter失败", true, err)
	default:
		return NewOracleError(CodeInferenceFailed, "推理请求失败", false, err)
	}
}

// logDroppedEdge 记录被丢弃的非法依赖边
func logDroppedEdge(taskID, depID string) {
	log.Printf("[Oracle] 丢弃非法依赖: 任务 %s 引用了不存在的ID %s", taskID, depID)
}
