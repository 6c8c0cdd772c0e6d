package oracle

import (
	"errors"
	"strings"
	"testing"

	"github.com/MuhammadMaaz7/task-dependency-agent/pkg/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt_IncludesAllTaskFields(t *testing.T) {
	tasks := []task.Task{
		{ID: "t1", Name: "设计", Description: "设计数据库表结构"},
		{ID: "t2"},
	}

	prompt := buildPrompt(tasks)

	assert.Contains(t, prompt, "ID: t1")
	assert.Contains(t, prompt, "Name: 设计")
	assert.Contains(t, prompt, "Description: 设计数据库表结构")
	// 缺省字段使用占位值
	assert.Contains(t, prompt, "Name: Unnamed")
	assert.Contains(t, prompt, "Description: No description")
	assert.Contains(t, prompt, `"dependencies"`)
}

func TestParseDependencies_PlainJSON(t *testing.T) {
	deps, confidence, err := parseDependencies(`{"dependencies": {"b": ["a"], "c": ["a", "b"]}, "confidence": 0.85}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, deps["b"])
	assert.Equal(t, []string{"a", "b"}, deps["c"])
	assert.Equal(t, 0.85, confidence)
}

func TestParseDependencies_MarkdownFencedJSON(t *testing.T) {
	content := "Here is the result:\n```json\n{\"dependencies\": {\"b\": [\"a\"]}}\n```\nDone."
	deps, _, err := parseDependencies(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, deps["b"])
}

func TestParseDependencies_UnfencedJSONWithSurroundingText(t *testing.T) {
	content := `Based on the descriptions, {"dependencies": {"deploy": ["build", "test"]}} is my answer.`
	deps, _, err := parseDependencies(content)
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "test"}, deps["deploy"])
}

func TestParseDependencies_MissingDependenciesKey(t *testing.T) {
	_, _, err := parseDependencies(`{"result": {}}`)
	require.Error(t, err)
	assert.True(t, IsOracleError(err))
}

func TestParseDependencies_NotJSON(t *testing.T) {
	_, _, err := parseDependencies("I cannot determine the dependencies.")
	require.Error(t, err)

	var oe *OracleError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, CodeMalformedOutput, oe.Code)
	assert.False(t, oe.Retryable)
}

func TestExtractJSON_HandlesNestedBracesInStrings(t *testing.T) {
	content := `{"dependencies": {"b": ["a"]}, "note": "braces { inside } string"}`
	jsonStr, ok := extractJSON(content)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(jsonStr, "{"))
	assert.True(t, strings.HasSuffix(jsonStr, "}"))
}

func TestTranslateError_Classification(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"认证失败", errors.New("API returned unexpected status code: 401 Unauthorized"), CodeAuthFailed, false},
		{"限流", errors.New("API returned unexpected status code: 429 Too Many Requests"), CodeRateLimited, true},
		{"服务端错误", errors.New("API returned unexpected status code: 503 Service Unavailable"), CodeNetworkFailed, true},
		{"超时", errors.New("context deadline exceeded"), CodeNetworkFailed, true},
		{"其他", errors.New("something odd happened"), CodeInferenceFailed, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oe := translateError(tc.err)
			assert.Equal(t, tc.code, oe.Code)
			assert.Equal(t, tc.retryable, oe.Retryable)
		})
	}
}

func TestNewOpenRouterOracle_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := NewOpenRouterOracle(OpenRouterConfig{})
	require.Error(t, err)
}
