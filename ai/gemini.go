// Package ai 提供外部大模型客户端：
// GeminiClient 实现 core.AIRelevanceClient，通过 HTTP 调用
// Gemini generateContent 接口做文章相关性评估。
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rushteam/feedkit/core"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// DefaultModels 是候选模型链，按序尝试，首个成功即返回。
var DefaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-1.0-pro",
}

// GeminiClient 是基于 HTTP 的相关性评估客户端。
// 单篇评估一次请求；候选模型顺序回退，全部失败才返回错误。
type GeminiClient struct {
	APIKey  string
	BaseURL string
	Models  []string
	Timeout time.Duration
	Client  *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	timeout := 15 * time.Second
	return &GeminiClient{
		APIKey:  apiKey,
		BaseURL: defaultBaseURL,
		Models:  DefaultModels,
		Timeout: timeout,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *GeminiClient) Name() string {
	return "gemini"
}

// Analyze 评估文章与用户兴趣的相关性，返回 0-100 分与理由。
// 模型返回不可解析时返回 (nil, nil)，信号记为缺失而非错误。
func (c *GeminiClient) Analyze(ctx context.Context, title, text string, interests []string) (*core.RelevanceJudgement, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key not configured")
	}

	prompt := buildPrompt(title, text, interests)

	var lastErr error
	for _, model := range c.models() {
		raw, err := c.generate(ctx, model, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		judgement, err := parseJudgement(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return judgement, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("gemini: all models failed: %w", lastErr)
	}
	return nil, nil
}

func (c *GeminiClient) models() []string {
	if len(c.Models) > 0 {
		return c.Models
	}
	return DefaultModels
}

// 请求/响应结构只保留用到的字段
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate 对单个模型发起一次 generateContent 调用，返回文本回复。
func (c *GeminiClient) generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", base, model, c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d: %s", model, resp.StatusCode, truncate(string(body), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s returned no candidates", model)
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt 要求模型只输出 {"score": .., "reasoning": ".."} 形态的 JSON。
func buildPrompt(title, text string, interests []string) string {
	var b strings.Builder
	b.WriteString("Rate how relevant this news article is to the user's interests on a 0-100 scale.\n")
	b.WriteString("Respond with JSON only: {\"score\": <number>, \"reasoning\": \"<one sentence>\"}\n\n")
	if len(interests) > 0 {
		b.WriteString("User interests: ")
		b.WriteString(strings.Join(interests, ", "))
		b.WriteString("\n")
	}
	b.WriteString("Title: ")
	b.WriteString(title)
	b.WriteString("\n")
	if text != "" {
		b.WriteString("Content: ")
		b.WriteString(truncate(text, 2000))
		b.WriteString("\n")
	}
	return b.String()
}

// parseJudgement 宽容解析模型回复：去掉 markdown 代码围栏后取首个 JSON 对象。
func parseJudgement(raw string) (*core.RelevanceJudgement, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var j core.RelevanceJudgement
	if err := json.Unmarshal([]byte(s[start:end+1]), &j); err != nil {
		return nil, fmt.Errorf("decode judgement: %w", err)
	}
	if j.Score < 0 {
		j.Score = 0
	}
	if j.Score > 100 {
		j.Score = 100
	}
	return &j, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ core.AIRelevanceClient = (*GeminiClient)(nil)
