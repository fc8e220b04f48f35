package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"

	defaultTemperature = 0.2
	defaultMaxTokens   = 800
)

// systemPrompt pins the answer style: plain text, no markdown
// decoration, numbered lists only.
const systemPrompt = "你是谨慎可靠的助手。要求：1) 内容准确、必要时给出可执行建议；" +
	"2) 无法确认时明确说明不确定并给出安全做法；" +
	"3) 输出为【纯文本】，不要使用任何 Markdown 或装饰字符；禁止出现 *, **, #, _, `, >, 以及表情符号；" +
	"4) 列表仅使用阿拉伯数字编号（1. 2. 3.）和短横线子项（- ），不要加粗/斜体/代码块；" +
	"5) 保持中文标点与换行整洁。"

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, apiKey, model string, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

// Ask sends a single-prompt conversation and returns the plain-text
// answer.
func (c *Client) Ask(ctx context.Context, prompt string) (*Answer, error) {
	return c.Chat(ctx, []ChatMessage{{Role: "user", Content: prompt}})
}

// Chat sends a full conversation. The style system prompt is prepended
// unless the caller already supplied a system turn.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (*Answer, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	if messages[0].Role != "system" {
		messages = append([]ChatMessage{{Role: "system", Content: systemPrompt}}, messages...)
	}

	req := ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		Stream:      false,
		MaxTokens:   defaultMaxTokens,
	}

	var response ChatCompletionResponse
	if err := c.makeRequest(ctx, "POST", "/v1/chat/completions", req, &response); err != nil {
		return nil, err
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	model := response.Model
	if model == "" {
		model = c.model
	}

	return &Answer{
		Text:  strings.TrimSpace(response.Choices[0].Message.Content),
		Model: model,
	}, nil
}

// ChatWithAttachments folds attachment text into the system turn so
// the model answers with the supplied documents in scope.
func (c *Client) ChatWithAttachments(ctx context.Context, messages []ChatMessage, attachments []string) (*Answer, error) {
	if len(attachments) == 0 {
		return c.Chat(ctx, messages)
	}

	system := systemPrompt + "\n\n以下是与用户问题相关的文件内容，请结合回答：\n" + strings.Join(attachments, "\n\n")
	combined := append([]ChatMessage{{Role: "system", Content: system}}, messages...)
	return c.Chat(ctx, combined)
}

// Ping checks API reachability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("deepseek API unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	url := c.baseURL + endpoint

	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
		contentLength = len(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"method": method,
		"url":    url,
		"size":   contentLength,
	}).Debug("Making DeepSeek API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"url":           url,
		"response_size": len(responseBody),
	}).Debug("DeepSeek API response received")

	if len(responseBody) < 500 || resp.StatusCode >= 400 {
		c.logger.WithFields(logrus.Fields{
			"status_code":   resp.StatusCode,
			"response_body": string(responseBody),
		}).Debug("Response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
