// Package assistant is the boundary to the language model provider. It
// exposes chat completion only; entitlement checks and coin charges stay in
// the services layer.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

// ErrEmptyCompletion is returned when the provider answers 200 with no
// choices in the body.
var ErrEmptyCompletion = errors.New("assistant returned no completion")

const DefaultBaseURL = "https://api.openai.com/v1"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Completion is the reply plus the provider's token accounting, which the
// caller records in the ledger entry metadata.
type Completion struct {
	Content     string
	TotalTokens int
}

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: utils.NewHTTPClient(60 * time.Second),
	}
}

// Complete runs one chat completion round. The system prompt is passed by
// the caller so medical-feature prompts stay with the feature code.
func (c *Client) Complete(ctx context.Context, systemPrompt string, messages []Message) (*Completion, error) {
	all := make([]Message, 0, len(messages)+1)
	if systemPrompt != "" {
		all = append(all, Message{Role: "system", Content: systemPrompt})
	}
	all = append(all, messages...)

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: all})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assistant provider returned %s", resp.Status)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Content:     cr.Choices[0].Message.Content,
		TotalTokens: cr.Usage.TotalTokens,
	}, nil
}
