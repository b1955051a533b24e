package reframe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultOpenRouterModel is used when no model is configured.
const DefaultOpenRouterModel = "google/gemini-2.5-flash"

const openRouterEndpoint = "https://openrouter.ai/api/v1/chat/completions"

const promptTemplate = `You are a cognitive reframing assistant helping people manage stress.
Given a stressful thought, provide exactly three different reframes in JSON format.

IMPORTANT: You MUST respond in the SAME LANGUAGE as the user's input. If the input is in Thai, respond in Thai. If the input is in English, respond in English. Match the language exactly.

Stressful thought: "%s"

Provide three reframes:
1. Stoic: Focus on what the person can control, accepting what they cannot
2. Optimist: Find the silver lining or opportunity in the situation
3. Realist: Provide a balanced, practical perspective that acknowledges reality

Respond ONLY with valid JSON in this exact format:
{
  "stoic": "Your stoic reframe here",
  "optimist": "Your optimist reframe here",
  "realist": "Your realist reframe here"
}

Make each reframe concise (1-2 sentences), supportive, and actionable.
Remember: Your response MUST be in the same language as the input text above.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenRouterClient implements Generator against the OpenRouter chat API.
type OpenRouterClient struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewOpenRouterClient creates a client. An empty model falls back to
// DefaultOpenRouterModel.
func NewOpenRouterClient(apiKey, model string, logger zerolog.Logger) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenRouterClient{
		apiKey:   apiKey,
		model:    model,
		endpoint: openRouterEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		logger:   logger.With().Str("component", "openrouter").Logger(),
	}, nil
}

func (c *OpenRouterClient) Generate(ctx context.Context, thought string) (*Result, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(promptTemplate, thought)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(detail)).
			Msg("openrouter request failed")
		return nil, fmt.Errorf("openrouter returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openrouter returned no choices")
	}

	content := stripCodeFence(parsed.Choices[0].Message.Content)

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if result.Stoic == "" || result.Optimist == "" || result.Realist == "" {
		return nil, fmt.Errorf("model output missing a perspective")
	}

	c.logger.Debug().
		Dur("elapsed", time.Since(start)).
		Str("model", c.model).
		Msg("reframes generated")
	return &result, nil
}

// stripCodeFence removes a surrounding markdown code fence, with or
// without a json language tag, from model output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "```json"); ok {
		s = after
	} else if after, ok := strings.CutPrefix(s, "```"); ok {
		s = after
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
