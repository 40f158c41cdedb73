package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to an OpenAI-compatible chat completions endpoint and asks it
// for a price suggestion for one product.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewClient(baseURL, apiKey, model string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("LLM_API_URL not set")
	}
	if apiKey == "" {
		return nil, errors.New("LLM_API_KEY not set")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type ProductInfo struct {
	Name            string
	Description     string
	CurrentPrice    float64
	CategoryAverage float64
}

type Recommendation struct {
	RecommendedPrice float64 `json:"recommended_price"`
	Rationale        string  `json:"rationale"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You are a pricing assistant for a handmade goods marketplace. ` +
	`Reply with a JSON object containing "recommended_price" (number) and "rationale" (short string).`

func (c *Client) RecommendPrice(ctx context.Context, p ProductInfo) (*Recommendation, error) {
	prompt := fmt.Sprintf(
		"Product: %s\nDescription: %s\nCurrent price: %.2f\nCategory average price: %.2f\nSuggest a price.",
		p.Name, p.Description, p.CurrentPrice, p.CategoryAverage,
	)

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm service error: %s", resp.Status)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("llm response decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("llm response has no choices")
	}

	var rec Recommendation
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &rec); err != nil {
		return nil, fmt.Errorf("llm content decode: %w", err)
	}
	if rec.RecommendedPrice <= 0 {
		return nil, errors.New("llm returned non-positive price")
	}
	return &rec, nil
}
