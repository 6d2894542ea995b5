// Package openai calls an OpenAI-compatible text completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talx-hub/gopher-assist/internal/model"
	"github.com/talx-hub/gopher-assist/internal/serviceerrs"
	"github.com/talx-hub/gopher-assist/internal/utils/logger"
)

const DefaultURL = "https://api.openai.com/v1/completions"

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

var ErrNoChoices = errors.New("provider returned no completions")

type completionRequest struct {
	Model     string   `json:"model,omitempty"`
	Prompt    string   `json:"prompt"`
	Stop      []string `json:"stop"`
	MaxTokens int      `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type HTTPClient struct {
	client    *http.Client
	url       string
	apiKey    string
	modelName string
	maxTokens int
}

func New(url, apiKey, modelName string) *HTTPClient {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPClient{
		client:    &http.Client{},
		url:       url,
		apiKey:    apiKey,
		modelName: modelName,
		maxTokens: model.DefaultMaxTokens,
	}
}

func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model:     c.modelName,
		Prompt:    prompt,
		Stop:      []string{model.CompletionStop},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode the request: %w", err)
	}

	request, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create the request: %w", err)
	}
	request.Header.Set(model.HeaderContentType, model.ContentTypeJSON)
	request.Header.Set(model.HeaderAuthorization, "Bearer "+c.apiKey)

	resp, err := c.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to send request to the provider: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			logger.FromContext(ctx).LogAttrs(
				ctx,
				slog.LevelError,
				"failed to close the response body",
				slog.Any(model.KeyLoggerError, err),
			)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read the body: %w", err)
	}

	return c.handleResponse(resp, body)
}

func (c *HTTPClient) handleResponse(resp *http.Response, body []byte,
) (string, error) {
	switch {
	case resp.StatusCode == http.StatusOK:
		var data completionResponse
		if err := json.Unmarshal(body, &data); err != nil {
			return "", fmt.Errorf("response decoding error: %w", err)
		}
		if len(data.Choices) == 0 {
			return "", ErrNoChoices
		}
		return data.Choices[0].Text, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &serviceerrs.TooManyRequestsError{
			RetryAfter: parseRetryAfter(resp.Header.Get(model.HeaderRetryAfter)),
		}
	}

	return "", fmt.Errorf("unexpected status: %d: %s",
		resp.StatusCode, errorMessage(body))
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if sec, err := strconv.Atoi(value); err == nil && sec > 0 {
		return time.Duration(sec) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func errorMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		if e.Error.Type != "" {
			return e.Error.Type + ": " + e.Error.Message
		}
		return e.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}
