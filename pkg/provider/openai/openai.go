// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"net/http"
	"os"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/walteh/refactory/pkg/provider"
	"gitlab.com/tozd/go/errors"
)

func init() {
	provider.Register("openai", NewFromEnv)
}

// 🎯 Completer implements the provider interface for the OpenAI chat API
type Completer struct {
	client client
}

// client is the subset of the OpenAI SDK we call, extracted for tests
type client interface {
	CreateChatCompletion(ctx context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// 🏭 NewFromEnv creates a new OpenAI completer authenticated via OPENAI_API_KEY
func NewFromEnv(ctx context.Context) (provider.Completer, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.Errorf("OPENAI_API_KEY environment variable not set: %w", provider.ErrAuthentication)
	}

	return &Completer{
		client: goopenai.NewClient(key),
	}, nil
}

// 💬 Complete performs a single chat completion call
func (c *Completer) Complete(ctx context.Context, req provider.Request) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return "", classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.Errorf("completion returned no choices: %w", provider.ErrResponseInvalid)
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", errors.Errorf("completion returned empty content: %w", provider.ErrResponseInvalid)
	}

	return content, nil
}

// 🔍 classify maps OpenAI API errors onto the provider error taxonomy
func classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Errorf("completion request: %v: %w", err, provider.ErrAuthentication)
		case http.StatusTooManyRequests:
			return errors.Errorf("completion request: %v: %w", err, provider.ErrRateLimited)
		default:
			if apiErr.HTTPStatusCode >= 500 {
				return errors.Errorf("completion request: %v: %w", err, provider.ErrUnavailable)
			}
			return errors.Errorf("completion request: %w", err)
		}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return errors.Errorf("completion request: %v: %w", err, provider.ErrUnavailable)
	}

	return errors.Errorf("completion request: %v: %w", err, provider.ErrUnavailable)
}
