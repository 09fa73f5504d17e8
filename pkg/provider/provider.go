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

package provider

import (
	"context"

	"gitlab.com/tozd/go/errors"
)

// 💬 Message is a single turn in a chat completion conversation
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// 📦 Request is the payload for a single completion call
type Request struct {
	Model    string // Model identifier, forwarded verbatim to the endpoint
	Messages []Message
}

// 🔌 Completer sends a prompt to the model endpoint and returns generated text
type Completer interface {
	// Complete performs one completion call. No retries happen at this
	// layer; the returned error is classified against the sentinels below.
	Complete(ctx context.Context, req Request) (string, error)
}

// 🏭 Factory creates a new completer
type Factory func(ctx context.Context) (Completer, error)

var (
	// 🗺️ completers is a map of provider names to factories
	completers = make(map[string]Factory)
)

// 📝 Register registers a completer factory
func Register(name string, factory Factory) {
	completers[name] = factory
}

// 🎯 Get returns a completer factory by name
func Get(name string) (Factory, error) {
	factory, ok := completers[name]
	if !ok {
		return nil, errors.Errorf("unknown completion provider: %s", name)
	}
	return factory, nil
}

// Completion error taxonomy. The batch loop treats all of these as
// recoverable per file; they exist so failure reasons can be reported
// precisely in the summary.
var (
	// 🔑 ErrAuthentication indicates a rejected or missing credential
	ErrAuthentication = errors.New("authentication failed")

	// 🐢 ErrRateLimited indicates the endpoint throttled the request
	ErrRateLimited = errors.New("rate limited")

	// 🗑️ ErrResponseInvalid indicates an empty or malformed completion
	ErrResponseInvalid = errors.New("invalid completion response")

	// 🔌 ErrUnavailable indicates a network or server-side failure
	ErrUnavailable = errors.New("completion service unavailable")
)
