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

// Package prompt composes the instruction and a file's content into the
// chat message sequence sent to the model, and extracts the rewritten file
// contents from the model's reply.
//
// The conversation uses tagged sections so the model's response can be
// parsed mechanically: the user message wraps its parts in <INSTRUCTION>
// and <FILECONTENTS> tags, and the model is expected to answer with
// <REASONING> and <CHANGED_FILE_CONTENTS> sections. One canned exchange is
// included as a few-shot example to anchor the format.
package prompt

import (
	"fmt"
	"strings"

	"github.com/walteh/refactory/pkg/provider"
	"gitlab.com/tozd/go/errors"
)

const (
	startTag = "<CHANGED_FILE_CONTENTS>"
	endTag   = "</CHANGED_FILE_CONTENTS>"

	systemMessage = "You are an expert code transformation assistant. Your task is to carefully " +
		"refactor code based on the user's instruction and return only the modified file contents " +
		"enclosed within <CHANGED_FILE_CONTENTS> tags. Additionally, provide your reasoning inside " +
		"<REASONING> tags. Do not include any other text outside these tags."

	exampleUser = "<INSTRUCTION>\nReplace all variable names that start with \"old_\" to start with \"new_\".\n</INSTRUCTION>\n\n" +
		"<FILECONTENTS>\nlet old_value = 10;\nlet old_name = \"example\";\nlet other_var = 5;\n</FILECONTENTS>"

	exampleAssistant = "<REASONING>\nThe instruction is to change all variable names that start with \"old_\" to \"new_\". " +
		"This is a straightforward text transformation, so the variables old_value and old_name will be renamed to " +
		"new_value and new_name, respectively. Variables that don't start with \"old_\" remain unchanged.\n</REASONING>\n\n" +
		"<CHANGED_FILE_CONTENTS>\nlet new_value = 10;\nlet new_name = \"example\";\nlet other_var = 5;\n</CHANGED_FILE_CONTENTS>"
)

// 🔧 Builder composes completion requests for a fixed instruction and model
type Builder struct {
	model       string
	instruction string
}

// 🏭 NewBuilder creates a new prompt builder
func NewBuilder(model, instruction string) *Builder {
	return &Builder{
		model:       model,
		instruction: instruction,
	}
}

// 📦 Build produces the completion request for one file's content
func (b *Builder) Build(content string) provider.Request {
	return provider.Request{
		Model: b.model,
		Messages: []provider.Message{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: exampleUser},
			{Role: "assistant", Content: exampleAssistant},
			{Role: "user", Content: fmt.Sprintf(
				"<INSTRUCTION>\n%s\n</INSTRUCTION>\n\n<FILECONTENTS>\n%s\n</FILECONTENTS>",
				b.instruction, content,
			)},
		},
	}
}

// 🔍 Extract pulls the rewritten file contents out of the model's reply.
//
// A reply missing either tag, or whose tagged section is empty after
// trimming, is a malformed completion: nothing should be written to disk
// from it.
func Extract(output string) (string, error) {
	start := strings.Index(output, startTag)
	if start < 0 {
		return "", errors.Errorf("response missing %s tag: %w", startTag, provider.ErrResponseInvalid)
	}
	start += len(startTag)

	end := strings.Index(output[start:], endTag)
	if end < 0 {
		return "", errors.Errorf("response missing %s tag: %w", endTag, provider.ErrResponseInvalid)
	}

	content := strings.TrimSpace(output[start : start+end])
	if content == "" {
		return "", errors.Errorf("response contained no file contents: %w", provider.ErrResponseInvalid)
	}

	return content, nil
}
