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

// Package instruction resolves the raw -i argument into the final
// instruction text. The argument is either literal text or a path to a
// file containing the instruction; resolution happens exactly once, before
// the batch begins.
package instruction

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🏷️ Source indicates which branch resolution took
type Source int

const (
	// SourceLiteral means the argument was used verbatim
	SourceLiteral Source = iota
	// SourceFile means the argument named a file whose contents were read
	SourceFile
)

// String returns a string representation of Source
func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	default:
		return "literal"
	}
}

// 📜 Instruction is the resolved, immutable directive shared by every file
// in the batch
type Instruction struct {
	Text   string
	Source Source
}

// 🎯 Resolve turns the raw argument into an Instruction.
//
// A path that does not exist (or is a directory) is not an error: the raw
// string is the instruction. A read failure on an existing regular file is
// fatal, since the user clearly meant to load that file.
func Resolve(ctx context.Context, raw string) (Instruction, error) {
	logger := zerolog.Ctx(ctx)

	if raw == "" {
		return Instruction{}, errors.New("instruction must not be empty")
	}

	info, err := os.Stat(raw)
	if err != nil || info.IsDir() {
		logger.Debug().Str("instruction", raw).Msg("using literal instruction text")
		return Instruction{Text: raw, Source: SourceLiteral}, nil
	}

	data, err := os.ReadFile(raw)
	if err != nil {
		return Instruction{}, errors.Errorf("reading instruction file %s: %w", raw, err)
	}

	text := strings.TrimRight(string(data), " \t\r\n")
	if text == "" {
		return Instruction{}, errors.Errorf("instruction file %s is empty", raw)
	}

	logger.Debug().Str("path", raw).Int("bytes", len(data)).Msg("loaded instruction from file")
	return Instruction{Text: text, Source: SourceFile}, nil
}
