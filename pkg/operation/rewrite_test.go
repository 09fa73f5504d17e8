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

package operation_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/refactory/pkg/config"
	"github.com/walteh/refactory/pkg/instruction"
	"github.com/walteh/refactory/pkg/log"
	"github.com/walteh/refactory/pkg/operation"
	"github.com/walteh/refactory/pkg/provider"
	"github.com/walteh/refactory/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🚗 fakeCompleter implements provider.Completer for testing
type fakeCompleter struct {
	mu    sync.Mutex
	calls int
	reqs  []provider.Request
	fn    func(req provider.Request) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	f.calls++
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return f.fn(req)
}

// 🧪 tagged wraps content the way a well-behaved model reply does
func tagged(content string) string {
	return fmt.Sprintf("<REASONING>\nok\n</REASONING>\n\n<CHANGED_FILE_CONTENTS>\n%s\n</CHANGED_FILE_CONTENTS>", content)
}

// 🧪 chdir switches into dir for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// 🧪 writeFile creates a file in the current test directory
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

// 🧪 readFile reads a file back
func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(content)
}

// 🧪 newTestOp wires an operator with a fake completer
func newTestOp(t *testing.T, cfg *config.Config, completer provider.Completer) (operation.Operator, *status.Manager) {
	t.Helper()
	require.NoError(t, cfg.Validate())

	mgr := status.New(".")
	op, err := operation.New(operation.Options{
		Config:      cfg,
		Instruction: instruction.Instruction{Text: "Replace all variable names starting with 'old_' with 'new_'"},
		Completer:   completer,
		StatusMgr:   mgr,
		Logger:      log.New(io.Discard, zerolog.Disabled),
	})
	require.NoError(t, err)
	return op, mgr
}

// 🧪 TestRewriteReplacesContent tests the happy path over multiple files
func TestRewriteReplacesContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "old_x = 1")
	writeFile(t, dir, "b.py", "old_y = 2")
	chdir(t, dir)

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) {
		final := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(final, "old_x") {
			return tagged("new_x = 1"), nil
		}
		return tagged("new_y = 2"), nil
	}}

	op, mgr := newTestOp(t, &config.Config{Instruction: "i", Pattern: "*.py"}, completer)
	require.NoError(t, op.Execute(context.Background()))

	assert.Equal(t, "new_x = 1", readFile(t, dir, "a.py"), "content is fully replaced")
	assert.Equal(t, "new_y = 2", readFile(t, dir, "b.py"))

	summary := mgr.Summary(context.Background())
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
}

// 🧪 TestRewritePartialFailure tests failure isolation across the batch
func TestRewritePartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "old_x = 1")
	writeFile(t, dir, "b.py", "old_y = 2")
	chdir(t, dir)

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) {
		final := req.Messages[len(req.Messages)-1].Content
		if strings.Contains(final, "old_x") {
			return tagged("new_x = 1"), nil
		}
		return "", errors.Errorf("completion request: %w", provider.ErrRateLimited)
	}}

	op, mgr := newTestOp(t, &config.Config{Instruction: "i", Pattern: "*.py"}, completer)

	err := op.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, operation.ErrPartialFailure))

	assert.Equal(t, "new_x = 1", readFile(t, dir, "a.py"), "a.py is still rewritten")
	assert.Equal(t, "old_y = 2", readFile(t, dir, "b.py"), "b.py is untouched")

	summary := mgr.Summary(context.Background())
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "b.py", summary.Failures[0].Path)
	assert.True(t, errors.Is(summary.Failures[0].Err, provider.ErrRateLimited))
}

// 🧪 TestRewriteEmptyMatch tests that zero matches is a successful no-op
func TestRewriteEmptyMatch(t *testing.T) {
	chdir(t, t.TempDir())

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) {
		t.Fatal("completer must not be called for an empty match set")
		return "", nil
	}}

	op, mgr := newTestOp(t, &config.Config{Instruction: "i", Pattern: "*.py"}, completer)
	require.NoError(t, op.Execute(context.Background()))

	assert.Equal(t, status.Summary{}, mgr.Summary(context.Background()))
}

// 🧪 TestRewriteMalformedResponse tests that untagged replies write nothing
func TestRewriteMalformedResponse(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "old_x = 1")
	chdir(t, dir)

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) {
		return "Sure! Here is the transformed file:\n\nnew_x = 1", nil
	}}

	op, mgr := newTestOp(t, &config.Config{Instruction: "i", Pattern: "*.py"}, completer)

	err := op.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, operation.ErrPartialFailure))

	assert.Equal(t, "old_x = 1", readFile(t, dir, "a.py"), "garbage must not be written")

	summary := mgr.Summary(context.Background())
	require.Len(t, summary.Failures, 1)
	assert.True(t, errors.Is(summary.Failures[0].Err, provider.ErrResponseInvalid))
}

// 🧪 TestRewriteInvalidPattern tests that a bad glob is a startup error
func TestRewriteInvalidPattern(t *testing.T) {
	chdir(t, t.TempDir())

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) { return tagged("x"), nil }}
	op, _ := newTestOp(t, &config.Config{Instruction: "i", Pattern: "["}, completer)

	err := op.Execute(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, operation.ErrPartialFailure))
	assert.Contains(t, err.Error(), "resolving file pattern")
}

// 🧪 TestRewriteValidationPasses tests the validate-and-keep path
func TestRewriteValidationPasses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "old_x = 1")
	chdir(t, dir)

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) {
		return tagged("new_x = 1"), nil
	}}

	cfg := &config.Config{Instruction: "i", Pattern: "*.py", ValidateWith: "grep -q new_x a.py", Retries: 3}
	op, mgr := newTestOp(t, cfg, completer)
	require.NoError(t, op.Execute(context.Background()))

	assert.Equal(t, "new_x = 1", readFile(t, dir, "a.py"))
	assert.Equal(t, 1, completer.calls)

	// Backup is discarded on success
	_, err := os.Stat(filepath.Join(dir, "a.py.bak"))
	assert.True(t, os.IsNotExist(err))

	summary := mgr.Summary(context.Background())
	assert.Equal(t, 1, summary.Succeeded)
}

// 🧪 TestRewriteValidationRetriesAndRestores tests the retry/restore path
func TestRewriteValidationRetriesAndRestores(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.py", "original content")
	chdir(t, dir)

	completer := &fakeCompleter{}
	completer.fn = func(req provider.Request) (string, error) {
		return tagged(fmt.Sprintf("attempt-%d", completer.calls)), nil
	}

	cfg := &config.Config{Instruction: "i", Pattern: "*.py", ValidateWith: "exit 1", Retries: 2}
	op, mgr := newTestOp(t, cfg, completer)

	err := op.Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, operation.ErrPartialFailure))

	assert.Equal(t, 2, completer.calls, "one completion per validation attempt")

	// The second attempt's prompt is built from the first attempt's output,
	// not the original file content.
	secondFinal := completer.reqs[1].Messages[len(completer.reqs[1].Messages)-1].Content
	assert.Contains(t, secondFinal, "attempt-1")

	// After the final failed attempt the original is restored.
	assert.Equal(t, "original content", readFile(t, dir, "a.py"))
	_, statErr := os.Stat(filepath.Join(dir, "a.py.bak"))
	assert.True(t, os.IsNotExist(statErr))

	summary := mgr.Summary(context.Background())
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, status.OutcomeRestored, summary.Failures[0].Outcome)
	assert.Equal(t, 2, summary.Failures[0].Attempts)
	assert.Contains(t, summary.Failures[0].Err.Error(), "validation failed after 2 attempt(s)")
}

// 🧪 TestRewriteAsync tests the bounded worker pool path
func TestRewriteAsync(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 6; i++ {
		writeFile(t, dir, fmt.Sprintf("f%d.py", i), fmt.Sprintf("old_%d", i))
	}
	chdir(t, dir)

	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) {
		return tagged("rewritten"), nil
	}}

	op, mgr := newTestOp(t, &config.Config{Instruction: "i", Pattern: "*.py", Jobs: 3}, completer)
	require.NoError(t, op.Execute(context.Background()))

	summary := mgr.Summary(context.Background())
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 6, summary.Succeeded)

	for i := 0; i < 6; i++ {
		assert.Equal(t, "rewritten", readFile(t, dir, fmt.Sprintf("f%d.py", i)))
	}
}

// 🧪 TestNewValidation tests operator option validation
func TestNewValidation(t *testing.T) {
	cfg := &config.Config{Instruction: "i", Pattern: "*.py"}
	require.NoError(t, cfg.Validate())

	inst := instruction.Instruction{Text: "do it"}
	completer := &fakeCompleter{fn: func(req provider.Request) (string, error) { return "", nil }}
	mgr := status.New(".")
	logger := log.New(io.Discard, zerolog.Disabled)

	tests := []struct {
		name          string
		opts          operation.Options
		expectedError string
	}{
		{
			name:          "missing_config",
			opts:          operation.Options{Instruction: inst, Completer: completer, StatusMgr: mgr, Logger: logger},
			expectedError: "config is required",
		},
		{
			name:          "missing_instruction",
			opts:          operation.Options{Config: cfg, Completer: completer, StatusMgr: mgr, Logger: logger},
			expectedError: "instruction is required",
		},
		{
			name:          "missing_completer",
			opts:          operation.Options{Config: cfg, Instruction: inst, StatusMgr: mgr, Logger: logger},
			expectedError: "completer is required",
		},
		{
			name:          "missing_status_manager",
			opts:          operation.Options{Config: cfg, Instruction: inst, Completer: completer, Logger: logger},
			expectedError: "status manager is required",
		},
		{
			name:          "missing_logger",
			opts:          operation.Options{Config: cfg, Instruction: inst, Completer: completer, StatusMgr: mgr},
			expectedError: "logger is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := operation.New(tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}
