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

package operation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/refactory/pkg/fileset"
	"github.com/walteh/refactory/pkg/prompt"
	"github.com/walteh/refactory/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📦 newRewriteOperation creates the rewrite operation
func newRewriteOperation(opts Options) Operator {
	return &rewriteOperation{
		Options: opts,
		builder: prompt.NewBuilder(opts.Config.Model, opts.Instruction.Text),
	}
}

// 📦 rewriteOperation implements the batch rewrite
type rewriteOperation struct {
	Options
	builder *prompt.Builder
}

// 🏃 Execute runs the rewrite over every matched file.
//
// Per-file failures are recorded and reported, never propagated: the loop
// always covers the full file set resolved up front. The only error paths
// out of here are startup-class (bad pattern) and the ErrPartialFailure
// sentinel raised after the summary.
func (op *rewriteOperation) Execute(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	files, err := fileset.Resolve(op.Config.Pattern, op.Config.IgnorePatterns)
	if err != nil {
		return errors.Errorf("resolving file pattern: %w", err)
	}

	if len(files) == 0 {
		op.Logger.LogSummary(status.Summary{})
		return nil
	}

	op.Logger.Header(fmt.Sprintf("rewriting %d file(s) with %s", len(files), op.Config.Model))
	logger.Debug().
		Int("files", len(files)).
		Str("model", op.Config.Model).
		Str("instruction_source", op.Instruction.Source.String()).
		Msg("starting batch")

	if op.Config.Jobs > 1 {
		op.processAsync(ctx, files)
	} else {
		op.processSync(ctx, files)
	}

	summary := op.StatusMgr.Summary(ctx)
	op.Logger.LogSummary(summary)

	if summary.Failed > 0 {
		return ErrPartialFailure
	}
	return nil
}

// 🔄 processSync processes files one at a time in resolved order
func (op *rewriteOperation) processSync(ctx context.Context, files []string) {
	for _, file := range files {
		if ctx.Err() != nil {
			return
		}
		op.record(ctx, op.processFile(ctx, file))
	}
}

// ⚡ processAsync processes files through a bounded worker pool. Completion
// order is not preserved, but isolation is: worker results are recorded,
// never returned, so one file cannot cancel another.
func (op *rewriteOperation) processAsync(ctx context.Context, files []string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(op.Config.Jobs)

	for _, file := range files {
		file := file
		g.Go(func() error {
			op.record(gctx, op.processFile(gctx, file))
			return nil
		})
	}

	_ = g.Wait()
}

// 📝 record tracks and logs one file's outcome
func (op *rewriteOperation) record(ctx context.Context, result status.Result) {
	op.StatusMgr.Track(ctx, result)
	op.Logger.LogFileResult(result)
}

// 📄 processFile runs the full pipeline for a single file. It always
// returns a Result; errors are folded into it.
func (op *rewriteOperation) processFile(ctx context.Context, file string) status.Result {
	original, err := op.StatusMgr.ReadFile(ctx, file)
	if err != nil {
		return status.Result{Path: file, Outcome: status.OutcomeFailed, Err: errors.Errorf("read error: %w", err)}
	}

	validating := op.Config.ValidateWith != ""
	attempts := 1
	if validating {
		attempts = op.Config.Retries
	}

	current := string(original)
	for attempt := 1; attempt <= attempts; attempt++ {
		op.Logger.LogAttempt(file, attempt, attempts)

		rewritten, err := op.complete(ctx, current)
		if err != nil {
			// Completion errors are never retried here; retry policy, if
			// any, belongs to the provider.
			return op.fail(ctx, file, attempt, validating, err)
		}

		if validating && attempt == 1 {
			if err := op.StatusMgr.BackupFile(ctx, file); err != nil {
				return status.Result{Path: file, Outcome: status.OutcomeFailed, Attempts: attempt, Err: err}
			}
		}

		if err := op.StatusMgr.WriteFileAtomic(ctx, file, []byte(rewritten)); err != nil {
			return op.fail(ctx, file, attempt, validating, errors.Errorf("write error: %w", err))
		}

		if !validating {
			return status.Result{Path: file, Outcome: status.OutcomeRewritten, Attempts: attempt}
		}

		ok, err := runValidation(ctx, op.Config.ValidateWith)
		if err != nil {
			return op.restore(ctx, file, attempt, errors.Errorf("running validation command: %w", err))
		}
		if ok {
			if err := op.StatusMgr.DiscardBackup(ctx, file); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("file", file).Msg("discarding backup")
			}
			return status.Result{Path: file, Outcome: status.OutcomeRewritten, Attempts: attempt}
		}

		if attempt == attempts {
			return op.restore(ctx, file, attempt,
				errors.Errorf("validation failed after %d attempt(s)", attempts))
		}

		// Feed the rejected attempt back in: the next prompt is built from
		// the content currently on disk, not the original.
		current = rewritten
	}

	// Unreachable: the loop always returns.
	return status.Result{Path: file, Outcome: status.OutcomeFailed, Err: errors.New("no attempts made")}
}

// 💬 complete sends one prompt and extracts the rewritten contents
func (op *rewriteOperation) complete(ctx context.Context, content string) (string, error) {
	raw, err := op.Completer.Complete(ctx, op.builder.Build(content))
	if err != nil {
		return "", err
	}
	return prompt.Extract(raw)
}

// ❌ fail produces a Failed result, restoring the original first if a
// backup was taken on an earlier attempt
func (op *rewriteOperation) fail(ctx context.Context, file string, attempt int, validating bool, cause error) status.Result {
	if validating && attempt > 1 {
		return op.restore(ctx, file, attempt, cause)
	}
	return status.Result{Path: file, Outcome: status.OutcomeFailed, Attempts: attempt, Err: cause}
}

// ⟳ restore puts the original content back and reports the failure
func (op *rewriteOperation) restore(ctx context.Context, file string, attempt int, cause error) status.Result {
	if err := op.StatusMgr.RestoreFile(ctx, file); err != nil {
		return status.Result{
			Path:     file,
			Outcome:  status.OutcomeFailed,
			Attempts: attempt,
			Err:      errors.Errorf("%v (restore also failed: %v)", cause, err),
		}
	}
	return status.Result{Path: file, Outcome: status.OutcomeRestored, Attempts: attempt, Err: cause}
}
