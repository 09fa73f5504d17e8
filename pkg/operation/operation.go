// Package operation provides the batch rewrite pipeline: it resolves the
// target file set, sends each file to the completion service, and writes
// the returned content back, isolating failures per file.
package operation

import (
	"context"

	"github.com/walteh/refactory/pkg/config"
	"github.com/walteh/refactory/pkg/instruction"
	"github.com/walteh/refactory/pkg/log"
	"github.com/walteh/refactory/pkg/provider"
	"github.com/walteh/refactory/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// ⚠️ ErrPartialFailure is returned by Execute when the batch ran to
// completion but at least one file failed. The CLI maps it to a distinct
// exit code; it never aborts the batch itself.
var ErrPartialFailure = errors.New("some files failed")

// 🎯 Operator defines the main interface for refactory operations
type Operator interface {
	// Execute runs the batch over the full resolved file set
	Execute(ctx context.Context) error
}

// 🔧 Options contains configuration for the operator
type Options struct {
	// Config is the resolved run configuration
	Config *config.Config
	// Instruction is the resolved transformation directive
	Instruction instruction.Instruction
	// Completer is the completion service client
	Completer provider.Completer
	// StatusMgr handles file I/O and outcome tracking
	StatusMgr *status.Manager
	// Logger is the console logger
	Logger *log.Logger
}

// 🏭 New creates a new rewrite operator with the given options
func New(opts Options) (Operator, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Instruction.Text == "" {
		return nil, errors.Errorf("instruction is required")
	}
	if opts.Completer == nil {
		return nil, errors.Errorf("completer is required")
	}
	if opts.StatusMgr == nil {
		return nil, errors.Errorf("status manager is required")
	}
	if opts.Logger == nil {
		return nil, errors.Errorf("logger is required")
	}
	return newRewriteOperation(opts), nil
}
