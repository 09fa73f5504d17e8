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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/walteh/refactory/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// Exit codes: 0 full success (or empty match set), 1 fatal startup error,
// 2 batch completed with at least one per-file failure.
const (
	exitOK             = 0
	exitFatal          = 1
	exitPartialFailure = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err == nil {
		os.Exit(exitOK)
	}

	if errors.Is(err, operation.ErrPartialFailure) {
		// The summary already listed the failures.
		os.Exit(exitPartialFailure)
	}

	fmt.Fprintf(os.Stderr, "refactory: %v\n", err)
	os.Exit(exitFatal)
}
