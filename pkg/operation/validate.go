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
	"os/exec"

	"gitlab.com/tozd/go/errors"
)

// ✅ runValidation runs the validation command through the shell.
//
// A non-zero exit means the rewrite failed validation (false, nil); any
// other spawn failure is a real error.
func runValidation(ctx context.Context, command string) (bool, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}

	return false, errors.Errorf("running %q: %w", command, err)
}
