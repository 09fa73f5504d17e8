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

package status

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 📊 Outcome represents the final state of a file in the batch
type Outcome int

const (
	OutcomePending   Outcome = iota
	OutcomeRewritten         // Model output written over the original content
	OutcomeFailed            // Read, completion, write, or validation failed
	OutcomeRestored          // Original content restored after failed validation
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeRewritten:
		return "rewritten"
	case OutcomeFailed:
		return "failed"
	case OutcomeRestored:
		return "restored"
	default:
		return "pending"
	}
}

// 📄 Result is the per-file outcome record
type Result struct {
	Path     string  // Path relative to the base directory
	Outcome  Outcome // Final state
	Attempts int     // Completion attempts made (validation retries)
	Err      error   // Cause, when Outcome is OutcomeFailed or OutcomeRestored
}

// 📈 Summary aggregates the batch outcome
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Result // Failed/restored files in recording order
}

// 💾 FileManager handles all file system operations for the batch
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
	BackupFile(ctx context.Context, path string) error
	RestoreFile(ctx context.Context, path string) error
}

// 📈 Tracker records per-file outcomes
type Tracker interface {
	Track(ctx context.Context, result Result)
	Summary(ctx context.Context) Summary
}

// 🔧 Manager implements both FileManager and Tracker
type Manager struct {
	baseDir string // Base directory for all operations

	mu      sync.Mutex
	results []Result
}

// 🏭 New creates a new status manager rooted at baseDir
func New(baseDir string) *Manager {
	return &Manager{
		baseDir: filepath.Clean(baseDir),
	}
}

// 🔒 getAbsPath returns the absolute path for a given relative path
func (m *Manager) getAbsPath(path string) string {
	return filepath.Join(m.baseDir, path)
}

// FileManager interface implementation

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	content, err := os.ReadFile(m.getAbsPath(path))
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.getAbsPath(path)
	tempPath := absPath + ".tmp"

	// Write to temp file
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func (m *Manager) BackupFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)

	content, err := os.ReadFile(absPath)
	if err != nil {
		return errors.Errorf("reading file for backup: %w", err)
	}

	if err := os.WriteFile(absPath+".bak", content, 0644); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	return nil
}

func (m *Manager) RestoreFile(ctx context.Context, path string) error {
	absPath := m.getAbsPath(path)
	backupPath := absPath + ".bak"

	content, err := os.ReadFile(backupPath)
	if err != nil {
		return errors.Errorf("reading backup: %w", err)
	}

	if err := os.WriteFile(absPath, content, 0644); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}

	if err := os.Remove(backupPath); err != nil {
		return errors.Errorf("removing backup: %w", err)
	}

	return nil
}

// 🧹 DiscardBackup removes a file's backup after successful validation
func (m *Manager) DiscardBackup(ctx context.Context, path string) error {
	err := os.Remove(m.getAbsPath(path) + ".bak")
	if err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing backup: %w", err)
	}
	return nil
}

// Tracker interface implementation

func (m *Manager) Track(ctx context.Context, result Result) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results = append(m.results, result)
}

func (m *Manager) Summary(ctx context.Context) Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := Summary{Total: len(m.results)}
	for _, r := range m.results {
		if r.Outcome == OutcomeRewritten {
			summary.Succeeded++
		} else {
			summary.Failed++
			summary.Failures = append(summary.Failures, r)
		}
	}
	return summary
}
