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

// Package fileset expands the -p glob pattern into the ordered set of
// target files for a batch run.
package fileset

import (
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Resolve expands pattern against the working directory.
//
// The result is lexicographically sorted and duplicate-free, contains only
// regular files, and excludes any path matching one of the ignore
// patterns. An empty result is not an error.
func Resolve(pattern string, ignore []string) ([]string, error) {
	if pattern == "" {
		return nil, errors.New("file pattern must not be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid file pattern: %s", pattern)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Errorf("expanding file pattern %s: %w", pattern, err)
	}

	seen := make(map[string]bool, len(matches))
	files := make([]string, 0, len(matches))
	for _, path := range matches {
		if seen[path] {
			continue
		}
		seen[path] = true

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		ignored, err := shouldIgnore(path, ignore)
		if err != nil {
			return nil, err
		}
		if ignored {
			continue
		}

		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

// 🔍 shouldIgnore checks a path against the ignore patterns
func shouldIgnore(path string, ignore []string) (bool, error) {
	for _, pattern := range ignore {
		matched, err := doublestar.Match(pattern, path)
		if err != nil {
			return false, errors.Errorf("invalid ignore pattern %s: %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
