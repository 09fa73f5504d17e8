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

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for defaults-file parsers
type Parser interface {
	// 📝 Parse parses the defaults from bytes
	Parse(ctx context.Context, data []byte) (*Defaults, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Defaults holds per-project settings loadable from a defaults file.
// Command-line flags override anything set here.
type Defaults struct {
	Model          string   `yaml:"model" hcl:"model,optional"`
	ValidateWith   string   `yaml:"validate_with" hcl:"validate_with,optional"`
	Retries        int      `yaml:"n_retries" hcl:"n_retries,optional"`
	Jobs           int      `yaml:"jobs" hcl:"jobs,optional"`
	IgnorePatterns []string `yaml:"ignore_patterns" hcl:"ignore_patterns,optional"`
}

// 🔧 Config is the complete resolved configuration for one batch run
type Config struct {
	Instruction    string   // Raw -i argument (literal text or file path)
	Pattern        string   // Glob pattern selecting target files
	Model          string   // Model identifier, forwarded verbatim
	ValidateWith   string   // Optional shell command run after each write
	Retries        int      // Validation retry budget per file
	Jobs           int      // Bounded concurrency across files
	IgnorePatterns []string // Glob patterns for files to skip
}

// 🎯 LoadDefaults loads the defaults from a file. A missing file is only an
// error when the path was explicitly requested.
func LoadDefaults(ctx context.Context, path string, explicit bool) (*Defaults, error) {
	logger := zerolog.Ctx(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			logger.Debug().Str("path", path).Msg("no defaults file present")
			return &Defaults{}, nil
		}
		return nil, errors.Errorf("reading defaults file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	defaults, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing defaults file %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("loaded defaults file")
	return defaults, nil
}

// 🔍 Validate checks the configuration and applies defaults
func (cfg *Config) Validate() error {
	if cfg.Instruction == "" {
		return errors.New("instruction is required")
	}
	if cfg.Pattern == "" {
		return errors.New("pattern is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	if cfg.Retries == 0 {
		cfg.Retries = 5
	}
	if cfg.Jobs == 0 {
		cfg.Jobs = 1
	}

	if cfg.Retries < 1 {
		return errors.Errorf("n_retries must be positive, got %d", cfg.Retries)
	}
	if cfg.Jobs < 1 {
		return errors.Errorf("jobs must be positive, got %d", cfg.Jobs)
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s -> %s (model %s)", cfg.Pattern, cfg.Instruction, cfg.Model)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Defaults, error) {
	var defaults Defaults
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&defaults); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &defaults, nil
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

func init() {
	Register(&HCLParser{})
}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Defaults, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "defaults.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var defaults Defaults
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &defaults)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &defaults, nil
}
