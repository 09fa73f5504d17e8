package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/refactory/pkg/config"
	"github.com/walteh/refactory/pkg/instruction"
	"github.com/walteh/refactory/pkg/log"
	"github.com/walteh/refactory/pkg/operation"
	"github.com/walteh/refactory/pkg/provider"
	"github.com/walteh/refactory/pkg/status"
	"gitlab.com/tozd/go/errors"

	// Register the OpenAI completion provider.
	_ "github.com/walteh/refactory/pkg/provider/openai"
)

var (
	// Flags
	instructionArg string
	pattern        string
	model          string
	validateWith   string
	retries        int
	jobs           int
	configFile     string
	debug          bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refactory",
		Short: "Apply a natural-language transformation to a batch of files",
		Long: `Refactory sends each file matching a glob pattern, together with an
instruction, to an OpenAI chat completion endpoint and overwrites the file
with the returned content.

The instruction may be literal text or a path to a file containing it.
Per-file failures never abort the batch: every matched file is attempted,
and the final summary reports which files failed and why.

Example: refactory -i 'Add type hints' -p '*.py'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	cmd.Flags().StringVarP(&instructionArg, "instruction", "i", "", "instruction to follow, or a path to a file containing instructions")
	cmd.Flags().StringVarP(&pattern, "pattern", "p", "", "glob pattern selecting the files to rewrite (e.g. '*.py')")
	cmd.Flags().StringVarP(&model, "model", "m", "gpt-4", "OpenAI model to use")
	cmd.Flags().StringVarP(&validateWith, "validate-with", "v", "", "command to validate each rewrite (e.g. 'go build ./...')")
	cmd.Flags().IntVarP(&retries, "n-retries", "r", 5, "validation retry budget per file")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "number of files to process concurrently")
	cmd.Flags().StringVarP(&configFile, "config", "c", ".refactory.yaml", "defaults file path")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	_ = cmd.MarkFlagRequired("instruction")
	_ = cmd.MarkFlagRequired("pattern")

	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}

// run wires the pipeline together and executes the batch
func run(cmd *cobra.Command, args []string) error {
	logger := setupLogging()
	ctx := logger.WithContext(cmd.Context())

	defaults, err := config.LoadDefaults(ctx, configFile, cmd.Flags().Changed("config"))
	if err != nil {
		return errors.Errorf("loading defaults: %w", err)
	}

	cfg := &config.Config{
		Instruction:    instructionArg,
		Pattern:        pattern,
		Model:          model,
		ValidateWith:   validateWith,
		Retries:        retries,
		Jobs:           jobs,
		IgnorePatterns: defaults.IgnorePatterns,
	}

	// Defaults-file values apply only where the flag was left untouched.
	if !cmd.Flags().Changed("model") && defaults.Model != "" {
		cfg.Model = defaults.Model
	}
	if !cmd.Flags().Changed("validate-with") && defaults.ValidateWith != "" {
		cfg.ValidateWith = defaults.ValidateWith
	}
	if !cmd.Flags().Changed("n-retries") && defaults.Retries != 0 {
		cfg.Retries = defaults.Retries
	}
	if !cmd.Flags().Changed("jobs") && defaults.Jobs != 0 {
		cfg.Jobs = defaults.Jobs
	}

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	inst, err := instruction.Resolve(ctx, cfg.Instruction)
	if err != nil {
		return errors.Errorf("resolving instruction: %w", err)
	}

	factory, err := provider.Get("openai")
	if err != nil {
		return err
	}
	completer, err := factory(ctx)
	if err != nil {
		return errors.Errorf("creating completion client: %w", err)
	}

	op, err := operation.New(operation.Options{
		Config:      cfg,
		Instruction: inst,
		Completer:   completer,
		StatusMgr:   status.New("."),
		Logger:      log.New(os.Stdout, logger.GetLevel()),
	})
	if err != nil {
		return errors.Errorf("creating operator: %w", err)
	}

	return op.Execute(ctx)
}

// TODO(dr.methodical): 🧪 Add a test covering defaults-file/flag precedence

