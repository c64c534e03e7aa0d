package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/resql/internal/registry"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool          `json:"valid" yaml:"valid"`
	Loaded  int           `json:"loaded" yaml:"loaded"`
	Skipped []SkippedFile `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <queries-dir>",
		Short: "Check that every saved query in a directory loads",
		Long: `Load a saved queries directory and report files that fail to parse,
collide with an already loaded name, or carry an invalid parameter schema.

Skipped files are warnings unless --strict is given, in which case any
skipped file exits with status 1. An unusable directory exits with 2.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail if any file was skipped")

	return cmd
}

func runValidate(opts *ValidateOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	var loadOpts []registry.Option
	if opts.Strict {
		loadOpts = append(loadOpts, registry.WithStrict())
	}

	// Under --strict a skipped file surfaces as err with the report intact.
	_, report, err := loadQueries(formatter, logger, dir, loadOpts...)
	if report == nil {
		return err
	}

	formatter.VerboseLog("Loaded %d saved queries from %s", report.Loaded, report.Root)

	result := ValidationResult{
		Valid:   len(report.Skipped) == 0,
		Loaded:  report.Loaded,
		Skipped: skippedFiles(report),
	}

	if formatter.Format != "text" {
		if outErr := formatter.Success(result); outErr != nil {
			return outErr
		}
	} else {
		outputValidationText(formatter, result)
	}

	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("validation failed with %d skipped file(s)", len(result.Skipped)), err)
	}
	return nil
}

func outputValidationText(formatter *OutputFormatter, result ValidationResult) {
	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ All %d saved queries valid\n", result.Loaded)
		return
	}

	fmt.Fprintf(formatter.Writer, "✗ %d file(s) skipped, %d saved queries loaded\n", len(result.Skipped), result.Loaded)
	fmt.Fprintln(formatter.Writer)
	for _, sf := range result.Skipped {
		fmt.Fprintf(formatter.Writer, "  %s [%s]: %s\n", sf.File, sf.Code, sf.Message)
	}
}
