package cli

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/resql/internal/registry"
	"github.com/roach88/resql/internal/savedquery"
)

// SkippedFile describes a template that failed to load.
type SkippedFile struct {
	File    string `json:"file" yaml:"file"`
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // diagnostics go to stderr to avoid corrupting structured output
		Verbose:   opts.Verbose,
	}
}

// loadQueries loads the registry for a command. An unusable directory is
// reported through formatter and returned as an ExitCommandError.
func loadQueries(formatter *OutputFormatter, logger *slog.Logger, dir string, opts ...registry.Option) (*registry.Registry, *registry.LoadReport, error) {
	opts = append([]registry.Option{registry.WithLogger(logger)}, opts...)
	reg, report, err := registry.Load(dir, opts...)
	if err != nil && registry.IsConfigurationError(err) {
		_ = formatter.Error(registry.ErrCodeConfigInvalid, err.Error(), nil)
		return nil, nil, WrapExitError(ExitCommandError, "cannot load saved queries", err)
	}
	return reg, report, err
}

// skippedFiles converts load failures for display. Paths are shown
// relative to root when possible.
func skippedFiles(report *registry.LoadReport) []SkippedFile {
	files := []SkippedFile{}
	for _, err := range report.Skipped {
		sf := SkippedFile{Code: savedquery.ErrCodeParseFailed, Message: err.Error()}
		var pe *savedquery.ParseError
		if errors.As(err, &pe) {
			sf.File = relPath(report.Root, pe.Path)
			sf.Code = pe.Code
			sf.Message = pe.Err.Error()
		}
		files = append(files, sf)
	}
	return files
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
