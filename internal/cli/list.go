package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// QueryInfo describes one registered saved query.
type QueryInfo struct {
	Project string   `json:"project" yaml:"project"`
	Method  string   `json:"method" yaml:"method"`
	Name    string   `json:"name" yaml:"name"`
	Source  string   `json:"source" yaml:"source"`
	Params  []string `json:"params" yaml:"params"`
	Schema  bool     `json:"schema" yaml:"schema"`
}

// ListResult is the structured output of the list command.
type ListResult struct {
	Queries []QueryInfo   `json:"queries" yaml:"queries"`
	Skipped []SkippedFile `json:"skipped" yaml:"skipped"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <queries-dir>",
		Short: "List the saved queries in a directory",
		Long: `Load a saved queries directory and print every registered query with
its project, method, logical name and parameters.

Example:
  resql list ./queries
  resql list ./queries --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runList(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	logger := newLogger(opts, cmd.ErrOrStderr())

	reg, report, err := loadQueries(formatter, logger, dir)
	if err != nil {
		return err
	}

	result := ListResult{Queries: []QueryInfo{}, Skipped: skippedFiles(report)}
	for _, def := range reg.Definitions() {
		params := def.Params()
		if params == nil {
			params = []string{}
		}
		result.Queries = append(result.Queries, QueryInfo{
			Project: def.Project(),
			Method:  string(def.Method()),
			Name:    def.Name(),
			Source:  relPath(report.Root, def.Source()),
			Params:  params,
			Schema:  def.Schema() != nil,
		})
	}

	if formatter.Format != "text" {
		return formatter.Success(result)
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tMETHOD\tNAME\tPARAMS\tSOURCE")
	for _, q := range result.Queries {
		params := "-"
		if len(q.Params) > 0 {
			params = fmt.Sprint(q.Params)
		}
		if q.Schema {
			params += " (schema)"
		}
		fmt.Fprintf(w, "%s\t%s\t/%s/%s\t%s\t%s\n", q.Project, q.Method, q.Project, q.Name, params, q.Source)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(formatter.Writer, "\n%d saved queries", len(result.Queries))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(formatter.Writer, ", %d file(s) skipped (see 'resql validate')", len(result.Skipped))
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}
