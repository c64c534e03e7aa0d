package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/resql/internal/dispatch"
	"github.com/roach88/resql/internal/querysql"
	"github.com/roach88/resql/internal/registry"
	"github.com/roach88/resql/internal/route"
	"github.com/roach88/resql/internal/savedquery"
	"github.com/roach88/resql/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Database string
	Params   string
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <queries-dir> <GET|POST> <path>",
		Short: "Run one saved query without starting the server",
		Long: `Resolve a request path exactly as the gateway would and run the query
against a database.

For a batch path (POST .../batch) --params must be a JSON array of objects.

Example:
  resql exec --db ./shop.db ./queries GET /shop/orders/recent --params '{"customer":"acme"}'
  resql exec --db ./shop.db ./queries POST /shop/orders/create/batch --params '[{"id":1},{"id":2}]'`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Params, "params", "{}", "query parameters as JSON")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runExec(opts *ExecOptions, dir, methodArg, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	method, ok := savedquery.ParseMethod(methodArg)
	if !ok {
		return WrapExitError(ExitCommandError, "invalid method", fmt.Errorf("%q is not GET or POST", methodArg))
	}

	reg, _, err := loadQueries(formatter, logger, dir)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	d := dispatch.New(reg, st, dispatch.WithLogger(logger))

	var result any
	postExists := func(project, name string) bool {
		return d.Has(project, savedquery.MethodPost, name)
	}
	if base, isBatch := route.ResolveBatch(path, postExists); isBatch && method == savedquery.MethodPost {
		var batch []map[string]any
		if err := decodeParams(opts.Params, &batch); err != nil {
			return WrapExitError(ExitCommandError, "invalid --params JSON", err)
		}
		result, err = d.ExecuteBatch(cmd.Context(), base, batch)
	} else {
		var params map[string]any
		if err := decodeParams(opts.Params, &params); err != nil {
			return WrapExitError(ExitCommandError, "invalid --params JSON", err)
		}
		project, name, resolveErr := route.Resolve(path)
		if resolveErr != nil {
			err = resolveErr
		} else {
			result, err = d.ExecuteSingle(cmd.Context(), project, method, name, params)
		}
	}

	if err != nil {
		code := "QUERY_FAILED"
		switch {
		case registry.IsNotFound(err):
			code = registry.ErrCodeNotFound
		case route.IsRouteNotFound(err):
			code = route.ErrCodeRouteNotFound
		case savedquery.IsValidationError(err):
			code = savedquery.ErrCodeInvalidParams
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if formatter.Format != "text" {
		return formatter.Success(result)
	}
	enc := json.NewEncoder(formatter.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// decodeParams decodes JSON parameters, keeping integral numbers as int64.
func decodeParams(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	switch params := v.(type) {
	case *map[string]any:
		querysql.NormalizeNumbers(*params)
	case *[]map[string]any:
		querysql.NormalizeNumbers(*params)
	}
	return nil
}
