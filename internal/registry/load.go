package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/resql/internal/savedquery"
)

// Option configures Load.
type Option func(*loader)

// WithLogger sets the logger used for load diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStrict makes Load fail if any file was skipped.
func WithStrict() Option {
	return func(l *loader) {
		l.strict = true
	}
}

// PairReport lists the names loaded for one (project, method) pair.
type PairReport struct {
	Project string            `json:"project" yaml:"project"`
	Method  savedquery.Method `json:"method" yaml:"method"`
	Names   []string          `json:"names" yaml:"names"`
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Root    string       `json:"root" yaml:"root"`
	Loaded  int          `json:"loaded" yaml:"loaded"`
	Skipped []error      `json:"-" yaml:"-"`
	Pairs   []PairReport `json:"pairs" yaml:"pairs"`
}

type loader struct {
	logger  *slog.Logger
	strict  bool
	queries map[savedquery.Key]savedquery.Definition
	report  *LoadReport
}

// Load walks root and returns the frozen registry of every template that
// parsed. Each immediate subdirectory of root is a project; within it the
// GET and POST directories are walked recursively. A missing method
// directory means no queries for that pair.
//
// Files ending in ".cue" are parameter schemas for the template with the
// same path stem. Hidden files and directories are ignored.
//
// The error is a *ConfigurationError when root is unusable. With WithStrict
// any skipped file also fails the load; the report is still returned.
func Load(root string, opts ...Option) (*Registry, *LoadReport, error) {
	l := &loader{
		logger:  slog.Default(),
		queries: make(map[savedquery.Key]savedquery.Definition),
	}
	for _, opt := range opts {
		opt(l)
	}

	dir, err := configDir(root)
	if err != nil {
		return nil, nil, err
	}
	l.report = &LoadReport{Root: dir}
	l.logger.Info("loading saved queries", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, &ConfigurationError{Path: dir, Message: "cannot read saved queries directory", Err: err}
	}

	for _, entry := range entries {
		if isHidden(entry.Name()) {
			continue
		}
		projectDir := filepath.Join(dir, entry.Name())
		if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
			continue
		}

		project := entry.Name()
		for _, method := range savedquery.Methods {
			methodDir := filepath.Join(projectDir, string(method))
			names := l.loadPair(project, method, methodDir)
			l.report.Pairs = append(l.report.Pairs, PairReport{Project: project, Method: method, Names: names})
			l.logger.Info("loaded queries",
				"project", project,
				"method", method,
				"count", len(names),
				"names", strings.Join(names, ", "))
		}
	}

	l.report.Loaded = len(l.queries)
	l.logger.Info("saved queries ready", "loaded", l.report.Loaded, "skipped", len(l.report.Skipped))

	if l.strict && len(l.report.Skipped) > 0 {
		return nil, l.report, fmt.Errorf("%d saved query file(s) failed to load: %w",
			len(l.report.Skipped), errors.Join(l.report.Skipped...))
	}

	return &Registry{queries: l.queries}, l.report, nil
}

// loadPair loads every template under methodDir and returns the sorted
// names it registered.
func (l *loader) loadPair(project string, method savedquery.Method, methodDir string) []string {
	info, err := os.Stat(methodDir)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Debug("no queries for method", "project", project, "method", method)
		return []string{}
	}
	if err != nil {
		l.skip(&savedquery.ParseError{Code: savedquery.ErrCodeParseFailed, Path: methodDir, Err: err})
		return []string{}
	}
	if !info.IsDir() {
		l.skip(&savedquery.ParseError{Code: savedquery.ErrCodeParseFailed, Path: methodDir, Err: errors.New("not a directory")})
		return []string{}
	}

	var templates []string
	schemas := make(map[string]string) // path stem -> schema path

	// WalkDir visits entries in lexical order, which makes the
	// first-file-wins duplicate rule deterministic.
	_ = filepath.WalkDir(methodDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.skip(&savedquery.ParseError{Code: savedquery.ErrCodeParseFailed, Path: path, Err: err})
			return nil
		}
		if path != methodDir && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == savedquery.SchemaExt {
			schemas[stem(path)] = path
			return nil
		}
		templates = append(templates, path)
		return nil
	})

	names := []string{}
	used := make(map[string]bool)
	for _, path := range templates {
		rel, err := filepath.Rel(methodDir, path)
		if err != nil {
			l.skip(&savedquery.ParseError{Code: savedquery.ErrCodeParseFailed, Path: path, Err: err})
			continue
		}

		key := savedquery.Key{Project: project, Method: method, Name: savedquery.NameFromPath(rel)}
		schemaPath := schemas[stem(path)]
		if schemaPath != "" {
			used[schemaPath] = true
		}

		if prev, dup := l.queries[key]; dup {
			l.skip(&savedquery.ParseError{
				Code: savedquery.ErrCodeDuplicateName,
				Path: absPath(path),
				Err:  fmt.Errorf("logical name %q already defined by %s", key.Name, prev.Source()),
			})
			continue
		}

		def, err := savedquery.ParseFile(key, path, schemaPath)
		if err != nil {
			l.skip(err)
			continue
		}
		l.queries[key] = def
		names = append(names, key.Name)
	}

	var orphans []string
	for _, path := range schemas {
		if !used[path] {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)
	for _, path := range orphans {
		l.logger.Warn("parameter schema has no matching query", "file", path)
	}

	sort.Strings(names)
	return names
}

func (l *loader) skip(err error) {
	file := ""
	var pe *savedquery.ParseError
	if errors.As(err, &pe) {
		file = pe.Path
	}
	l.logger.Error("failed parsing saved query file", "file", file, "error", err)
	l.report.Skipped = append(l.report.Skipped, err)
}

// configDir validates the configured root directory.
func configDir(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &ConfigurationError{Message: "saved queries directory is empty"}
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", &ConfigurationError{Path: path, Message: "saved queries directory missing or not a directory", Err: err}
	}
	return absPath(path), nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
