package registry

import (
	"fmt"
	"sort"

	"github.com/roach88/resql/internal/savedquery"
)

// Registry maps (project, method, logical name) to a saved query.
type Registry struct {
	queries map[savedquery.Key]savedquery.Definition
}

// New builds a registry from already parsed definitions. Two definitions
// with the same key are an error. Load is the production constructor; New
// serves callers that assemble definitions themselves.
func New(defs ...savedquery.Definition) (*Registry, error) {
	queries := make(map[savedquery.Key]savedquery.Definition, len(defs))
	for _, def := range defs {
		if prev, ok := queries[def.Key()]; ok {
			return nil, fmt.Errorf("duplicate saved query %s (%s and %s)", def.Key(), prev.Source(), def.Source())
		}
		queries[def.Key()] = def
	}
	return &Registry{queries: queries}, nil
}

// Lookup returns the saved query for project, method and name. The name is
// matched in canonical form, so case, surrounding whitespace and surrounding
// slashes are ignored. The project is matched literally.
func (r *Registry) Lookup(project string, method savedquery.Method, name string) (savedquery.Definition, error) {
	if r != nil {
		key := savedquery.Key{Project: project, Method: method, Name: savedquery.CanonicalName(name)}
		if def, ok := r.queries[key]; ok {
			return def, nil
		}
	}
	return savedquery.Definition{}, &NotFoundError{Project: project, Method: method, Name: name}
}

// Len returns the number of registered queries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.queries)
}

// Projects returns the projects that own at least one query, sorted.
func (r *Registry) Projects() []string {
	seen := make(map[string]bool)
	var projects []string
	for key := range r.all() {
		if !seen[key.Project] {
			seen[key.Project] = true
			projects = append(projects, key.Project)
		}
	}
	sort.Strings(projects)
	return projects
}

// Names returns the logical names registered for a project and method, sorted.
func (r *Registry) Names(project string, method savedquery.Method) []string {
	var names []string
	for key := range r.all() {
		if key.Project == project && key.Method == method {
			names = append(names, key.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Definitions returns every query ordered by project, method and name.
func (r *Registry) Definitions() []savedquery.Definition {
	defs := make([]savedquery.Definition, 0, r.Len())
	for _, def := range r.all() {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool {
		a, b := defs[i].Key(), defs[j].Key()
		if a.Project != b.Project {
			return a.Project < b.Project
		}
		if a.Method != b.Method {
			return a.Method < b.Method
		}
		return a.Name < b.Name
	})
	return defs
}

func (r *Registry) all() map[savedquery.Key]savedquery.Definition {
	if r == nil {
		return nil
	}
	return r.queries
}
