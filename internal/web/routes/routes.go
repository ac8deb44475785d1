package routes

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultTable []byte

// Route is one entry of the table.
type Route struct {
	Path     string `yaml:"path"`
	Method   string `yaml:"method,omitempty"`
	View     string `yaml:"view,omitempty"`
	Guard    string `yaml:"guard,omitempty"`
	Resolver string `yaml:"resolver,omitempty"`
	Redirect string `yaml:"redirect,omitempty"`
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

type Table struct {
	Routes []Route `yaml:"routes"`
}

// Lookup answers whether the names a route refers to exist.
type Lookup interface {
	HasView(name string) bool
	HasResolver(name string) bool
	HasGuard(name string) bool
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// ParseFile reads a table from disk.
func ParseFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse decodes a table and fills in defaults: GET and the public guard.
func Parse(b []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse route table: %w", err)
	}
	for i := range t.Routes {
		r := &t.Routes[i]
		r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
		if r.Method == "" {
			r.Method = http.MethodGet
		}
		r.Guard = strings.ToLower(strings.TrimSpace(r.Guard))
		if r.Guard == "" {
			r.Guard = "public"
		}
	}
	return &t, nil
}

var methods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
	http.MethodPatch:  true,
}

// Validate checks the table against the registered names. All problems are
// reported together.
func (t *Table) Validate(l Lookup) error {
	var errs []error
	seen := make(map[string]bool, len(t.Routes))

	for i, r := range t.Routes {
		where := fmt.Sprintf("route %d (%s)", i, r)

		if !strings.HasPrefix(r.Path, "/") {
			errs = append(errs, fmt.Errorf("%s: path must start with /", where))
		}
		if !methods[r.Method] {
			errs = append(errs, fmt.Errorf("%s: unsupported method", where))
		}
		if seen[r.String()] {
			errs = append(errs, fmt.Errorf("%s: duplicate route", where))
		}
		seen[r.String()] = true

		if !l.HasGuard(r.Guard) {
			errs = append(errs, fmt.Errorf("%s: unknown guard %q", where, r.Guard))
		}

		switch {
		case r.View == "" && r.Redirect == "":
			errs = append(errs, fmt.Errorf("%s: needs a view or a redirect", where))
		case r.View != "" && r.Redirect != "":
			errs = append(errs, fmt.Errorf("%s: has both a view and a redirect", where))
		case r.Redirect != "":
			if r.Resolver != "" {
				errs = append(errs, fmt.Errorf("%s: a redirect cannot have a resolver", where))
			}
			if !localPath(r.Redirect) {
				errs = append(errs, fmt.Errorf("%s: redirect must be a local path", where))
			}
		default:
			if !l.HasView(r.View) {
				errs = append(errs, fmt.Errorf("%s: unknown view %q", where, r.View))
			}
		}

		if r.Resolver != "" && !l.HasResolver(r.Resolver) {
			errs = append(errs, fmt.Errorf("%s: unknown resolver %q", where, r.Resolver))
		}
	}
	return errors.Join(errs...)
}

// localPath reports whether target stays on this site. Protocol-relative
// targets such as //host leave it.
func localPath(target string) bool {
	return strings.HasPrefix(target, "/") &&
		!strings.HasPrefix(target, "//") &&
		!strings.HasPrefix(target, "/\\")
}
