package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type names struct {
	views, resolvers, guards map[string]bool
}

func (n names) HasView(s string) bool     { return n.views[s] }
func (n names) HasResolver(s string) bool { return n.resolvers[s] }
func (n names) HasGuard(s string) bool    { return n.guards[s] }

func set(xs ...string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func everything() names {
	return names{
		views: set("home", "okr-tree", "users", "edit-okr", "search",
			"okr.create", "okr.update", "okr.delete",
			"login", "login.submit", "register", "register.submit", "logout",
			"resetpassword", "resetpassword.submit", "newpassword", "newpassword.submit",
			"about", "privacy", "faq", "thefutureishere"),
		resolvers: set("companyOkrs", "okrTree", "companyUsers", "okrDetail", "search"),
		guards:    set("public", "authenticated", "guest"),
	}
}

func find(t *Table, method, path string) (Route, bool) {
	for _, r := range t.Routes {
		if r.Method == method && r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

func TestDefault_IsValid(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)
	require.NoError(t, table.Validate(everything()))

	for _, path := range []string{
		"/", "/login", "/register", "/okr-tree", "/users", "/resetpassword",
		"/resetpassword/:email/:token", "/about", "/privacy", "/faq", "/thefutureishere",
	} {
		_, ok := find(table, http.MethodGet, path)
		assert.True(t, ok, "missing %s", path)
	}
}

func TestDefault_GuardsAndResolvers(t *testing.T) {
	table, err := Default()
	require.NoError(t, err)

	home, _ := find(table, http.MethodGet, "/")
	assert.Equal(t, "authenticated", home.Guard)
	assert.Equal(t, "companyOkrs", home.Resolver)

	about, _ := find(table, http.MethodGet, "/about")
	assert.Equal(t, "public", about.Guard, "guard defaults to public")

	del, ok := find(table, http.MethodPost, "/okrs/:id/delete")
	require.True(t, ok)
	assert.Equal(t, "authenticated", del.Guard)

	legacy, _ := find(table, http.MethodGet, "/company/okrs")
	assert.Equal(t, "/", legacy.Redirect)
}

func TestParse_Defaults(t *testing.T) {
	table, err := Parse([]byte(`
routes:
  - path: /x
    view: x
  - path: /y
    method: post
    guard: Authenticated
    view: y
`))
	require.NoError(t, err)
	require.Len(t, table.Routes, 2)
	assert.Equal(t, http.MethodGet, table.Routes[0].Method)
	assert.Equal(t, "public", table.Routes[0].Guard)
	assert.Equal(t, http.MethodPost, table.Routes[1].Method)
	assert.Equal(t, "authenticated", table.Routes[1].Guard)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("routes: [path: /x"))
	assert.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	table, err := Parse([]byte(`
routes:
  - path: /a
    view: home
  - path: /a
    view: home
  - path: b
    view: home
  - path: /c
    view: nope
  - path: /d
    view: home
    resolver: nope
  - path: /e
    view: home
    guard: admin
  - path: /f
  - path: /g
    view: home
    redirect: /
  - path: /h
    redirect: https://evil.test
  - path: /i
    method: TRACE
    view: home
`))
	require.NoError(t, err)

	err = table.Validate(everything())
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"GET /a): duplicate route",
		"GET b): path must start with /",
		`unknown view "nope"`,
		`unknown resolver "nope"`,
		`unknown guard "admin"`,
		"GET /f): needs a view or a redirect",
		"GET /g): has both a view and a redirect",
		"GET /h): redirect must be a local path",
		"TRACE /i): unsupported method",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidate_SamePathDifferentMethod(t *testing.T) {
	table, err := Parse([]byte(`
routes:
  - path: /login
    view: login
  - path: /login
    method: POST
    view: login.submit
`))
	require.NoError(t, err)
	assert.NoError(t, table.Validate(everything()))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  - path: /about\n    view: about\n"), 0o644))

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, table.Routes, 1)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate_RedirectMustStayOnSite(t *testing.T) {
	for _, target := range []string{"//evil.example", `/\evil.example`, "https://evil.example", "evil"} {
		table := &Table{Routes: []Route{{Path: "/old", Method: http.MethodGet, Guard: "public", Redirect: target}}}
		assert.ErrorContains(t, table.Validate(everything()), "redirect must be a local path", target)
	}

	table := &Table{Routes: []Route{{Path: "/old", Method: http.MethodGet, Guard: "public", Redirect: "/users"}}}
	assert.NoError(t, table.Validate(everything()))
}
