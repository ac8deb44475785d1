package navbar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okrtracker/okr-web/internal/session"
)

func hrefs(m Model) []string {
	out := make([]string, 0, len(m.Links))
	for _, l := range m.Links {
		out = append(out, l.Href)
	}
	return out
}

func TestBuild_Guest(t *testing.T) {
	m := Build(nil, time.Now(), "/login")

	assert.False(t, m.Authenticated)
	assert.Empty(t, m.LogoutAction)
	assert.Equal(t, []string{"/login", "/register"}, hrefs(m))
	require.Len(t, m.Links, 2)
	assert.Equal(t, IconUserNinja, m.Links[0].Icon)
	assert.True(t, m.Links[0].Active)
	assert.False(t, m.Links[1].Active)
}

func TestBuild_Authenticated(t *testing.T) {
	now := time.Now()
	s := &session.Session{Token: "tok", Email: "ana@acme.test", Company: "Acme", ExpiresAt: now.Add(time.Hour)}

	m := Build(s, now, "/okr-tree")

	assert.True(t, m.Authenticated)
	assert.Equal(t, "ana@acme.test", m.DisplayName)
	assert.Equal(t, "Acme", m.Company)
	assert.Equal(t, "/logout", m.LogoutAction)
	assert.Equal(t, []string{"/", "/okr-tree", "/users"}, hrefs(m))

	icons := map[string]string{}
	active := map[string]bool{}
	for _, l := range m.Links {
		icons[l.Href] = l.Icon
		active[l.Href] = l.Active
	}
	assert.Equal(t, IconStream, icons["/"])
	assert.Equal(t, IconSitemap, icons["/okr-tree"])
	assert.Equal(t, IconUsers, icons["/users"])
	assert.Equal(t, map[string]bool{"/": false, "/okr-tree": true, "/users": false}, active)
}

func TestBuild_ExpiredSessionIsGuest(t *testing.T) {
	now := time.Now()
	s := &session.Session{Token: "tok", ExpiresAt: now.Add(-time.Second)}

	m := Build(s, now, "/")
	assert.False(t, m.Authenticated)
	assert.Equal(t, []string{"/login", "/register"}, hrefs(m))
}
