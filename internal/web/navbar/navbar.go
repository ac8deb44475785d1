package navbar

import (
	"strings"
	"time"

	"github.com/okrtracker/okr-web/internal/session"
)

// Icon names, as used by the stylesheet's icon font.
const (
	IconStream    = "stream"
	IconSitemap   = "sitemap"
	IconUsers     = "users"
	IconUserNinja = "user-ninja"
	IconUserPlus  = "user-plus"
)

type Link struct {
	Label  string
	Href   string
	Icon   string
	Active bool
}

// Model is everything the navbar template reads.
type Model struct {
	Authenticated bool
	DisplayName   string
	Company       string
	Links         []Link
	// LogoutAction is the form target of the logout button; empty for guests.
	LogoutAction string
}

// Build derives the navbar from the current session and request path.
func Build(s *session.Session, now time.Time, currentPath string) Model {
	if !s.Valid(now) {
		return Model{
			Links: markActive([]Link{
				{Label: "Login", Href: "/login", Icon: IconUserNinja},
				{Label: "Register", Href: "/register", Icon: IconUserPlus},
			}, currentPath),
		}
	}

	return Model{
		Authenticated: true,
		DisplayName:   s.DisplayName(),
		Company:       s.Company,
		Links: markActive([]Link{
			{Label: "OKRs", Href: "/", Icon: IconStream},
			{Label: "Tree", Href: "/okr-tree", Icon: IconSitemap},
			{Label: "Users", Href: "/users", Icon: IconUsers},
		}, currentPath),
		LogoutAction: "/logout",
	}
}

func markActive(links []Link, currentPath string) []Link {
	for i := range links {
		if links[i].Href == "/" {
			links[i].Active = currentPath == "/"
			continue
		}
		links[i].Active = currentPath == links[i].Href || strings.HasPrefix(currentPath, links[i].Href+"/")
	}
	return links
}
