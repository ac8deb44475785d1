package users

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/okrtracker/okr-web/internal/apiclient"
	"github.com/okrtracker/okr-web/internal/logging"
)

const basePath = "/api/user"

type User struct {
	ID      string `json:"_id,omitempty"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
}

// UserList accepts an array or an object keyed by id, like the OKR lists.
type UserList []User

func (l *UserList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var arr []User
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}

	var byID map[string]User
	if err := json.Unmarshal(data, &byID); err != nil {
		return err
	}
	out := make([]User, 0, len(byID))
	for id, u := range byID {
		if u.ID == "" {
			u.ID = id
		}
		out = append(out, u)
	}
	*l = out
	return nil
}

type Client struct {
	transport *apiclient.Transport
}

func New(transport *apiclient.Transport) *Client {
	return &Client{transport: transport}
}

// For binds the client to a session's token.
func (c *Client) For(ts apiclient.TokenSource) *Service {
	return &Service{transport: c.transport, tokens: ts}
}

type Service struct {
	transport *apiclient.Transport
	tokens    apiclient.TokenSource
}

// GetCompanyUsers lists the users of company, ordered by name then email.
// Falls back to an empty list.
func (s *Service) GetCompanyUsers(ctx context.Context, company string) apiclient.Result[[]User] {
	const op = "getCompanyUsers"
	list, err := apiclient.Do[UserList](ctx, s.transport, apiclient.Request{
		Operation: op,
		Path:      basePath + "/company/" + apiclient.PathEscape(company),
		Token:     apiclient.BearerToken(s.tokens),
	})
	if err != nil {
		return apiclient.Recover(ctx, op, []User{}, err)
	}
	logging.FromContext(ctx).LogInfof(op, "retrieved %d users for %s", len(list), company)
	if len(list) == 0 {
		return apiclient.Empty([]User{})
	}

	users := []User(list)
	sort.SliceStable(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].Name), strings.ToLower(users[j].Name)
		if a != b {
			return a < b
		}
		return users[i].Email < users[j].Email
	})
	return apiclient.OK(users)
}
