package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okrtracker/okr-web/internal/apiclient"
)

type staticToken string

func (s staticToken) BearerToken() string { return string(s) }

func TestGetCompanyUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/company/Acme Inc", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[
			{"_id":"2","email":"bo@acme.test","name":"Bo"},
			{"_id":"1","email":"ana@acme.test","name":"ana","role":"ADMIN"}
		]`))
	}))
	defer server.Close()

	svc := New(apiclient.New(server.URL, apiclient.Options{})).For(staticToken("tok"))
	res := svc.GetCompanyUsers(context.Background(), "Acme Inc")

	require.True(t, res.OK())
	require.Len(t, res.Value, 2)
	assert.Equal(t, "ana@acme.test", res.Value[0].Email)
	assert.Equal(t, "bo@acme.test", res.Value[1].Email)
}

func TestGetCompanyUsers_ObjectPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"u1":{"email":"ana@acme.test","name":"Ana"}}`))
	}))
	defer server.Close()

	res := New(apiclient.New(server.URL, apiclient.Options{})).For(nil).GetCompanyUsers(context.Background(), "Acme")

	require.True(t, res.OK())
	assert.Equal(t, "u1", res.Value[0].ID)
}

func TestGetCompanyUsers_Fallbacks(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		res := New(apiclient.New(server.URL, apiclient.Options{})).For(nil).GetCompanyUsers(context.Background(), "Acme")
		assert.True(t, res.Empty())
		assert.NotNil(t, res.Value)
	})

	t.Run("failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		res := New(apiclient.New(server.URL, apiclient.Options{})).For(nil).GetCompanyUsers(context.Background(), "Acme")
		assert.True(t, res.Failed())
		assert.ErrorIs(t, res.Err, apiclient.ErrUnauthorized)
		assert.NotNil(t, res.Value)
		assert.Empty(t, res.Value)
	})
}
