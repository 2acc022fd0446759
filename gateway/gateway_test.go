package gateway_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	biblio "github.com/jandresbramirez/go-biblio"
	"github.com/jandresbramirez/go-biblio/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

// testServer wraps an httptest server with a request counter so tests can
// prove that policy denials never reach the network.
type testServer struct {
	*httptest.Server
	requests atomic.Int64
}

func newTestServer(t *testing.T, handler http.Handler) *testServer {
	t.Helper()

	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, baseURL string) *gateway.Client {
	t.Helper()

	return gateway.NewClient(gateway.Config{BaseURL: baseURL}, biblio.NewSessionStore(biblio.NewMemoryStorage()))
}

func loginAs(t *testing.T, client *gateway.Client, subject, role string) {
	t.Helper()

	token := makeToken(t, map[string]any{"sub": subject, "role": role})
	require.NoError(t, client.Sessions().Save(token, subject, role, "", ""))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func TestClient_ServerMessageSurfacedVerbatim(t *testing.T) {
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "book already on loan"})
	}))

	client := newClient(t, ts.URL)
	loginAs(t, client, "1", "admin")

	_, err := client.Loans().Create(context.Background(), biblio.LoanPayload{UserID: 1, BookID: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "book already on loan")
}

func TestClient_TransportFailure(t *testing.T) {
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newClient(t, ts.URL)
	ts.Close()

	_, err := client.Authors().List(context.Background())
	require.Error(t, err)
	assert.True(t, biblio.IsConnectionError(err))
}

func TestClient_PolicyDenialShortCircuits(t *testing.T) {
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []biblio.User{})
	}))

	client := newClient(t, ts.URL)
	loginAs(t, client, "8", "user")

	assert.False(t, client.Policy().IsAdmin())

	_, err := client.Users().List(context.Background())
	require.Error(t, err)
	assert.True(t, biblio.IsPermissionDenied(err))
	assert.EqualValues(t, 0, ts.requests.Load(), "policy denial must not reach the network")
}

func TestClient_BearerHeaderOnAuthedCalls(t *testing.T) {
	var gotAuth string
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, biblio.Author{ID: 1, Name: "Borges"})
	}))

	client := newClient(t, ts.URL)
	loginAs(t, client, "1", "admin")

	_, err := client.Authors().Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+client.Sessions().Token(), gotAuth)
}

func TestClient_RequestIDAttached(t *testing.T) {
	var gotID string
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, []biblio.Author{})
	}))

	client := newClient(t, ts.URL)
	_, err := client.Authors().List(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, gotID)
}

func TestAuthGateway_Login(t *testing.T) {
	token := ""
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if payload["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"user":         map[string]any{"id": 8, "name": "Ana", "email": "ana@example.com"},
		})
	})
	ts := newTestServer(t, mux)

	client := newClient(t, ts.URL)
	token = makeToken(t, map[string]any{"sub": "8", "role": "user"})

	t.Run("successful login persists the decoded session", func(t *testing.T) {
		result, err := client.Auth().Login(context.Background(), gateway.LoginPayload{
			Email:    "ana@example.com",
			Password: "secret1",
		})
		require.NoError(t, err)

		// Subject and role come from the token, not the profile payload.
		assert.Equal(t, "8", result.Subject)
		assert.Equal(t, biblio.RoleUser, result.Role)

		sessions := client.Sessions()
		assert.True(t, sessions.IsAuthenticated())
		assert.Equal(t, "8", sessions.Subject())
		assert.Equal(t, biblio.RoleUser, sessions.Role())
		assert.Equal(t, "Ana", sessions.DisplayName())
		assert.Equal(t, "ana@example.com", sessions.Email())
	})

	t.Run("rejected login surfaces the server message", func(t *testing.T) {
		fresh := newClient(t, ts.URL)
		_, err := fresh.Auth().Login(context.Background(), gateway.LoginPayload{
			Email:    "ana@example.com",
			Password: "wrong",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid credentials")
		assert.False(t, fresh.Sessions().IsAuthenticated())
	})

	t.Run("invalid payload never reaches the network", func(t *testing.T) {
		before := ts.requests.Load()
		_, err := client.Auth().Login(context.Background(), gateway.LoginPayload{Email: "not-an-email"})
		require.Error(t, err)
		assert.Equal(t, before, ts.requests.Load())
	})
}

func TestAuthGateway_LoginAfterPolicyDenialScenario(t *testing.T) {
	token := makeToken(t, map[string]any{"sub": "8", "role": "user"})

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"access_token": token})
	})
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		t.Error("the users listing must not be called for a plain user")
	})
	ts := newTestServer(t, mux)

	client := newClient(t, ts.URL)

	_, err := client.Auth().Login(context.Background(), gateway.LoginPayload{
		Email:    "ana@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.False(t, client.Policy().IsAdmin())

	_, err = client.Users().List(context.Background())
	require.Error(t, err)
	assert.True(t, biblio.IsPermissionDenied(err))
}

func TestAuthGateway_LogoutClearsSessionEvenOnTransportError(t *testing.T) {
	ts := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newClient(t, ts.URL)
	loginAs(t, client, "8", "user")
	ts.Close()

	err := client.Auth().Logout(context.Background())
	require.Error(t, err)
	assert.True(t, biblio.IsConnectionError(err))
	assert.False(t, client.Sessions().IsAuthenticated())
}

func TestAuthGateway_Register(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/registry", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, biblio.User{ID: 9, Name: "Luis", Email: "luis@example.com"})
	})
	ts := newTestServer(t, mux)

	client := newClient(t, ts.URL)
	user, err := client.Auth().Register(context.Background(), biblio.RegisterPayload{
		Name:     "Luis",
		Email:    "luis@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, 9, user.ID)
}

func TestUsersGateway_SelfOnlyRules(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/8", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, biblio.User{ID: 8, Name: "Ana"})
	})
	ts := newTestServer(t, mux)

	client := newClient(t, ts.URL)
	loginAs(t, client, "8", "user")

	t.Run("plain user reads own profile", func(t *testing.T) {
		user, err := client.Users().Get(context.Background(), 8)
		require.NoError(t, err)
		assert.Equal(t, "Ana", user.Name)
	})

	t.Run("plain user cannot read another profile", func(t *testing.T) {
		before := ts.requests.Load()
		_, err := client.Users().Get(context.Background(), 9)
		require.Error(t, err)
		assert.True(t, biblio.IsPermissionDenied(err))
		assert.Equal(t, before, ts.requests.Load())
	})
}

func TestUsersGateway_Search(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []biblio.User{
			{ID: 1, Name: "Ana García", Email: "ana@example.com"},
			{ID: 2, Name: "Luis Pérez", Email: "luis@example.com"},
		})
	})
	ts := newTestServer(t, mux)

	client := newClient(t, ts.URL)
	loginAs(t, client, "1", "admin")

	matches, err := client.Users().Search(context.Background(), "luis")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].ID)
}

func TestCreateRequires201(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/authors", func(w http.ResponseWriter, r *http.Request) {
		// A 200 on create means the server did not actually create.
		writeJSON(w, http.StatusOK, map[string]string{"error": "author already exists"})
	})
	ts := newTestServer(t, mux)

	client := newClient(t, ts.URL)
	loginAs(t, client, "1", "editor")

	_, err := client.Authors().Create(context.Background(), biblio.AuthorPayload{Name: "Borges"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author already exists")
}
