// Package gateway implements the remote API clients for the library
// service: auth, users, authors, books, and loans. Every operation checks
// the client-side access policy before touching the network and collapses
// policy denials, transport failures, and server rejections into a single
// error representation.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	biblio "github.com/jandresbramirez/go-biblio"
)

const defaultTimeout = 10 * time.Second

// Config holds gateway configuration. BaseURL is the only required field.
type Config struct {
	BaseURL string

	// HTTPClient overrides the default 10s-timeout client, mainly for tests.
	HTTPClient *http.Client
	Logger     biblio.Logger
}

// Client is the shared transport underneath the resource gateways. It owns
// the session store, the access policy, and the per-resource gateways that
// cross-reference each other for enrichment.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *biblio.SessionStore
	policy     *biblio.AccessPolicy
	logger     biblio.Logger

	auth    *AuthGateway
	users   *UsersGateway
	authors *AuthorsGateway
	books   *BooksGateway
	loans   *LoansGateway
}

// NewClient builds a Client over a session store. A nil store gets an
// in-memory one, which makes the client usable but forgetful.
func NewClient(cfg Config, sessions *biblio.SessionStore) *Client {
	if sessions == nil {
		sessions = biblio.NewSessionStore(biblio.NewMemoryStorage())
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = biblio.DefaultLogger()
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		sessions:   sessions,
		policy:     biblio.NewAccessPolicy(sessions),
		logger:     logger,
	}

	c.auth = &AuthGateway{client: c}
	c.users = &UsersGateway{client: c}
	c.authors = &AuthorsGateway{client: c}
	c.books = &BooksGateway{client: c}
	c.loans = &LoansGateway{client: c}

	return c
}

func (c *Client) Auth() *AuthGateway       { return c.auth }
func (c *Client) Users() *UsersGateway     { return c.users }
func (c *Client) Authors() *AuthorsGateway { return c.authors }
func (c *Client) Books() *BooksGateway     { return c.books }
func (c *Client) Loans() *LoansGateway     { return c.loans }

// Policy exposes the access policy for consumers that gate UI affordances.
func (c *Client) Policy() *biblio.AccessPolicy { return c.policy }

// Sessions exposes the underlying session store.
func (c *Client) Sessions() *biblio.SessionStore { return c.sessions }

// request describes one remote call. wantStatus of zero accepts any 2xx;
// creates set it to 201 to match the server's contract.
type request struct {
	method     string
	path       string
	body       any
	authed     bool
	wantStatus int
}

// do issues one remote call and decodes the response into out (when out is
// non-nil). Every failure comes back as a *goerrors.Error: transport
// problems carry the connection text code, server rejections carry the
// server's message verbatim.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var reader io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not encode request body")
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reader)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not build request")
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.authed {
		httpReq.Header.Set("Authorization", "Bearer "+c.sessions.Token())
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("request failed request_id=%s %s %s: %v", requestID, req.method, req.path, err)
		return goerrors.Wrap(err, goerrors.CategoryExternal, "connection error").
			WithTextCode(biblio.TextCodeConnection).
			WithMetadata(map[string]any{
				"request_id": requestID,
				"path":       req.path,
			})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "could not read response").
			WithTextCode(biblio.TextCodeConnection)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if req.wantStatus != 0 {
		success = resp.StatusCode == req.wantStatus
	}
	if !success {
		c.logger.Debug("server rejected request_id=%s %s %s status=%d", requestID, req.method, req.path, resp.StatusCode)
		return serverError(resp.StatusCode, body, requestID)
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, "could not decode response").
				WithMetadata(map[string]any{"request_id": requestID})
		}
	}

	return nil
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// serverError surfaces the server-authored message verbatim, categorized by
// status so callers keep exactly one failure representation to handle.
func serverError(status int, body []byte, requestID string) error {
	var apiErr apiError
	message := ""
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Error != "" {
			message = apiErr.Error
		} else if apiErr.Message != "" {
			message = apiErr.Message
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(status)
	}

	category := goerrors.CategoryExternal
	switch status {
	case http.StatusBadRequest:
		category = goerrors.CategoryBadInput
	case http.StatusUnauthorized:
		category = goerrors.CategoryAuth
	case http.StatusForbidden:
		category = goerrors.CategoryAuthz
	case http.StatusNotFound:
		category = goerrors.CategoryNotFound
	case http.StatusConflict:
		category = goerrors.CategoryConflict
	}

	return goerrors.New(message, category).
		WithCode(status).
		WithTextCode(biblio.TextCodeServerRejected).
		WithMetadata(map[string]any{
			"status":     status,
			"request_id": requestID,
		})
}
