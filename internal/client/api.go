package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

const (
	apiRegister = "/api/register"
	apiLogin    = "/api/login"
	apiLogout   = "/api/logout"
	apiTasks    = "/api/tasks"
)

// ErrNotLoggedIn is returned by gated calls when no token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// API calls the TaskKeeper HTTP API on behalf of the stored session.
type API struct {
	http    *http.Client
	baseURL string
	session *Session
}

// NewAPI binds an HTTP client and a session to the server at baseURL.
func NewAPI(httpClient *http.Client, baseURL string, session *Session) *API {
	return &API{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), session: session}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates an account. It does not log in.
func (a *API) Register(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	err := a.do(ctx, http.MethodPost, apiRegister, false, credentials{username, password}, &user)
	return user, err
}

// Login exchanges credentials for a token and stores it in the session.
func (a *API) Login(ctx context.Context, username, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	if err := a.do(ctx, http.MethodPost, apiLogin, false, credentials{username, password}, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.New("server returned an empty token")
	}
	return a.session.Set(username, out.Token)
}

// Logout revokes the current token on the server and forgets it locally.
// The local session is cleared even when the server call fails.
func (a *API) Logout(ctx context.Context) error {
	err := a.do(ctx, http.MethodPost, apiLogout, true, nil, nil)
	if clearErr := a.session.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// ListTasks returns every task. It needs no login.
func (a *API) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := a.do(ctx, http.MethodGet, apiTasks, false, nil, &tasks)
	return tasks, err
}

// CreateTask adds a new incomplete task.
func (a *API) CreateTask(ctx context.Context, name string) (models.Task, error) {
	var task models.Task
	body := map[string]any{"name": name, "isComplete": false}
	err := a.do(ctx, http.MethodPost, apiTasks, true, body, &task)
	return task, err
}

// UpdateTask sets the completion flag and, when name is non-empty, renames.
func (a *API) UpdateTask(ctx context.Context, id string, isComplete bool, name string) (models.Task, error) {
	var task models.Task
	body := map[string]any{"isComplete": isComplete, "name": name}
	err := a.do(ctx, http.MethodPut, apiTasks+"/"+url.PathEscape(id), true, body, &task)
	return task, err
}

// DeleteTask removes a task.
func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, apiTasks+"/"+url.PathEscape(id), true, nil, nil)
}

// do sends one request. Gated calls attach the bearer token and drop the
// session when the server rejects it.
func (a *API) do(ctx context.Context, method, path string, gated bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if gated {
		_, tok := a.session.Current()
		if tok == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
		if gated && resp.StatusCode == http.StatusUnauthorized {
			_ = a.session.Clear()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
