package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/grse/dashboard/internal/domain"
)

const defaultLoginFailure = "Invalid username or password."

// Client talks to the dashboard backend's /api/* endpoints
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type tokenKey struct{}

// WithToken returns a context whose requests carry the session token as a bearer credential
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by WithToken
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (m messageBody) text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}

// do sends a JSON request. Transport failures come back as *domain.ConnectivityError.
func (c *Client) do(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &domain.ConnectivityError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.ConnectivityError{Op: op, Err: err}
	}
	return resp, nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}

func readMessage(resp *http.Response) string {
	var m messageBody
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return ""
	}
	return m.text()
}

// getJSON fetches a read-only collection. Any failure is a connectivity error:
// the request did not produce usable data.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	resp, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		msg := readMessage(resp)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &domain.ConnectivityError{Op: op, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ConnectivityError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Status returns the backend health message
func (c *Client) Status(ctx context.Context) (string, error) {
	var body messageBody
	if err := c.getJSON(ctx, "status", "/api/status", &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// Login authenticates credentials. A rejected login returns *domain.AuthError.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	resp, err := c.do(ctx, "login", http.MethodPost, "/api/login", creds)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !ok(resp.StatusCode) {
		msg := readMessage(resp)
		if msg == "" {
			msg = defaultLoginFailure
		}
		return nil, &domain.AuthError{Message: msg}
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, &domain.ConnectivityError{Op: "login", Err: fmt.Errorf("decode user: %w", err)}
	}
	return &user, nil
}

// Projects lists raw projects
func (c *Client) Projects(ctx context.Context) ([]domain.RawProject, error) {
	var out []domain.RawProject
	if err := c.getJSON(ctx, "list projects", "/api/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Financials returns quarterly data and the expenditure breakdown
func (c *Client) Financials(ctx context.Context) (*domain.RawFinancials, error) {
	var out domain.RawFinancials
	if err := c.getJSON(ctx, "get financials", "/api/financials", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suppliers lists raw suppliers
func (c *Client) Suppliers(ctx context.Context) ([]domain.RawSupplier, error) {
	var out []domain.RawSupplier
	if err := c.getJSON(ctx, "list suppliers", "/api/suppliers", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users lists dashboard users
func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := c.getJSON(ctx, "list users", "/api/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// userResponse covers both a full user body and the {id, message} acknowledgement
type userResponse struct {
	ID          *int64          `json:"id"`
	Name        string          `json:"name"`
	Username    string          `json:"username"`
	Role        string          `json:"role"`
	Permissions *domain.PageSet `json:"permissions"`
	Message     string          `json:"message"`
}

// merge fills fields the backend did not echo from the submitted input
func (r userResponse) merge(id int64, in domain.UserInput) domain.User {
	user := in.ToUser(id)
	if r.ID != nil {
		user.ID = *r.ID
	}
	if r.Name != "" {
		user.Name = r.Name
	}
	if r.Username != "" {
		user.Username = r.Username
	}
	if r.Role != "" {
		user.Role = r.Role
	}
	if r.Permissions != nil {
		user.Permissions = *r.Permissions
	}
	return user
}

func (c *Client) mutate(ctx context.Context, op, method, path string, body any) (*http.Response, error) {
	resp, err := c.do(ctx, op, method, path, body)
	if err != nil {
		return nil, &domain.MutationError{Op: op, Err: err}
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, &domain.MutationError{Op: op, Status: resp.StatusCode, Message: readMessage(resp)}
	}
	return resp, nil
}

// CreateUser creates a user and returns it as stored
func (c *Client) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	const op = "create user"
	resp, err := c.mutate(ctx, op, http.MethodPost, "/api/users", in)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &domain.MutationError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.ID == nil {
		return nil, &domain.MutationError{Op: op, Status: resp.StatusCode, Err: errors.New("response carries no user id")}
	}
	user := body.merge(*body.ID, in)
	return &user, nil
}

// updatePayload leaves out an empty password so the stored one is kept
func updatePayload(in domain.UserInput) map[string]any {
	payload := map[string]any{
		"name":        in.Name,
		"username":    in.Username,
		"role":        in.Role,
		"permissions": in.Permissions,
	}
	if in.Password != "" {
		payload["password"] = in.Password
	}
	return payload
}

// UpdateUser replaces a user's profile and permissions. An empty password is not sent.
func (c *Client) UpdateUser(ctx context.Context, id int64, in domain.UserInput) (*domain.User, error) {
	const op = "update user"
	resp, err := c.mutate(ctx, op, http.MethodPut, "/api/users/"+strconv.FormatInt(id, 10), updatePayload(in))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body userResponse
	// Acknowledgement bodies are optional; a missing or non-JSON body still means success.
	_ = json.NewDecoder(resp.Body).Decode(&body)
	user := body.merge(id, in)
	return &user, nil
}

// DeleteUser removes a user
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	resp, err := c.mutate(ctx, "delete user", http.MethodDelete, "/api/users/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
