// Package client is the Beecok API client shared by the command line and the terminal UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"beecok/internal/model"
)

// Client calls the Beecok REST API. Authenticated calls carry the session's bearer token,
// and a 401 on any of them clears the session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	retry   Retrier
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithRetrier(r Retrier) Option {
	return func(c *Client) { c.retry = r }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, session *Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		session: session,
		retry:   Retrier{Attempts: DefaultAttempts},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Log == nil {
		c.retry.Log = c.log
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	auth        bool
	// progress, when set, is told how many body bytes have been written.
	progress func(sent, total int64)
}

func jsonRequest(method, path string, in any) (request, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return request{}, err
	}
	return request{method: method, path: path, body: body, contentType: "application/json", auth: true}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req request) (*http.Request, error) {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
		if req.progress != nil {
			body = &progressReader{r: body, total: int64(len(req.body)), fn: req.progress}
		}
	}
	r, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, err
	}
	if req.body != nil {
		r.ContentLength = int64(len(req.body))
	}
	if req.contentType != "" {
		r.Header.Set("Content-Type", req.contentType)
	}
	r.Header.Set("Accept", "application/json")
	if token := c.session.Token(); req.auth && token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	return r, nil
}

// send performs req through the retrier and decodes a 2xx body into out.
func (c *Client) send(ctx context.Context, req request, out any) error {
	resp, err := c.retry.Do(ctx, func(ctx context.Context) (*http.Response, error) {
		r, err := c.newHTTPRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		return c.http.Do(r)
	})
	if err != nil {
		c.log.Debug("api_request_failed", zap.String("method", req.method), zap.String("path", req.path), zap.Error(err))
		return err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := decodeAPIError(resp)
		if apiErr.Status == http.StatusUnauthorized && req.auth {
			if err := c.session.Clear(); err != nil {
				c.log.Warn("session_clear_failed", zap.Error(err))
			}
		}
		return apiErr
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.method, req.path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.send(ctx, request{method: http.MethodGet, path: path, query: query, auth: true}, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	req, err := jsonRequest(method, path, in)
	if err != nil {
		return err
	}
	return c.send(ctx, req, out)
}

// Register validates the form, creates the account and authenticates the session.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*model.AuthResponse, error) {
	if err := ValidateRegister(in); err != nil {
		return nil, err
	}
	body := map[string]string{
		"username": strings.TrimSpace(in.Username),
		"email":    strings.TrimSpace(in.Email),
		"password": in.Password,
	}
	return c.authenticate(ctx, "/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	if err := ValidateLogin(email, password); err != nil {
		return nil, err
	}
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*model.AuthResponse, error) {
	req, err := jsonRequest(http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	req.auth = false
	var res model.AuthResponse
	if err := c.send(ctx, req, &res); err != nil {
		return nil, err
	}
	if err := c.session.SetAuth(res.AccessToken, &res.User); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.get(ctx, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout is local: the token is dropped and the session becomes anonymous.
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) ListSpaces(ctx context.Context) ([]model.Space, error) {
	var res model.SpaceList
	if err := c.get(ctx, "/spaces", nil, &res); err != nil {
		return nil, err
	}
	return res.Spaces, nil
}

func (c *Client) GetSpace(ctx context.Context, id string) (*model.Space, error) {
	var sp model.Space
	if err := c.get(ctx, "/spaces/"+url.PathEscape(id), nil, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

// SpaceInput is the create/update form. Empty Description and Color are sent as-is on create
// and omitted on update.
type SpaceInput struct {
	Name        string
	Description string
	Color       string
}

func (c *Client) CreateSpace(ctx context.Context, in SpaceInput) (*model.Space, error) {
	if err := ValidateSpace(in.Name); err != nil {
		return nil, err
	}
	body := map[string]string{
		"name":        strings.TrimSpace(in.Name),
		"description": strings.TrimSpace(in.Description),
		"color":       in.Color,
	}
	var res struct {
		Space model.Space `json:"space"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "/spaces", body, &res); err != nil {
		return nil, err
	}
	return &res.Space, nil
}

func (c *Client) UpdateSpace(ctx context.Context, id string, in SpaceInput) (*model.Space, error) {
	if err := ValidateSpace(in.Name); err != nil {
		return nil, err
	}
	body := map[string]string{
		"name":        strings.TrimSpace(in.Name),
		"description": strings.TrimSpace(in.Description),
	}
	if in.Color != "" {
		body["color"] = in.Color
	}
	var res struct {
		Space model.Space `json:"space"`
	}
	if err := c.sendJSON(ctx, http.MethodPut, "/spaces/"+url.PathEscape(id), body, &res); err != nil {
		return nil, err
	}
	return &res.Space, nil
}

// DeleteSpace removes the space and every document in it, returning how many documents went.
func (c *Client) DeleteSpace(ctx context.Context, id string) (int64, error) {
	var res struct {
		DocumentsDeleted int64 `json:"documents_deleted"`
	}
	req := request{method: http.MethodDelete, path: "/spaces/" + url.PathEscape(id), auth: true}
	if err := c.send(ctx, req, &res); err != nil {
		return 0, err
	}
	return res.DocumentsDeleted, nil
}

func (c *Client) DeleteDocument(ctx context.Context, spaceID, docID string) error {
	req := request{
		method: http.MethodDelete,
		path:   "/spaces/" + url.PathEscape(spaceID) + "/documents/" + url.PathEscape(docID),
		auth:   true,
	}
	return c.send(ctx, req, nil)
}

// SearchRequest is one search submission. An empty SpaceID searches every space.
type SearchRequest struct {
	Query      string
	SpaceID    string
	Filename   string
	MaxResults int
}

// Search runs a query. Any failure, including an undecodable body, means no result.
func (c *Client) Search(ctx context.Context, in SearchRequest) (*model.SearchResult, error) {
	q := url.Values{}
	q.Set("q", in.Query)
	limit := in.MaxResults
	if limit == 0 {
		limit = DefaultMaxResults
	}
	q.Set("max_results", fmt.Sprint(limit))
	if in.SpaceID != "" {
		q.Set("space_ids", in.SpaceID)
	}
	if in.Filename != "" {
		q.Set("filename", in.Filename)
	}
	var res model.SearchResult
	if err := c.get(ctx, "/search", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.get(ctx, "/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Health needs no token.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	req := request{method: http.MethodGet, path: "/health"}
	if err := c.send(ctx, req, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	var res struct {
		Chats []model.Chat `json:"chats"`
	}
	if err := c.get(ctx, "/chats", nil, &res); err != nil {
		return nil, err
	}
	return res.Chats, nil
}

func (c *Client) CreateChat(ctx context.Context, title string) (*model.Chat, error) {
	var res struct {
		Chat model.Chat `json:"chat"`
	}
	body := map[string]string{"title": strings.TrimSpace(title)}
	if err := c.sendJSON(ctx, http.MethodPost, "/chats", body, &res); err != nil {
		return nil, err
	}
	return &res.Chat, nil
}

func (c *Client) Messages(ctx context.Context, chatID string) ([]model.Message, error) {
	var res struct {
		Messages []model.Message `json:"messages"`
	}
	if err := c.get(ctx, "/chats/"+url.PathEscape(chatID)+"/messages", nil, &res); err != nil {
		return nil, err
	}
	return res.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID, content string) (*model.Exchange, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content", "Message cannot be empty")
	}
	var ex model.Exchange
	body := map[string]string{"content": content}
	if err := c.sendJSON(ctx, http.MethodPost, "/chats/"+url.PathEscape(chatID)+"/messages", body, &ex); err != nil {
		return nil, err
	}
	return &ex, nil
}
