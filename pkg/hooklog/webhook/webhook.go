// Package webhook is a minimal client for Discord-style chat webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"hooklog/pkg/hooklog"
)

// ErrInvalidURL is returned by New for URLs that do not name a webhook.
var ErrInvalidURL = errors.New("webhook: invalid url")

const defaultTimeout = 10 * time.Second

var webhookPath = regexp.MustCompile(`^/api(?:/v\d+)?/webhooks/([0-9]{17,20})/([A-Za-z0-9._\-]{60,68})/?$`)

// Client posts messages to one webhook. It is safe for concurrent use.
type Client struct {
	endpoint  *url.URL
	id        string
	token     string
	http      *http.Client
	timeout   time.Duration
	username  string
	avatarURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout bounds each Send. Zero disables the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// WithUsername overrides the webhook's display name.
func WithUsername(name string) Option {
	return func(cl *Client) { cl.username = strings.TrimSpace(name) }
}

// WithAvatarURL overrides the webhook's avatar.
func WithAvatarURL(u string) Option {
	return func(cl *Client) { cl.avatarURL = strings.TrimSpace(u) }
}

// New validates rawURL and returns a client for it.
func New(rawURL string, opts ...Option) (*Client, error) {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme must be https, got %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	m := webhookPath.FindStringSubmatch(u.Path)
	if m == nil {
		return nil, fmt.Errorf("%w: path must be /api/webhooks/<id>/<token>", ErrInvalidURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	c := &Client{
		endpoint: u,
		id:       m[1],
		token:    m[2],
		http:     &http.Client{},
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// ID returns the webhook id.
func (c *Client) ID() string { return c.id }

// String returns the endpoint with the token redacted.
func (c *Client) String() string {
	return strings.Replace(c.endpoint.String(), c.token, "REDACTED", 1)
}

// Send posts text and an optional embed. Any non-2xx response is an error.
func (c *Client) Send(ctx context.Context, text string, embed *hooklog.Embed) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(c.payload(text, embed))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	u := *c.endpoint
	u.RawQuery = "wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.redact(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// redact strips the token from transport errors, which embed the request URL.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = strings.Replace(ue.URL, c.token, "REDACTED", 1)
	}
	return err
}

// StatusError reports a non-2xx webhook response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook: HTTP %d", e.Code)
	}
	return fmt.Sprintf("webhook: HTTP %d: %s", e.Code, e.Body)
}

type payload struct {
	Content   string      `json:"content,omitempty"`
	Username  string      `json:"username,omitempty"`
	AvatarURL string      `json:"avatar_url,omitempty"`
	Embeds    []embedJSON `json:"embeds,omitempty"`
}

type embedJSON struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Color       int         `json:"color"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Fields      []fieldJSON `json:"fields,omitempty"`
	Footer      *footerJSON `json:"footer,omitempty"`
}

type fieldJSON struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type footerJSON struct {
	Text string `json:"text"`
}

func (c *Client) payload(text string, e *hooklog.Embed) payload {
	p := payload{Content: text, Username: c.username, AvatarURL: c.avatarURL}
	if e == nil {
		return p
	}
	ej := embedJSON{
		Title:       e.Title,
		Description: e.Description,
		Color:       int(e.Color),
	}
	if !e.Timestamp.IsZero() {
		ej.Timestamp = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	for _, f := range e.Fields {
		ej.Fields = append(ej.Fields, fieldJSON{Name: f.Name, Value: nonEmpty(f.Value), Inline: f.Inline})
	}
	if e.Footer != "" {
		ej.Footer = &footerJSON{Text: e.Footer}
	}
	p.Embeds = []embedJSON{ej}
	return p
}

// nonEmpty avoids empty field values, which the service rejects.
func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
